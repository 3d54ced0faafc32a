package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// AttachmentsHandler accepts multipart uploads and stores files under
// the configured upload directory.
type AttachmentsHandler struct {
	service *service.AttachmentService
	cfg     config.UploadConfig
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService, cfg config.UploadConfig) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService, cfg: cfg}
}

// Upload POST /attachments. Accepts up to the configured number of
// files under the "files" form field.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return apperrors.NewValidationError("no files provided", nil)
	}
	if h.cfg.MaxFiles > 0 && len(files) > h.cfg.MaxFiles {
		return apperrors.NewValidationError("too many files", map[string]any{"max_files": h.cfg.MaxFiles})
	}

	inputs := make([]service.RegisterUploadInput, 0, len(files))
	for _, file := range files {
		if h.cfg.MaxSizeBytes > 0 && file.Size > h.cfg.MaxSizeBytes {
			return apperrors.NewValidationError("file too large", map[string]any{
				"file_name":      file.Filename,
				"max_size_bytes": h.cfg.MaxSizeBytes,
			})
		}
		storageKey := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(file.Filename))
		if err := c.SaveFile(file, filepath.Join(h.cfg.Dir, storageKey)); err != nil {
			return apperrors.NewInternalError(err)
		}
		inputs = append(inputs, service.RegisterUploadInput{
			FileName:   file.Filename,
			StorageKey: storageKey,
			MimeType:   file.Header.Get("Content-Type"),
			SizeBytes:  file.Size,
		})
	}

	attachments, err := h.service.Register(c.Context(), actor, inputs)
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		items = append(items, dto.AttachmentResponse{
			ID:        attachment.ID,
			FileName:  attachment.FileName,
			MimeType:  attachment.MimeType,
			SizeBytes: attachment.SizeBytes,
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": items})
}

// Download GET /attachments/:id.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	attachment, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Download(filepath.Join(h.cfg.Dir, attachment.StorageKey), attachment.FileName)
}
