package service

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// AttachmentService registers uploaded file metadata. The HTTP layer
// stores bytes on disk; this service owns the records and the links to
// issues and audit rows.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	cfg         config.UploadConfig
}

// NewAttachmentService instantiates service.
func NewAttachmentService(attachments repository.AttachmentRepository, cfg config.UploadConfig) *AttachmentService {
	return &AttachmentService{attachments: attachments, cfg: cfg}
}

// RegisterUploadInput describes one stored file.
type RegisterUploadInput struct {
	FileName   string
	StorageKey string
	MimeType   string
	SizeBytes  int64
}

// Register records uploaded files and returns their IDs in upload
// order. Limits mirror what the HTTP layer enforces so direct callers
// get the same bounds.
func (s *AttachmentService) Register(ctx context.Context, actor Actor, inputs []RegisterUploadInput) ([]domain.Attachment, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("no files provided", nil)
	}
	if s.cfg.MaxFiles > 0 && len(inputs) > s.cfg.MaxFiles {
		return nil, apperrors.NewValidationError("too many files", map[string]any{"max_files": s.cfg.MaxFiles})
	}

	result := make([]domain.Attachment, 0, len(inputs))
	for _, input := range inputs {
		if input.FileName == "" || input.StorageKey == "" {
			return nil, apperrors.NewValidationError("file name and storage key required", nil)
		}
		if s.cfg.MaxSizeBytes > 0 && input.SizeBytes > s.cfg.MaxSizeBytes {
			return nil, apperrors.NewValidationError("file too large", map[string]any{
				"file_name":      input.FileName,
				"max_size_bytes": s.cfg.MaxSizeBytes,
			})
		}
		attachment := &domain.Attachment{
			FileName:     input.FileName,
			StorageKey:   input.StorageKey,
			MimeType:     input.MimeType,
			SizeBytes:    input.SizeBytes,
			UploadedByID: actor.ID,
		}
		if err := s.attachments.Create(ctx, attachment); err != nil {
			return nil, err
		}
		result = append(result, *attachment)
	}
	return result, nil
}

// Get fetches one attachment record.
func (s *AttachmentService) Get(ctx context.Context, id string) (*domain.Attachment, error) {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "attachment", map[string]any{"attachment_id": id})
	}
	return attachment, nil
}

// ListForOwner fetches the files linked to an issue or audit record.
func (s *AttachmentService) ListForOwner(ctx context.Context, owner domain.AttachmentOwner, ownerID string) ([]domain.Attachment, error) {
	return s.attachments.ListByOwner(ctx, owner, ownerID)
}
