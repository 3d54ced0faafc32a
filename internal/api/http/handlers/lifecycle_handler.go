package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// LifecycleHandler manages the audit-backed transition endpoints:
// escalations, resolutions, rejects and re-raises.
type LifecycleHandler struct {
	service *service.IssueService
}

// NewLifecycleHandler constructs handler.
func NewLifecycleHandler(issueService *service.IssueService) *LifecycleHandler {
	return &LifecycleHandler{service: issueService}
}

// Escalate POST /issues/:id/escalations.
func (h *LifecycleHandler) Escalate(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if req.ToTop && req.ToNodeID != nil {
		return apperrors.NewValidationError("to_node_id and to_top are mutually exclusive", nil)
	}

	issue, escalation, err := h.service.Escalate(c.Context(), actor, service.EscalateInput{
		IssueID:       c.Params("id"),
		ToNodeID:      req.ToNodeID,
		ToTop:         req.ToTop,
		Reason:        req.Reason,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"issue":      issueSummary(issue),
		"escalation": escalationResponse(escalation),
	}})
}

// Resolve POST /issues/:id/resolutions.
func (h *LifecycleHandler) Resolve(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	issue, resolution, err := h.service.Resolve(c.Context(), actor, service.ResolveInput{
		IssueID:       c.Params("id"),
		Notes:         req.Notes,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"issue":      issueSummary(issue),
		"resolution": resolutionResponse(resolution),
	}})
}

// Reject POST /issues/:id/rejects.
func (h *LifecycleHandler) Reject(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	reject, err := h.service.Reject(c.Context(), actor, service.RejectInput{
		IssueID:       c.Params("id"),
		Reason:        req.Reason,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": rejectResponse(reject)})
}

// ReRaise POST /issues/:id/re-raises.
func (h *LifecycleHandler) ReRaise(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.ReRaiseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	issue, reRaise, err := h.service.ReRaise(c.Context(), actor, service.ReRaiseInput{
		IssueID:       c.Params("id"),
		Reason:        req.Reason,
		ReRaisedAt:    req.ReRaisedAt,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"issue":    issueSummary(issue),
		"re_raise": reRaiseResponse(reRaise),
	}})
}
