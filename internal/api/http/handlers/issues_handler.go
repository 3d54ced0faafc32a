package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssuesHandler manages issue creation, reads and assignment endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// requireActor resolves the authenticated actor or fails the request.
func requireActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.ActorFromUser(principal.User), nil
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	return limit, offset
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	issue, err := h.service.CreateIssue(c.Context(), actor, service.IssueCreateInput{
		ProjectID:     req.ProjectID,
		CategoryID:    req.CategoryID,
		PriorityID:    req.PriorityID,
		NodeID:        req.NodeID,
		Title:         req.Title,
		Description:   req.Description,
		OccurredAt:    req.OccurredAt,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueSummary(issue)})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	detail, err := h.service.GetIssue(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(detail)})
}

// GetIssueByTicket GET /issues/ticket/:ticket_number.
func (h *IssuesHandler) GetIssueByTicket(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	detail, err := h.service.GetIssueByTicketNumber(c.Context(), c.Params("ticket_number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(detail)})
}

// ListMyIssues GET /issues.
func (h *IssuesHandler) ListMyIssues(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	issues, err := h.service.ListIssuesByReporter(c.Context(), actor.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.IssueSummary, 0, len(issues))
	for i := range issues {
		items = append(items, issueSummary(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListUserIssues GET /issues/user/:id. Reporters can only read their
// own list; handlers and admins can read anyone's.
func (h *IssuesHandler) ListUserIssues(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	reporterID := c.Params("id")
	if reporterID != actor.ID && !actor.CanHandle() {
		return apperrors.NewForbidden("cannot read another user's issues")
	}
	limit, offset := pagination(c)
	issues, err := h.service.ListIssuesByReporter(c.Context(), reporterID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.IssueSummary, 0, len(issues))
	for i := range issues {
		items = append(items, issueSummary(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListNodeIssues GET /nodes/:id/issues.
func (h *IssuesHandler) ListNodeIssues(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	limit, offset := pagination(c)
	issues, err := h.service.ListIssuesByNode(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.IssueSummary, 0, len(issues))
	for i := range issues {
		items = append(items, issueSummary(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Accept POST /issues/:id/accept.
func (h *IssuesHandler) Accept(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	issue, err := h.service.Accept(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue)})
}

// Confirm POST /issues/:id/confirm.
func (h *IssuesHandler) Confirm(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	issue, err := h.service.Confirm(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue)})
}

// Assign POST /issues/:id/assignments.
func (h *IssuesHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	assignment, err := h.service.Assign(c.Context(), actor, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// AssignCommittee POST /issues/:id/committee.
func (h *IssuesHandler) AssignCommittee(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignCommitteeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	issue, err := h.service.AssignCommittee(c.Context(), actor, c.Params("id"), req.NodeID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue)})
}

// RemoveAssignment DELETE /assignments/:id.
func (h *IssuesHandler) RemoveAssignment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.RemoveAssignmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := h.service.RemoveAssignment(c.Context(), actor, c.Params("id"), req.Reason); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RemoveAssignmentByAssignee DELETE /issues/:id/assignments/:assignee_id.
func (h *IssuesHandler) RemoveAssignmentByAssignee(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.RemoveAssignmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := h.service.RemoveAssignmentByAssignee(c.Context(), actor, c.Params("id"), c.Params("assignee_id"), req.Reason); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
