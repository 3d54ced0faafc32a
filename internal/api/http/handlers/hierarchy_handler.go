package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// HierarchyHandler manages institutes, projects, escalation nodes and
// reference data endpoints.
type HierarchyHandler struct {
	hierarchy *service.HierarchyService
	issues    *service.IssueService
}

// NewHierarchyHandler constructs handler.
func NewHierarchyHandler(hierarchyService *service.HierarchyService, issueService *service.IssueService) *HierarchyHandler {
	return &HierarchyHandler{hierarchy: hierarchyService, issues: issueService}
}

// CreateInstitute POST /institutes.
func (h *HierarchyHandler) CreateInstitute(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	institute, err := h.hierarchy.CreateInstitute(c.Context(), actor, service.CreateInstituteInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": instituteResponse(institute)})
}

// ListInstitutes GET /institutes.
func (h *HierarchyHandler) ListInstitutes(c *fiber.Ctx) error {
	institutes, err := h.hierarchy.ListInstitutes(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.InstituteResponse, 0, len(institutes))
	for i := range institutes {
		items = append(items, instituteResponse(&institutes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateProject POST /projects.
func (h *HierarchyHandler) CreateProject(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	project, err := h.hierarchy.CreateProject(c.Context(), actor, service.CreateProjectInput{
		InstituteID: req.InstituteID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// GetProject GET /projects/:id.
func (h *HierarchyHandler) GetProject(c *fiber.Ctx) error {
	project, err := h.hierarchy.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// ListProjects GET /institutes/:id/projects.
func (h *HierarchyHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.hierarchy.ListProjects(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateNode POST /nodes.
func (h *HierarchyHandler) CreateNode(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	node, err := h.hierarchy.CreateNode(c.Context(), actor, service.CreateNodeInput{
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
		Kind:      req.Kind,
		Name:      req.Name,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": nodeResponse(node)})
}

// GetNode GET /nodes/:id.
func (h *HierarchyHandler) GetNode(c *fiber.Ctx) error {
	node, err := h.hierarchy.GetNode(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": nodeResponse(node)})
}

// ListNodes GET /projects/:id/nodes.
func (h *HierarchyHandler) ListNodes(c *fiber.Ctx) error {
	nodes, err := h.hierarchy.ListNodes(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.NodeResponse, 0, len(nodes))
	for i := range nodes {
		items = append(items, nodeResponse(&nodes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListCommitteeNodes GET /nodes/committees.
func (h *HierarchyHandler) ListCommitteeNodes(c *fiber.Ctx) error {
	nodes, err := h.hierarchy.ListCommitteeNodes(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.NodeResponse, 0, len(nodes))
	for i := range nodes {
		items = append(items, nodeResponse(&nodes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMember POST /nodes/:id/members.
func (h *HierarchyHandler) AddMember(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.hierarchy.AddMember(c.Context(), actor, c.Params("id"), req.UserID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListMembers GET /nodes/:id/members.
func (h *HierarchyHandler) ListMembers(c *fiber.Ctx) error {
	users, err := h.hierarchy.UsersAtNode(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListCategories GET /categories.
func (h *HierarchyHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.issues.ListCategories(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.CategoryResponse{ID: category.ID, Name: category.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListPriorities GET /priorities.
func (h *HierarchyHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.issues.ListPriorities(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PriorityResponse, 0, len(priorities))
	for _, priority := range priorities {
		items = append(items, dto.PriorityResponse{ID: priority.ID, Name: priority.Name, Rank: priority.Rank})
	}
	return c.JSON(fiber.Map{"data": items})
}
