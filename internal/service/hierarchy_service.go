package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// HierarchyService manages institutes, projects and the escalation
// trees built on top of them.
type HierarchyService struct {
	projects  repository.ProjectRepository
	hierarchy repository.HierarchyRepository
	users     repository.UserRepository
}

// NewHierarchyService instantiates service.
func NewHierarchyService(
	projects repository.ProjectRepository,
	hierarchy repository.HierarchyRepository,
	users repository.UserRepository,
) *HierarchyService {
	return &HierarchyService{projects: projects, hierarchy: hierarchy, users: users}
}

// CreateInstituteInput carries institute creation fields.
type CreateInstituteInput struct {
	Name string
}

// CreateProjectInput carries project creation fields.
type CreateProjectInput struct {
	InstituteID string
	Name        string
	Description string
}

// CreateNodeInput carries node creation fields. A nil ParentID creates
// the top tier of its tree.
type CreateNodeInput struct {
	ProjectID string
	ParentID  *string
	Kind      domain.NodeKind
	Name      string
}

func (s *HierarchyService) CreateInstitute(ctx context.Context, actor Actor, input CreateInstituteInput) (*domain.Institute, error) {
	if actor.Role != domain.UserRoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	institute := &domain.Institute{Name: input.Name, IsActive: true}
	if err := s.projects.CreateInstitute(ctx, institute); err != nil {
		return nil, err
	}
	return institute, nil
}

func (s *HierarchyService) GetInstitute(ctx context.Context, id string) (*domain.Institute, error) {
	institute, err := s.projects.GetInstitute(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "institute", map[string]any{"institute_id": id})
	}
	return institute, nil
}

func (s *HierarchyService) ListInstitutes(ctx context.Context) ([]domain.Institute, error) {
	return s.projects.ListInstitutes(ctx)
}

func (s *HierarchyService) CreateProject(ctx context.Context, actor Actor, input CreateProjectInput) (*domain.Project, error) {
	if actor.Role != domain.UserRoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	institute, err := s.projects.GetInstitute(ctx, input.InstituteID)
	if err != nil {
		return nil, notFoundOr(err, "institute", map[string]any{"institute_id": input.InstituteID})
	}
	if !institute.IsActive {
		return nil, apperrors.NewValidationError("institute is inactive", map[string]any{"institute_id": institute.ID})
	}
	project := &domain.Project{
		InstituteID: institute.ID,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *HierarchyService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "project", map[string]any{"project_id": id})
	}
	return project, nil
}

func (s *HierarchyService) ListProjects(ctx context.Context, instituteID string) ([]domain.Project, error) {
	return s.projects.ListProjectsByInstitute(ctx, instituteID)
}

// CreateNode adds a tier to a project's escalation tree. Level is
// derived from the parent so the tree stays consistent without the
// caller tracking depth.
func (s *HierarchyService) CreateNode(ctx context.Context, actor Actor, input CreateNodeInput) (*domain.HierarchyNode, error) {
	if actor.Role != domain.UserRoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.Kind != domain.NodeKindProject && input.Kind != domain.NodeKindInternal {
		return nil, apperrors.NewValidationError("unknown node kind", map[string]any{"kind": input.Kind})
	}
	if _, err := s.GetProject(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	level := 0
	if input.ParentID != nil {
		parent, err := s.GetNode(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ProjectID != input.ProjectID {
			return nil, apperrors.NewValidationError("parent belongs to another project", map[string]any{"parent_id": parent.ID})
		}
		if parent.Kind != input.Kind {
			return nil, apperrors.NewValidationError("parent tree has a different kind", map[string]any{"parent_id": parent.ID})
		}
		level = parent.Level + 1
	}

	node := &domain.HierarchyNode{
		ProjectID: input.ProjectID,
		ParentID:  input.ParentID,
		Kind:      input.Kind,
		Name:      input.Name,
		Level:     level,
		IsActive:  true,
	}
	if err := s.hierarchy.CreateNode(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *HierarchyService) GetNode(ctx context.Context, id string) (*domain.HierarchyNode, error) {
	node, err := s.hierarchy.GetNode(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "node", map[string]any{"node_id": id})
	}
	return node, nil
}

func (s *HierarchyService) ListNodes(ctx context.Context, projectID string) ([]domain.HierarchyNode, error) {
	return s.hierarchy.ListNodesByProject(ctx, projectID)
}

func (s *HierarchyService) ListCommitteeNodes(ctx context.Context) ([]domain.HierarchyNode, error) {
	return s.hierarchy.ListNodesByKind(ctx, domain.NodeKindInternal)
}

// AddMember binds a handler to a tier. Reporters cannot hold tier
// authority.
func (s *HierarchyService) AddMember(ctx context.Context, actor Actor, nodeID, userID string) error {
	if actor.Role != domain.UserRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	if _, err := s.GetNode(ctx, nodeID); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if !user.CanHandle() {
		return apperrors.NewValidationError("user cannot hold tier authority", map[string]any{"user_id": user.ID})
	}
	return s.hierarchy.AddMember(ctx, nodeID, userID)
}

func (s *HierarchyService) IsMember(ctx context.Context, nodeID, userID string) (bool, error) {
	return s.hierarchy.IsMember(ctx, nodeID, userID)
}

// MemberIDs lists the users bound to a tier.
func (s *HierarchyService) MemberIDs(ctx context.Context, nodeID string) ([]string, error) {
	return s.hierarchy.ListMemberIDs(ctx, nodeID)
}

// UsersAtNode resolves the full user records bound to a tier. Members
// whose accounts have since been removed are skipped.
func (s *HierarchyService) UsersAtNode(ctx context.Context, nodeID string) ([]domain.User, error) {
	ids, err := s.hierarchy.ListMemberIDs(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	result := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		result = append(result, *user)
	}
	return result, nil
}

// ResolveParentTier walks one step up the escalation tree. A node at
// the top resolves to nil, meaning escalation leaves the tree.
func (s *HierarchyService) ResolveParentTier(ctx context.Context, nodeID string) (*string, error) {
	node, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.ParentID == nil {
		return nil, nil
	}
	parent, err := s.GetNode(ctx, *node.ParentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsActive {
		return s.ResolveParentTier(ctx, parent.ID)
	}
	id := parent.ID
	return &id, nil
}
