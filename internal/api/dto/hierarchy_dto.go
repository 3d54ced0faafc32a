package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateInstituteRequest payload.
type CreateInstituteRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	InstituteID string `json:"institute_id" validate:"required,uuid4"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

// CreateNodeRequest payload.
type CreateNodeRequest struct {
	ProjectID string          `json:"project_id" validate:"required,uuid4"`
	ParentID  *string         `json:"parent_id" validate:"omitempty,uuid4"`
	Kind      domain.NodeKind `json:"kind" validate:"required,oneof=PROJECT INTERNAL"`
	Name      string          `json:"name" validate:"required,max=200"`
}

// AddMemberRequest payload.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// InstituteResponse representation.
type InstituteResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectResponse representation.
type ProjectResponse struct {
	ID          string    `json:"id"`
	InstituteID string    `json:"institute_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NodeResponse representation.
type NodeResponse struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	ParentID  *string         `json:"parent_id"`
	Kind      domain.NodeKind `json:"kind"`
	Name      string          `json:"name"`
	Level     int             `json:"level"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CategoryResponse representation.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriorityResponse representation.
type PriorityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}
