package domain

import "time"

// Institute represents a top-level organization.
type Institute struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project is a workspace under an institute that issues belong to.
type Project struct {
	ID          string
	InstituteID string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NodeKind separates the per-project escalation tree from the flat
// internal (committee) routing tree.
type NodeKind string

const (
	NodeKindProject  NodeKind = "PROJECT"
	NodeKindInternal NodeKind = "INTERNAL"
)

// HierarchyNode is a tier in an escalation tree. A nil ParentID marks
// the top of its tree.
type HierarchyNode struct {
	ID        string
	ProjectID string
	ParentID  *string
	Kind      NodeKind
	Name      string
	Level     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NodeMember binds a user to a hierarchy node.
type NodeMember struct {
	NodeID    string
	UserID    string
	CreatedAt time.Time
}
