package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	ProjectID     string     `json:"project_id" validate:"required,uuid4"`
	CategoryID    string     `json:"category_id" validate:"required,uuid4"`
	PriorityID    string     `json:"priority_id" validate:"required,uuid4"`
	NodeID        *string    `json:"node_id" validate:"omitempty,uuid4"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"required"`
	OccurredAt    *time.Time `json:"occurred_at"`
	AttachmentIDs []string   `json:"attachment_ids" validate:"omitempty,dive,uuid4"`
}

// EscalateRequest payload. Exactly one of to_node_id and to_top may be
// set; with neither, the issue moves one tier up.
type EscalateRequest struct {
	ToNodeID      *string  `json:"to_node_id" validate:"omitempty,uuid4"`
	ToTop         bool     `json:"to_top"`
	Reason        string   `json:"reason" validate:"required"`
	AttachmentIDs []string `json:"attachment_ids" validate:"omitempty,dive,uuid4"`
}

// ResolveRequest payload.
type ResolveRequest struct {
	Notes         string   `json:"notes" validate:"required"`
	AttachmentIDs []string `json:"attachment_ids" validate:"omitempty,dive,uuid4"`
}

// ReRaiseRequest payload.
type ReRaiseRequest struct {
	Reason        string    `json:"reason" validate:"required"`
	ReRaisedAt    time.Time `json:"re_raised_at" validate:"required"`
	AttachmentIDs []string  `json:"attachment_ids" validate:"omitempty,dive,uuid4"`
}

// RejectRequest payload.
type RejectRequest struct {
	Reason        string   `json:"reason" validate:"required"`
	AttachmentIDs []string `json:"attachment_ids" validate:"omitempty,dive,uuid4"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required,uuid4"`
}

// AssignCommitteeRequest payload.
type AssignCommitteeRequest struct {
	NodeID string `json:"node_id" validate:"required,uuid4"`
	Reason string `json:"reason" validate:"required"`
}

// RemoveAssignmentRequest payload.
type RemoveAssignmentRequest struct {
	Reason *string `json:"reason"`
}

// IssueSummary response.
type IssueSummary struct {
	ID           string             `json:"id"`
	TicketNumber string             `json:"ticket_number"`
	ProjectID    string             `json:"project_id"`
	CategoryID   string             `json:"category_id"`
	PriorityID   string             `json:"priority_id"`
	ReporterID   string             `json:"reporter_id"`
	AssigneeID   *string            `json:"assignee_id"`
	NodeID       *string            `json:"node_id"`
	Title        string             `json:"title"`
	Status       domain.IssueStatus `json:"status"`
	OccurredAt   time.Time          `json:"occurred_at"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// IssueDetailResponse provides the issue with its full audit trail.
type IssueDetailResponse struct {
	IssueSummary
	Description string               `json:"description"`
	ResolvedAt  *time.Time           `json:"resolved_at"`
	ClosedAt    *time.Time           `json:"closed_at"`
	Assignments []AssignmentResponse `json:"assignments"`
	Escalations []EscalationResponse `json:"escalations"`
	Resolutions []ResolutionResponse `json:"resolutions"`
	Rejects     []RejectResponse     `json:"rejects"`
	ReRaises    []ReRaiseResponse    `json:"re_raises"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// AssignmentResponse represents one assignment record.
type AssignmentResponse struct {
	ID           string                  `json:"id"`
	AssigneeID   string                  `json:"assignee_id"`
	AssignedByID string                  `json:"assigned_by_id"`
	Status       domain.AssignmentStatus `json:"status"`
	RemovedByID  *string                 `json:"removed_by_id,omitempty"`
	RemoveReason *string                 `json:"remove_reason,omitempty"`
	RemovedAt    *time.Time              `json:"removed_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// EscalationResponse represents one escalation record.
type EscalationResponse struct {
	ID            string               `json:"id"`
	FromNodeID    *string              `json:"from_node_id"`
	ToNodeID      *string              `json:"to_node_id"`
	Reason        string               `json:"reason"`
	EscalatedByID string               `json:"escalated_by_id"`
	CreatedAt     time.Time            `json:"created_at"`
	Attachments   []AttachmentResponse `json:"attachments,omitempty"`
}

// ResolutionResponse represents one resolution attempt.
type ResolutionResponse struct {
	ID           string               `json:"id"`
	Notes        string               `json:"notes"`
	ResolvedByID string               `json:"resolved_by_id"`
	CreatedAt    time.Time            `json:"created_at"`
	Attachments  []AttachmentResponse `json:"attachments,omitempty"`
}

// RejectResponse represents one reject record.
type RejectResponse struct {
	ID           string               `json:"id"`
	Reason       string               `json:"reason"`
	RejectedByID string               `json:"rejected_by_id"`
	CreatedAt    time.Time            `json:"created_at"`
	Attachments  []AttachmentResponse `json:"attachments,omitempty"`
}

// ReRaiseResponse represents one re-raise record.
type ReRaiseResponse struct {
	ID          string               `json:"id"`
	Reason      string               `json:"reason"`
	RaisedByID  string               `json:"raised_by_id"`
	ReRaisedAt  time.Time            `json:"re_raised_at"`
	CreatedAt   time.Time            `json:"created_at"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}
