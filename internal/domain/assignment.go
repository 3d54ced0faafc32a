package domain

import "time"

// AssignmentStatus tracks the handler-side state of an assignment,
// independent of the issue's own status.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "PENDING"
	AssignmentStatusAccepted  AssignmentStatus = "ACCEPTED"
	AssignmentStatusRejected  AssignmentStatus = "REJECTED"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
	AssignmentStatusRemoved   AssignmentStatus = "REMOVED"
)

// IssueAssignment records that an issue was handed to an assignee by an
// assigner. Many assignments may exist per issue; the latest is current.
type IssueAssignment struct {
	ID           string
	IssueID      string
	AssigneeID   string
	AssignedByID string
	Status       AssignmentStatus
	RemovedByID  *string
	RemoveReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	RemovedAt    *time.Time
}
