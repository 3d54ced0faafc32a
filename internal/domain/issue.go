package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusPending           IssueStatus = "PENDING"
	IssueStatusAccepted          IssueStatus = "ACCEPTED"
	IssueStatusEscalated         IssueStatus = "ESCALATED"
	IssueStatusAssignedCommittee IssueStatus = "ASSIGNED_COMMITTEE"
	IssueStatusResolved          IssueStatus = "RESOLVED"
	IssueStatusClosed            IssueStatus = "CLOSED"
)

// Issue is the aggregate for reported problems. Status is a coarse
// summary of the append-only audit records; the two are only ever
// written together inside one transaction.
type Issue struct {
	ID           string
	TicketNumber string
	ProjectID    string
	CategoryID   string
	PriorityID   string
	ReporterID   string
	AssigneeID   *string
	NodeID       *string
	Title        string
	Description  string
	Status       IssueStatus
	Version      int64
	OccurredAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}
