package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated      EventType = "issue_created"
	EventIssueAccepted     EventType = "issue_accepted"
	EventIssueAssigned     EventType = "issue_assigned"
	EventIssueEscalated    EventType = "issue_escalated"
	EventIssueResolved     EventType = "issue_resolved"
	EventIssueConfirmed    EventType = "issue_confirmed"
	EventIssueReRaised     EventType = "issue_re_raised"
	EventIssueRejected     EventType = "issue_rejected"
	EventAssignmentRemoved EventType = "assignment_removed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	TicketNumber string  `json:"ticket_number"`
	ProjectID    string  `json:"project_id"`
	PriorityID   string  `json:"priority_id"`
	NodeID       *string `json:"node_id,omitempty"`
	Title        string  `json:"title"`
}

// StatusChangedPayload describes a lifecycle transition.
type StatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
	Reason    string             `json:"reason,omitempty"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	AssignmentID string `json:"assignment_id"`
	AssigneeID   string `json:"assignee_id"`
}

// IssueEscalatedPayload payload.
type IssueEscalatedPayload struct {
	EscalationID string  `json:"escalation_id"`
	FromNodeID   *string `json:"from_node_id,omitempty"`
	ToNodeID     *string `json:"to_node_id,omitempty"`
	Reason       string  `json:"reason"`
}

// IssueRejectedPayload payload.
type IssueRejectedPayload struct {
	RejectID string `json:"reject_id"`
	Reason   string `json:"reason"`
}

// AssignmentRemovedPayload payload.
type AssignmentRemovedPayload struct {
	AssignmentID string  `json:"assignment_id"`
	AssigneeID   string  `json:"assignee_id"`
	Reason       *string `json:"reason,omitempty"`
}
