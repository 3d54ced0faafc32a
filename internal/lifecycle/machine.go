package lifecycle

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// Operation enumerates the lifecycle transitions an actor can request.
type Operation string

const (
	OpAccept          Operation = "ACCEPT"
	OpAssignCommittee Operation = "ASSIGN_COMMITTEE"
	OpEscalate        Operation = "ESCALATE"
	OpResolve         Operation = "RESOLVE"
	OpConfirm         Operation = "CONFIRM"
	OpReRaise         Operation = "RE_RAISE"
	OpReject          Operation = "REJECT"
)

// ReopenPolicy decides which active status a re-raised issue returns to.
type ReopenPolicy string

const (
	ReopenToPending   ReopenPolicy = "pending"
	ReopenToEscalated ReopenPolicy = "escalated"
)

// transitions maps each operation to the statuses it may start from and
// the status it lands on. Reject is absent: it appends an audit record
// without moving the issue (handled in Apply).
var transitions = map[Operation]struct {
	from map[domain.IssueStatus]struct{}
	to   domain.IssueStatus
}{
	OpAccept: {
		from: statusSet(domain.IssueStatusPending),
		to:   domain.IssueStatusAccepted,
	},
	OpAssignCommittee: {
		from: statusSet(domain.IssueStatusPending, domain.IssueStatusAccepted, domain.IssueStatusEscalated),
		to:   domain.IssueStatusAssignedCommittee,
	},
	OpEscalate: {
		// escalated is included: an issue may climb several tiers,
		// appending one escalation record per hop
		from: statusSet(domain.IssueStatusPending, domain.IssueStatusAccepted, domain.IssueStatusEscalated, domain.IssueStatusAssignedCommittee),
		to:   domain.IssueStatusEscalated,
	},
	OpResolve: {
		from: statusSet(domain.IssueStatusAccepted, domain.IssueStatusEscalated, domain.IssueStatusAssignedCommittee),
		to:   domain.IssueStatusResolved,
	},
	OpConfirm: {
		from: statusSet(domain.IssueStatusResolved),
		to:   domain.IssueStatusClosed,
	},
	OpReRaise: {
		from: statusSet(domain.IssueStatusResolved),
		to:   domain.IssueStatusPending, // overridden by policy
	},
}

// activeStatuses are the states a reject record may be appended in.
var activeStatuses = statusSet(
	domain.IssueStatusPending,
	domain.IssueStatusAccepted,
	domain.IssueStatusEscalated,
	domain.IssueStatusAssignedCommittee,
	domain.IssueStatusResolved,
)

func statusSet(statuses ...domain.IssueStatus) map[domain.IssueStatus]struct{} {
	set := make(map[domain.IssueStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Machine applies lifecycle operations to issues. It owns the status
// field: services never mutate Issue.Status directly.
type Machine struct {
	reopenTo ReopenPolicy
}

// NewMachine builds a machine with the configured re-raise policy.
func NewMachine(reopenTo ReopenPolicy) *Machine {
	if reopenTo != ReopenToEscalated {
		reopenTo = ReopenToPending
	}
	return &Machine{reopenTo: reopenTo}
}

// CanApply reports whether op is legal from the issue's current status.
func (m *Machine) CanApply(status domain.IssueStatus, op Operation) bool {
	if op == OpReject {
		_, ok := activeStatuses[status]
		return ok
	}
	rule, ok := transitions[op]
	if !ok {
		return false
	}
	_, ok = rule.from[status]
	return ok
}

// Apply mutates the issue's status and lifecycle timestamps for op, or
// returns INVALID_TRANSITION when the guard is unmet. Reject leaves the
// status untouched. The caller persists the issue and its audit record
// in one transaction.
func (m *Machine) Apply(issue *domain.Issue, op Operation, now time.Time) error {
	if !m.CanApply(issue.Status, op) {
		return apperrors.NewInvalidTransition(string(op), string(issue.Status))
	}
	if op == OpReject {
		return nil
	}

	next := transitions[op].to
	if op == OpReRaise && m.reopenTo == ReopenToEscalated {
		next = domain.IssueStatusEscalated
	}

	switch op {
	case OpResolve:
		issue.ResolvedAt = &now
	case OpConfirm:
		issue.ClosedAt = &now
	case OpReRaise:
		issue.ResolvedAt = nil
		if next == domain.IssueStatusPending {
			// re-triage from scratch
			issue.AssigneeID = nil
		}
	}
	issue.Status = next
	return nil
}

// Initial returns the status every created issue starts in.
func Initial() domain.IssueStatus {
	return domain.IssueStatusPending
}
