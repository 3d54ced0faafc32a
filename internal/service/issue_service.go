package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/lifecycle"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// Actor is the explicit actor-context every lifecycle operation takes.
// Handlers build it from the authenticated principal; tests build it
// directly.
type Actor struct {
	ID   string
	Role domain.UserRole
}

// ActorFromUser derives the actor-context from a loaded account.
func ActorFromUser(user *domain.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

func (a Actor) CanHandle() bool {
	return a.Role == domain.UserRoleHandler || a.Role == domain.UserRoleAdmin
}

// TicketSequence reserves monotonically increasing ticket numbers.
type TicketSequence interface {
	NextTicketNumber(ctx context.Context) (int64, error)
}

// IssueService coordinates the issue lifecycle. Every status-changing
// operation runs the status update and its audit insert in one
// transaction via the TxRunner.
type IssueService struct {
	repos      repository.Set
	tx         repository.TxRunner
	users      repository.UserRepository
	projects   repository.ProjectRepository
	references repository.ReferenceRepository
	hierarchy  *HierarchyService
	dispatcher events.Dispatcher
	sequence   TicketSequence
	machine    *lifecycle.Machine
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	Repos         repository.Set
	Tx            repository.TxRunner
	UserRepo      repository.UserRepository
	ProjectRepo   repository.ProjectRepository
	ReferenceRepo repository.ReferenceRepository
	Hierarchy     *HierarchyService
	Dispatcher    events.Dispatcher
	Sequence      TicketSequence
	Machine       *lifecycle.Machine
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		repos:      deps.Repos,
		tx:         deps.Tx,
		users:      deps.UserRepo,
		projects:   deps.ProjectRepo,
		references: deps.ReferenceRepo,
		hierarchy:  deps.Hierarchy,
		dispatcher: deps.Dispatcher,
		sequence:   deps.Sequence,
		machine:    deps.Machine,
	}
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	ProjectID     string
	CategoryID    string
	PriorityID    string
	NodeID        *string
	Title         string
	Description   string
	OccurredAt    *time.Time
	AttachmentIDs []string
}

// EscalateInput describes an escalation request. A nil ToNodeID means
// "escalate to the parent tier" (top when there is none).
type EscalateInput struct {
	IssueID       string
	ToNodeID      *string
	ToTop         bool
	Reason        string
	AttachmentIDs []string
}

// ResolveInput describes a resolution attempt.
type ResolveInput struct {
	IssueID       string
	Notes         string
	AttachmentIDs []string
}

// ReRaiseInput describes the reporter reopening a resolved issue.
type ReRaiseInput struct {
	IssueID       string
	Reason        string
	ReRaisedAt    time.Time
	AttachmentIDs []string
}

// RejectInput describes a reject record request.
type RejectInput struct {
	IssueID       string
	Reason        string
	AttachmentIDs []string
}

// IssueDetail is the read projection of an issue with its audit trail.
type IssueDetail struct {
	Issue       *domain.Issue
	Assignments []domain.IssueAssignment
	Escalations []domain.IssueEscalation
	Resolutions []domain.IssueResolution
	Rejects     []domain.IssueReject
	ReRaises    []domain.IssueReRaise
	Attachments []domain.Attachment
}

// CreateIssue creates an issue for the reporting actor. Status always
// starts at pending.
func (s *IssueService) CreateIssue(ctx context.Context, actor Actor, input IssueCreateInput) (*domain.Issue, error) {
	project, err := s.projects.GetProject(ctx, input.ProjectID)
	if err != nil {
		return nil, notFoundOr(err, "project", map[string]any{"project_id": input.ProjectID})
	}
	if !project.IsActive {
		return nil, apperrors.NewConflict("project inactive", map[string]any{"project_id": project.ID})
	}
	category, err := s.references.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, notFoundOr(err, "category", map[string]any{"category_id": input.CategoryID})
	}
	priority, err := s.references.GetPriority(ctx, input.PriorityID)
	if err != nil {
		return nil, notFoundOr(err, "priority", map[string]any{"priority_id": input.PriorityID})
	}
	if input.NodeID != nil {
		node, err := s.hierarchy.GetNode(ctx, *input.NodeID)
		if err != nil {
			return nil, err
		}
		if node.Kind == domain.NodeKindProject && node.ProjectID != project.ID {
			return nil, apperrors.NewValidationError("node not part of project", map[string]any{"node_id": node.ID})
		}
	}

	occurredAt := time.Now()
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}
	if occurredAt.After(time.Now()) {
		return nil, apperrors.NewValidationError("occurred_at cannot be in the future", nil)
	}

	issue := &domain.Issue{
		TicketNumber: s.nextTicketNumber(ctx),
		ProjectID:    project.ID,
		CategoryID:   category.ID,
		PriorityID:   priority.ID,
		ReporterID:   actor.ID,
		NodeID:       input.NodeID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       lifecycle.Initial(),
		OccurredAt:   occurredAt,
	}

	err = s.tx.InTx(ctx, func(repos repository.Set) error {
		if err := repos.Issues.Create(ctx, issue); err != nil {
			return err
		}
		return s.linkAttachments(ctx, repos, domain.AttachmentOwnerIssue, issue.ID, input.AttachmentIDs)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.IssueCreatedPayload{
			TicketNumber: issue.TicketNumber,
			ProjectID:    issue.ProjectID,
			PriorityID:   issue.PriorityID,
			NodeID:       issue.NodeID,
			Title:        issue.Title,
		},
	})
	return issue, nil
}

// Accept moves a pending issue to accepted and records the assignment.
// The actor must hold hierarchy authority over the issue's current tier.
func (s *IssueService) Accept(ctx context.Context, actor Actor, issueID string) (*domain.Issue, error) {
	var issue *domain.Issue
	var assignment *domain.IssueAssignment

	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		issue, err = s.loadIssue(ctx, repos, issueID)
		if err != nil {
			return err
		}
		if err := s.requireNodeAuthority(ctx, actor, issue); err != nil {
			return err
		}
		if err := s.machine.Apply(issue, lifecycle.OpAccept, time.Now()); err != nil {
			return err
		}
		actorID := actor.ID
		issue.AssigneeID = &actorID
		if err := repos.Issues.Update(ctx, issue); err != nil {
			return mapUpdateErr(err)
		}
		assignment = &domain.IssueAssignment{
			IssueID:      issue.ID,
			AssigneeID:   actor.ID,
			AssignedByID: actor.ID,
			Status:       domain.AssignmentStatusAccepted,
		}
		return repos.Assignments.Create(ctx, assignment)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueAccepted,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.IssueAssignedPayload{
			AssignmentID: assignment.ID,
			AssigneeID:   assignment.AssigneeID,
		},
	})
	return issue, nil
}

// Assign hands an issue to another handler. The assignment starts in
// sub-status pending; the issue's own status is untouched.
func (s *IssueService) Assign(ctx context.Context, actor Actor, issueID, assigneeID string) (*domain.IssueAssignment, error) {
	if !actor.CanHandle() {
		return nil, apperrors.NewForbidden("handler role required")
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": assigneeID})
	}
	if !assignee.CanHandle() {
		return nil, apperrors.NewValidationError("assignee cannot handle issues", map[string]any{"user_id": assigneeID})
	}

	var assignment *domain.IssueAssignment
	err = s.tx.InTx(ctx, func(repos repository.Set) error {
		issue, err := s.loadIssue(ctx, repos, issueID)
		if err != nil {
			return err
		}
		if err := s.requireNodeAuthority(ctx, actor, issue); err != nil {
			return err
		}
		assignment = &domain.IssueAssignment{
			IssueID:      issue.ID,
			AssigneeID:   assignee.ID,
			AssignedByID: actor.ID,
			Status:       domain.AssignmentStatusPending,
		}
		if err := repos.Assignments.Create(ctx, assignment); err != nil {
			return err
		}
		aid := assignee.ID
		issue.AssigneeID = &aid
		return mapUpdateErr(repos.Issues.Update(ctx, issue))
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueAssigned,
		IssueID: assignment.IssueID,
		ActorID: actor.ID,
		Payload: events.IssueAssignedPayload{
			AssignmentID: assignment.ID,
			AssigneeID:   assignment.AssigneeID,
		},
	})
	return assignment, nil
}

// AssignCommittee routes an issue to an internal (committee) node. The
// hop is recorded on the escalation trail.
func (s *IssueService) AssignCommittee(ctx context.Context, actor Actor, issueID, nodeID, reason string) (*domain.Issue, error) {
	if !actor.CanHandle() {
		return nil, apperrors.NewForbidden("handler role required")
	}
	node, err := s.hierarchy.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.Kind != domain.NodeKindInternal {
		return nil, apperrors.NewValidationError("committee node must be internal", map[string]any{"node_id": nodeID})
	}

	var issue *domain.Issue
	var escalation *domain.IssueEscalation
	err = s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		issue, err = s.loadIssue(ctx, repos, issueID)
		if err != nil {
			return err
		}
		if err := s.machine.Apply(issue, lifecycle.OpAssignCommittee, time.Now()); err != nil {
			return err
		}
		fromNode := issue.NodeID
		nid := node.ID
		issue.NodeID = &nid
		if err := repos.Issues.Update(ctx, issue); err != nil {
			return mapUpdateErr(err)
		}
		escalation = &domain.IssueEscalation{
			IssueID:       issue.ID,
			FromNodeID:    fromNode,
			ToNodeID:      issue.NodeID,
			Reason:        reason,
			EscalatedByID: actor.ID,
		}
		return repos.Escalations.Create(ctx, escalation)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueEscalated,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.IssueEscalatedPayload{
			EscalationID: escalation.ID,
			FromNodeID:   escalation.FromNodeID,
			ToNodeID:     escalation.ToNodeID,
			Reason:       reason,
		},
	})
	return issue, nil
}

// Escalate moves the issue's responsible tier upward and appends one
// escalation record. Hierarchy authority is the gate; the actor need
// not be the current assignee.
func (s *IssueService) Escalate(ctx context.Context, actor Actor, input EscalateInput) (*domain.Issue, *domain.IssueEscalation, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, nil, apperrors.NewValidationError("reason required", nil)
	}

	var issue *domain.Issue
	var escalation *domain.IssueEscalation
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		issue, err = s.loadIssue(ctx, repos, input.IssueID)
		if err != nil {
			return err
		}
		if err := s.requireNodeAuthority(ctx, actor, issue); err != nil {
			return err
		}

		fromNode := issue.NodeID
		toNode, err := s.escalationTarget(ctx, fromNode, input)
		if err != nil {
			return err
		}
		if sameNode(fromNode, toNode) {
			return apperrors.NewInvalidTransition(string(lifecycle.OpEscalate), string(issue.Status))
		}

		if err := s.machine.Apply(issue, lifecycle.OpEscalate, time.Now()); err != nil {
			return err
		}
		issue.NodeID = toNode
		if err := repos.Issues.Update(ctx, issue); err != nil {
			return mapUpdateErr(err)
		}
		escalation = &domain.IssueEscalation{
			IssueID:       issue.ID,
			FromNodeID:    fromNode,
			ToNodeID:      toNode,
			Reason:        strings.TrimSpace(input.Reason),
			EscalatedByID: actor.ID,
		}
		if err := repos.Escalations.Create(ctx, escalation); err != nil {
			return err
		}
		return s.linkAttachments(ctx, repos, domain.AttachmentOwnerEscalation, escalation.ID, input.AttachmentIDs)
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueEscalated,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.IssueEscalatedPayload{
			EscalationID: escalation.ID,
			FromNodeID:   escalation.FromNodeID,
			ToNodeID:     escalation.ToNodeID,
			Reason:       escalation.Reason,
		},
	})
	return issue, escalation, nil
}

// Resolve records a resolution attempt and marks the issue resolved.
// The reporter's confirmation is a separate step; nothing auto-closes.
func (s *IssueService) Resolve(ctx context.Context, actor Actor, input ResolveInput) (*domain.Issue, *domain.IssueResolution, error) {
	if !actor.CanHandle() {
		return nil, nil, apperrors.NewForbidden("handler role required")
	}
	if strings.TrimSpace(input.Notes) == "" {
		return nil, nil, apperrors.NewValidationError("notes required", nil)
	}

	var issue *domain.Issue
	var resolution *domain.IssueResolution
	var oldStatus domain.IssueStatus
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		issue, err = s.loadIssue(ctx, repos, input.IssueID)
		if err != nil {
			return err
		}
		oldStatus = issue.Status
		if err := s.machine.Apply(issue, lifecycle.OpResolve, time.Now()); err != nil {
			return err
		}
		if err := repos.Issues.Update(ctx, issue); err != nil {
			return mapUpdateErr(err)
		}
		resolution = &domain.IssueResolution{
			IssueID:      issue.ID,
			Notes:        strings.TrimSpace(input.Notes),
			ResolvedByID: actor.ID,
		}
		if err := repos.Resolutions.Create(ctx, resolution); err != nil {
			return err
		}
		return s.linkAttachments(ctx, repos, domain.AttachmentOwnerResolution, resolution.ID, input.AttachmentIDs)
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueResolved,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: issue.Status,
			Reason:    resolution.Notes,
		},
	})
	return issue, resolution, nil
}

// Confirm closes a resolved issue. Only the original reporter may
// confirm.
func (s *IssueService) Confirm(ctx context.Context, actor Actor, issueID string) (*domain.Issue, error) {
	var issue *domain.Issue
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		issue, err = s.loadIssue(ctx, repos, issueID)
		if err != nil {
			return err
		}
		if issue.ReporterID != actor.ID {
			return apperrors.NewForbidden("only the reporter may confirm")
		}
		if err := s.machine.Apply(issue, lifecycle.OpConfirm, time.Now()); err != nil {
			return err
		}
		if err := repos.Issues.Update(ctx, issue); err != nil {
			return mapUpdateErr(err)
		}
		// the latest assignment is done with this issue
		latest, err := repos.Assignments.LatestByIssue(ctx, issue.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		return repos.Assignments.UpdateStatus(ctx, latest.ID, domain.AssignmentStatusCompleted)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueConfirmed,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.StatusChangedPayload{
			OldStatus: domain.IssueStatusResolved,
			NewStatus: issue.Status,
		},
	})
	return issue, nil
}

// ReRaise reopens a resolved issue for its reporter. The re-raised-at
// date must not lie in the future.
func (s *IssueService) ReRaise(ctx context.Context, actor Actor, input ReRaiseInput) (*domain.Issue, *domain.IssueReRaise, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, nil, apperrors.NewValidationError("reason required", nil)
	}
	if input.ReRaisedAt.IsZero() {
		return nil, nil, apperrors.NewValidationError("re_raised_at required", nil)
	}
	if input.ReRaisedAt.After(time.Now()) {
		return nil, nil, apperrors.NewValidationError("re_raised_at cannot be in the future", nil)
	}

	var issue *domain.Issue
	var reRaise *domain.IssueReRaise
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		issue, err = s.loadIssue(ctx, repos, input.IssueID)
		if err != nil {
			return err
		}
		if issue.ReporterID != actor.ID {
			return apperrors.NewForbidden("only the reporter may re-raise")
		}
		if err := s.machine.Apply(issue, lifecycle.OpReRaise, time.Now()); err != nil {
			return err
		}
		if err := repos.Issues.Update(ctx, issue); err != nil {
			return mapUpdateErr(err)
		}
		reRaise = &domain.IssueReRaise{
			IssueID:    issue.ID,
			Reason:     strings.TrimSpace(input.Reason),
			RaisedByID: actor.ID,
			ReRaisedAt: input.ReRaisedAt,
		}
		if err := repos.ReRaises.Create(ctx, reRaise); err != nil {
			return err
		}
		return s.linkAttachments(ctx, repos, domain.AttachmentOwnerReRaise, reRaise.ID, input.AttachmentIDs)
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueReRaised,
		IssueID: issue.ID,
		ActorID: actor.ID,
		Payload: events.StatusChangedPayload{
			OldStatus: domain.IssueStatusResolved,
			NewStatus: issue.Status,
			Reason:    reRaise.Reason,
		},
	})
	return issue, reRaise, nil
}

// Reject appends a reject record without moving the issue's status.
// Used when a handler declines an assignment or a reporter declines a
// resolution.
func (s *IssueService) Reject(ctx context.Context, actor Actor, input RejectInput) (*domain.IssueReject, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}

	var reject *domain.IssueReject
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		issue, err := s.loadIssue(ctx, repos, input.IssueID)
		if err != nil {
			return err
		}
		if err := s.machine.Apply(issue, lifecycle.OpReject, time.Now()); err != nil {
			return err
		}
		reject = &domain.IssueReject{
			IssueID:      issue.ID,
			Reason:       strings.TrimSpace(input.Reason),
			RejectedByID: actor.ID,
		}
		if err := repos.Rejects.Create(ctx, reject); err != nil {
			return err
		}
		if err := s.linkAttachments(ctx, repos, domain.AttachmentOwnerReject, reject.ID, input.AttachmentIDs); err != nil {
			return err
		}
		// a handler rejecting their own assignment flips its sub-status
		if issue.AssigneeID != nil && *issue.AssigneeID == actor.ID {
			latest, err := repos.Assignments.LatestByIssue(ctx, issue.ID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil
				}
				return err
			}
			return repos.Assignments.UpdateStatus(ctx, latest.ID, domain.AssignmentStatusRejected)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueRejected,
		IssueID: reject.IssueID,
		ActorID: actor.ID,
		Payload: events.IssueRejectedPayload{
			RejectID: reject.ID,
			Reason:   reject.Reason,
		},
	})
	return reject, nil
}

// RemoveAssignment marks an assignment removed. The issue's status is
// unaffected.
func (s *IssueService) RemoveAssignment(ctx context.Context, actor Actor, assignmentID string, reason *string) error {
	if !actor.CanHandle() {
		return apperrors.NewForbidden("handler role required")
	}

	var assignment *domain.IssueAssignment
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		var err error
		assignment, err = repos.Assignments.GetByID(ctx, assignmentID)
		if err != nil {
			return notFoundOr(err, "assignment", map[string]any{"assignment_id": assignmentID})
		}
		if err := repos.Assignments.MarkRemoved(ctx, assignmentID, actor.ID, reason); err != nil {
			return notFoundOr(err, "assignment", map[string]any{"assignment_id": assignmentID})
		}
		return s.clearIssueAssignee(ctx, repos, assignment)
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishAssignmentRemoved(ctx, actor, assignment, reason)
	return nil
}

// RemoveAssignmentByAssignee removes the active assignment binding an
// assignee to an issue.
func (s *IssueService) RemoveAssignmentByAssignee(ctx context.Context, actor Actor, issueID, assigneeID string, reason *string) error {
	if !actor.CanHandle() {
		return apperrors.NewForbidden("handler role required")
	}

	var assignment *domain.IssueAssignment
	err := s.tx.InTx(ctx, func(repos repository.Set) error {
		if err := repos.Assignments.MarkRemovedByIssueAssignee(ctx, issueID, assigneeID, actor.ID, reason); err != nil {
			return notFoundOr(err, "assignment", map[string]any{
				"issue_id":    issueID,
				"assignee_id": assigneeID,
			})
		}
		var err error
		assignment, err = repos.Assignments.LatestByIssue(ctx, issueID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		removed := &domain.IssueAssignment{IssueID: issueID, AssigneeID: assigneeID}
		if assignment == nil {
			assignment = removed
		}
		return s.clearIssueAssignee(ctx, repos, removed)
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishAssignmentRemoved(ctx, actor, assignment, reason)
	return nil
}

// GetIssue returns the full projection: the coarse issue row plus the
// audit trail it summarizes.
func (s *IssueService) GetIssue(ctx context.Context, issueID string) (*IssueDetail, error) {
	issue, err := s.repos.Issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundOr(err, "issue", map[string]any{"issue_id": issueID})
	}
	return s.buildDetail(ctx, issue)
}

// GetIssueByTicketNumber looks up an issue by its public ticket number.
func (s *IssueService) GetIssueByTicketNumber(ctx context.Context, ticketNumber string) (*IssueDetail, error) {
	issue, err := s.repos.Issues.GetByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, notFoundOr(err, "issue", map[string]any{"ticket_number": ticketNumber})
	}
	return s.buildDetail(ctx, issue)
}

// ListIssuesByReporter returns issues reported by a user.
func (s *IssueService) ListIssuesByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Issue, error) {
	filter := repository.IssueFilter{
		ReporterID: &reporterID,
		Limit:      limit,
		Offset:     offset,
	}
	issues, err := s.repos.Issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// ListIssuesByNode returns issues currently routed to a hierarchy node.
func (s *IssueService) ListIssuesByNode(ctx context.Context, nodeID string, limit, offset int) ([]domain.Issue, error) {
	if _, err := s.hierarchy.GetNode(ctx, nodeID); err != nil {
		return nil, err
	}
	filter := repository.IssueFilter{
		NodeID: &nodeID,
		Limit:  limit,
		Offset: offset,
	}
	issues, err := s.repos.Issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// ListCategories returns the reference categories issues may be filed
// under.
func (s *IssueService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.references.ListCategories(ctx)
}

// ListPriorities returns the reference priorities ordered by rank.
func (s *IssueService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	return s.references.ListPriorities(ctx)
}

func (s *IssueService) buildDetail(ctx context.Context, issue *domain.Issue) (*IssueDetail, error) {
	detail := &IssueDetail{Issue: issue}
	var err error
	if detail.Assignments, err = s.repos.Assignments.ListByIssue(ctx, issue.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if detail.Escalations, err = s.repos.Escalations.ListByIssue(ctx, issue.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if detail.Resolutions, err = s.repos.Resolutions.ListByIssue(ctx, issue.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if detail.Rejects, err = s.repos.Rejects.ListByIssue(ctx, issue.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if detail.ReRaises, err = s.repos.ReRaises.ListByIssue(ctx, issue.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if detail.Attachments, err = s.repos.Attachments.ListByOwner(ctx, domain.AttachmentOwnerIssue, issue.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range detail.Resolutions {
		attachments, err := s.repos.Attachments.ListByOwner(ctx, domain.AttachmentOwnerResolution, detail.Resolutions[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		detail.Resolutions[i].Attachments = attachments
	}
	return detail, nil
}

func (s *IssueService) loadIssue(ctx context.Context, repos repository.Set, issueID string) (*domain.Issue, error) {
	issue, err := repos.Issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundOr(err, "issue", map[string]any{"issue_id": issueID})
	}
	return issue, nil
}

// requireNodeAuthority gates tier-bound operations: admins always pass,
// other handlers must be bound to the issue's current node when it has
// one.
func (s *IssueService) requireNodeAuthority(ctx context.Context, actor Actor, issue *domain.Issue) error {
	if actor.Role == domain.UserRoleAdmin {
		return nil
	}
	if !actor.CanHandle() {
		return apperrors.NewForbidden("handler role required")
	}
	if issue.NodeID == nil {
		return nil
	}
	member, err := s.hierarchy.IsMember(ctx, *issue.NodeID, actor.ID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.NewForbidden("no authority over the issue's tier")
	}
	return nil
}

func (s *IssueService) escalationTarget(ctx context.Context, fromNode *string, input EscalateInput) (*string, error) {
	if input.ToTop {
		return nil, nil
	}
	if input.ToNodeID != nil {
		node, err := s.hierarchy.GetNode(ctx, *input.ToNodeID)
		if err != nil {
			return nil, err
		}
		id := node.ID
		return &id, nil
	}
	if fromNode == nil {
		// nowhere further up: both from and to would be top
		return nil, apperrors.NewInvalidTransition(string(lifecycle.OpEscalate), "top tier")
	}
	return s.hierarchy.ResolveParentTier(ctx, *fromNode)
}

func (s *IssueService) clearIssueAssignee(ctx context.Context, repos repository.Set, assignment *domain.IssueAssignment) error {
	issue, err := repos.Issues.GetByID(ctx, assignment.IssueID)
	if err != nil {
		return err
	}
	if issue.AssigneeID == nil || *issue.AssigneeID != assignment.AssigneeID {
		return nil
	}
	latest, err := repos.Assignments.LatestByIssue(ctx, issue.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if latest != nil {
		issue.AssigneeID = &latest.AssigneeID
	} else {
		issue.AssigneeID = nil
	}
	return mapUpdateErr(repos.Issues.Update(ctx, issue))
}

func (s *IssueService) linkAttachments(ctx context.Context, repos repository.Set, owner domain.AttachmentOwner, ownerID string, attachmentIDs []string) error {
	if len(attachmentIDs) == 0 {
		return nil
	}
	found, err := repos.Attachments.GetByIDs(ctx, attachmentIDs)
	if err != nil {
		return err
	}
	if len(found) != len(attachmentIDs) {
		return apperrors.NewNotFound("attachment", map[string]any{"attachment_ids": attachmentIDs})
	}
	return repos.Attachments.Link(ctx, owner, ownerID, attachmentIDs)
}

func (s *IssueService) nextTicketNumber(ctx context.Context) string {
	if s.sequence != nil {
		if seq, err := s.sequence.NextTicketNumber(ctx); err == nil {
			return fmt.Sprintf("ISS-%06d", seq)
		}
	}
	// sequence unavailable; fall back to a random key
	return "ISS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *IssueService) publishAssignmentRemoved(ctx context.Context, actor Actor, assignment *domain.IssueAssignment, reason *string) {
	s.publishEvent(ctx, events.Event{
		Type:    events.EventAssignmentRemoved,
		IssueID: assignment.IssueID,
		ActorID: actor.ID,
		Payload: events.AssignmentRemovedPayload{
			AssignmentID: assignment.ID,
			AssigneeID:   assignment.AssigneeID,
			Reason:       reason,
		},
	})
}

func sameNode(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func mapUpdateErr(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.NewConflict("issue was modified concurrently", nil)
	}
	return err
}

func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return err
}
