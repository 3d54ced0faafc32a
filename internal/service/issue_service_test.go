package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/lifecycle"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

type fixture struct {
	issues      *fakeIssueRepo
	assignments *fakeAssignmentRepo
	escalations *fakeEscalationRepo
	resolutions *fakeResolutionRepo
	rejects     *fakeRejectRepo
	reRaises    *fakeReRaiseRepo
	attachments *fakeAttachmentRepo
	users       *fakeUserRepo
	hierarchy   *fakeHierarchyRepo

	service          *IssueService
	hierarchyService *HierarchyService

	reporter Actor
	handler  Actor
	admin    Actor

	project    domain.Project
	category   domain.Category
	priority   domain.Priority
	topNode    domain.HierarchyNode
	childNode  domain.HierarchyNode
	committee domain.HierarchyNode

	eventTypes     func() []events.EventType
	recordedEvents func() []events.Event
}

func newFixture(t *testing.T, reopenTo lifecycle.ReopenPolicy) *fixture {
	t.Helper()

	f := &fixture{
		issues:      newFakeIssueRepo(),
		assignments: &fakeAssignmentRepo{},
		escalations: &fakeEscalationRepo{},
		resolutions: &fakeResolutionRepo{},
		rejects:     &fakeRejectRepo{},
		reRaises:    &fakeReRaiseRepo{},
		attachments: newFakeAttachmentRepo(),
		users:       newFakeUserRepo(),
		hierarchy:   newFakeHierarchyRepo(),
	}

	set := repository.Set{
		Issues:        f.issues,
		Assignments:   f.assignments,
		Escalations:   f.escalations,
		Resolutions:   f.resolutions,
		Rejects:       f.rejects,
		ReRaises:      f.reRaises,
		Attachments:   f.attachments,
		Notifications: &fakeNotificationRepo{},
	}

	projects := newFakeProjectRepo()
	references := newFakeReferenceRepo()

	ctx := context.Background()

	institute := &domain.Institute{Name: "Test Institute", IsActive: true}
	require.NoError(t, projects.CreateInstitute(ctx, institute))
	project := &domain.Project{InstituteID: institute.ID, Name: "Test Project", IsActive: true}
	require.NoError(t, projects.CreateProject(ctx, project))
	f.project = *project

	category := domain.Category{ID: "cat-1", Name: "Technical", IsActive: true}
	references.categories[category.ID] = category
	f.category = category
	priority := domain.Priority{ID: "pri-1", Name: "High", Rank: 3, IsActive: true}
	references.priorities[priority.ID] = priority
	f.priority = priority

	top := &domain.HierarchyNode{ProjectID: project.ID, Kind: domain.NodeKindProject, Name: "Top", Level: 0, IsActive: true}
	require.NoError(t, f.hierarchy.CreateNode(ctx, top))
	child := &domain.HierarchyNode{ProjectID: project.ID, ParentID: &top.ID, Kind: domain.NodeKindProject, Name: "Child", Level: 1, IsActive: true}
	require.NoError(t, f.hierarchy.CreateNode(ctx, child))
	committee := &domain.HierarchyNode{ProjectID: project.ID, Kind: domain.NodeKindInternal, Name: "Committee", Level: 0, IsActive: true}
	require.NoError(t, f.hierarchy.CreateNode(ctx, committee))
	f.topNode = *top
	f.childNode = *child
	f.committee = *committee

	reporter := f.users.add(domain.User{Name: "Rita", Email: "rita@example.com", Role: domain.UserRoleReporter})
	handler := f.users.add(domain.User{Name: "Hank", Email: "hank@example.com", Role: domain.UserRoleHandler})
	admin := f.users.add(domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.UserRoleAdmin})
	f.reporter = Actor{ID: reporter.ID, Role: reporter.Role}
	f.handler = Actor{ID: handler.ID, Role: handler.Role}
	f.admin = Actor{ID: admin.ID, Role: admin.Role}

	require.NoError(t, f.hierarchy.AddMember(ctx, child.ID, handler.ID))
	require.NoError(t, f.hierarchy.AddMember(ctx, top.ID, handler.ID))

	dispatcher := events.NewInMemoryDispatcher()
	var mu sync.Mutex
	var recorded []events.Event
	record := func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, event)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventIssueCreated, events.EventIssueAccepted, events.EventIssueAssigned,
		events.EventIssueEscalated, events.EventIssueResolved, events.EventIssueConfirmed,
		events.EventIssueReRaised, events.EventIssueRejected, events.EventAssignmentRemoved,
	} {
		dispatcher.Subscribe(eventType, record)
	}
	f.eventTypes = func() []events.EventType {
		mu.Lock()
		defer mu.Unlock()
		types := make([]events.EventType, 0, len(recorded))
		for _, event := range recorded {
			types = append(types, event.Type)
		}
		return types
	}
	f.recordedEvents = func() []events.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]events.Event{}, recorded...)
	}

	f.hierarchyService = NewHierarchyService(projects, f.hierarchy, f.users)
	f.service = NewIssueService(IssueDependencies{
		Repos:         set,
		Tx:            &fakeTxRunner{set: set},
		UserRepo:      f.users,
		ProjectRepo:   projects,
		ReferenceRepo: references,
		Hierarchy:     f.hierarchyService,
		Dispatcher:    dispatcher,
		Sequence:      &fakeSequence{},
		Machine:       lifecycle.NewMachine(reopenTo),
	})
	return f
}

func (f *fixture) createIssue(t *testing.T, nodeID *string) *domain.Issue {
	t.Helper()
	issue, err := f.service.CreateIssue(context.Background(), f.reporter, IssueCreateInput{
		ProjectID:   f.project.ID,
		CategoryID:  f.category.ID,
		PriorityID:  f.priority.ID,
		NodeID:      nodeID,
		Title:       "Broken gateway",
		Description: "Requests time out after 30s",
	})
	require.NoError(t, err)
	return issue
}

func TestCreateIssue(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)

	issue := f.createIssue(t, &f.childNode.ID)
	assert.Equal(t, domain.IssueStatusPending, issue.Status)
	assert.Equal(t, "ISS-000001", issue.TicketNumber)
	assert.Equal(t, f.reporter.ID, issue.ReporterID)
	assert.Nil(t, issue.AssigneeID)
	assert.Equal(t, []events.EventType{events.EventIssueCreated}, f.eventTypes())
}

func TestCreateIssueValidations(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	_, err := f.service.CreateIssue(ctx, f.reporter, IssueCreateInput{
		ProjectID:  f.project.ID,
		CategoryID: f.category.ID,
		PriorityID: f.priority.ID,
		Title:      "x", Description: "y",
		OccurredAt: &future,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.CreateIssue(ctx, f.reporter, IssueCreateInput{
		ProjectID:  f.project.ID,
		CategoryID: "missing",
		PriorityID: f.priority.ID,
		Title:      "x", Description: "y",
	})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = f.service.CreateIssue(ctx, f.reporter, IssueCreateInput{
		ProjectID:  "missing",
		CategoryID: f.category.ID,
		PriorityID: f.priority.ID,
		Title:      "x", Description: "y",
	})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)

	issue, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusAccepted, issue.Status)
	require.NotNil(t, issue.AssigneeID)
	assert.Equal(t, f.handler.ID, *issue.AssigneeID)

	// no explicit target: one tier up
	issue, escalation, err := f.service.Escalate(ctx, f.handler, EscalateInput{
		IssueID: issue.ID,
		Reason:  "needs wider authority",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusEscalated, issue.Status)
	require.NotNil(t, issue.NodeID)
	assert.Equal(t, f.topNode.ID, *issue.NodeID)
	require.NotNil(t, escalation.FromNodeID)
	assert.Equal(t, f.childNode.ID, *escalation.FromNodeID)

	issue, resolution, err := f.service.Resolve(ctx, f.handler, ResolveInput{
		IssueID: issue.ID,
		Notes:   "replaced the faulty unit",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, issue.Status)
	require.NotNil(t, issue.ResolvedAt)
	assert.Equal(t, f.handler.ID, resolution.ResolvedByID)

	issue, err = f.service.Confirm(ctx, f.reporter, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusClosed, issue.Status)
	require.NotNil(t, issue.ClosedAt)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Escalations, 1)
	assert.Len(t, detail.Resolutions, 1)
	require.Len(t, detail.Assignments, 1)
	assert.Equal(t, domain.AssignmentStatusCompleted, detail.Assignments[0].Status)

	assert.Equal(t, []events.EventType{
		events.EventIssueCreated,
		events.EventIssueAccepted,
		events.EventIssueEscalated,
		events.EventIssueResolved,
		events.EventIssueConfirmed,
	}, f.eventTypes())
}

func TestAcceptRequiresTierAuthority(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	outsider := f.users.add(domain.User{Name: "Olga", Email: "olga@example.com", Role: domain.UserRoleHandler})
	issue := f.createIssue(t, &f.childNode.ID)

	_, err := f.service.Accept(ctx, Actor{ID: outsider.ID, Role: outsider.Role}, issue.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.service.Accept(ctx, f.reporter, issue.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	// admins bypass tier membership
	_, err = f.service.Accept(ctx, f.admin, issue.ID)
	assert.NoError(t, err)
}

func TestEscalateGuards(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)

	_, _, err := f.service.Escalate(ctx, f.handler, EscalateInput{IssueID: issue.ID})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	// explicit target equal to the current node is a non-move
	_, _, err = f.service.Escalate(ctx, f.handler, EscalateInput{
		IssueID:  issue.ID,
		ToNodeID: &f.childNode.ID,
		Reason:   "same tier",
	})
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	// climb to top, then nowhere further up
	_, _, err = f.service.Escalate(ctx, f.handler, EscalateInput{
		IssueID: issue.ID,
		ToTop:   true,
		Reason:  "straight to top",
	})
	require.NoError(t, err)

	_, _, err = f.service.Escalate(ctx, f.handler, EscalateInput{
		IssueID: issue.ID,
		Reason:  "one more hop",
	})
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestMultiHopEscalationTrail(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)

	_, _, err := f.service.Escalate(ctx, f.handler, EscalateInput{IssueID: issue.ID, Reason: "hop 1"})
	require.NoError(t, err)
	_, _, err = f.service.Escalate(ctx, f.handler, EscalateInput{IssueID: issue.ID, ToTop: true, Reason: "hop 2"})
	require.NoError(t, err)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, detail.Escalations, 2)
	assert.Nil(t, detail.Escalations[1].ToNodeID)
	assert.Equal(t, domain.IssueStatusEscalated, detail.Issue.Status)
}

func TestAssignCommittee(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)

	_, err := f.service.AssignCommittee(ctx, f.admin, issue.ID, f.childNode.ID, "not internal")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	issue, err = f.service.AssignCommittee(ctx, f.admin, issue.ID, f.committee.ID, "cross-team review")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusAssignedCommittee, issue.Status)
	require.NotNil(t, issue.NodeID)
	assert.Equal(t, f.committee.ID, *issue.NodeID)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, detail.Escalations, 1)
	assert.Equal(t, f.committee.ID, *detail.Escalations[0].ToNodeID)
}

func TestConfirmOnlyReporter(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	_, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)
	_, _, err = f.service.Resolve(ctx, f.handler, ResolveInput{IssueID: issue.ID, Notes: "done"})
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, f.handler, issue.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.service.Confirm(ctx, f.reporter, issue.ID)
	assert.NoError(t, err)
}

func TestConfirmRequiresResolved(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)

	issue := f.createIssue(t, nil)
	_, err := f.service.Confirm(context.Background(), f.reporter, issue.ID)
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestReRaise(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	_, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)
	_, _, err = f.service.Resolve(ctx, f.handler, ResolveInput{IssueID: issue.ID, Notes: "fixed"})
	require.NoError(t, err)

	_, _, err = f.service.ReRaise(ctx, f.reporter, ReRaiseInput{
		IssueID:    issue.ID,
		Reason:     "still failing",
		ReRaisedAt: time.Now().Add(time.Hour),
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, _, err = f.service.ReRaise(ctx, f.handler, ReRaiseInput{
		IssueID:    issue.ID,
		Reason:     "still failing",
		ReRaisedAt: time.Now(),
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	issue, reRaise, err := f.service.ReRaise(ctx, f.reporter, ReRaiseInput{
		IssueID:    issue.ID,
		Reason:     "still failing",
		ReRaisedAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusPending, issue.Status)
	assert.Nil(t, issue.AssigneeID)
	assert.Nil(t, issue.ResolvedAt)
	assert.Equal(t, f.reporter.ID, reRaise.RaisedByID)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Len(t, detail.ReRaises, 1)
	// the earlier resolution record survives the reopen
	assert.Len(t, detail.Resolutions, 1)
}

func TestRejectKeepsStatus(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	issue, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)

	reject, err := f.service.Reject(ctx, f.handler, RejectInput{
		IssueID: issue.ID,
		Reason:  "out of my scope",
	})
	require.NoError(t, err)
	assert.Equal(t, f.handler.ID, reject.RejectedByID)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusAccepted, detail.Issue.Status)
	require.Len(t, detail.Rejects, 1)
	// rejecting one's own assignment flips its sub-status
	require.Len(t, detail.Assignments, 1)
	assert.Equal(t, domain.AssignmentStatusRejected, detail.Assignments[0].Status)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)

	issue := f.createIssue(t, nil)
	_, err := f.service.Reject(context.Background(), f.handler, RejectInput{IssueID: issue.ID})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestRejectClosedIssue(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	_, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)
	_, _, err = f.service.Resolve(ctx, f.handler, ResolveInput{IssueID: issue.ID, Notes: "done"})
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, f.reporter, issue.ID)
	require.NoError(t, err)

	_, err = f.service.Reject(ctx, f.handler, RejectInput{IssueID: issue.ID, Reason: "too late"})
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestRejectResolutionByReporter(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	issue, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)
	_, _, err = f.service.Resolve(ctx, f.handler, ResolveInput{IssueID: issue.ID, Notes: "restarted the gateway"})
	require.NoError(t, err)

	reject, err := f.service.Reject(ctx, f.reporter, RejectInput{
		IssueID: issue.ID,
		Reason:  "still timing out",
	})
	require.NoError(t, err)
	assert.Equal(t, f.reporter.ID, reject.RejectedByID)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, detail.Issue.Status)
	require.Len(t, detail.Rejects, 1)
	// the handler's assignment is untouched when the reporter rejects
	require.Len(t, detail.Assignments, 1)
	assert.Equal(t, domain.AssignmentStatusAccepted, detail.Assignments[0].Status)
}

func TestResolveEventCarriesTransition(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	_, err := f.service.Accept(ctx, f.handler, issue.ID)
	require.NoError(t, err)
	_, _, err = f.service.Resolve(ctx, f.handler, ResolveInput{IssueID: issue.ID, Notes: "patched"})
	require.NoError(t, err)

	recorded := f.recordedEvents()
	require.NotEmpty(t, recorded)
	resolved := recorded[len(recorded)-1]
	require.Equal(t, events.EventIssueResolved, resolved.Type)
	payload, ok := resolved.Payload.(events.StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.IssueStatusAccepted, payload.OldStatus)
	assert.Equal(t, domain.IssueStatusResolved, payload.NewStatus)
	assert.Equal(t, "patched", payload.Reason)
}

func TestAssignAndRemove(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	other := f.users.add(domain.User{Name: "Hana", Email: "hana@example.com", Role: domain.UserRoleHandler})
	require.NoError(t, f.hierarchy.AddMember(ctx, f.childNode.ID, other.ID))

	issue := f.createIssue(t, &f.childNode.ID)
	assignment, err := f.service.Assign(ctx, f.handler, issue.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusPending, assignment.Status)

	stored, err := f.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, other.ID, *stored.AssigneeID)

	require.NoError(t, f.service.RemoveAssignment(ctx, f.admin, assignment.ID, nil))
	stored, err = f.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssigneeID)

	removed, err := f.assignments.GetByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusRemoved, removed.Status)
	assert.NotNil(t, removed.RemovedAt)
}

func TestAssignRejectsNonHandler(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)

	issue := f.createIssue(t, nil)
	_, err := f.service.Assign(context.Background(), f.admin, issue.ID, f.reporter.ID)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestConcurrentUpdateConflict(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, &f.childNode.ID)
	f.issues.updateErr = repository.ErrVersionConflict

	_, err := f.service.Accept(ctx, f.handler, issue.ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestGetIssueByTicketNumber(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	issue := f.createIssue(t, nil)
	detail, err := f.service.GetIssueByTicketNumber(ctx, issue.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, issue.ID, detail.Issue.ID)

	_, err = f.service.GetIssueByTicketNumber(ctx, "ISS-999999")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestListIssues(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	f.createIssue(t, &f.childNode.ID)
	f.createIssue(t, &f.childNode.ID)
	f.createIssue(t, nil)

	mine, err := f.service.ListIssuesByReporter(ctx, f.reporter.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	atNode, err := f.service.ListIssuesByNode(ctx, f.childNode.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, atNode, 2)
}

func TestCreateIssueLinksAttachments(t *testing.T) {
	f := newFixture(t, lifecycle.ReopenToPending)
	ctx := context.Background()

	attachment := &domain.Attachment{FileName: "log.txt", StorageKey: "k1", UploadedByID: f.reporter.ID}
	require.NoError(t, f.attachments.Create(ctx, attachment))

	issue, err := f.service.CreateIssue(ctx, f.reporter, IssueCreateInput{
		ProjectID:     f.project.ID,
		CategoryID:    f.category.ID,
		PriorityID:    f.priority.ID,
		Title:         "with file",
		Description:   "see log",
		AttachmentIDs: []string{attachment.ID},
	})
	require.NoError(t, err)

	detail, err := f.service.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, detail.Attachments, 1)
	assert.Equal(t, "log.txt", detail.Attachments[0].FileName)

	_, err = f.service.CreateIssue(ctx, f.reporter, IssueCreateInput{
		ProjectID:     f.project.ID,
		CategoryID:    f.category.ID,
		PriorityID:    f.priority.ID,
		Title:         "missing file",
		Description:   "no such id",
		AttachmentIDs: []string{"missing"},
	})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
