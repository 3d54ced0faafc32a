package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

// In-memory repository fakes. They mimic the postgres repositories
// closely enough for service-level tests: pgx.ErrNoRows for missing
// rows, copy-on-read issues and CAS semantics on Update.

type fakeIssueRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Issue
	updateErr error
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{byID: make(map[string]*domain.Issue)}
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue.ID = uuid.NewString()
	issue.Version = 1
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	stored := *issue
	r.byID[issue.ID] = &stored
	return nil
}

func (r *fakeIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	stored, ok := r.byID[issue.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != issue.Version {
		return repository.ErrVersionConflict
	}
	issue.Version++
	issue.UpdatedAt = time.Now()
	next := *issue
	r.byID[issue.ID] = &next
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeIssueRepo) GetByTicketNumber(_ context.Context, ticketNumber string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.byID {
		if stored.TicketNumber == ticketNumber {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeIssueRepo) ListWithFilter(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Issue
	for _, stored := range r.byID {
		if filter.ReporterID != nil && stored.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.NodeID != nil && (stored.NodeID == nil || *stored.NodeID != *filter.NodeID) {
			continue
		}
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type fakeAssignmentRepo struct {
	mu   sync.Mutex
	rows []*domain.IssueAssignment
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.IssueAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment.ID = uuid.NewString()
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	stored := *assignment
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *fakeAssignmentRepo) UpdateStatus(_ context.Context, id string, status domain.AssignmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			row.Status = status
			row.UpdatedAt = time.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*domain.IssueAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAssignmentRepo) LatestByIssue(_ context.Context, issueID string) (*domain.IssueAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.IssueID == issueID && row.RemovedAt == nil {
			copied := *row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAssignmentRepo) ListByIssue(_ context.Context, issueID string) ([]domain.IssueAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.IssueAssignment
	for _, row := range r.rows {
		if row.IssueID == issueID {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) MarkRemoved(_ context.Context, id, removedByID string, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id && row.RemovedAt == nil {
			now := time.Now()
			row.Status = domain.AssignmentStatusRemoved
			row.RemovedByID = &removedByID
			row.RemoveReason = reason
			row.RemovedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeAssignmentRepo) MarkRemovedByIssueAssignee(_ context.Context, issueID, assigneeID, removedByID string, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.IssueID == issueID && row.AssigneeID == assigneeID && row.RemovedAt == nil {
			now := time.Now()
			row.Status = domain.AssignmentStatusRemoved
			row.RemovedByID = &removedByID
			row.RemoveReason = reason
			row.RemovedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeEscalationRepo struct {
	mu   sync.Mutex
	rows []domain.IssueEscalation
}

func (r *fakeEscalationRepo) Create(_ context.Context, escalation *domain.IssueEscalation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	escalation.ID = uuid.NewString()
	escalation.CreatedAt = time.Now()
	r.rows = append(r.rows, *escalation)
	return nil
}

func (r *fakeEscalationRepo) ListByIssue(_ context.Context, issueID string) ([]domain.IssueEscalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.IssueEscalation
	for _, row := range r.rows {
		if row.IssueID == issueID {
			result = append(result, row)
		}
	}
	return result, nil
}

type fakeResolutionRepo struct {
	mu   sync.Mutex
	rows []domain.IssueResolution
}

func (r *fakeResolutionRepo) Create(_ context.Context, resolution *domain.IssueResolution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resolution.ID = uuid.NewString()
	resolution.CreatedAt = time.Now()
	r.rows = append(r.rows, *resolution)
	return nil
}

func (r *fakeResolutionRepo) ListByIssue(_ context.Context, issueID string) ([]domain.IssueResolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.IssueResolution
	for _, row := range r.rows {
		if row.IssueID == issueID {
			result = append(result, row)
		}
	}
	return result, nil
}

type fakeRejectRepo struct {
	mu   sync.Mutex
	rows []domain.IssueReject
}

func (r *fakeRejectRepo) Create(_ context.Context, reject *domain.IssueReject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reject.ID = uuid.NewString()
	reject.CreatedAt = time.Now()
	r.rows = append(r.rows, *reject)
	return nil
}

func (r *fakeRejectRepo) ListByIssue(_ context.Context, issueID string) ([]domain.IssueReject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.IssueReject
	for _, row := range r.rows {
		if row.IssueID == issueID {
			result = append(result, row)
		}
	}
	return result, nil
}

type fakeReRaiseRepo struct {
	mu   sync.Mutex
	rows []domain.IssueReRaise
}

func (r *fakeReRaiseRepo) Create(_ context.Context, reRaise *domain.IssueReRaise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reRaise.ID = uuid.NewString()
	reRaise.CreatedAt = time.Now()
	r.rows = append(r.rows, *reRaise)
	return nil
}

func (r *fakeReRaiseRepo) ListByIssue(_ context.Context, issueID string) ([]domain.IssueReRaise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.IssueReRaise
	for _, row := range r.rows {
		if row.IssueID == issueID {
			result = append(result, row)
		}
	}
	return result, nil
}

type attachmentLink struct {
	owner   domain.AttachmentOwner
	ownerID string
	id      string
}

type fakeAttachmentRepo struct {
	mu    sync.Mutex
	byID  map[string]domain.Attachment
	links []attachmentLink
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{byID: make(map[string]domain.Attachment)}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = uuid.NewString()
	attachment.CreatedAt = time.Now()
	r.byID[attachment.ID] = *attachment
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id string) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &attachment, nil
}

func (r *fakeAttachmentRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Attachment
	for _, id := range ids {
		if attachment, ok := r.byID[id]; ok {
			result = append(result, attachment)
		}
	}
	return result, nil
}

func (r *fakeAttachmentRepo) Link(_ context.Context, owner domain.AttachmentOwner, ownerID string, attachmentIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range attachmentIDs {
		r.links = append(r.links, attachmentLink{owner: owner, ownerID: ownerID, id: id})
	}
	return nil
}

func (r *fakeAttachmentRepo) ListByOwner(_ context.Context, owner domain.AttachmentOwner, ownerID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Attachment
	for _, link := range r.links {
		if link.owner == owner && link.ownerID == ownerID {
			result = append(result, r.byID[link.id])
		}
	}
	return result, nil
}

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []*domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	stored := *notification
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, _, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, row := range r.rows {
		if row.RecipientID == recipientID {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id && row.RecipientID == recipientID && row.ReadAt == nil {
			now := time.Now()
			row.ReadAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	r.byID[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	r.byID[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeProjectRepo struct {
	mu         sync.Mutex
	institutes map[string]domain.Institute
	projects   map[string]domain.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		institutes: make(map[string]domain.Institute),
		projects:   make(map[string]domain.Project),
	}
}

func (r *fakeProjectRepo) CreateInstitute(_ context.Context, institute *domain.Institute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	institute.ID = uuid.NewString()
	institute.CreatedAt = time.Now()
	r.institutes[institute.ID] = *institute
	return nil
}

func (r *fakeProjectRepo) GetInstitute(_ context.Context, id string) (*domain.Institute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	institute, ok := r.institutes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &institute, nil
}

func (r *fakeProjectRepo) ListInstitutes(_ context.Context) ([]domain.Institute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Institute
	for _, institute := range r.institutes {
		result = append(result, institute)
	}
	return result, nil
}

func (r *fakeProjectRepo) CreateProject(_ context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project.ID = uuid.NewString()
	project.CreatedAt = time.Now()
	r.projects[project.ID] = *project
	return nil
}

func (r *fakeProjectRepo) GetProject(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &project, nil
}

func (r *fakeProjectRepo) ListProjectsByInstitute(_ context.Context, instituteID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Project
	for _, project := range r.projects {
		if project.InstituteID == instituteID {
			result = append(result, project)
		}
	}
	return result, nil
}

type fakeReferenceRepo struct {
	categories map[string]domain.Category
	priorities map[string]domain.Priority
}

func newFakeReferenceRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		categories: make(map[string]domain.Category),
		priorities: make(map[string]domain.Priority),
	}
}

func (r *fakeReferenceRepo) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (r *fakeReferenceRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range r.categories {
		result = append(result, category)
	}
	return result, nil
}

func (r *fakeReferenceRepo) GetPriority(_ context.Context, id string) (*domain.Priority, error) {
	priority, ok := r.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &priority, nil
}

func (r *fakeReferenceRepo) ListPriorities(_ context.Context) ([]domain.Priority, error) {
	var result []domain.Priority
	for _, priority := range r.priorities {
		result = append(result, priority)
	}
	return result, nil
}

type fakeHierarchyRepo struct {
	mu      sync.Mutex
	nodes   map[string]domain.HierarchyNode
	members map[string]map[string]struct{}
}

func newFakeHierarchyRepo() *fakeHierarchyRepo {
	return &fakeHierarchyRepo{
		nodes:   make(map[string]domain.HierarchyNode),
		members: make(map[string]map[string]struct{}),
	}
}

func (r *fakeHierarchyRepo) CreateNode(_ context.Context, node *domain.HierarchyNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	node.ID = uuid.NewString()
	node.CreatedAt = time.Now()
	r.nodes[node.ID] = *node
	return nil
}

func (r *fakeHierarchyRepo) GetNode(_ context.Context, id string) (*domain.HierarchyNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &node, nil
}

func (r *fakeHierarchyRepo) ListNodesByProject(_ context.Context, projectID string) ([]domain.HierarchyNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.HierarchyNode
	for _, node := range r.nodes {
		if node.ProjectID == projectID {
			result = append(result, node)
		}
	}
	return result, nil
}

func (r *fakeHierarchyRepo) ListNodesByKind(_ context.Context, kind domain.NodeKind) ([]domain.HierarchyNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.HierarchyNode
	for _, node := range r.nodes {
		if node.Kind == kind {
			result = append(result, node)
		}
	}
	return result, nil
}

func (r *fakeHierarchyRepo) AddMember(_ context.Context, nodeID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[nodeID] == nil {
		r.members[nodeID] = make(map[string]struct{})
	}
	r.members[nodeID][userID] = struct{}{}
	return nil
}

func (r *fakeHierarchyRepo) ListMemberIDs(_ context.Context, nodeID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []string
	for userID := range r.members[nodeID] {
		result = append(result, userID)
	}
	sort.Strings(result)
	return result, nil
}

func (r *fakeHierarchyRepo) IsMember(_ context.Context, nodeID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[nodeID][userID]
	return ok, nil
}

// fakeTxRunner passes the same Set through. Tests do not verify
// rollback; they verify the service-level outcomes.
type fakeTxRunner struct {
	set repository.Set
}

func (r *fakeTxRunner) InTx(_ context.Context, fn func(repository.Set) error) error {
	return fn(r.set)
}

type fakeSequence struct {
	next int64
}

func (s *fakeSequence) NextTicketNumber(_ context.Context) (int64, error) {
	s.next++
	return s.next, nil
}
