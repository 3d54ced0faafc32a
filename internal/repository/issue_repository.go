package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueFilter captures issue search parameters.
type IssueFilter struct {
	ReporterID *string
	AssigneeID *string
	ProjectID  *string
	NodeID     *string
	Statuses   []domain.IssueStatus
	PriorityID *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	// Update compares-and-swaps on the version column and returns
	// ErrVersionConflict when the row moved underneath the caller.
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Issue, error)
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
}

type issueRepository struct {
	q Querier
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(q Querier) IssueRepository {
	return &issueRepository{q: q}
}

const issueColumns = `id, ticket_number, project_id, category_id, priority_id, reporter_id,
               assignee_id, node_id, title, description, status, version,
               occurred_at, created_at, updated_at, resolved_at, closed_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (ticket_number, project_id, category_id, priority_id, reporter_id,
            assignee_id, node_id, title, description, status, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, version, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		issue.TicketNumber,
		issue.ProjectID,
		issue.CategoryID,
		issue.PriorityID,
		issue.ReporterID,
		issue.AssigneeID,
		issue.NodeID,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.OccurredAt,
	).Scan(&issue.ID, &issue.Version, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET assignee_id=$1, node_id=$2, title=$3, description=$4,
            status=$5, resolved_at=$6, closed_at=$7, version=version+1, updated_at=NOW()
        WHERE id=$8 AND version=$9`
	cmd, err := r.q.Exec(ctx, query,
		issue.AssigneeID,
		issue.NodeID,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.ResolvedAt,
		issue.ClosedAt,
		issue.ID,
		issue.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// either the row is gone or someone else won the race
		if _, err := r.GetByID(ctx, issue.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	issue.Version++
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id=$1`, issueColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE ticket_number=$1`, issueColumns)
	return r.fetchSingle(ctx, query, ticketNumber)
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Issue, error) {
	var issue domain.Issue
	if err := scanIssue(r.q.QueryRow(ctx, query, arg), &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	base := fmt.Sprintf(`SELECT %s FROM issues`, issueColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if filter.NodeID != nil {
		args = append(args, *filter.NodeID)
		clauses = append(clauses, fmt.Sprintf("node_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("priority_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := scanIssue(rows, &issue); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func scanIssue(row pgx.Row, issue *domain.Issue) error {
	return row.Scan(
		&issue.ID,
		&issue.TicketNumber,
		&issue.ProjectID,
		&issue.CategoryID,
		&issue.PriorityID,
		&issue.ReporterID,
		&issue.AssigneeID,
		&issue.NodeID,
		&issue.Title,
		&issue.Description,
		&issue.Status,
		&issue.Version,
		&issue.OccurredAt,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
		&issue.ClosedAt,
	)
}
