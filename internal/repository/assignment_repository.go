package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// AssignmentRepository persists issue assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.IssueAssignment) error
	UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus) error
	GetByID(ctx context.Context, id string) (*domain.IssueAssignment, error)
	// LatestByIssue returns the current assignment: the most recent
	// row that has not been removed.
	LatestByIssue(ctx context.Context, issueID string) (*domain.IssueAssignment, error)
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueAssignment, error)
	MarkRemoved(ctx context.Context, id, removedByID string, reason *string) error
	MarkRemovedByIssueAssignee(ctx context.Context, issueID, assigneeID, removedByID string, reason *string) error
}

type assignmentRepository struct {
	q Querier
}

// NewAssignmentRepository constructs repository.
func NewAssignmentRepository(q Querier) AssignmentRepository {
	return &assignmentRepository{q: q}
}

const assignmentColumns = `id, issue_id, assignee_id, assigned_by_id, status,
               removed_by_id, remove_reason, created_at, updated_at, removed_at`

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.IssueAssignment) error {
	const query = `
        INSERT INTO issue_assignments (issue_id, assignee_id, assigned_by_id, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		assignment.IssueID,
		assignment.AssigneeID,
		assignment.AssignedByID,
		assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus) error {
	const query = `UPDATE issue_assignments SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.IssueAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM issue_assignments WHERE id=$1`
	var assignment domain.IssueAssignment
	if err := scanAssignment(r.q.QueryRow(ctx, query, id), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) LatestByIssue(ctx context.Context, issueID string) (*domain.IssueAssignment, error) {
	const query = `
        SELECT ` + assignmentColumns + `
        FROM issue_assignments
        WHERE issue_id=$1 AND removed_at IS NULL
        ORDER BY created_at DESC LIMIT 1`
	var assignment domain.IssueAssignment
	if err := scanAssignment(r.q.QueryRow(ctx, query, issueID), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueAssignment, error) {
	const query = `
        SELECT ` + assignmentColumns + `
        FROM issue_assignments WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueAssignment
	for rows.Next() {
		var assignment domain.IssueAssignment
		if err := scanAssignment(rows, &assignment); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) MarkRemoved(ctx context.Context, id, removedByID string, reason *string) error {
	const query = `
        UPDATE issue_assignments
        SET status=$1, removed_by_id=$2, remove_reason=$3, removed_at=NOW(), updated_at=NOW()
        WHERE id=$4 AND removed_at IS NULL`
	cmd, err := r.q.Exec(ctx, query, domain.AssignmentStatusRemoved, removedByID, reason, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) MarkRemovedByIssueAssignee(ctx context.Context, issueID, assigneeID, removedByID string, reason *string) error {
	const query = `
        UPDATE issue_assignments
        SET status=$1, removed_by_id=$2, remove_reason=$3, removed_at=NOW(), updated_at=NOW()
        WHERE issue_id=$4 AND assignee_id=$5 AND removed_at IS NULL`
	cmd, err := r.q.Exec(ctx, query, domain.AssignmentStatusRemoved, removedByID, reason, issueID, assigneeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAssignment(row pgx.Row, assignment *domain.IssueAssignment) error {
	return row.Scan(
		&assignment.ID,
		&assignment.IssueID,
		&assignment.AssigneeID,
		&assignment.AssignedByID,
		&assignment.Status,
		&assignment.RemovedByID,
		&assignment.RemoveReason,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
		&assignment.RemovedAt,
	)
}
