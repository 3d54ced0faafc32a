package repository

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ReRaiseRepository stores the append-only re-raise trail.
type ReRaiseRepository interface {
	Create(ctx context.Context, reRaise *domain.IssueReRaise) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueReRaise, error)
}

type reRaiseRepository struct {
	q Querier
}

// NewReRaiseRepository constructs repository.
func NewReRaiseRepository(q Querier) ReRaiseRepository {
	return &reRaiseRepository{q: q}
}

func (r *reRaiseRepository) Create(ctx context.Context, reRaise *domain.IssueReRaise) error {
	const query = `
        INSERT INTO issue_re_raises (issue_id, reason, raised_by_id, re_raised_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		reRaise.IssueID,
		reRaise.Reason,
		reRaise.RaisedByID,
		reRaise.ReRaisedAt,
	).Scan(&reRaise.ID, &reRaise.CreatedAt)
}

func (r *reRaiseRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueReRaise, error) {
	const query = `
        SELECT id, issue_id, reason, raised_by_id, re_raised_at, created_at
        FROM issue_re_raises WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueReRaise
	for rows.Next() {
		var reRaise domain.IssueReRaise
		if err := rows.Scan(
			&reRaise.ID,
			&reRaise.IssueID,
			&reRaise.Reason,
			&reRaise.RaisedByID,
			&reRaise.ReRaisedAt,
			&reRaise.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reRaise)
	}
	return result, rows.Err()
}
