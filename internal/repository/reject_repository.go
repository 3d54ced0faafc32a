package repository

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// RejectRepository stores the append-only reject trail.
type RejectRepository interface {
	Create(ctx context.Context, reject *domain.IssueReject) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueReject, error)
}

type rejectRepository struct {
	q Querier
}

// NewRejectRepository constructs repository.
func NewRejectRepository(q Querier) RejectRepository {
	return &rejectRepository{q: q}
}

func (r *rejectRepository) Create(ctx context.Context, reject *domain.IssueReject) error {
	const query = `
        INSERT INTO issue_rejects (issue_id, reason, rejected_by_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		reject.IssueID,
		reject.Reason,
		reject.RejectedByID,
	).Scan(&reject.ID, &reject.CreatedAt)
}

func (r *rejectRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueReject, error) {
	const query = `
        SELECT id, issue_id, reason, rejected_by_id, created_at
        FROM issue_rejects WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueReject
	for rows.Next() {
		var reject domain.IssueReject
		if err := rows.Scan(
			&reject.ID,
			&reject.IssueID,
			&reject.Reason,
			&reject.RejectedByID,
			&reject.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reject)
	}
	return result, rows.Err()
}
