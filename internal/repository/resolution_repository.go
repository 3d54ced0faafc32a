package repository

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ResolutionRepository stores the append-only resolution attempts.
type ResolutionRepository interface {
	Create(ctx context.Context, resolution *domain.IssueResolution) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueResolution, error)
}

type resolutionRepository struct {
	q Querier
}

// NewResolutionRepository constructs repository.
func NewResolutionRepository(q Querier) ResolutionRepository {
	return &resolutionRepository{q: q}
}

func (r *resolutionRepository) Create(ctx context.Context, resolution *domain.IssueResolution) error {
	const query = `
        INSERT INTO issue_resolutions (issue_id, notes, resolved_by_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		resolution.IssueID,
		resolution.Notes,
		resolution.ResolvedByID,
	).Scan(&resolution.ID, &resolution.CreatedAt)
}

func (r *resolutionRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueResolution, error) {
	const query = `
        SELECT id, issue_id, notes, resolved_by_id, created_at
        FROM issue_resolutions WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueResolution
	for rows.Next() {
		var resolution domain.IssueResolution
		if err := rows.Scan(
			&resolution.ID,
			&resolution.IssueID,
			&resolution.Notes,
			&resolution.ResolvedByID,
			&resolution.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resolution)
	}
	return result, rows.Err()
}
