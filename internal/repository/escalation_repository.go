package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EscalationRepository stores the append-only escalation trail.
type EscalationRepository interface {
	Create(ctx context.Context, escalation *domain.IssueEscalation) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueEscalation, error)
}

type escalationRepository struct {
	q Querier
}

// NewEscalationRepository constructs repository.
func NewEscalationRepository(q Querier) EscalationRepository {
	return &escalationRepository{q: q}
}

func (r *escalationRepository) Create(ctx context.Context, escalation *domain.IssueEscalation) error {
	const query = `
        INSERT INTO issue_escalations (issue_id, from_node_id, to_node_id, reason, escalated_by_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		escalation.IssueID,
		escalation.FromNodeID,
		escalation.ToNodeID,
		escalation.Reason,
		escalation.EscalatedByID,
	).Scan(&escalation.ID, &escalation.CreatedAt)
}

func (r *escalationRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueEscalation, error) {
	const query = `
        SELECT id, issue_id, from_node_id, to_node_id, reason, escalated_by_id, created_at
        FROM issue_escalations WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueEscalation
	for rows.Next() {
		var escalation domain.IssueEscalation
		if err := scanEscalation(rows, &escalation); err != nil {
			return nil, err
		}
		result = append(result, escalation)
	}
	return result, rows.Err()
}

func scanEscalation(row pgx.Row, escalation *domain.IssueEscalation) error {
	return row.Scan(
		&escalation.ID,
		&escalation.IssueID,
		&escalation.FromNodeID,
		&escalation.ToNodeID,
		&escalation.Reason,
		&escalation.EscalatedByID,
		&escalation.CreatedAt,
	)
}
