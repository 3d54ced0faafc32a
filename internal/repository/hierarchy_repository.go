package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// HierarchyRepository persists escalation-tree nodes and memberships.
type HierarchyRepository interface {
	CreateNode(ctx context.Context, node *domain.HierarchyNode) error
	GetNode(ctx context.Context, id string) (*domain.HierarchyNode, error)
	ListNodesByProject(ctx context.Context, projectID string) ([]domain.HierarchyNode, error)
	ListNodesByKind(ctx context.Context, kind domain.NodeKind) ([]domain.HierarchyNode, error)
	AddMember(ctx context.Context, nodeID, userID string) error
	ListMemberIDs(ctx context.Context, nodeID string) ([]string, error)
	IsMember(ctx context.Context, nodeID, userID string) (bool, error)
}

type hierarchyRepository struct {
	q Querier
}

// NewHierarchyRepository instantiates repository.
func NewHierarchyRepository(q Querier) HierarchyRepository {
	return &hierarchyRepository{q: q}
}

const nodeColumns = `id, project_id, parent_id, kind, name, level, is_active, created_at, updated_at`

func (r *hierarchyRepository) CreateNode(ctx context.Context, node *domain.HierarchyNode) error {
	const query = `
        INSERT INTO hierarchy_nodes (project_id, parent_id, kind, name, level, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		node.ProjectID,
		node.ParentID,
		node.Kind,
		node.Name,
		node.Level,
		node.IsActive,
	).Scan(&node.ID, &node.CreatedAt, &node.UpdatedAt)
}

func (r *hierarchyRepository) GetNode(ctx context.Context, id string) (*domain.HierarchyNode, error) {
	const query = `SELECT ` + nodeColumns + ` FROM hierarchy_nodes WHERE id=$1`
	var node domain.HierarchyNode
	if err := scanNode(r.q.QueryRow(ctx, query, id), &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *hierarchyRepository) ListNodesByProject(ctx context.Context, projectID string) ([]domain.HierarchyNode, error) {
	const query = `
        SELECT ` + nodeColumns + `
        FROM hierarchy_nodes WHERE project_id=$1 ORDER BY level ASC, name ASC`
	rows, err := r.q.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNodes(rows)
}

func (r *hierarchyRepository) ListNodesByKind(ctx context.Context, kind domain.NodeKind) ([]domain.HierarchyNode, error) {
	const query = `
        SELECT ` + nodeColumns + `
        FROM hierarchy_nodes WHERE kind=$1 ORDER BY level ASC, name ASC`
	rows, err := r.q.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNodes(rows)
}

func (r *hierarchyRepository) AddMember(ctx context.Context, nodeID, userID string) error {
	const query = `
        INSERT INTO node_members (node_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (node_id, user_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, nodeID, userID)
	return err
}

func (r *hierarchyRepository) ListMemberIDs(ctx context.Context, nodeID string) ([]string, error) {
	const query = `SELECT user_id FROM node_members WHERE node_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		result = append(result, userID)
	}
	return result, rows.Err()
}

func (r *hierarchyRepository) IsMember(ctx context.Context, nodeID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM node_members WHERE node_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, nodeID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func collectNodes(rows pgx.Rows) ([]domain.HierarchyNode, error) {
	var result []domain.HierarchyNode
	for rows.Next() {
		var node domain.HierarchyNode
		if err := scanNode(rows, &node); err != nil {
			return nil, err
		}
		result = append(result, node)
	}
	return result, rows.Err()
}

func scanNode(row pgx.Row, node *domain.HierarchyNode) error {
	return row.Scan(
		&node.ID,
		&node.ProjectID,
		&node.ParentID,
		&node.Kind,
		&node.Name,
		&node.Level,
		&node.IsActive,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
}
