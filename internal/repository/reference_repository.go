package repository

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ReferenceRepository reads seeded categories and priorities.
type ReferenceRepository interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetPriority(ctx context.Context, id string) (*domain.Priority, error)
	ListPriorities(ctx context.Context) ([]domain.Priority, error)
}

type referenceRepository struct {
	q Querier
}

// NewReferenceRepository instantiates repository.
func NewReferenceRepository(q Querier) ReferenceRepository {
	return &referenceRepository{q: q}
}

func (r *referenceRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	const query = `SELECT id, name, is_active, created_at FROM categories WHERE id=$1`
	var category domain.Category
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.IsActive,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *referenceRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name, is_active, created_at FROM categories ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsActive, &category.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func (r *referenceRepository) GetPriority(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `SELECT id, name, rank, is_active, created_at FROM priorities WHERE id=$1`
	var priority domain.Priority
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&priority.ID,
		&priority.Name,
		&priority.Rank,
		&priority.IsActive,
		&priority.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *referenceRepository) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	const query = `SELECT id, name, rank, is_active, created_at FROM priorities ORDER BY rank ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(&priority.ID, &priority.Name, &priority.Rank, &priority.IsActive, &priority.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}
