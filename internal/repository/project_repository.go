package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ProjectRepository persists institutes and their projects.
type ProjectRepository interface {
	CreateInstitute(ctx context.Context, institute *domain.Institute) error
	GetInstitute(ctx context.Context, id string) (*domain.Institute, error)
	ListInstitutes(ctx context.Context) ([]domain.Institute, error)
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjectsByInstitute(ctx context.Context, instituteID string) ([]domain.Project, error)
}

type projectRepository struct {
	q Querier
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(q Querier) ProjectRepository {
	return &projectRepository{q: q}
}

func (r *projectRepository) CreateInstitute(ctx context.Context, institute *domain.Institute) error {
	const query = `
        INSERT INTO institutes (name, is_active)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query, institute.Name, institute.IsActive).
		Scan(&institute.ID, &institute.CreatedAt, &institute.UpdatedAt)
}

func (r *projectRepository) GetInstitute(ctx context.Context, id string) (*domain.Institute, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM institutes WHERE id=$1`
	var institute domain.Institute
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&institute.ID,
		&institute.Name,
		&institute.IsActive,
		&institute.CreatedAt,
		&institute.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &institute, nil
}

func (r *projectRepository) ListInstitutes(ctx context.Context) ([]domain.Institute, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM institutes ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Institute
	for rows.Next() {
		var institute domain.Institute
		if err := rows.Scan(
			&institute.ID,
			&institute.Name,
			&institute.IsActive,
			&institute.CreatedAt,
			&institute.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, institute)
	}
	return result, rows.Err()
}

func (r *projectRepository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (institute_id, name, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		project.InstituteID,
		project.Name,
		project.Description,
		project.IsActive,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, institute_id, name, description, is_active, created_at, updated_at
        FROM projects WHERE id=$1`
	var project domain.Project
	if err := scanProject(r.q.QueryRow(ctx, query, id), &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListProjectsByInstitute(ctx context.Context, instituteID string) ([]domain.Project, error) {
	const query = `
        SELECT id, institute_id, name, description, is_active, created_at, updated_at
        FROM projects WHERE institute_id=$1 ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query, instituteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := scanProject(rows, &project); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

func scanProject(row pgx.Row, project *domain.Project) error {
	return row.Scan(
		&project.ID,
		&project.InstituteID,
		&project.Name,
		&project.Description,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
}
