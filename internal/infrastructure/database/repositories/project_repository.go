package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) repositories.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *entities.Project) error {
	query := `INSERT INTO projects (id, name, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		project.ID, project.Name, project.Owner, project.CreatedAt, project.UpdatedAt,
	)
	return err
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*entities.Project, error) {
	query := `SELECT id, name, owner, created_at, updated_at FROM projects WHERE id = $1`

	var project entities.Project
	row := r.pool.QueryRow(ctx, query, id)

	err := row.Scan(&project.ID, &project.Name, &project.Owner, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *projectRepository) GetOwnedBy(ctx context.Context, userID string) ([]*entities.Project, error) {
	query := `SELECT id, name, owner, created_at, updated_at FROM projects
		WHERE owner = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (r *projectRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, name, owner, created_at, updated_at FROM projects
		WHERE id = ANY($1) ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (r *projectRepository) Rename(ctx context.Context, id, name string) error {
	query := `UPDATE projects SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, name, id)
	return err
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanProjects(rows pgx.Rows) ([]*entities.Project, error) {
	var projects []*entities.Project
	for rows.Next() {
		var p entities.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Owner, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}
