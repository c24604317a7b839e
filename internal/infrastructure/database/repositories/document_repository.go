package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
)

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) repositories.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *entities.Document) error {
	query := `INSERT INTO documents (id, name, project_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, doc.ID, doc.Name, doc.ProjectID, doc.CreatedAt)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	query := `SELECT id, name, project_id, created_at FROM documents WHERE id = $1`

	var doc entities.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) GetForMember(ctx context.Context, projectID, userID string) ([]*entities.Document, error) {
	query := `SELECT d.id, d.name, d.project_id, d.created_at
		FROM documents d
		JOIN documents_members dm ON dm.document_id = d.id
		WHERE d.project_id = $1 AND dm.user_id = $2
		ORDER BY d.created_at ASC`

	var docs []*entities.Document
	if err := r.db.SelectContext(ctx, &docs, query, projectID, userID); err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *documentRepository) Summaries(ctx context.Context, projectID string) ([]entities.DocumentSummary, error) {
	query := `SELECT id, name FROM documents WHERE project_id = $1 ORDER BY created_at ASC`

	var summaries []entities.DocumentSummary
	if err := r.db.SelectContext(ctx, &summaries, query, projectID); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *documentRepository) NameExists(ctx context.Context, projectID, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM documents WHERE project_id = $1 AND name = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, projectID, name)
	return exists, err
}

func (r *documentRepository) Rename(ctx context.Context, id, name string) error {
	query := `UPDATE documents SET name = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, name, id)
	return err
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *documentRepository) DeleteByIDs(ctx context.Context, projectID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM documents WHERE project_id = ? AND id IN (?)`, projectID, ids)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}

func (r *documentRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE project_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, projectID)
	return count, err
}
