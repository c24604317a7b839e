package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
)

// historyRepository encrypts content with pgcrypto before it touches
// the table and decrypts on the way out. The key stays server-side, so
// this is the only path that ever sees plaintext content.
type historyRepository struct {
	pool       *pgxpool.Pool
	contentKey string
}

func NewHistoryRepository(pool *pgxpool.Pool, contentKey string) repositories.HistoryRepository {
	return &historyRepository{pool: pool, contentKey: contentKey}
}

func (r *historyRepository) Append(ctx context.Context, entry *entities.HistoryEntry) error {
	query := `INSERT INTO documents_history (id, document_id, content, updated_at, updated_by)
		VALUES ($1, $2, CASE WHEN $3 = '' THEN NULL ELSE pgp_sym_encrypt($3, $4) END, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.DocumentID, entry.Content, r.contentKey, entry.UpdatedAt, entry.UpdatedBy,
	)
	return err
}

func (r *historyRepository) Latest(ctx context.Context, documentID string) (*entities.HistoryEntry, error) {
	query := `SELECT id, document_id, COALESCE(pgp_sym_decrypt(content, $2), ''), updated_at, updated_by
		FROM documents_history
		WHERE document_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	var entry entities.HistoryEntry
	row := r.pool.QueryRow(ctx, query, documentID, r.contentKey)

	err := row.Scan(&entry.ID, &entry.DocumentID, &entry.Content, &entry.UpdatedAt, &entry.UpdatedBy)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *historyRepository) LatestUpdatedAt(ctx context.Context, documentID string) (time.Time, error) {
	query := `SELECT updated_at FROM documents_history
		WHERE document_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, query, documentID).Scan(&updatedAt)
	return updatedAt, err
}
