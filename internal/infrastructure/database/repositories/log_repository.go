package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anjerodev/dotenv/internal/domain/repositories"
)

type logRepository struct {
	pool *pgxpool.Pool
}

func NewLogRepository(pool *pgxpool.Pool) repositories.LogRepository {
	return &logRepository{pool: pool}
}

func (r *logRepository) Heartbeat(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO logs DEFAULT VALUES`)
	return err
}
