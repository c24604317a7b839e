package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/anjerodev/dotenv/internal/config"
)

type PostgresDB struct {
	pool *pgxpool.Pool
	sqlx *sqlx.DB
}

func NewPostgresDB(cfg config.DatabaseConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{
		pool: pool,
		sqlx: sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
	}, nil
}

func (p *PostgresDB) Pool() *pgxpool.Pool {
	return p.pool
}

// SQLX exposes the same pool through database/sql for repositories that
// rely on struct scanning.
func (p *PostgresDB) SQLX() *sqlx.DB {
	return p.sqlx
}

func (p *PostgresDB) Close() {
	p.sqlx.Close()
	p.pool.Close()
}
