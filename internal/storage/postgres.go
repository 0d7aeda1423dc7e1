package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresBackend keeps each collection as one JSONB row of the collections
// table. Each save is a single upsert statement.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to dsn, applies the embedded migrations and
// returns a backend owning the pool.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	if err := Migrate(dsn); err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresBackend{pool: pool}, nil
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations to dsn.
func Migrate(dsn string) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context, name string) ([]byte, error) {
	var data string
	err := b.pool.QueryRow(ctx,
		`SELECT data::text FROM collections WHERE name = $1`,
		name,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (b *PostgresBackend) Save(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO collections (name, data, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	_, err := b.pool.Exec(ctx, query, name, string(data))
	return err
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
