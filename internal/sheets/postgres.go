package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sheet_grids (
	name       TEXT PRIMARY KEY,
	grid       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PoolOptions tunes the pgx connection pool.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Postgres stores each sheet as one JSONB row of sheet_grids.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection and creates sheet_grids if needed.
func NewPostgres(ctx context.Context, url string, opts PoolOptions) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgresWithPool(pool)
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresWithPool wraps an existing pool. The caller runs EnsureSchema.
func NewPostgresWithPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the sheet_grids table.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create sheet_grids: %w", err)
	}
	return nil
}

// ReadSheet reads the named sheet.
func (p *Postgres) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT grid FROM sheet_grids WHERE name = $1`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
		}
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	var grid [][]string
	if err := json.Unmarshal(raw, &grid); err != nil {
		return nil, fmt.Errorf("decode sheet %q: %w", name, err)
	}
	return grid, nil
}

// WriteSheet upserts the named sheet in one transaction.
func (p *Postgres) WriteSheet(ctx context.Context, name string, grid [][]string) error {
	if err := validName(name); err != nil {
		return err
	}
	if grid == nil {
		grid = [][]string{}
	}
	raw, err := json.Marshal(grid)
	if err != nil {
		return fmt.Errorf("encode sheet %q: %w", name, err)
	}

	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sheet_grids (name, grid, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (name) DO UPDATE
			SET grid = EXCLUDED.grid, updated_at = EXCLUDED.updated_at`,
			name, string(raw))
		return err
	})
	if err != nil {
		return fmt.Errorf("write sheet %q: %w", name, err)
	}
	return nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
