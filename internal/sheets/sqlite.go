package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheet_grids (
	name       TEXT PRIMARY KEY,
	grid       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite stores each sheet as one JSON row of sheet_grids in a local database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One writer; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sheet_grids: %w", err)
	}
	return &SQLite{db: db}, nil
}

// ReadSheet reads the named sheet.
func (s *SQLite) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT grid FROM sheet_grids WHERE name = ?`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
		}
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	var grid [][]string
	if err := json.Unmarshal([]byte(raw), &grid); err != nil {
		return nil, fmt.Errorf("decode sheet %q: %w", name, err)
	}
	return grid, nil
}

// WriteSheet upserts the named sheet.
func (s *SQLite) WriteSheet(ctx context.Context, name string, grid [][]string) error {
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_grids (name, grid, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET grid = excluded.grid, updated_at = excluded.updated_at`,
		name, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write sheet %q: %w", name, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
