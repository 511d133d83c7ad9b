// Package sqlitestore provides a SQLite-backed toolbox repository.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxsml/dispatch/internal/toolbox"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS tools (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
)`

// Store persists tools in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite database at path and creates the tools table.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Add(ctx context.Context, name string) (toolbox.Tool, error) {
	tool := toolbox.Tool{ID: uuid.New(), Name: name}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tools (id, name) VALUES (?, ?)`,
		tool.ID.String(), tool.Name)
	if err != nil {
		return toolbox.Tool{}, fmt.Errorf("add tool: %w", err)
	}
	return tool, nil
}

func (s *Store) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("remove tool: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove tool: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*toolbox.Tool, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT id, name FROM tools WHERE id = ?`, id.String())
	tool, err := scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tool: %w", err)
	}
	return &tool, nil
}

func (s *Store) List(ctx context.Context) ([]toolbox.Tool, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name FROM tools ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	tools := []toolbox.Tool{}
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		tools = append(tools, tool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return tools, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTool(row scanner) (toolbox.Tool, error) {
	var (
		id   string
		tool toolbox.Tool
	)
	if err := row.Scan(&id, &tool.Name); err != nil {
		return toolbox.Tool{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return toolbox.Tool{}, fmt.Errorf("parse tool id %q: %w", id, err)
	}
	tool.ID = parsed
	return tool, nil
}

var _ toolbox.Repository = (*Store)(nil)
