package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nibzard/tasktrack/internal/tasks"
)

const sqliteTimeLayout = time.RFC3339Nano

//go:embed schema.sql
var sqliteSchemaFS embed.FS

// SQLiteBackend keeps the collection in a SQLite database. Each write
// replaces every row inside one transaction.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := applySQLiteSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

func applySQLiteSchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := sqliteSchemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Location() string {
	return b.path
}

// Read returns (nil, nil) for a database with no stored collection.
func (b *SQLiteBackend) Read(ctx context.Context) (*tasks.Collection, error) {
	var nextID int
	err := b.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'next_id'`).Scan(&nextID)
	missingMeta := errors.Is(err, sql.ErrNoRows)
	if err != nil && !missingMeta {
		return nil, fmt.Errorf("read next_id: %w", err)
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT id, title, priority, due, status, created_at
		FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	defer rows.Close()

	list := []tasks.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, &CorruptStateError{Location: b.path, Err: err}
		}
		list = append(list, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	if missingMeta {
		if len(list) == 0 {
			return nil, nil
		}
		return nil, &CorruptStateError{
			Location: b.path,
			Err:      &tasks.ValidationError{Path: "next_id", Err: errors.New("missing")},
		}
	}
	return &tasks.Collection{Tasks: list, NextID: nextID}, nil
}

// Write replaces the stored collection atomically.
func (b *SQLiteBackend) Write(ctx context.Context, c *tasks.Collection) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, position, title, priority, due, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range c.Tasks {
		if _, err := stmt.ExecContext(ctx,
			t.ID, i, t.Title, string(t.Priority), t.Due, string(t.Status),
			t.CreatedAt.UTC().Format(sqliteTimeLayout),
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('next_id', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, c.NextID); err != nil {
		return fmt.Errorf("store next_id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (tasks.Task, error) {
	var out tasks.Task
	var priority, status, created string
	if err := s.Scan(&out.ID, &out.Title, &priority, &out.Due, &status, &created); err != nil {
		return tasks.Task{}, err
	}
	createdAt, err := time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("task %d: parse created_at: %w", out.ID, err)
	}
	out.Priority = tasks.Priority(priority)
	out.Status = tasks.Status(status)
	out.CreatedAt = createdAt
	return out, nil
}
