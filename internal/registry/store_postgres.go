package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"chainpass/internal/domain"
	"chainpass/pkg/platform/sentinel"
)

// PostgresLog persists the project catalog with the same dense-index contract
// as the in-memory log: the id column equals the entry's position, assigned
// inside a single transaction that serializes appends.
type PostgresLog struct {
	db *sql.DB
}

// Schema is applied by migrations; kept here as the store's contract.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
	id          INTEGER PRIMARY KEY,
	title       TEXT NOT NULL,
	content_ref TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);`

func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

// EnsureSchema creates the projects table when it does not exist yet.
func (l *PostgresLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure projects schema: %w", err)
	}
	return nil
}

func (l *PostgresLog) Append(ctx context.Context, build func(index int) domain.ProjectEntry) (domain.ProjectEntry, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ProjectEntry{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Serialize appends so the assigned index stays dense under concurrency.
	if _, err := tx.ExecContext(ctx, "LOCK TABLE projects IN EXCLUSIVE MODE"); err != nil {
		return domain.ProjectEntry{}, fmt.Errorf("lock projects: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return domain.ProjectEntry{}, fmt.Errorf("count projects: %w", err)
	}

	entry := build(count)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO projects (id, title, content_ref, created_at) VALUES ($1, $2, $3, $4)",
		entry.ID, entry.Title, entry.ContentRef, entry.CreatedAt,
	)
	if err != nil {
		return domain.ProjectEntry{}, fmt.Errorf("insert project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.ProjectEntry{}, fmt.Errorf("commit append: %w", err)
	}
	return entry, nil
}

func (l *PostgresLog) Get(ctx context.Context, index int) (domain.ProjectEntry, error) {
	var entry domain.ProjectEntry
	err := l.db.QueryRowContext(ctx,
		"SELECT id, title, content_ref, created_at FROM projects WHERE id = $1",
		index,
	).Scan(&entry.ID, &entry.Title, &entry.ContentRef, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProjectEntry{}, sentinel.ErrIndexOutOfBounds
		}
		return domain.ProjectEntry{}, fmt.Errorf("get project %d: %w", index, err)
	}
	return entry, nil
}

func (l *PostgresLog) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}

func (l *PostgresLog) List(ctx context.Context) ([]domain.ProjectEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, title, content_ref, created_at FROM projects ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var entries []domain.ProjectEntry
	for rows.Next() {
		var entry domain.ProjectEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.ContentRef, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return entries, nil
}
