// Package cache mirrors project content to a local SQLite database so
// an open project survives connectivity loss and restarts. One row per
// project; the remote service stays authoritative.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kosztorapp/kosztor/internal/model"
)

// Store is the local per-project content mirror.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the cache database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// contentKey builds the cache key for a project's content entry.
func contentKey(projectID string) string {
	return fmt.Sprintf("project:%s:content", projectID)
}

// Put mirrors the content for a project, replacing any previous entry.
// This runs synchronously on every local edit, before the remote write
// is scheduled, so the cache is never older than in-memory state.
func (s *Store) Put(ctx context.Context, projectID string, content model.Content) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshaling content for project %s: %w", projectID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO project_content (key, payload, updated_at)
		VALUES (?, ?, ?)`,
		contentKey(projectID), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("caching content for project %s: %w", projectID, err)
	}

	return nil
}

// Get returns the cached content for a project, or (nil, nil) on a
// miss. A corrupt entry (bad JSON, wrong shape) is treated as a miss,
// never as an error: the caller falls back to remote or defaults.
func (s *Store) Get(ctx context.Context, projectID string) (*model.Content, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		"SELECT payload FROM project_content WHERE key = ?", contentKey(projectID),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache for project %s: %w", projectID, err)
	}

	var content model.Content
	if err := json.Unmarshal([]byte(payload), &content); err != nil {
		// Corrupt cache entry; treat as a miss.
		return nil, nil
	}

	return &content, nil
}

// Delete removes a project's cache entry.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM project_content WHERE key = ?", contentKey(projectID),
	)
	if err != nil {
		return fmt.Errorf("deleting cache for project %s: %w", projectID, err)
	}
	return nil
}
