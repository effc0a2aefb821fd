// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface, including the atomic batch and live watch capabilities.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	hub *watchHub
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db, hub: newWatchHub()}, nil
}

// Close closes the database connection and drops all watch subscriptions.
func (s *SQLiteStore) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

// Watch returns a coalescing notification channel for the plan plus the
// cancel func releasing the subscription.
func (s *SQLiteStore) Watch(planID string) (<-chan struct{}, func()) {
	return s.hub.subscribe(planID)
}

// RunBatch executes fn inside a transaction. All writes land atomically;
// the plan's watchers are notified once after commit.
func (s *SQLiteStore) RunBatch(ctx context.Context, planID string, fn func(b storage.Batch) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store("failed to begin batch", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlBatch{ctx: ctx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Store("failed to commit batch", err)
	}
	s.hub.notify(planID)
	return nil
}
