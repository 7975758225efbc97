package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pixelguard/pkg/platform/sentinel"
)

// SQLiteStore persists preferences in a local SQLite file, the on-device
// equivalent of a platform preference store.
type SQLiteStore struct {
	sqlStore
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path: %w", sentinel.ErrConfigurationMissing)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection keeps ":memory:" databases consistent
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate preferences: %w", err)
	}
	return &SQLiteStore{sqlStore{db: db, clock: time.Now}}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, key)
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, key, value)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.delete(ctx, key)
}

func (s *SQLiteStore) DeleteMany(ctx context.Context, keys []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pixelguard_prefs WHERE key = $1`, k); err != nil {
			return fmt.Errorf("delete preference %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
