package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"pixelguard/pkg/platform/sentinel"
)

// Schema creates the preference table. Both PostgreSQL and SQLite accept it.
const Schema = `
CREATE TABLE IF NOT EXISTS pixelguard_prefs (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS pixelguard_prefs (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// sqlStore holds the queries shared by the PostgreSQL and SQLite backends.
type sqlStore struct {
	db    *sql.DB
	clock func() time.Time
}

func (s *sqlStore) get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM pixelguard_prefs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preference %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

func (s *sqlStore) set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	query := `
		INSERT INTO pixelguard_prefs (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, s.clock().UTC()); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pixelguard_prefs WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

// PostgresStore persists preferences in PostgreSQL.
type PostgresStore struct {
	sqlStore
}

// NewPostgres constructs a PostgreSQL-backed preference store.
func NewPostgres(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres db: %w", sentinel.ErrConfigurationMissing)
	}
	return &PostgresStore{sqlStore{db: db, clock: time.Now}}, nil
}

// Migrate creates the preference table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, key)
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, key, value)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return s.delete(ctx, key)
}

// DeleteMany removes keys with a single array-bound statement.
func (s *PostgresStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pixelguard_prefs WHERE key = ANY($1)`, pq.Array(keys)); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}
