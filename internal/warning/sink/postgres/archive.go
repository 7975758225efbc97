// Package postgres archives warnings in PostgreSQL for later review.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

// Schema creates the archive table.
const Schema = `
CREATE TABLE IF NOT EXISTS pixelguard_warnings (
	id         UUID PRIMARY KEY,
	code       TEXT NOT NULL,
	source     TEXT NOT NULL,
	severity   TEXT NOT NULL,
	message    TEXT NOT NULL,
	attrs      JSONB NOT NULL DEFAULT '{}',
	attr_keys  TEXT[] NOT NULL DEFAULT '{}',
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS pixelguard_warnings_code_idx ON pixelguard_warnings (code, created_at DESC)`

// Archive is a warning subscriber backed by PostgreSQL.
type Archive struct {
	db *sql.DB
}

func New(db *sql.DB) (*Archive, error) {
	if db == nil {
		return nil, fmt.Errorf("archive database: %w", sentinel.ErrConfigurationMissing)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Migrate(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate warning archive: %w", err)
	}
	return nil
}

// Record implements warning.Subscriber. Re-delivering the same warning is a
// no-op.
func (a *Archive) Record(ctx context.Context, w warning.Warning) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Timestamp.IsZero() {
		w.Timestamp = time.Now()
	}
	attrs := w.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	rawAttrs, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attrs: %w", err)
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errText string
	if w.Severity == warning.SeverityCritical {
		errText = sentinel.ErrTamperDetected.Error()
	}

	query := `
		INSERT INTO pixelguard_warnings (id, code, source, severity, message, attrs, attr_keys, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = a.db.ExecContext(ctx, query,
		w.ID,
		string(w.Code),
		string(w.Source),
		string(w.Severity),
		w.Message,
		rawAttrs,
		pq.Array(keys),
		errText,
		w.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert warning: %w", err)
	}
	return nil
}

// Recent returns up to limit warnings, newest first. When codes is non-empty
// only those codes are returned.
func (a *Archive) Recent(ctx context.Context, limit int, codes ...domain.WarningCode) ([]warning.Warning, error) {
	if limit <= 0 {
		limit = 100
	}
	filter := make([]string, len(codes))
	for i, c := range codes {
		filter[i] = string(c)
	}

	query := `
		SELECT id, code, source, severity, message, attrs, created_at
		FROM pixelguard_warnings
		WHERE cardinality($1::text[]) = 0 OR code = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := a.db.QueryContext(ctx, query, pq.Array(filter), limit)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	var out []warning.Warning
	for rows.Next() {
		var (
			w        warning.Warning
			code     string
			source   string
			severity string
			rawAttrs []byte
		)
		if err := rows.Scan(&w.ID, &code, &source, &severity, &w.Message, &rawAttrs, &w.Timestamp); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		w.Code = domain.WarningCode(code)
		w.Source = domain.ModuleKind(source)
		w.Severity = warning.Severity(severity)
		if err := json.Unmarshal(rawAttrs, &w.Attrs); err != nil {
			return nil, fmt.Errorf("decode attrs: %w", err)
		}
		if len(w.Attrs) == 0 {
			w.Attrs = nil
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// WithAttr returns ids of warnings carrying attribute key, newest first.
func (a *Archive) WithAttr(ctx context.Context, key string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id FROM pixelguard_warnings
		WHERE $1 = ANY(attr_keys)
		ORDER BY created_at DESC
		LIMIT $2
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan warning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
