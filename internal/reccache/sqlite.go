package reccache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

// SQLiteStore keeps one row per entity id.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "reccache"),
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, entityID string) ([]json.RawMessage, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT records FROM recommendations WHERE entity_id = ?", entityID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query recommendations: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		logging.WarnWithContext(s.logger, "ignoring malformed cached recommendations",
			"reccache_load_failed",
			logging.String("entity_id", entityID),
			logging.Error(services.Wrap(services.ErrMalformedCache, "reccache", "sqlite get", entityID, err)),
			logging.String(logging.FieldImpact, "recommendations will be fetched again and the row replaced"))
		return nil, false, nil
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, entityID string, records []json.RawMessage) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (entity_id, records, cached_at) VALUES (?, ?, ?)
         ON CONFLICT(entity_id) DO UPDATE SET records = excluded.records, cached_at = excluded.cached_at`,
		entityID,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert recommendations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT entity_id FROM recommendations ORDER BY entity_id")
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan entity id: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, entityID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recommendations WHERE entity_id = ?", entityID)
	if err != nil {
		return false, fmt.Errorf("delete recommendations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM recommendations"); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Location() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
