package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/fitlifeapp/fitlife/internal/client/store/migrations"
	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/dbx"
)

// SQLiteStore is the concrete Store backed by a local SQLite database.
type SQLiteStore struct {
	db dbx.DBTX

	// now is a seam for tests that assert updatedAt behavior.
	now func() time.Time
}

// NewSQLiteStore wraps an already-migrated database handle.
func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the record database at dsn, applies
// migrations, and returns a ready store.
func Open(ctx context.Context, dsn string) (*SQLiteStore, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return NewSQLiteStore(db), db, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record[%s]: %w", key, err)
	}
	if !json.Valid(value) {
		// a corrupted row is treated as absent rather than poisoning callers
		return nil, common.ErrorNotFound
	}
	return json.RawMessage(value), nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode record[%s]: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to set record[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Merge(ctx context.Context, key string, partial map[string]any) error {
	current := map[string]any{}
	raw, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if err == nil {
		// a non-object document resets to empty on merge
		_ = json.Unmarshal(raw, &current)
	}

	for k, v := range partial {
		current[k] = v
	}
	current["updatedAt"] = s.now().UTC().Format(time.RFC3339Nano)

	return s.Set(ctx, key, current)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete record[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
