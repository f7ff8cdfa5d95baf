package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// bulkSchema holds one payload per key. The dataset lives under a single
// stable key and is always replaced wholesale.
const bulkSchema = `
CREATE TABLE IF NOT EXISTS bulk_records (
    key      TEXT PRIMARY KEY,
    payload  BLOB NOT NULL,
    saved_at INTEGER NOT NULL
);`

const bulkKey = "dataset"

// SQLiteBulkTier stores the serialized dataset in a local SQLite database.
// SQLite gives the bulk tier transactional replacement and tolerates
// arbitrarily large payloads without rewriting a whole JSON file per save.
type SQLiteBulkTier struct {
	db *sqlx.DB
}

// NewSQLiteBulkTier opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteBulkTier(path string) (*SQLiteBulkTier, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bulk database: %w", err)
	}

	if _, err := db.Exec(bulkSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize bulk schema: %w", err)
	}

	return &SQLiteBulkTier{db: db}, nil
}

// Put replaces the stored payload in a single transaction.
func (t *SQLiteBulkTier) Put(ctx context.Context, payload []byte) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bulk_records (key, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		bulkKey, payload, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write bulk payload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk write: %w", err)
	}
	return nil
}

// Get returns the stored payload, or ok=false when nothing is stored.
func (t *SQLiteBulkTier) Get(ctx context.Context) ([]byte, bool, error) {
	var payload []byte
	err := t.db.GetContext(ctx, &payload,
		`SELECT payload FROM bulk_records WHERE key = ?`, bulkKey)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read bulk payload: %w", err)
	}
	return payload, true, nil
}

// Delete removes the stored payload; absent payloads are a no-op.
func (t *SQLiteBulkTier) Delete(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx,
		`DELETE FROM bulk_records WHERE key = ?`, bulkKey); err != nil {
		return fmt.Errorf("failed to delete bulk payload: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (t *SQLiteBulkTier) Close() error {
	return t.db.Close()
}
