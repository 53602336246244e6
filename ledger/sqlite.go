package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/ytharvest/dbopen"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_urls (
	url          TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL DEFAULT '',
	processed_at INTEGER NOT NULL
);`

// SQLite is a ledger shared safely between processes through WAL and
// busy_timeout.
type SQLite struct {
	db    *sql.DB
	runID string
}

// OpenSQLite opens (and creates) the ledger database at path.
func OpenSQLite(path, runID string) (*SQLite, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	return &SQLite{db: db, runID: runID}, nil
}

// NewSQLite wraps an already opened database and applies the schema.
func NewSQLite(db *sql.DB, runID string) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ledger: schema: %w", err)
	}
	return &SQLite{db: db, runID: runID}, nil
}

func (s *SQLite) IsProcessed(ctx context.Context, key string) (bool, error) {
	key = Normalize(key)
	if key == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_urls WHERE url = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: query: %w", err)
	}
	return true, nil
}

func (s *SQLite) MarkProcessed(ctx context.Context, key string) error {
	key = Normalize(key)
	if key == "" {
		return errors.New("ledger: empty key")
	}
	_, err := dbopen.Exec(ctx, s.db,
		`INSERT OR IGNORE INTO processed_urls (url, run_id, processed_at) VALUES (?, ?, ?)`,
		key, s.runID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
