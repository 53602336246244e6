// Package ledger records which channel URLs have already been harvested so
// a rerun skips them. Entries are only ever added.
package ledger

import (
	"context"
	"fmt"
	"strings"
)

// Ledger is the processed-URL store consulted before any browser work.
type Ledger interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
	Close() error
}

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config selects and locates the backend.
type Config struct {
	Backend string // "file" (default) or "sqlite"
	Path    string // default processed_urls.txt or processed_urls.db
	RunID   string // stored with SQLite rows
}

// Open returns the configured backend.
func Open(cfg Config) (Ledger, error) {
	switch cfg.Backend {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			path = "processed_urls.txt"
		}
		return NewFile(path), nil
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = "processed_urls.db"
		}
		return OpenSQLite(path, cfg.RunID)
	default:
		return nil, fmt.Errorf("ledger: unknown backend %q", cfg.Backend)
	}
}

// Normalize is the key form stored and compared by every backend.
func Normalize(key string) string {
	return strings.TrimSpace(key)
}
