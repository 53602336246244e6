// Package idgen produces identifiers for harvest runs and document snapshots.
package idgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 UUID v7 strings (time-sortable).
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id produced by gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is UUIDv7.
var Default Generator = UUIDv7()

// New produces an id with the Default generator.
func New() string {
	return Default()
}

// NewRun produces a run id, "run_" followed by a UUIDv7. Every log line of a
// job carries it so interleaved runs can be told apart.
func NewRun() string {
	return Prefixed("run_", Default)()
}

// Parse validates a bare or run-prefixed UUID and returns it unchanged.
func Parse(s string) (string, error) {
	if _, err := uuid.Parse(strings.TrimPrefix(s, "run_")); err != nil {
		return "", fmt.Errorf("idgen: invalid id %q: %w", s, err)
	}
	return s, nil
}
