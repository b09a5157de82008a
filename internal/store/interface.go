// Package store remembers which recordings already reached a terminal
// state so a restarted watcher does not process them again.
package store

import (
	"context"
	"time"
)

// Store persists terminal job outcomes keyed by (source path, mtime).
type Store interface {
	// Has reports whether the file at path with the given mtime reached a
	// terminal state.
	Has(ctx context.Context, path string, modTime time.Time) (bool, error)
	// Mark records a terminal outcome. Non-terminal records are rejected.
	Mark(ctx context.Context, rec Record) error
	// List returns up to limit records, most recently finished first.
	// limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
