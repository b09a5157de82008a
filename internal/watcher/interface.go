// Package watcher turns files appearing in a directory into pipeline jobs.
package watcher

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// Watcher defines the interface for file system monitoring
type Watcher interface {
	// Start blocks until ctx is done, then waits for running jobs.
	Start(ctx context.Context) error
	Stop() error
	// Jobs returns a snapshot of every job seen since start, oldest first.
	Jobs() []models.RecordingJob
}
