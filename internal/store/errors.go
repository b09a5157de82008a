package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

var ErrUnknownBackend = errors.New("store: unknown backend")

// NotTerminalError is returned when marking a job that has not finished.
type NotTerminalError struct {
	Path   string
	Status models.JobStatus
}

func (e *NotTerminalError) Error() string {
	return fmt.Sprintf("store: %s is %s, only terminal jobs are recorded", e.Path, e.Status)
}

// JobAlreadyProcessedError marks a file version that already reached a
// terminal state.
type JobAlreadyProcessedError struct {
	Path    string
	ModTime time.Time
}

func (e *JobAlreadyProcessedError) Error() string {
	return fmt.Sprintf("job already processed: %s (mtime %s)", e.Path, e.ModTime.Format(time.RFC3339))
}
