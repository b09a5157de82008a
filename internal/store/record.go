package store

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// Record is the persisted outcome of one job.
type Record struct {
	SourcePath string           `json:"sourcePath"`
	ModTime    time.Time        `json:"modTime"`
	JobID      string           `json:"jobId"`
	Status     models.JobStatus `json:"status"`
	Attempts   int              `json:"attempts"`
	ErrorKind  string           `json:"errorKind,omitempty"`
	Error      string           `json:"error,omitempty"`
	OutputDir  string           `json:"outputDir,omitempty"`
	FinishedAt time.Time        `json:"finishedAt"`
}

// Key identifies a file version.
func Key(path string, modTime time.Time) string {
	return fmt.Sprintf("%s|%d", path, modTime.UnixNano())
}

// Key of the record's file version.
func (r Record) Key() string {
	return Key(r.SourcePath, r.ModTime)
}

// FromJob builds a Record from a finished job.
func FromJob(job models.RecordingJob) Record {
	rec := Record{
		SourcePath: job.SourcePath,
		ModTime:    job.ModTime,
		JobID:      job.ID,
		Status:     job.Status,
		Attempts:   job.Attempts,
		ErrorKind:  job.ErrorKind,
		Error:      job.Error,
		OutputDir:  job.OutputDir,
	}
	if job.FinishedAt != nil {
		rec.FinishedAt = *job.FinishedAt
	} else {
		rec.FinishedAt = time.Now()
	}
	return rec
}

func validate(rec Record) error {
	if rec.SourcePath == "" {
		return fmt.Errorf("store: record has no source path")
	}
	if !rec.Status.Terminal() {
		return &NotTerminalError{Path: rec.SourcePath, Status: rec.Status}
	}
	return nil
}
