package models

import "time"

// JobStatus is the lifecycle stage of a RecordingJob.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// RecordingJob tracks one source file through the pipeline. Only the
// watcher changes Status.
type RecordingJob struct {
	ID           string     `json:"id"`
	SourcePath   string     `json:"sourcePath"`
	ModTime      time.Time  `json:"modTime"`
	DiscoveredAt time.Time  `json:"discoveredAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	ErrorKind    string     `json:"errorKind,omitempty"`
	Error        string     `json:"error,omitempty"`
	OutputDir    string     `json:"outputDir,omitempty"`
}

// MeetingContext is the caller-supplied description of a meeting.
type MeetingContext struct {
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
	DateTime     time.Time `json:"dateTime"`
	Platform     string    `json:"platform"`
}
