// Package pipeline runs one recording through intake, transcription,
// cleanup and minutes generation, then persists the job directory.
package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Pipeline processes a single recording.
type Pipeline interface {
	Process(ctx context.Context, req Request) (Result, error)
}

// Request describes one job.
type Request struct {
	Job     models.RecordingJob
	Meeting models.MeetingContext
	// Language hint for transcription. Ignored in translate mode.
	Language string
	Mode     transcriber.Mode
	// OutputRoot overrides paths.output.
	OutputRoot string
}

// Result is what a successful job produced.
type Result struct {
	OutputDir  string
	Transcript models.CleanedTranscript
	Minutes    models.MeetingMinutes
	Metadata   models.JobMetadata
}
