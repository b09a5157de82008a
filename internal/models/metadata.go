package models

import "time"

// JobMetadata describes a finished job. It is written once per job.
type JobMetadata struct {
	JobID                 string    `json:"jobId"`
	SourcePath            string    `json:"sourcePath"`
	SourceFile            string    `json:"sourceFile"`
	CreatedAt             time.Time `json:"createdAt"`
	Mode                  string    `json:"mode"`
	Language              string    `json:"language,omitempty"`
	DurationSeconds       float64   `json:"duration_seconds"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	FileSizeBytes         int64     `json:"file_size_bytes"`
	FileSize              string    `json:"file_size"`
	NormalizedSizeBytes   int64     `json:"normalized_size_bytes"`
	Converted             bool      `json:"converted"`
	Chunks                int       `json:"chunks"`
	Segments              int       `json:"segments"`
	TranscriptionModel    string    `json:"transcription_model"`
	MinutesModel          string    `json:"minutes_model,omitempty"`
	EnhancementModel      string    `json:"enhancement_model,omitempty"`
}
