package intake

import "context"

// Intake validates a recording and normalizes it to the canonical WAV.
type Intake interface {
	// Normalize never modifies sourcePath. Converted audio is written into
	// workDir.
	Normalize(ctx context.Context, sourcePath, workDir string) (Result, error)
}

// Result describes a validated, normalized recording.
type Result struct {
	SourcePath     string
	SourceExt      string
	SourceSize     int64
	NormalizedPath string
	NormalizedSize int64
	// Duration of the source in seconds.
	Duration  float64
	Converted bool
}
