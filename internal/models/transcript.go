package models

import (
	"fmt"
	"math"
)

// TranscriptSegment is a time-aligned piece of transcript. Times are
// seconds from the start of the recording.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the raw service output for a whole recording.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
	Language string              `json:"language,omitempty"`
	Duration float64             `json:"duration,omitempty"`
	Chunks   int                 `json:"chunks"`
}

// CleanedTranscript is the post-processed transcript.
type CleanedTranscript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
