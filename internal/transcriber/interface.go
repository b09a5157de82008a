package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// Mode selects plain transcription or translation into English.
type Mode string

const (
	ModeTranscribe Mode = "transcribe"
	ModeTranslate  Mode = "translate"
)

// Request is a single call to the remote speech-to-text service.
type Request struct {
	AudioPath string
	// Language is an ISO-639-1 hint. Always empty in translate mode.
	Language string
	Mode     Mode
}

// Response is what the service returned for one request. Segment times
// are relative to the submitted audio.
type Response struct {
	Text     string
	Segments []models.TranscriptSegment
	Language string
	Duration float64
}

// Service is the remote speech-to-text API.
type Service interface {
	Transcribe(ctx context.Context, req Request) (Response, error)
}

// Options controls a whole-recording transcription.
type Options struct {
	Language string
	Mode     Mode
	// WorkDir receives chunk files. Empty uses a temporary directory.
	WorkDir string
}

// Client transcribes a normalized recording of any length.
type Client interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (models.Transcript, error)
}
