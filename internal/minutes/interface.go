package minutes

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// Generator extracts structured minutes from a cleaned transcript.
type Generator interface {
	Generate(ctx context.Context, transcript models.CleanedTranscript, meeting models.MeetingContext) (models.MeetingMinutes, error)
	Model() string
}
