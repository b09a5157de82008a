package minutes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

const systemPrompt = "You are a meticulous meeting minutes generator. " +
	"Use ONLY facts present in the transcript. " +
	"Do NOT invent speakers, owners, dates, or facts. " +
	"If data is missing, use empty lists or empty strings. " +
	"Return a single JSON object with strictly the specified keys and types, and nothing else."

const structureGuide = `Target structure: {
  meetingTitle: string,
  dateTime: string (ISO if available),
  platform: string,
  participants: string[],
  agenda: string[],
  discussion: [{topic: string, points: string[]}],
  decisions: string[],
  actionItems: [{task: string, owner: string, dueDate: string, priority: string}],
  risks: string[],
  dependencies: string[],
  openQuestions: string[],
  summary: string[5..8]
}.
Fill only from the transcript; otherwise leave empty.`

const correctionPrompt = "Your previous reply was not a valid JSON object matching the target structure (%v). " +
	"Reply again with ONLY the corrected JSON object. No code fences, no commentary."

type promptMetadata struct {
	MeetingTitle string   `json:"meetingTitle"`
	DateTime     string   `json:"dateTime"`
	Platform     string   `json:"platform"`
	Participants []string `json:"participants"`
}

func metadataFor(meeting models.MeetingContext) promptMetadata {
	md := promptMetadata{
		MeetingTitle: meeting.Title,
		Platform:     meeting.Platform,
		Participants: meeting.Participants,
	}
	if !meeting.DateTime.IsZero() {
		md.DateTime = meeting.DateTime.Format(time.RFC3339)
	}
	if md.Participants == nil {
		md.Participants = []string{}
	}
	return md
}

func buildPrompt(transcript models.CleanedTranscript, meeting models.MeetingContext) string {
	md, _ := json.Marshal(metadataFor(meeting))

	var b strings.Builder
	fmt.Fprintf(&b, "Metadata: %s\n\n", md)
	fmt.Fprintf(&b, "Transcript (cleaned):\n%s\n\n", transcript.Text)
	b.WriteString(structureGuide)
	return b.String()
}
