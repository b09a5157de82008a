package minutes

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

func (g *implGenerator) Model() string {
	return g.client.Model()
}

// Generate asks the model for minutes at temperature 0. A malformed reply
// gets exactly one corrective follow-up before a ParseError is returned.
func (g *implGenerator) Generate(ctx context.Context, transcript models.CleanedTranscript, meeting models.MeetingContext) (models.MeetingMinutes, error) {
	messages := []llm.Message{{Role: llm.RoleUser, Text: buildPrompt(transcript, meeting)}}

	raw, err := g.complete(ctx, messages)
	if err != nil {
		return models.MeetingMinutes{}, err
	}

	m, parseErr := Parse(raw)
	if parseErr != nil {
		g.logger.Warn(ctx, "Minutes reply was not valid JSON, asking for a correction: %v", parseErr)

		messages = append(messages,
			llm.Message{Role: llm.RoleModel, Text: raw},
			llm.Message{Role: llm.RoleUser, Text: fmt.Sprintf(correctionPrompt, parseErr)},
		)
		raw, err = g.complete(ctx, messages)
		if err != nil {
			return models.MeetingMinutes{}, err
		}
		if m, parseErr = Parse(raw); parseErr != nil {
			return models.MeetingMinutes{}, &ParseError{Raw: raw, Err: parseErr}
		}
	}

	applyContext(&m, meeting)
	return m, nil
}

func (g *implGenerator) complete(ctx context.Context, messages []llm.Message) (string, error) {
	req := llm.Request{
		System:      systemPrompt,
		Messages:    messages,
		Temperature: 0,
		JSON:        true,
	}

	var raw string
	err := g.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		out, err := g.client.Complete(ctx, req)
		if err != nil {
			return err
		}
		raw = out
		return nil
	}, llm.IsTransient)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	return raw, nil
}

// applyContext fills fields the caller already knows and the model left
// empty.
func applyContext(m *models.MeetingMinutes, meeting models.MeetingContext) {
	if m.Title == "" {
		m.Title = meeting.Title
	}
	if m.DateTime == "" && !meeting.DateTime.IsZero() {
		m.DateTime = meeting.DateTime.Format(time.RFC3339)
	}
	if meeting.Platform != "" {
		m.Platform = meeting.Platform
	}
	if len(m.Participants) == 0 && len(meeting.Participants) > 0 {
		m.Participants = append([]string{}, meeting.Participants...)
	}
	m.Normalize()
}
