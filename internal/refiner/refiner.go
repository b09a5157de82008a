// Package refiner turns a spoken prompt into a refined one through a short
// dialogue in which the model asks clarifying questions.
package refiner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

const systemPrompt = `You are an expert prompt refinement assistant. Your goal is to help users clarify and refine their tasks through conversational dialogue.

Guidelines:
1. Ask 1-2 focused questions at a time to understand the user's goal
2. Summarize your understanding and ask for confirmation
3. Identify ambiguities, missing context, or constraints
4. Suggest improvements or alternative approaches when helpful
5. After 2-3 exchanges, propose a refined, detailed prompt
6. Be conversational, friendly, and supportive

When the user confirms the refined prompt is good, respond with:
REFINED_PROMPT: [final refined prompt here]`

const (
	// Temperature used for every turn of the dialogue.
	Temperature = 0.7
	// DefaultMaxTurns bounds the answers collected before giving up.
	DefaultMaxTurns = 5

	Marker = "REFINED_PROMPT:"
)

// Action is what the user chose to do at a turn.
type Action int

const (
	ActionAnswer Action = iota
	ActionRetake
	ActionQuit
)

// Reply is the user's response to the model's latest message.
type Reply struct {
	Action Action
	Text   string
}

// Responder collects the user's reply to question.
type Responder interface {
	Respond(ctx context.Context, question string) (Reply, error)
}

// Outcome is the result of a dialogue. Complete is false when the user quit
// or the turn limit was reached before the model produced a refined prompt.
type Outcome struct {
	Prompt   string
	Complete bool
	Turns    int
}

type Refiner struct {
	client   llm.Client
	logger   logger.Logger
	maxTurns int
}

func New(client llm.Client, log logger.Logger) *Refiner {
	return &Refiner{client: client, logger: log, maxTurns: DefaultMaxTurns}
}

// WithMaxTurns overrides the turn limit. n <= 0 keeps the default.
func (r *Refiner) WithMaxTurns(n int) *Refiner {
	if n > 0 {
		r.maxTurns = n
	}
	return r
}

// Model names the model driving the dialogue.
func (r *Refiner) Model() string {
	return r.client.Model()
}

// Refine runs the dialogue for initial. Quitting returns initial unchanged,
// a retake starts over with a fresh conversation, and an exhausted turn
// limit returns the model's last message.
func (r *Refiner) Refine(ctx context.Context, initial string, resp Responder) (Outcome, error) {
	for {
		out, retake, err := r.converse(ctx, initial, resp)
		if err != nil || !retake {
			return out, err
		}
		r.logger.Info(ctx, "Restarting prompt refinement")
	}
}

func (r *Refiner) converse(ctx context.Context, initial string, resp Responder) (Outcome, bool, error) {
	history := []llm.Message{{Role: llm.RoleUser, Text: "I need help refining this task: " + initial}}

	last, err := r.ask(ctx, &history)
	if err != nil {
		return Outcome{}, false, err
	}

	turns := 0
	for turns < r.maxTurns {
		if err := ctx.Err(); err != nil {
			return Outcome{}, false, err
		}

		reply, err := resp.Respond(ctx, last)
		if err != nil {
			return Outcome{}, false, fmt.Errorf("read reply: %w", err)
		}

		switch reply.Action {
		case ActionRetake:
			return Outcome{}, true, nil
		case ActionQuit:
			return Outcome{Prompt: initial, Turns: turns}, false, nil
		}

		text := strings.TrimSpace(reply.Text)
		if text == "" {
			continue
		}

		history = append(history, llm.Message{Role: llm.RoleUser, Text: text})
		last, err = r.ask(ctx, &history)
		if err != nil {
			return Outcome{}, false, err
		}
		turns++

		if prompt, ok := Extract(last); ok {
			return Outcome{Prompt: prompt, Complete: true, Turns: turns}, false, nil
		}
	}

	r.logger.Warn(ctx, "Refinement stopped after %d turns without a final prompt", turns)
	return Outcome{Prompt: last, Turns: turns}, false, nil
}

func (r *Refiner) ask(ctx context.Context, history *[]llm.Message) (string, error) {
	out, err := r.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    *history,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("refine prompt: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("refine prompt: model returned nothing")
	}
	*history = append(*history, llm.Message{Role: llm.RoleModel, Text: out})
	return out, nil
}

// Extract returns the text after the REFINED_PROMPT marker, if present.
func Extract(reply string) (string, bool) {
	_, after, ok := strings.Cut(reply, Marker)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(after), true
}
