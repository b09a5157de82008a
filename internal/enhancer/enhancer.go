// Package enhancer rewrites a spoken prompt into a structured one.
package enhancer

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

const systemPrompt = `You are an expert prompt engineer. The user will provide a casual, spoken prompt. Your job is to:
1. Understand the user's intent deeply
2. Expand it into a highly structured, detailed, and expert-level prompt
3. Use bullet points, clear sections, and specific instructions
4. Add relevant context, constraints, and desired output format
5. Make it actionable and comprehensive

Return ONLY the enhanced prompt, no meta-commentary.`

// Temperature used for enhancement.
const Temperature = 0.7

type Enhancer struct {
	client llm.Client
	logger logger.Logger
}

func New(client llm.Client, log logger.Logger) *Enhancer {
	return &Enhancer{client: client, logger: log}
}

// Enhance returns the enhanced prompt and true, or raw and false when the
// model fails or returns nothing.
func (e *Enhancer) Enhance(ctx context.Context, raw string) (string, bool) {
	out, err := e.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Text: raw}},
		Temperature: Temperature,
	})
	if err != nil {
		e.logger.Warn(ctx, "Prompt enhancement failed, using raw transcript: %v", err)
		return raw, false
	}

	out = strings.TrimSpace(out)
	if out == "" {
		e.logger.Warn(ctx, "Prompt enhancement returned nothing, using raw transcript")
		return raw, false
	}
	return out, true
}

// Model names the model used for enhancement.
func (e *Enhancer) Model() string {
	return e.client.Model()
}
