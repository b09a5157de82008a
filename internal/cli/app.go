package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/archive"
	"github.com/nguyentantai21042004/minutes-flow/internal/credential"
	"github.com/nguyentantai21042004/minutes-flow/internal/intake"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// newTranscriber resolves the speech-to-text key (flag, config, env,
// keyring in that order) and builds the chunking client.
func newTranscriber(deps *Dependencies, flagKey string) (transcriber.Client, error) {
	cfg := deps.Config.Transcription
	explicit := flagKey
	if explicit == "" {
		explicit = cfg.APIKey
	}
	cfg.APIKey = credential.Resolve(deps.Credentials, explicit, credential.OpenAIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing %s: pass --api-key once or set it in the environment or keyring", credential.OpenAIKey)
	}

	svc := transcriber.NewOpenAI(cfg, &http.Client{})
	return transcriber.NewClient(svc, cfg, deps.Config.Retry.Policy(), deps.Logger), nil
}

func newLLM(deps *Dependencies) (llm.Client, error) {
	keys := deps.Config.LLM.APIKeys
	if len(keys) == 0 {
		for _, k := range strings.Split(credential.Resolve(deps.Credentials, "", credential.GeminiKeys), ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("missing %s: set it in the environment, config or keyring", credential.GeminiKeys)
	}

	return llm.NewGemini(llm.Options{
		APIKeys: keys,
		Model:   deps.Config.LLM.Model,
		Timeout: deps.Config.LLM.RequestTimeout,
	}, deps.Logger), nil
}

func newArchiver(deps *Dependencies) (archive.Archiver, error) {
	a, err := archive.New(deps.Config.Archive, deps.Logger)
	if errors.Is(err, archive.ErrDisabled) {
		return nil, nil
	}
	return a, err
}

func newPipeline(deps *Dependencies) (pipeline.Pipeline, error) {
	tc, err := newTranscriber(deps, "")
	if err != nil {
		return nil, err
	}
	lc, err := newLLM(deps)
	if err != nil {
		return nil, err
	}
	arch, err := newArchiver(deps)
	if err != nil {
		return nil, err
	}

	return pipeline.New(deps.Config, pipeline.Deps{
		Intake:      intake.New(deps.Config.Intake, deps.Executor, deps.Logger),
		Transcriber: tc,
		Minutes:     minutes.New(lc, deps.Config.Retry.Policy(), deps.Logger),
		Archiver:    arch,
		Logger:      deps.Logger,
	}), nil
}

// parseParticipants splits a comma separated list.
func parseParticipants(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --datetime %q, use RFC 3339 or \"YYYY-MM-DD HH:MM\"", s)
}

func modeFor(translate bool) transcriber.Mode {
	if translate {
		return transcriber.ModeTranslate
	}
	return transcriber.ModeTranscribe
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
