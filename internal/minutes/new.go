package minutes

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/pkg/retry"
)

type implGenerator struct {
	client llm.Client
	policy retry.Policy
	logger logger.Logger
}

// New creates a Generator on top of client. Transient model failures are
// retried under policy.
func New(client llm.Client, policy retry.Policy, log logger.Logger) Generator {
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn(context.Background(), "Minutes attempt %d failed, retrying in %s: %v", attempt, delay, err)
		}
	}
	return &implGenerator{
		client: client,
		policy: policy,
		logger: log,
	}
}
