package transcriber

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/pkg/retry"
	"golang.org/x/time/rate"
)

type implClient struct {
	service      Service
	policy       retry.Policy
	limiter      *rate.Limiter
	timeout      time.Duration
	maxBytes     int64
	chunkSeconds float64
	logger       logger.Logger
}

// NewClient wraps service with chunking, pacing, per-attempt timeouts and
// retries.
func NewClient(service Service, cfg config.TranscriptionConfig, policy retry.Policy, log logger.Logger) Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
	}

	c := &implClient{
		service:      service,
		limiter:      rate.NewLimiter(limit, 1),
		timeout:      cfg.RequestTimeout,
		maxBytes:     cfg.MaxRequestBytes,
		chunkSeconds: cfg.ChunkSeconds,
		logger:       log,
	}

	c.policy = policy
	if c.policy.OnRetry == nil {
		c.policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn(context.Background(), "Transcription attempt %d failed, retrying in %s: %v", attempt, delay, err)
		}
	}
	return c
}
