package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// Transcribe splits audioPath when it exceeds the request limits, sends each
// chunk in order and stitches the results onto one timeline
func (c *implClient) Transcribe(ctx context.Context, audioPath string, opts Options) (models.Transcript, error) {
	if opts.Mode == "" {
		opts.Mode = ModeTranscribe
	}

	info, err := audio.ReadInfo(audioPath)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("read audio: %w", err)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "minutes-chunks-*")
		if err != nil {
			return models.Transcript{}, fmt.Errorf("create chunk dir: %w", err)
		}
		defer os.RemoveAll(workDir)
	}
	chunkDir := filepath.Join(workDir, "chunks")

	chunks, err := audio.Split(audioPath, chunkDir, audio.SplitOptions{
		MaxSeconds: c.chunkSeconds,
		MaxBytes:   c.maxBytes,
	})
	if err != nil {
		return models.Transcript{}, fmt.Errorf("split audio: %w", err)
	}
	defer os.RemoveAll(chunkDir)

	if len(chunks) > 1 {
		c.logger.Info(ctx, "Audio is %.1fs, sending %d chunks", info.Duration(), len(chunks))
	}

	req := Request{Language: opts.Language, Mode: opts.Mode}
	if opts.Mode == ModeTranslate {
		req.Language = ""
	}

	out := models.Transcript{
		Duration: info.Duration(),
		Chunks:   len(chunks),
	}
	var texts []string

	for _, chunk := range chunks {
		req.AudioPath = chunk.Path
		resp, err := c.transcribeChunk(ctx, chunk.Index, req)
		if err != nil {
			return models.Transcript{}, err
		}

		chunkEnd := chunk.Offset + chunk.Duration
		segments := resp.Segments
		if len(segments) == 0 && strings.TrimSpace(resp.Text) != "" {
			segments = []models.TranscriptSegment{{Start: 0, End: chunk.Duration, Text: resp.Text}}
		}
		out.Segments = appendChunk(out.Segments, Rebase(segments, chunk.Offset), chunk.Offset, chunkEnd)

		if t := strings.TrimSpace(resp.Text); t != "" {
			texts = append(texts, t)
		}
		if out.Language == "" {
			out.Language = resp.Language
		}

		c.logger.Debug(ctx, "Chunk %d/%d done (%d segments)", chunk.Index+1, len(chunks), len(segments))
	}

	if out.Segments == nil {
		out.Segments = []models.TranscriptSegment{}
	}
	out.Text = strings.Join(texts, "\n")
	return out, nil
}

func (c *implClient) transcribeChunk(ctx context.Context, index int, req Request) (Response, error) {
	var resp Response

	err := c.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		attemptCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		r, err := c.service.Transcribe(attemptCtx, req)
		if err != nil {
			if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("attempt %d timed out after %s: %w", attempt, c.timeout, context.DeadlineExceeded)
			}
			return err
		}
		resp = r
		return nil
	}, IsTransient)

	if err != nil {
		return Response{}, &ServiceError{Chunk: index, Err: err}
	}
	return resp, nil
}
