// Package recorder captures microphone audio with ffmpeg until the context
// is cancelled.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

var ErrNothingCaptured = errors.New("no audio captured")

// Recorder manages ffmpeg-based mic recording.
type Recorder interface {
	// Record blocks until ctx is cancelled or ffmpeg exits, then returns
	// the header of the captured WAV at outputPath.
	Record(ctx context.Context, outputPath string) (audio.Info, error)
}

type implRecorder struct {
	cfg        config.RecorderConfig
	ffmpeg     string
	sampleRate int
	executor   executor.Executor
	logger     logger.Logger
}

func New(cfg config.RecorderConfig, intake config.IntakeConfig, exec executor.Executor, log logger.Logger) Recorder {
	return &implRecorder{
		cfg:        cfg,
		ffmpeg:     intake.FFmpegBinary,
		sampleRate: intake.SampleRate,
		executor:   exec,
		logger:     log,
	}
}

func (r *implRecorder) Record(ctx context.Context, outputPath string) (audio.Info, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return audio.Info{}, fmt.Errorf("create recording dir: %w", err)
	}

	args := r.args(outputPath)
	r.logger.Debug(ctx, "Recording: %s %v", r.ffmpeg, args)

	started := time.Now()
	if err := r.executor.ExecuteInterruptible(ctx, r.cfg.GracePeriod, r.ffmpeg, args...); err != nil {
		return audio.Info{}, fmt.Errorf("capture: %w", err)
	}
	r.logger.Info(ctx, "Recording stopped after %s", time.Since(started).Round(time.Second))

	// ffmpeg may not finalize the header when stopped abruptly.
	if err := audio.RepairHeader(outputPath); err != nil {
		return audio.Info{}, fmt.Errorf("repair wav header: %w", err)
	}
	info, err := audio.ReadInfo(outputPath)
	if err != nil {
		return audio.Info{}, fmt.Errorf("read recording: %w", err)
	}
	if info.Frames() == 0 {
		return info, ErrNothingCaptured
	}
	return info, nil
}

func (r *implRecorder) args(outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-f", r.cfg.InputFormat,
		"-i", r.cfg.Device,
		"-af", "highpass=f=80",
		"-ac", "1",
		"-ar", strconv.Itoa(r.sampleRate),
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}
}
