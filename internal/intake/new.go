package intake

import (
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

type implIntake struct {
	maxFileSize int64
	sampleRate  int
	ffmpeg      string
	ffprobe     string
	timeout     time.Duration
	executor    executor.Executor
	logger      logger.Logger
}

// New creates an Intake backed by ffmpeg/ffprobe.
func New(cfg config.IntakeConfig, exec executor.Executor, log logger.Logger) Intake {
	return &implIntake{
		maxFileSize: cfg.MaxFileSize(),
		sampleRate:  cfg.SampleRate,
		ffmpeg:      cfg.FFmpegBinary,
		ffprobe:     cfg.FFprobeBinary,
		timeout:     cfg.ConversionTimeout,
		executor:    exec,
		logger:      log,
	}
}
