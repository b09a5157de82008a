package pipeline

import (
	"github.com/nguyentantai21042004/minutes-flow/internal/archive"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/intake"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Deps are the collaborators of a Pipeline. Archiver may be nil.
type Deps struct {
	Intake      intake.Intake
	Transcriber transcriber.Client
	Minutes     minutes.Generator
	Archiver    archive.Archiver
	Logger      logger.Logger
}

type implPipeline struct {
	cfg         *config.Config
	intake      intake.Intake
	transcriber transcriber.Client
	minutes     minutes.Generator
	archiver    archive.Archiver
	logger      logger.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, deps Deps) Pipeline {
	return &implPipeline{
		cfg:         cfg,
		intake:      deps.Intake,
		transcriber: deps.Transcriber,
		minutes:     deps.Minutes,
		archiver:    deps.Archiver,
		logger:      deps.Logger,
	}
}
