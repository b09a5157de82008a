package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

// Options configures a Watcher.
type Options struct {
	Dir           string
	Quiescence    time.Duration
	MaxConcurrent int
	QueueSize     int
	SkipExisting  bool
	// Template is copied into every pipeline request. Its Job is replaced.
	Template pipeline.Request
}

// OptionsFromConfig builds Options for cfg.Paths.Input.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:           cfg.Paths.Input,
		Quiescence:    cfg.Watcher.Quiescence,
		MaxConcurrent: cfg.Watcher.MaxConcurrent,
		QueueSize:     cfg.Watcher.QueueSize,
		SkipExisting:  cfg.Watcher.SkipExisting,
	}
}

type pendingFile struct {
	timer   *time.Timer
	size    int64
	modTime time.Time
}

type implWatcher struct {
	opts     Options
	pipeline pipeline.Pipeline
	store    store.Store
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	queue    chan string
	wg       sync.WaitGroup

	mu       sync.Mutex
	pending  map[string]*pendingFile
	inFlight map[string]bool
	rerun    map[string]bool
	jobs     map[string]*models.RecordingJob
	order    []string
}

// New creates a new Watcher on opts.Dir, creating the directory if needed
func New(opts Options, p pipeline.Pipeline, st store.Store, log logger.Logger) (Watcher, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(opts.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	// Default to 1 concurrent if not specified
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Quiescence <= 0 {
		opts.Quiescence = 10 * time.Second
	}
	if st == nil {
		st = store.NewMemory()
	}

	return &implWatcher{
		opts:     opts,
		pipeline: p,
		store:    st,
		logger:   log,
		watcher:  watcher,
		queue:    make(chan string, opts.QueueSize),
		pending:  make(map[string]*pendingFile),
		inFlight: make(map[string]bool),
		rerun:    make(map[string]bool),
		jobs:     make(map[string]*models.RecordingJob),
	}, nil
}
