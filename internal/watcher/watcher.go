package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

var partialExts = map[string]bool{
	".part":       true,
	".crdownload": true,
	".download":   true,
	".tmp":        true,
}

// Start begins monitoring the input directory for new recordings
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d, quiescence: %s). Monitoring: %s",
		w.opts.MaxConcurrent, w.opts.Quiescence, w.opts.Dir)

	for i := 0; i < w.opts.MaxConcurrent; i++ {
		w.wg.Add(1)
		go w.worker(ctx)
	}

	if !w.opts.SkipExisting {
		w.scanExisting(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if isIgnored(event.Name) {
				w.logger.Debug(ctx, "Ignoring %s", event.Name)
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) Jobs() []models.RecordingJob {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]models.RecordingJob, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.jobs[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DiscoveredAt.Before(out[j].DiscoveredAt)
	})
	return out
}

func (w *implWatcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		w.logger.Warn(ctx, "Failed to scan %s: %v", w.opts.Dir, err)
		return
	}
	for _, entry := range entries {
		path := filepath.Join(w.opts.Dir, entry.Name())
		if !entry.Type().IsRegular() || isIgnored(path) {
			continue
		}
		w.schedule(ctx, path)
	}
}

// schedule (re)arms the quiescence timer for path.
func (w *implWatcher) schedule(ctx context.Context, path string) {
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.size, p.modTime = st.Size(), st.ModTime()
		p.timer.Reset(w.opts.Quiescence)
		return
	}
	w.logger.Debug(ctx, "Detected %s, waiting for it to settle", path)
	w.pending[path] = &pendingFile{
		size:    st.Size(),
		modTime: st.ModTime(),
		timer:   time.AfterFunc(w.opts.Quiescence, func() { w.settle(ctx, path) }),
	}
}

// settle runs once path has been quiet for the quiescence period.
func (w *implWatcher) settle(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	st, err := os.Stat(path)

	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		w.logger.Debug(ctx, "%s disappeared before it settled", path)
		return
	}
	if st.Size() != p.size || !st.ModTime().Equal(p.modTime) {
		p.size, p.modTime = st.Size(), st.ModTime()
		p.timer.Reset(w.opts.Quiescence)
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	if w.inFlight[path] {
		w.rerun[path] = true
		w.mu.Unlock()
		w.logger.Debug(ctx, "%s changed while in progress, will recheck", path)
		return
	}
	w.mu.Unlock()

	done, err := w.store.Has(ctx, path, st.ModTime())
	if err != nil {
		w.logger.Warn(ctx, "Job store lookup failed for %s: %v", path, err)
	}
	if done {
		err := &store.JobAlreadyProcessedError{Path: path, ModTime: st.ModTime()}
		w.logger.Debug(ctx, "Skipping: %v", err)
		return
	}

	job := &models.RecordingJob{
		ID:           uuid.NewString(),
		SourcePath:   path,
		ModTime:      st.ModTime(),
		DiscoveredAt: time.Now(),
		Status:       models.JobStatusPending,
	}

	w.mu.Lock()
	if w.inFlight[path] {
		w.rerun[path] = true
		w.mu.Unlock()
		return
	}
	w.inFlight[path] = true
	w.jobs[job.ID] = job
	w.order = append(w.order, job.ID)
	w.mu.Unlock()

	w.logger.Info(ctx, "Queued %s (job %s)", path, job.ID)
	select {
	case w.queue <- job.ID:
	case <-ctx.Done():
	}
}

func (w *implWatcher) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-w.queue:
			w.run(ctx, id)
		}
	}
}

func (w *implWatcher) run(ctx context.Context, id string) {
	now := time.Now()
	w.mu.Lock()
	job := w.jobs[id]
	job.Status = models.JobStatusInProgress
	job.StartedAt = &now
	job.Attempts++
	req := w.opts.Template
	req.Job = *job
	w.mu.Unlock()

	res, err := w.pipeline.Process(ctx, req)

	finished := time.Now()
	w.mu.Lock()
	job.FinishedAt = &finished
	if err != nil {
		job.Status = models.JobStatusFailed
		job.ErrorKind = pipeline.ErrorKind(err)
		job.Error = err.Error()
		// ffmpeg killed on shutdown surfaces as a conversion error.
		if ctx.Err() != nil {
			job.ErrorKind = pipeline.KindCanceled
		}
	} else {
		job.Status = models.JobStatusCompleted
		job.OutputDir = res.OutputDir
	}
	snapshot := *job
	w.mu.Unlock()

	if err != nil {
		w.logger.Error(ctx, "Job %s failed for %s [%s]: %v", id, snapshot.SourcePath, snapshot.ErrorKind, err)
	} else {
		w.logger.Info(ctx, "Job %s completed for %s -> %s", id, snapshot.SourcePath, snapshot.OutputDir)
	}

	// An interrupted job is retried on the next start.
	if snapshot.ErrorKind != pipeline.KindCanceled {
		if err := w.store.Mark(context.WithoutCancel(ctx), store.FromJob(snapshot)); err != nil {
			w.logger.Warn(ctx, "Failed to record job %s: %v", id, err)
		}
	}

	w.mu.Lock()
	delete(w.inFlight, snapshot.SourcePath)
	again := w.rerun[snapshot.SourcePath]
	delete(w.rerun, snapshot.SourcePath)
	w.mu.Unlock()

	if again && ctx.Err() == nil {
		w.schedule(ctx, snapshot.SourcePath)
	}
}

func (w *implWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// isIgnored reports hidden files and in-progress downloads.
func isIgnored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return partialExts[strings.ToLower(filepath.Ext(base))]
}
