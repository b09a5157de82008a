package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/minutes-flow/internal/intake"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/postprocess"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Process orchestrates the whole job. Nothing is written under the output
// root unless every stage succeeds.
func (p *implPipeline) Process(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	job := req.Job
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	mode := req.Mode
	if mode == "" {
		mode = transcriber.ModeTranscribe
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting job %s: %s", job.ID, job.SourcePath)
	p.logger.Info(ctx, "========================================")

	workDir := filepath.Join(p.cfg.Paths.Temp, job.ID)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create work dir: %w", err)
	}
	defer p.cleanupDir(ctx, workDir)

	// Step 1: Validate and normalize
	normalized, err := p.intake.Normalize(ctx, job.SourcePath, workDir)
	if err != nil {
		return Result{}, fmt.Errorf("intake: %w", err)
	}

	// Step 2: Transcribe
	raw, err := p.transcriber.Transcribe(ctx, normalized.NormalizedPath, transcriber.Options{
		Language: req.Language,
		Mode:     mode,
		WorkDir:  workDir,
	})
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: %w", err)
	}

	// Step 3: Clean
	cleaned := postprocess.Clean(raw.Text, raw.Segments)

	// Step 4: Minutes
	mom, err := p.minutes.Generate(ctx, cleaned, p.meetingFor(req, job, started))
	if err != nil {
		return Result{}, fmt.Errorf("generate minutes: %w", err)
	}

	// Step 5: Persist
	language := raw.Language
	if language == "" {
		language = req.Language
	}
	meta := models.JobMetadata{
		JobID:               job.ID,
		SourcePath:          job.SourcePath,
		SourceFile:          filepath.Base(job.SourcePath),
		CreatedAt:           started,
		Mode:                string(mode),
		Language:            language,
		DurationSeconds:     normalized.Duration,
		FileSizeBytes:       normalized.SourceSize,
		FileSize:            humanize.Bytes(uint64(normalized.SourceSize)),
		NormalizedSizeBytes: normalized.NormalizedSize,
		Converted:           normalized.Converted,
		Chunks:              raw.Chunks,
		Segments:            len(cleaned.Segments),
		TranscriptionModel:  p.cfg.Transcription.Model,
		MinutesModel:        p.minutes.Model(),
	}

	root := req.OutputRoot
	if root == "" {
		root = p.cfg.Paths.Output
	}
	outDir, err := p.persist(ctx, root, job, normalized, cleaned, mom, &meta, started)
	if err != nil {
		return Result{}, fmt.Errorf("persist: %w", err)
	}

	// Step 6: Archive (best effort)
	if p.archiver != nil {
		if _, err := p.archiver.Upload(ctx, filepath.Base(outDir), outDir); err != nil {
			p.logger.Warn(ctx, "Failed to archive %s: %v", outDir, err)
		}
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Job %s completed", job.ID)
	p.logger.Info(ctx, "Output: %s", outDir)
	p.logger.Info(ctx, "Processing time: %s", time.Since(started).Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")

	return Result{
		OutputDir:  outDir,
		Transcript: cleaned,
		Minutes:    mom,
		Metadata:   meta,
	}, nil
}

// persist writes every artifact into a staging directory and renames it
// into place once complete.
func (p *implPipeline) persist(
	ctx context.Context,
	root string,
	job models.RecordingJob,
	normalized intake.Result,
	cleaned models.CleanedTranscript,
	mom models.MeetingMinutes,
	meta *models.JobMetadata,
	started time.Time,
) (string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("create output root: %w", err)
	}

	suffix := shortID(job.ID)
	final := UniqueDir(root, JobDirName(job.SourcePath, started), suffix)
	staging := StagingDir(final, suffix)
	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			p.cleanupDir(ctx, staging)
		}
	}()

	if err := CopyFile(job.SourcePath, filepath.Join(staging, AudioFileName(job.SourcePath))); err != nil {
		return "", fmt.Errorf("copy source audio: %w", err)
	}
	if err := WriteText(filepath.Join(staging, FileTranscript), cleaned.Text); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	if err := WriteSegments(filepath.Join(staging, FileSegments), cleaned.Segments); err != nil {
		return "", fmt.Errorf("write segments: %w", err)
	}

	momJSON, err := minutes.RenderJSON(mom)
	if err != nil {
		return "", fmt.Errorf("render minutes json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, FileMinutesJSON), momJSON, 0644); err != nil {
		return "", fmt.Errorf("write minutes json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, FileMinutesMD), []byte(minutes.RenderMarkdown(mom)), 0644); err != nil {
		return "", fmt.Errorf("write minutes markdown: %w", err)
	}
	if p.cfg.Minutes.Docx {
		if err := minutes.RenderDocx(mom, filepath.Join(staging, FileMinutesDocx)); err != nil {
			return "", fmt.Errorf("write minutes docx: %w", err)
		}
	}

	meta.ProcessingTimeSeconds = time.Since(started).Seconds()
	if err := WriteMetadata(filepath.Join(staging, FileMetadata), *meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	final, err = commitDir(staging, final, suffix)
	if err != nil {
		return "", fmt.Errorf("commit job dir: %w", err)
	}
	committed = true

	p.logger.Debug(ctx, "Persisted %s (%s source, %d segments)", final, humanize.Bytes(uint64(normalized.SourceSize)), len(cleaned.Segments))
	return final, nil
}

// meetingFor fills missing meeting fields from config and the source file.
func (p *implPipeline) meetingFor(req Request, job models.RecordingJob, started time.Time) models.MeetingContext {
	m := req.Meeting
	if m.Title == "" {
		base := strings.TrimSuffix(filepath.Base(job.SourcePath), filepath.Ext(job.SourcePath))
		m.Title = p.cfg.Minutes.TitlePrefix + base
	}
	if m.DateTime.IsZero() {
		if !job.ModTime.IsZero() {
			m.DateTime = job.ModTime
		} else {
			m.DateTime = started
		}
	}
	if m.Platform == "" {
		m.Platform = p.cfg.Minutes.Platform
	}
	if len(m.Participants) == 0 {
		m.Participants = append([]string(nil), p.cfg.Minutes.Participants...)
	}
	return m
}

// cleanupDir removes a directory, logs warning if fails
func (p *implPipeline) cleanupDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up: %s", dir)
	}
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
