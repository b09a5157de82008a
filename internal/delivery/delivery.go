// Package delivery hands the result of a live recording to the user: the
// clipboard by default, and a folder on disk when asked.
package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
)

// FileEnhancedPrompt holds the enhanced prompt when enhancement ran.
const FileEnhancedPrompt = "enhanced_prompt.txt"

// Bundle is everything a live recording produced.
type Bundle struct {
	AudioPath  string
	Transcript models.Transcript
	// Enhanced is empty when enhancement was off or fell back.
	Enhanced string
	Metadata models.JobMetadata
}

// Outcome reports what Deliver did.
type Outcome struct {
	Copied bool
	Dir    string
	Files  []string
}

type Delivery struct {
	cfg    config.DeliveryConfig
	copy   func(string) error
	now    func() time.Time
	logger logger.Logger
}

func New(cfg config.DeliveryConfig, log logger.Logger) *Delivery {
	return &Delivery{
		cfg:    cfg,
		copy:   clipboard.WriteAll,
		now:    time.Now,
		logger: log,
	}
}

// Deliver copies the final text to the clipboard unless disabled and saves
// the artifacts only when SaveToDisk is set. A clipboard failure is a
// warning, a save failure is an error.
func (d *Delivery) Deliver(ctx context.Context, b Bundle) (Outcome, error) {
	var out Outcome

	if !d.cfg.NoClipboard {
		if err := d.copy(FinalText(b)); err != nil {
			d.logger.Warn(ctx, "Could not copy to clipboard: %v", err)
		} else {
			out.Copied = true
		}
	}

	if !d.cfg.SaveToDisk {
		return out, nil
	}

	dir, files, err := d.save(b)
	if err != nil {
		return out, fmt.Errorf("save recording: %w", err)
	}
	out.Dir, out.Files = dir, files
	return out, nil
}

// FinalText is the enhanced prompt when present, else the transcript.
func FinalText(b Bundle) string {
	if b.Enhanced != "" {
		return b.Enhanced
	}
	return b.Transcript.Text
}

func (d *Delivery) save(b Bundle) (string, []string, error) {
	if err := os.MkdirAll(d.cfg.OutputDir, 0755); err != nil {
		return "", nil, err
	}
	dir := pipeline.UniqueDir(d.cfg.OutputDir, pipeline.JobDirName("recording", d.now()), uuid.NewString()[:8])
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", nil, err
	}

	var files []string
	write := func(name string, fn func(path string) error) error {
		if err := fn(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		files = append(files, name)
		return nil
	}

	audioName := pipeline.AudioFileName(b.AudioPath)
	if err := write(audioName, func(p string) error { return pipeline.CopyFile(b.AudioPath, p) }); err != nil {
		return dir, files, err
	}
	if err := write(pipeline.FileTranscript, func(p string) error { return pipeline.WriteText(p, b.Transcript.Text) }); err != nil {
		return dir, files, err
	}
	if b.Enhanced != "" {
		if err := write(FileEnhancedPrompt, func(p string) error { return pipeline.WriteText(p, b.Enhanced) }); err != nil {
			return dir, files, err
		}
	}
	if err := write(pipeline.FileSegments, func(p string) error { return pipeline.WriteSegments(p, b.Transcript.Segments) }); err != nil {
		return dir, files, err
	}
	if err := write(pipeline.FileMetadata, func(p string) error { return pipeline.WriteMetadata(p, b.Metadata) }); err != nil {
		return dir, files, err
	}
	return dir, files, nil
}
