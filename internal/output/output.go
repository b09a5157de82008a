package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(language string, translate bool) {
	mode := "transcribe"
	if translate {
		mode = "translate to English"
	}
	fmt.Fprintf(f.w, "🎙️  Recording (language: %s, mode: %s). Press Ctrl+C to stop.\n", language, mode)
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
}

func (f *Formatter) Transcribing() {
	fmt.Fprintf(f.w, "📝 Transcribing audio...\n")
}

func (f *Formatter) Enhancing() {
	fmt.Fprintf(f.w, "✨ Enhancing prompt...\n")
}

func (f *Formatter) Refining(initial string) {
	fmt.Fprintf(f.w, "\n🤖 Interactive prompt refinement\n")
	fmt.Fprintf(f.w, "Your initial prompt:\n  %q\n", initial)
}

func (f *Formatter) Assistant(msg string) {
	fmt.Fprintf(f.w, "\nAI: %s\n", msg)
}

func (f *Formatter) ResponseMenu() {
	fmt.Fprintf(f.w, "\n📝 How would you like to respond?\n")
	fmt.Fprintf(f.w, "  [1] Speak (press Ctrl+C when done)\n")
	fmt.Fprintf(f.w, "  [2] Type\n")
	fmt.Fprintf(f.w, "  [R] Retake (discard and start over)\n")
	fmt.Fprintf(f.w, "  [Q] Quit interactive mode\n")
	fmt.Fprintf(f.w, "Enter your choice (1/2/R/Q): ")
}

func (f *Formatter) Prompt(label string) {
	fmt.Fprint(f.w, label)
}

func (f *Formatter) Processing(path string) {
	fmt.Fprintf(f.w, "⚙️  Processing %s\n", path)
}

func (f *Formatter) JobComplete(dir string, meta models.JobMetadata) {
	fmt.Fprintf(f.w, "\n📁 Minutes saved: %s\n", dir)
	fmt.Fprintf(f.w, "   %s of audio, %d segments, took %s\n",
		formatDuration(time.Duration(meta.DurationSeconds*float64(time.Second))),
		meta.Segments,
		formatDuration(time.Duration(meta.ProcessingTimeSeconds*float64(time.Second))))
}

func (f *Formatter) Saved(dir string, files []string) {
	fmt.Fprintf(f.w, "\n✅ Saved to: %s\n", dir)
	for _, name := range files {
		fmt.Fprintf(f.w, "  - %s\n", name)
	}
}

func (f *Formatter) Text(title, body string) {
	fmt.Fprintf(f.w, "\n=== %s ===\n%s\n", title, body)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) JobListHeader() {
	fmt.Fprintf(f.w, "📁 Jobs:\n\n")
}

func (f *Formatter) JobListItem(rec store.Record) {
	status := "✅"
	if rec.Status == models.JobStatusFailed {
		status = "❌"
	}
	fmt.Fprintf(f.w, "  %s %s  %s", status, humanize.Time(rec.FinishedAt), rec.SourcePath)
	if rec.ErrorKind != "" {
		fmt.Fprintf(f.w, "  [%s]", rec.ErrorKind)
	}
	if rec.OutputDir != "" {
		fmt.Fprintf(f.w, "\n      → %s", rec.OutputDir)
	}
	fmt.Fprintln(f.w)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
