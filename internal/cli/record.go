package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/credential"
	"github.com/nguyentantai21042004/minutes-flow/internal/delivery"
	"github.com/nguyentantai21042004/minutes-flow/internal/enhancer"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/output"
	"github.com/nguyentantai21042004/minutes-flow/internal/recorder"
	"github.com/nguyentantai21042004/minutes-flow/internal/refiner"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

type recordOptions struct {
	language    string
	translate   bool
	enhance     bool
	interactive bool
	save        bool
	noClipboard bool
	outputDir   string
	apiKey      string
}

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var opts recordOptions

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone until Ctrl+C, then transcribe",
		Long:  "Capture microphone audio, transcribe or translate it, optionally enhance it into a structured prompt or refine it through a question-and-answer dialogue, and copy the result to the clipboard. Nothing is written to disk unless --save is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.language == "" {
				opts.language = deps.Config.Transcription.Language
			}
			if !cmd.Flags().Changed("translate") {
				opts.translate = deps.Config.Transcription.Translate
			}
			return runRecord(cmd.Context(), deps, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Language hint, e.g. en or vi")
	cmd.Flags().BoolVar(&opts.translate, "translate", false, "Translate speech to English")
	cmd.Flags().BoolVar(&opts.enhance, "enhance", false, "Rewrite the transcript into a structured prompt")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Refine the prompt through a dialogue with the model (overrides --enhance)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save audio, transcript and metadata to the output directory")
	cmd.Flags().BoolVar(&opts.noClipboard, "no-clipboard", false, "Do not copy the result to the clipboard")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Where --save writes recordings (default from config)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Transcription API key; stored in the OS keyring for next time")

	return cmd
}

func runRecord(ctx context.Context, deps *Dependencies, opts recordOptions) error {
	cfg := deps.Config
	log := deps.Logger
	f := output.NewFormatter(deps.Out)

	if opts.apiKey != "" {
		if err := deps.Credentials.Set(credential.OpenAIKey, opts.apiKey); err != nil {
			log.Warn(ctx, "Could not store API key in keyring: %v", err)
		}
	}
	tc, err := newTranscriber(deps, opts.apiKey)
	if err != nil {
		return err
	}

	if err := ensureDirectories(cfg.Paths.Temp); err != nil {
		return err
	}
	workDir, err := os.MkdirTemp(cfg.Paths.Temp, "record-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)
	audioPath := filepath.Join(workDir, "audio_original.wav")

	// Step 1: Capture until Ctrl+C
	rec := recorder.New(cfg.Recorder, cfg.Intake, deps.Executor, log)
	f.RecordingStarted(opts.language, opts.translate)
	recCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	started := time.Now()
	info, err := rec.Record(recCtx, audioPath)
	stop()
	f.RecordingStopped(time.Since(started))
	if err != nil {
		return err
	}

	// Step 2: Transcribe
	f.Transcribing()
	mode := modeFor(opts.translate)
	tr, err := tc.Transcribe(ctx, audioPath, transcriber.Options{
		Language: opts.language,
		Mode:     mode,
		WorkDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(tr.Text) == "" {
		return errors.New("no speech detected")
	}

	st, err := os.Stat(audioPath)
	if err != nil {
		return err
	}
	bundle := delivery.Bundle{
		AudioPath:  audioPath,
		Transcript: tr,
		Metadata: models.JobMetadata{
			JobID:               uuid.NewString(),
			SourceFile:          filepath.Base(audioPath),
			CreatedAt:           started,
			Mode:                string(mode),
			Language:            opts.language,
			DurationSeconds:     info.Duration(),
			FileSizeBytes:       st.Size(),
			FileSize:            humanize.Bytes(uint64(st.Size())),
			NormalizedSizeBytes: st.Size(),
			Chunks:              tr.Chunks,
			Segments:            len(tr.Segments),
			TranscriptionModel:  cfg.Transcription.Model,
		},
	}

	// Step 3: Refine or enhance (optional, falls back to the transcript)
	switch {
	case opts.interactive:
		lc, err := newLLM(deps)
		if err != nil {
			f.Warning(fmt.Sprintf("Refinement skipped: %v", err))
			break
		}
		answers := 0
		voice := func(ctx context.Context) (string, error) {
			answers++
			return recordAnswer(ctx, deps, rec, tc, workDir, answers, opts)
		}
		f.Refining(tr.Text)
		r := refiner.New(lc, log)
		res, err := r.Refine(ctx, tr.Text, newTerminalResponder(deps.In, f, voice))
		switch {
		case err != nil:
			f.Warning(fmt.Sprintf("Refinement failed, using raw transcript: %v", err))
		case res.Prompt != tr.Text:
			bundle.Enhanced = res.Prompt
			bundle.Metadata.EnhancementModel = r.Model()
		default:
			f.Info("Interactive refinement cancelled. Using the original prompt.")
		}

	case opts.enhance:
		lc, err := newLLM(deps)
		if err != nil {
			f.Warning(fmt.Sprintf("Enhancement skipped: %v", err))
		} else {
			f.Enhancing()
			e := enhancer.New(lc, log)
			if text, ok := e.Enhance(ctx, tr.Text); ok {
				bundle.Enhanced = text
				bundle.Metadata.EnhancementModel = e.Model()
			}
		}
	}
	bundle.Metadata.ProcessingTimeSeconds = time.Since(started).Seconds()

	// Step 4: Deliver
	dcfg := cfg.Delivery
	if opts.save {
		dcfg.SaveToDisk = true
	}
	if opts.noClipboard {
		dcfg.NoClipboard = true
	}
	if opts.outputDir != "" {
		dcfg.OutputDir = opts.outputDir
	}
	out, err := delivery.New(dcfg, log).Deliver(ctx, bundle)
	if err != nil {
		return err
	}

	title := "Transcript"
	switch {
	case bundle.Enhanced != "" && opts.interactive:
		title = "Refined Prompt"
	case bundle.Enhanced != "":
		title = "Enhanced Prompt"
	}
	f.Text(title, delivery.FinalText(bundle))

	switch {
	case out.Copied:
		f.Success(title + " copied to clipboard.")
	case dcfg.NoClipboard:
		f.Info("Clipboard copy skipped.")
	}
	if out.Dir != "" {
		f.Saved(out.Dir, out.Files)
	} else {
		f.Info("Not saved (use --save to write files).")
	}
	return nil
}

// recordAnswer captures one spoken reply during refinement and returns its
// transcript.
func recordAnswer(ctx context.Context, deps *Dependencies, rec recorder.Recorder, tc transcriber.Client, workDir string, n int, opts recordOptions) (string, error) {
	f := output.NewFormatter(deps.Out)
	path := filepath.Join(workDir, fmt.Sprintf("answer_%02d.wav", n))

	f.RecordingStarted(opts.language, opts.translate)
	recCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	started := time.Now()
	_, err := rec.Record(recCtx, path)
	stop()
	f.RecordingStopped(time.Since(started))
	if err != nil {
		return "", err
	}

	f.Transcribing()
	tr, err := tc.Transcribe(ctx, path, transcriber.Options{
		Language: opts.language,
		Mode:     modeFor(opts.translate),
		WorkDir:  workDir,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe answer: %w", err)
	}
	return tr.Text, nil
}
