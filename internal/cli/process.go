package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/intake"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/output"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	var (
		title        string
		dateTime     string
		participants string
		platform     string
		language     string
		translate    bool
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "process <file|url>",
		Short: "Process a single recording into transcript and minutes",
		Long:  "Process one recording into a transcript and minutes of meeting. The source may be a local file or an http(s) URL, which is downloaded into the temp directory first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseDateTime(dateTime)
			if err != nil {
				return err
			}
			if language == "" {
				language = deps.Config.Transcription.Language
			}
			if !cmd.Flags().Changed("translate") {
				translate = deps.Config.Transcription.Translate
			}

			src := args[0]
			if !intake.IsURL(src) {
				if src, err = filepath.Abs(src); err != nil {
					return err
				}
			}
			req := pipeline.Request{
				Meeting: models.MeetingContext{
					Title:        title,
					Participants: parseParticipants(participants),
					DateTime:     when,
					Platform:     platform,
				},
				Language:   language,
				Mode:       modeFor(translate),
				OutputRoot: outputDir,
			}
			return runProcess(cmd.Context(), deps, src, req)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (default: title prefix + file name)")
	cmd.Flags().StringVar(&dateTime, "datetime", "", "Meeting date and time (default: file modification time)")
	cmd.Flags().StringVar(&participants, "participants", "", "Comma separated participant names")
	cmd.Flags().StringVar(&platform, "platform", "", "Meeting platform (default from config)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language hint for transcription")
	cmd.Flags().BoolVar(&translate, "translate", false, "Translate speech to English instead of transcribing")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output root (default: paths.output)")

	return cmd
}

func runProcess(parent context.Context, deps *Dependencies, src string, req pipeline.Request) error {
	f := output.NewFormatter(deps.Out)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Step 1: Resolve the source, downloading remote recordings
	local := src
	if intake.IsURL(src) {
		if err := ensureDirectories(deps.Config.Paths.Temp); err != nil {
			return err
		}
		dlDir, err := os.MkdirTemp(deps.Config.Paths.Temp, "download-*")
		if err != nil {
			return fmt.Errorf("create download dir: %w", err)
		}
		defer os.RemoveAll(dlDir)

		f.Info("Downloading " + src)
		local, err = intake.Fetch(ctx, nil, deps.Config.Intake, src, dlDir)
		if err != nil {
			return fmt.Errorf("%s [%s]: %w", src, pipeline.ErrorKind(err), err)
		}
	}

	st, err := os.Stat(local)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	p, err := newPipeline(deps)
	if err != nil {
		return err
	}

	// Step 2: Run the pipeline on the local copy
	started := time.Now()
	req.Job = models.RecordingJob{
		ID:           uuid.NewString(),
		SourcePath:   local,
		ModTime:      st.ModTime(),
		DiscoveredAt: started,
		StartedAt:    &started,
		Status:       models.JobStatusInProgress,
		Attempts:     1,
	}

	f.Processing(src)
	res, runErr := p.Process(ctx, req)

	finished := time.Now()
	req.Job.FinishedAt = &finished
	if runErr != nil {
		req.Job.Status = models.JobStatusFailed
		req.Job.ErrorKind = pipeline.ErrorKind(runErr)
		req.Job.Error = runErr.Error()
		if ctx.Err() != nil {
			req.Job.ErrorKind = pipeline.KindCanceled
		}
	} else {
		req.Job.Status = models.JobStatusCompleted
		req.Job.OutputDir = res.OutputDir
	}

	// Step 3: Record the outcome under the name the user gave
	rec := req.Job
	rec.SourcePath = src
	recordOutcome(deps, rec)

	if runErr != nil {
		return fmt.Errorf("%s [%s]: %w", src, req.Job.ErrorKind, runErr)
	}
	f.JobComplete(res.OutputDir, res.Metadata)
	return nil
}

// recordOutcome adds a one-shot job to the store history. Failures only
// log, the job itself already finished.
func recordOutcome(deps *Dependencies, job models.RecordingJob) {
	if job.ErrorKind == pipeline.KindCanceled {
		return
	}
	ctx := context.Background()
	st, err := store.Open(ctx, deps.Config.Store)
	if err != nil {
		deps.Logger.Warn(ctx, "Job store unavailable: %v", err)
		return
	}
	defer st.Close()
	if err := st.Mark(ctx, store.FromJob(job)); err != nil {
		deps.Logger.Warn(ctx, "Failed to record job: %v", err)
	}
}
