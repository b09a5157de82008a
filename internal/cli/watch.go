package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/statusserver"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/watcher"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var (
		titlePrefix  string
		participants string
		platform     string
		language     string
		translate    bool
		statusAddr   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input folder and process every new recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if cmd.Flags().Changed("title-prefix") {
				cfg.Minutes.TitlePrefix = titlePrefix
			}
			if p := parseParticipants(participants); len(p) > 0 {
				cfg.Minutes.Participants = p
			}
			if platform != "" {
				cfg.Minutes.Platform = platform
			}
			if language == "" {
				language = cfg.Transcription.Language
			}
			if !cmd.Flags().Changed("translate") {
				translate = cfg.Transcription.Translate
			}
			if statusAddr != "" {
				cfg.Status.Addr = statusAddr
			}
			return runWatch(cmd.Context(), deps, language, translate)
		},
	}

	cmd.Flags().StringVar(&titlePrefix, "title-prefix", "Meet: ", "Prefix for titles derived from file names")
	cmd.Flags().StringVar(&participants, "participants", "", "Comma separated participant names")
	cmd.Flags().StringVar(&platform, "platform", "", "Meeting platform (default from config)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language hint for transcription")
	cmd.Flags().BoolVar(&translate, "translate", false, "Translate speech to English instead of transcribing")
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "Serve job status on this address, e.g. :8080")

	return cmd
}

func runWatch(parent context.Context, deps *Dependencies, language string, translate bool) error {
	cfg := deps.Config
	log := deps.Logger

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := ensureDirectories(cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Temp); err != nil {
		return err
	}

	p, err := newPipeline(deps)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	defer st.Close()

	opts := watcher.OptionsFromConfig(cfg)
	opts.Template = pipeline.Request{
		Language: language,
		Mode:     modeFor(translate),
	}
	w, err := watcher.New(opts, p, st, log)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	if cfg.Status.Addr != "" {
		srv := statusserver.New(w, st, log)
		go func() {
			if err := srv.Run(ctx, cfg.Status.Addr); err != nil {
				log.Error(ctx, "Status server error: %v", err)
			}
		}()
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Minutes pipeline is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Store: %s", cfg.Store.Backend)
	log.Info(ctx, "Mode: %s, concurrent jobs: %d", modeFor(translate), opts.MaxConcurrent)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !isCanceled(err) {
		return fmt.Errorf("watcher: %w", err)
	}
	log.Info(context.Background(), "Minutes pipeline stopped")
	return nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
