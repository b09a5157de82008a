package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/credential"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/version"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// Dependencies are filled in before any subcommand runs.
type Dependencies struct {
	ConfigPath  string
	Config      *config.Config
	Logger      logger.Logger
	Credentials credential.Store
	Executor    executor.Executor
	In          io.Reader
	Out         io.Writer
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "minutes",
		Short:         "Turn meeting recordings into transcripts and minutes",
		Long:          "A CLI that watches a folder for meeting recordings, transcribes them, and writes structured minutes of meeting. It can also record from the microphone.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.init()
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "config.yaml", "Config file (.yaml or .toml)")

	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewJobsCmd(deps))
	rootCmd.AddCommand(NewCredentialCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func (d *Dependencies) init() error {
	if d.Config == nil {
		cfg, err := config.LoadOrDefault(d.ConfigPath)
		if err != nil {
			return err
		}
		d.Config = cfg
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logger.NewWithWriter(os.Stderr, d.Config.Logging.Level, d.Config.Logging.Format)
	}
	if d.Credentials == nil {
		d.Credentials = credential.New(credential.Service)
	}
	if d.Executor == nil {
		d.Executor = executor.New()
	}
	return nil
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Full())
		},
	}
}
