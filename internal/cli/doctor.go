package cli

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/credential"
	"github.com/nguyentantai21042004/minutes-flow/internal/output"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			f := output.NewFormatter(deps.Out)
			ok := true

			for _, bin := range []string{cfg.Intake.FFmpegBinary, cfg.Intake.FFprobeBinary} {
				if path, err := exec.LookPath(bin); err != nil {
					f.SetupCheck(bin, false, "not found. Install ffmpeg and make sure it is on PATH")
					ok = false
				} else {
					f.SetupCheck(bin, true, path)
				}
			}

			if credential.Resolve(deps.Credentials, cfg.Transcription.APIKey, credential.OpenAIKey) != "" {
				f.SetupCheck("Transcription API key", true, "configured")
			} else {
				f.SetupCheck("Transcription API key", false, "not set. Set OPENAI_API_KEY or run: minutes credential set OPENAI_API_KEY <key>")
				ok = false
			}

			if len(cfg.LLM.APIKeys) > 0 || credential.Resolve(deps.Credentials, "", credential.GeminiKeys) != "" {
				f.SetupCheck("Gemini API keys", true, "configured")
			} else {
				f.SetupCheck("Gemini API keys", false, "not set. Set GEMINI_API_KEYS or add llm.api_keys to config")
				ok = false
			}

			if st, err := store.Open(cmd.Context(), cfg.Store); err != nil {
				f.SetupCheck("Job store", false, err.Error())
				ok = false
			} else {
				st.Close()
				f.SetupCheck("Job store", true, cfg.Store.Backend)
			}

			if _, err := os.Stat(cfg.Paths.Input); err != nil {
				f.SetupCheck("Input directory", true, cfg.Paths.Input+" (will be created)")
			} else {
				f.SetupCheck("Input directory", true, cfg.Paths.Input)
			}
			f.SetupCheck("Output directory", true, cfg.Paths.Output)

			if ok {
				f.Success("\nAll prerequisites met. Ready to process recordings!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
