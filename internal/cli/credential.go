package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/output"
)

func NewCredentialCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Read or store API keys in the OS keyring",
	}

	var show bool
	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show whether a credential is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := deps.Credentials.Get(args[0])
			if err != nil {
				return err
			}
			if !show {
				v = mask(v)
			}
			fmt.Fprintln(deps.Out, v)
			return nil
		},
	}
	get.Flags().BoolVar(&show, "show", false, "Print the full value")

	set := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a credential in the OS keyring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Credentials.Set(args[0], args[1]); err != nil {
				return err
			}
			output.NewFormatter(deps.Out).Success(fmt.Sprintf("Stored %s", args[0]))
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

// mask keeps the last four characters.
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
