package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/output"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

func NewJobsCmd(deps *Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List processed recordings from the job store",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(deps.Out)

			st, err := store.Open(cmd.Context(), deps.Config.Store)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer st.Close()

			recs, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				f.Info("No jobs found")
				return nil
			}

			f.JobListHeader()
			for _, rec := range recs {
				f.JobListItem(rec)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	return cmd
}
