package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/config"
	"cancerml/pkg/store"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded pipeline runs",
		Long:  `List the most recent runs recorded in the run ledger, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			if cfg.StatePath == "" {
				return fmt.Errorf("the run ledger is disabled (state_path is empty)")
			}
			if _, err := os.Stat(cfg.StatePath); errors.Is(err, os.ErrNotExist) {
				renderRuns(cmd.OutOrStdout(), nil)
				return nil
			}
			st, err := store.Open(cfg.StatePath, config.GetLogger(ctx))
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}
