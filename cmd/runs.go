package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/yardops-cli/internal/model"
	"github.com/sells-group/yardops-cli/internal/store"
)

var (
	runsSite   string
	runsStatus string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck
		if err := s.Migrate(cmd.Context()); err != nil {
			return err
		}

		runs, err := s.ListRuns(cmd.Context(), store.RunFilter{
			Site:   runsSite,
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		for _, run := range runs {
			line := fmt.Sprintf("%s  %-6s %-8s %s", run.ID, run.Site, run.Status, run.CreatedAt.Format("2006-01-02 15:04:05"))
			if run.Report != nil {
				line += fmt.Sprintf("  entries=%d filled=%d", run.Report.TotalEntries, run.Report.VRIDFilledFromFMC)
			}
			if run.Error != "" {
				line += "  error=" + run.Error
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsSite, "site", "", "filter by site")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum rows")
	rootCmd.AddCommand(runsCmd)
}
