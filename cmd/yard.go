package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/yardops-cli/internal/acquire"
	"github.com/sells-group/yardops-cli/internal/fmc"
	"github.com/sells-group/yardops-cli/internal/pipeline"
	"github.com/sells-group/yardops-cli/internal/portal"
	"github.com/sells-group/yardops-cli/internal/store"
)

var (
	yardAttempts  int
	yardNoArchive bool
	yardPretty    bool
	yardFMCDir    string
)

var yardCmd = &cobra.Command{
	Use:   "yard SITE",
	Short: "Build the merged yard report for a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		site := args[0]
		if !cfg.Sites.Known(site) {
			return eris.Errorf("site %q is not configured", site)
		}

		merger := newMerger()

		var archive store.Store
		if !yardNoArchive && cfg.Store.Path != "" {
			s, err := store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			if err := s.Migrate(cmd.Context()); err != nil {
				return err
			}
			archive = s
		}

		var runID string
		if archive != nil {
			run, err := archive.CreateRun(cmd.Context(), site)
			if err != nil {
				return err
			}
			runID = run.ID
		}

		report, err := merger.Run(cmd.Context(), site)
		if err != nil {
			if archive != nil {
				if ferr := archive.FailRun(cmd.Context(), runID, err.Error()); ferr != nil {
					zap.L().Error("archive run failure", zap.Error(ferr))
				}
			}
			return err
		}

		if archive != nil {
			if err := archive.CompleteRun(cmd.Context(), runID, report); err != nil {
				zap.L().Error("archive run report", zap.Error(err))
			}
		}

		enc := json.NewEncoder(os.Stdout)
		if yardPretty {
			enc.SetIndent("", "  ")
		}
		// The report is wrapped under a single Main key for consumers.
		return eris.Wrap(enc.Encode(map[string]any{"Main": report}), "encode report")
	},
}

// newMerger wires the pipeline from configuration. The FMC provider
// prefers local exports when an export directory is given.
func newMerger() *pipeline.Merger {
	acquireCfg := cfg.Acquire
	if yardAttempts > 0 {
		acquireCfg.MaxAttempts = yardAttempts
	}

	var provider fmc.Provider
	if yardFMCDir != "" {
		provider = fmc.NewFileProvider(yardFMCDir)
	} else if cfg.FMC.ExportDir != "" {
		provider = fmc.NewFileProvider(cfg.FMC.ExportDir)
	} else {
		provider = fmc.NewPortalProvider(cfg.FMC, cfg.Sites.FMCViews)
	}

	cycle := acquire.New(portal.New(cfg.Portal, cfg.Sites), acquireCfg)
	orchestrator := pipeline.NewOrchestrator(cycle, provider)
	return pipeline.NewMerger(orchestrator, cfg.Sites)
}

func init() {
	yardCmd.Flags().IntVar(&yardAttempts, "attempts", 0, "override acquisition attempt limit")
	yardCmd.Flags().BoolVar(&yardNoArchive, "no-archive", false, "skip archiving the run")
	yardCmd.Flags().BoolVar(&yardPretty, "pretty", false, "indent the report JSON")
	yardCmd.Flags().StringVar(&yardFMCDir, "fmc-dir", "", "load FMC data from exported files in this directory")
	rootCmd.AddCommand(yardCmd)
}
