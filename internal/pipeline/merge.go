package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/yardops-cli/internal/config"
	"github.com/sells-group/yardops-cli/internal/model"
)

// SiteRunner builds the report for one site.
type SiteRunner interface {
	RunSite(ctx context.Context, site string) (*model.Report, error)
}

// Merger is the public entry point: it runs the pipeline for a site and,
// when the site has a statically linked external yard, folds that yard's
// report into the primary one.
type Merger struct {
	runner SiteRunner
	sites  config.SitesConfig
}

// NewMerger creates a Merger.
func NewMerger(runner SiteRunner, sites config.SitesConfig) *Merger {
	return &Merger{runner: runner, sites: sites}
}

// Run builds the merged report for a site. The primary and external runs
// share no state, so they execute concurrently; only the primary/external
// labeling matters for the merge, not completion order. A failed external
// run degrades to the primary report alone; a failed primary run fails
// the whole call.
func (m *Merger) Run(ctx context.Context, site string) (*model.Report, error) {
	external, linked := m.sites.LinkedExternal(site)
	if !linked {
		zap.L().Info("merger: no external yard for site", zap.String("site", site))
		return m.runner.RunSite(ctx, site)
	}
	zap.L().Info("merger: site has linked external yard",
		zap.String("site", site),
		zap.String("external", external),
	)

	var primary, secondary *model.Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := m.runner.RunSite(gctx, site)
		if err != nil {
			return err
		}
		primary = r
		return nil
	})
	g.Go(func() error {
		r, err := m.runner.RunSite(gctx, external)
		if err != nil {
			// External data is additive; its loss never loses the
			// primary yard's report.
			zap.L().Error("merger: external yard run failed",
				zap.String("site", site),
				zap.String("external", external),
				zap.Error(err),
			)
			return nil
		}
		secondary = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeReports(primary, secondary), nil
}

// MergeReports merges an external yard's report into the primary one:
// sequences concatenate (primary first), counters sum. Downstream
// consumers index into the parallel sequences, so the order is exact. A
// nil external report returns the primary unchanged.
func MergeReports(primary, external *model.Report) *model.Report {
	if external == nil {
		return primary
	}
	if primary == nil {
		return external
	}
	return &model.Report{
		Unfiltered:        concat(primary.Unfiltered, external.Unfiltered),
		Status:            concat(primary.Status, external.Status),
		Name:              concat(primary.Name, external.Name),
		Type:              concat(primary.Type, external.Type),
		SCAC:              concat(primary.SCAC, external.SCAC),
		Unavailable:       concat(primary.Unavailable, external.Unavailable),
		UnavailableReason: concat(primary.UnavailableReason, external.UnavailableReason),
		Lane:              concat(primary.Lane, external.Lane),
		Load:              concat(primary.Load, external.Load),
		VRID:              concat(primary.VRID, external.VRID),

		TotalEntries:      primary.TotalEntries + external.TotalEntries,
		EmptyVRIDCount:    primary.EmptyVRIDCount + external.EmptyVRIDCount,
		NonEmptyVRIDCount: primary.NonEmptyVRIDCount + external.NonEmptyVRIDCount,
		FMCTotalEntries:   primary.FMCTotalEntries + external.FMCTotalEntries,
		FMCNonEmptyVRID:   primary.FMCNonEmptyVRID + external.FMCNonEmptyVRID,
		VRIDCountBefore:   primary.VRIDCountBefore + external.VRIDCountBefore,
		VRIDCountAfter:    primary.VRIDCountAfter + external.VRIDCountAfter,
		VRIDFilledFromFMC: primary.VRIDFilledFromFMC + external.VRIDFilledFromFMC,
	}
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
