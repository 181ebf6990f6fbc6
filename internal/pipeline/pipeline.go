// Package pipeline builds normalized yard reports: it orchestrates
// acquisition, flattening, and FMC reconciliation for one site, and
// merges a primary yard with its linked external yard.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/yardops-cli/internal/fmc"
	"github.com/sells-group/yardops-cli/internal/model"
	"github.com/sells-group/yardops-cli/internal/reconcile"
	"github.com/sells-group/yardops-cli/internal/snapshot"
	"github.com/sells-group/yardops-cli/internal/transform"
)

// ErrNoRecords indicates a validated snapshot flattened to zero records:
// the yard answered but reported no equipment. Distinct from an exhausted
// acquisition cycle, where no snapshot was obtained at all.
var ErrNoRecords = eris.New("pipeline: transformation yielded no records")

// Acquirer produces a validated snapshot for a site.
type Acquirer interface {
	Run(ctx context.Context, site string) (snapshot.Node, error)
}

// Orchestrator runs the full per-site pipeline.
type Orchestrator struct {
	acquirer Acquirer
	fmc      fmc.Provider
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(a Acquirer, p fmc.Provider) *Orchestrator {
	return &Orchestrator{acquirer: a, fmc: p}
}

// RunSite produces the normalized report for one site. Acquisition
// failure and an empty flattening are terminal; a missing or malformed
// FMC dataset is not: reconciliation is skipped and the FMC counters
// report zero.
func (o *Orchestrator) RunSite(ctx context.Context, site string) (*model.Report, error) {
	node, err := o.acquirer.Run(ctx, site)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: acquire %s", site)
	}

	records := transform.Records(node)
	if len(records) == 0 {
		return nil, eris.Wrapf(ErrNoRecords, "pipeline: %s", site)
	}

	// Pre-reconciliation view: the unfiltered records and counters are
	// computed before any FMC data touches the rows.
	unfiltered := make([]model.YardRecord, len(records))
	copy(unfiltered, records)

	total := len(records)
	nonEmptyBefore := countNonEmptyVRIDs(records)

	rows, err := o.fmc.Records(ctx, site)
	if err != nil {
		zap.L().Warn("pipeline: FMC load failed, continuing without secondary data",
			zap.String("site", site),
			zap.Error(err),
		)
		rows = nil
	}
	fmcNonEmpty := 0
	for _, row := range rows {
		if !model.IsBlankVRID(row.VRID) {
			fmcNonEmpty++
		}
	}

	reconcile.Reconcile(records, rows, site)
	nonEmptyAfter := countNonEmptyVRIDs(records)

	filled := nonEmptyAfter - nonEmptyBefore
	if filled < 0 {
		filled = 0
	}

	report := project(unfiltered, records)
	report.TotalEntries = total
	report.EmptyVRIDCount = total - nonEmptyBefore
	report.NonEmptyVRIDCount = nonEmptyBefore
	report.FMCTotalEntries = len(rows)
	report.FMCNonEmptyVRID = fmcNonEmpty
	report.VRIDCountBefore = nonEmptyBefore
	report.VRIDCountAfter = nonEmptyAfter
	report.VRIDFilledFromFMC = filled

	zap.L().Info("pipeline: site report built",
		zap.String("site", site),
		zap.Int("entries", total),
		zap.Int("vrid_filled", filled),
	)
	zap.L().Debug("pipeline: field completeness",
		zap.String("site", site),
		zap.Any("completeness", FieldCompleteness(records)),
	)
	return report, nil
}

// project renders the parallel output sequences. The lane sequence is
// taken from the unfiltered records: reconciliation writes facility
// sequences over DockControl, never over the lane a consumer indexes.
func project(unfiltered, records []model.YardRecord) *model.Report {
	n := len(records)
	report := &model.Report{
		Unfiltered:        unfiltered,
		Status:            make([]any, 0, n),
		Name:              make([]string, 0, n),
		Type:              make([]string, 0, n),
		SCAC:              make([]string, 0, n),
		Unavailable:       make([]any, 0, n),
		UnavailableReason: make([]string, 0, n),
		Lane:              make([]string, 0, n),
		Load:              make([]string, 0, n),
		VRID:              make([]string, 0, n),
	}
	for i, rec := range records {
		report.Status = append(report.Status, orSentinel(rec.Status))
		report.Name = append(report.Name, strOrSentinel(rec.Name))
		report.Type = append(report.Type, strOrSentinel(rec.EquipmentType))
		report.SCAC = append(report.SCAC, strOrSentinel(rec.OwnerCode))
		report.Unavailable = append(report.Unavailable, orSentinel(rec.Unavailable))
		report.UnavailableReason = append(report.UnavailableReason, strOrSentinel(rec.UnavailableReason))
		report.Lane = append(report.Lane, strOrSentinel(unfiltered[i].Lane))
		report.Load = append(report.Load, strOrSentinel(rec.Load))
		report.VRID = append(report.VRID, strOrSentinel(rec.VRID))
	}
	return report
}

func countNonEmptyVRIDs(records []model.YardRecord) int {
	n := 0
	for _, rec := range records {
		if !model.IsBlankVRID(rec.VRID) {
			n++
		}
	}
	return n
}

func orSentinel(v any) any {
	if v == nil {
		return model.Sentinel
	}
	if s, ok := v.(string); ok && s == "" {
		return model.Sentinel
	}
	return v
}

func strOrSentinel(s string) string {
	if s == "" {
		return model.Sentinel
	}
	return s
}
