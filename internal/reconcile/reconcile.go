// Package reconcile cross-checks flattened yard records against the FMC
// dataset and fills missing VRIDs by heuristic matching.
package reconcile

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/yardops-cli/internal/model"
)

// Reconcile runs the cross-check pass and then the enrichment pass over
// records, in place, returning the number of VRIDs filled. With no FMC
// rows both passes are skipped and records come back unmodified.
func Reconcile(records []model.YardRecord, rows []model.FMCRecord, site string) int {
	if len(rows) == 0 {
		zap.L().Info("reconcile: no FMC rows, skipping", zap.String("site", site))
		return 0
	}
	CrossCheck(records, rows, site)
	return Enrich(records, rows, site)
}

// CrossCheck copies FMC attributes onto records whose VRID already
// matches an FMC row: the shipper accounts land in Drop, and the
// normalized facility sequence deliberately overwrites DockControl.
// Limited to rows that share a non-blank VRID; never touches the VRID
// itself.
func CrossCheck(records []model.YardRecord, rows []model.FMCRecord, site string) {
	byVRID := make(map[string]model.FMCRecord, len(rows))
	for _, row := range rows {
		if model.IsBlankVRID(row.VRID) {
			continue
		}
		// First row wins for a duplicated VRID.
		if _, ok := byVRID[row.VRID]; !ok {
			byVRID[row.VRID] = row
		}
	}

	matched := 0
	for i := range records {
		row, ok := byVRID[records[i].VRID]
		if !ok {
			continue
		}
		records[i].Drop = row.ShipperAccounts
		records[i].DockControl = model.NormalizeLane(row.FacilitySequence)
		matched++
	}
	zap.L().Info("reconcile: cross-checked VRIDs",
		zap.String("site", site),
		zap.Int("matched", matched),
	)
}

// Enrich fills records whose VRID is blank by matching building code,
// destination, and owner against FMC facility sequences. It acts only on
// an exactly-one candidate match: zero or multiple candidates leave the
// record unchanged, by policy, so an ambiguous match can never install a
// wrong VRID. A present VRID is never overwritten. Returns the fill count.
func Enrich(records []model.YardRecord, rows []model.FMCRecord, site string) int {
	filled := 0
	for i := range records {
		if !model.IsBlankVRID(records[i].VRID) {
			continue
		}

		building, destination := splitLane(records[i].Lane)
		if building == "" {
			building = records[i].Name
		}

		candidates := matchCandidates(rows, building, destination, records[i].OwnerCode)
		if len(candidates) != 1 {
			zap.L().Debug("reconcile: ambiguous or no enrichment match",
				zap.String("site", site),
				zap.Int("record", i),
				zap.String("building", building),
				zap.String("destination", destination),
				zap.String("owner", records[i].OwnerCode),
				zap.Int("candidates", len(candidates)),
			)
			continue
		}

		if model.IsBlankVRID(candidates[0].VRID) {
			continue
		}
		records[i].VRID = candidates[0].VRID
		filled++
	}

	zap.L().Info("reconcile: filled missing VRIDs from FMC",
		zap.String("site", site),
		zap.Int("filled", filled),
	)
	return filled
}

// splitLane derives building and destination codes from a record lane.
// Lanes arrive arrow-normalized, so the separator is the underscore; a
// raw arrow is handled too in case an unnormalized value slips through.
func splitLane(lane string) (string, string) {
	if lane == "" || lane == model.Sentinel {
		return "", ""
	}
	lane = strings.ReplaceAll(lane, "->", "_")
	building, destination, found := strings.Cut(lane, "_")
	if !found {
		return strings.TrimSpace(lane), ""
	}
	return strings.TrimSpace(building), strings.TrimSpace(destination)
}

func matchCandidates(rows []model.FMCRecord, building, destination, owner string) []model.FMCRecord {
	var out []model.FMCRecord
	for _, row := range rows {
		if !strings.HasPrefix(row.FacilitySequence, building) {
			continue
		}
		if destination != "" && !strings.Contains(row.FacilitySequence, "_"+destination) {
			continue
		}
		if !model.IsBlankVRID(owner) && !ownerMatches(row, owner) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// ownerMatches checks the record's carrier code against the FMC shipper
// accounts and carrier fields, case-insensitive substring.
func ownerMatches(row model.FMCRecord, owner string) bool {
	owner = strings.ToLower(owner)
	return strings.Contains(strings.ToLower(row.ShipperAccounts), owner) ||
		strings.Contains(strings.ToLower(row.Carrier), owner)
}
