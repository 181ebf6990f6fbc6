// Package fmc loads the secondary FMC dataset: the authoritative
// shipment/appointment rows used to cross-check and fill yard VRIDs. An
// unknown site or a dataset with an unexpected shape yields an empty row
// set, never a pipeline-fatal error.
package fmc

import (
	"context"
	"strings"

	"github.com/sells-group/yardops-cli/internal/model"
)

// Column headers of interest in FMC views and exports.
const (
	colVRID             = "VR ID"
	colFacilitySequence = "Facility Sequence"
	colShipperAccounts  = "Shipper Accounts"
	colCarrier          = "Carrier"
)

// Provider supplies FMC rows for a site. An empty result is valid: the
// site simply has no rows this cycle.
type Provider interface {
	Records(ctx context.Context, site string) ([]model.FMCRecord, error)
}

// recordsFromTable maps header-indexed rows onto FMCRecords. Tables
// without a VR ID column are skipped entirely; rows whose width does not
// match the header are dropped. Facility sequences are arrow-normalized
// on the way in.
func recordsFromTable(header []string, rows [][]string) []model.FMCRecord {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx[colVRID]; !ok {
		return nil
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]model.FMCRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) != len(header) {
			continue
		}
		records = append(records, model.FMCRecord{
			VRID:             cell(row, colVRID),
			FacilitySequence: strings.ReplaceAll(cell(row, colFacilitySequence), "->", "_"),
			ShipperAccounts:  cell(row, colShipperAccounts),
			Carrier:          cell(row, colCarrier),
		})
	}
	return records
}
