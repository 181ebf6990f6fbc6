// Package transform flattens a validated yard-state snapshot into one
// record per yard asset.
package transform

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/yardops-cli/internal/model"
	"github.com/sells-group/yardops-cli/internal/snapshot"
)

// Identifier types carried on a load, in preference order.
const (
	identifierTypeVRID = "VR_ID"
	identifierTypeISA  = "ISA"
)

// Records flattens the snapshot into one YardRecord per yard asset.
// Ordering follows snapshot traversal order: location order, then asset
// order within each location. A nil or empty snapshot yields an empty
// slice, not an error.
func Records(root snapshot.Node) []model.YardRecord {
	obj, ok := root.(*snapshot.Object)
	if !ok || obj.Len() == 0 {
		zap.L().Warn("transform: empty or malformed snapshot")
		return nil
	}

	var records []model.YardRecord
	for _, summary := range obj.ArrayAt("locationsSummaries") {
		summaryObj, ok := summary.(*snapshot.Object)
		if !ok {
			continue
		}
		for _, location := range summaryObj.ArrayAt("locations") {
			locObj, ok := location.(*snapshot.Object)
			if !ok {
				continue
			}
			records = append(records, locationRecords(locObj)...)
		}
	}
	return records
}

func locationRecords(loc *snapshot.Object) []model.YardRecord {
	completeLane := joinedLanes(loc)

	var records []model.YardRecord
	for _, asset := range loc.ArrayAt("yardAssets") {
		assetObj, ok := asset.(*snapshot.Object)
		if !ok {
			continue
		}
		records = append(records, assetRecord(loc, assetObj, completeLane))
	}
	return records
}

// joinedLanes collects every lane value under the location subtree,
// normalized, in discovery order.
func joinedLanes(loc *snapshot.Object) string {
	lanes := snapshot.FindLaneValues(loc)
	normalized := make([]string, 0, len(lanes))
	for _, lane := range lanes {
		normalized = append(normalized, model.NormalizeLane(lane))
	}
	if len(normalized) == 0 {
		return model.Sentinel
	}
	return strings.Join(normalized, ", ")
}

func assetRecord(loc, asset *snapshot.Object, completeLane string) model.YardRecord {
	load := asset.ObjectAt("load")

	// Effective status: the last status value discovered anywhere under
	// the asset wins.
	status := any(model.Sentinel)
	if statuses := snapshot.FindStatusValues(asset); len(statuses) > 0 {
		status = statuses[len(statuses)-1]
	}

	lane := model.Sentinel
	if s := load.String("lane"); s != "" {
		lane = model.NormalizeLane(s)
	}

	// HEALTHY means there is no unavailable reason to report.
	reason := stringOrSentinel(asset, "unavailableReason")
	if reason == "HEALTHY" {
		reason = model.Sentinel
	}

	unavailable, ok := asset.Get("unavailable")
	if !ok || unavailable == nil {
		unavailable = model.Sentinel
	}

	dockControl, ok := asset.Get("isunderdocksystemcontrol")
	if !ok || dockControl == nil {
		dockControl = model.Sentinel
	}

	return model.YardRecord{
		Name:              stringOrSentinel(loc, "code"),
		LocationLabel:     stringOrSentinel(loc, "name"),
		Status:            status,
		EquipmentType:     stringOrSentinel(asset, "type"),
		OwnerCode:         ownerCode(asset),
		MovesByItself:     asset.Bool("movesbyitself"),
		DockControl:       dockControl,
		VRID:              loadVRID(load),
		Unavailable:       unavailable,
		UnavailableReason: reason,
		Lane:              lane,
		CompleteLane:      completeLane,
		Load:              loadValue(loc, load),
	}
}

// loadVRID prefers a VR_ID identifier; falls back to the last ISA seen
// before any VR_ID; sentinel when neither exists.
func loadVRID(load *snapshot.Object) string {
	isa := ""
loop:
	for _, ident := range load.ArrayAt("identifiers") {
		identObj, ok := ident.(*snapshot.Object)
		if !ok {
			continue
		}
		switch identObj.String("type") {
		case identifierTypeVRID:
			if v := identObj.String("identifier"); v != "" {
				return v
			}
			// A VR_ID entry with no value still ends the scan; any ISA
			// seen so far is the fallback.
			break loop
		case identifierTypeISA:
			isa = identObj.String("identifier")
		}
	}
	if isa != "" {
		return isa
	}
	return model.Sentinel
}

// loadValue prefers the load's first shipper account; otherwise joins
// every shipper-account value discovered under the location.
func loadValue(loc, load *snapshot.Object) string {
	if accounts := load.ArrayAt("shipperAccounts"); len(accounts) > 0 {
		if s, ok := accounts[0].(string); ok {
			return s
		}
	}
	if found := snapshot.FindShipperAccountValues(loc); len(found) > 0 {
		return strings.Join(found, ", ")
	}
	return model.Sentinel
}

func ownerCode(asset *snapshot.Object) string {
	if owner := asset.ObjectAt("owner"); owner != nil {
		if code := owner.String("code"); code != "" {
			return code
		}
	}
	return model.Sentinel
}

func stringOrSentinel(obj *snapshot.Object, key string) string {
	v, ok := obj.Get(key)
	if !ok || v == nil {
		return model.Sentinel
	}
	if s, ok := v.(string); ok {
		return s
	}
	return model.Sentinel
}
