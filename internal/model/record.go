package model

import "strings"

// Sentinel marks a missing or empty value in records and report sequences.
// Downstream consumers of the report JSON match on this exact string.
const Sentinel = "NaN"

// NormalizeLane rewrites arrow separators in a lane or facility-sequence
// value to underscores. Empty input maps to the sentinel. Idempotent.
func NormalizeLane(s string) string {
	if s == "" {
		return Sentinel
	}
	return strings.ReplaceAll(s, "->", "_")
}

// IsBlankVRID reports whether a VRID value should be treated as missing.
func IsBlankVRID(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == Sentinel
}

// YardRecord is one flattened row per yard asset (trailer or container)
// discovered in a yard-state snapshot.
type YardRecord struct {
	Name          string `json:"name"`
	LocationLabel string `json:"locationLabel"`
	// Status keeps whatever type the snapshot carried (string or bool).
	Status        any    `json:"status"`
	EquipmentType string `json:"equipment_type"`
	OwnerCode     string `json:"ownercode"`
	MovesByItself bool   `json:"movesbyitself"`
	// DockControl starts as the asset's dock-system-control flag and is
	// overwritten with the FMC facility sequence on a VRID cross-check hit.
	DockControl       any    `json:"isunderdocksystemcontrol"`
	VRID              string `json:"vrid"`
	Unavailable       any    `json:"unavailable"`
	UnavailableReason string `json:"unavailableReason"`
	Lane              string `json:"lane"`
	CompleteLane      string `json:"complete_lane"`
	Load              string `json:"load"`
	// Drop receives the FMC shipper-accounts value on a cross-check hit.
	Drop string `json:"isdrop,omitempty"`
}

// FMCRecord is one row of the authoritative FMC cross-check dataset.
type FMCRecord struct {
	VRID             string `json:"vr_id"`
	FacilitySequence string `json:"facility_sequence"`
	ShipperAccounts  string `json:"shipper_accounts"`
	Carrier          string `json:"carrier"`
}
