package model

// Report is the per-site pipeline output: nine parallel sequences (one per
// record field, index-aligned) followed by the derived counters. Field order
// here is the wire order; consumers rely on the key sequence being exactly
// this.
type Report struct {
	Unfiltered        []YardRecord `json:"YMS_unfiltered"`
	Status            []any        `json:"YMS_status"`
	Name              []string     `json:"YMS_name"`
	Type              []string     `json:"YMS_type"`
	SCAC              []string     `json:"YMS_SCAC"`
	Unavailable       []any        `json:"YMS_Unavailable"`
	UnavailableReason []string     `json:"YMS_UnavailableReason"`
	Lane              []string     `json:"YMS_Lane"`
	Load              []string     `json:"YMS_Load"`
	VRID              []string     `json:"YMS_VRID"`

	TotalEntries      int `json:"YMS_total_entries"`
	EmptyVRIDCount    int `json:"YMS_empty_VRID_count"`
	NonEmptyVRIDCount int `json:"YMS_nonempty_VRID_count"`
	FMCTotalEntries   int `json:"FMC_total_entries"`
	FMCNonEmptyVRID   int `json:"FMC_nonempty_VRID_count"`
	VRIDCountBefore   int `json:"YMS_VRID_count_unfiltered"`
	VRIDCountAfter    int `json:"YMS_VRID_count_filtered"`
	VRIDFilledFromFMC int `json:"YMS_VRID_filled_from_FMC"`
}

// Len returns the length of the parallel sequences.
func (r *Report) Len() int {
	return len(r.Name)
}
