package pipeline

import "github.com/sells-group/yardops-cli/internal/model"

// Completeness maps a report field to the percentage of records carrying
// a real value for it.
type Completeness map[string]float64

// FieldCompleteness measures how populated the fields that matter for
// downstream correlation are. Sentinel and empty values do not count;
// UNKNOWN_REASON is treated as missing for the unavailable reason.
func FieldCompleteness(records []model.YardRecord) Completeness {
	if len(records) == 0 {
		return Completeness{}
	}
	total := float64(len(records))

	counts := map[string]int{}
	for _, rec := range records {
		if present(rec.OwnerCode) {
			counts["YMS_SCAC"]++
		}
		if present(rec.Load) {
			counts["YMS_Load"]++
		}
		if present(rec.Lane) {
			counts["YMS_Lane"]++
		}
		if present(rec.VRID) {
			counts["YMS_VRID"]++
		}
		if present(rec.EquipmentType) {
			counts["YMS_type"]++
		}
		if present(rec.UnavailableReason) && rec.UnavailableReason != "UNKNOWN_REASON" {
			counts["YMS_UnavailableReason"]++
		}
	}

	out := make(Completeness, len(counts))
	for _, field := range []string{"YMS_SCAC", "YMS_Load", "YMS_Lane", "YMS_VRID", "YMS_type", "YMS_UnavailableReason"} {
		out[field] = float64(counts[field]) / total * 100
	}
	return out
}

func present(s string) bool {
	return s != "" && s != model.Sentinel
}
