package snapshot

import "go.uber.org/zap"

// Validate reports whether the snapshot actually belongs to the requested
// site: an unordered recursive search through the location-summaries
// subtree for any string equal (after trimming) to the site code. An
// absent or empty subtree is treated as "not found", never an error. The
// usual cause of a mismatch is a switch-yard call that silently failed,
// leaving the session pointed at the previous yard.
func Validate(root Node, site string) bool {
	obj, ok := root.(*Object)
	if !ok {
		return false
	}
	summaries, ok := obj.Get("locationsSummaries")
	if !ok {
		zap.L().Debug("snapshot: no locationsSummaries subtree", zap.String("site", site))
		return false
	}
	found := ContainsTrimmed(summaries, site)
	zap.L().Debug("snapshot: validated",
		zap.String("site", site),
		zap.Bool("found", found),
	)
	return found
}
