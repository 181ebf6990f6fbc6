package snapshot

import "strings"

// The collectors below walk a Node tree depth-first in key order. They
// tolerate absent keys, empty containers, and mixed types; a malformed
// subtree contributes nothing rather than failing the walk.

// FindLaneValues collects every string value stored under a key named
// "lane" (case-insensitive), at any depth, in pre-order discovery order.
// No deduplication.
func FindLaneValues(node Node) []string {
	var lanes []string
	switch n := node.(type) {
	case *Object:
		for _, key := range n.Keys() {
			value, _ := n.Get(key)
			if strings.EqualFold(key, "lane") {
				if s, ok := value.(string); ok {
					lanes = append(lanes, s)
					continue
				}
			}
			lanes = append(lanes, FindLaneValues(value)...)
		}
	case Array:
		for _, item := range n {
			lanes = append(lanes, FindLaneValues(item)...)
		}
	}
	return lanes
}

// FindShipperAccountValues collects every string found under a key named
// "shipperAccounts" (case-insensitive). A list value contributes each of
// its string elements; a scalar string contributes one item.
func FindShipperAccountValues(node Node) []string {
	var accounts []string
	switch n := node.(type) {
	case *Object:
		for _, key := range n.Keys() {
			value, _ := n.Get(key)
			if strings.EqualFold(key, "shipperaccounts") {
				switch v := value.(type) {
				case Array:
					for _, item := range v {
						if s, ok := item.(string); ok {
							accounts = append(accounts, s)
						}
					}
				case string:
					accounts = append(accounts, v)
				}
				continue
			}
			accounts = append(accounts, FindShipperAccountValues(value)...)
		}
	case Array:
		for _, item := range n {
			accounts = append(accounts, FindShipperAccountValues(item)...)
		}
	}
	return accounts
}

// FindStatusValues collects every value stored under a key named "status"
// (case-insensitive), at any depth, preserving discovery order. Unlike the
// lane collector it also descends into matched values, so a status nested
// inside a status is found too. Callers take the last value as the
// effective status for an asset: later keys override earlier ones.
func FindStatusValues(node Node) []any {
	var statuses []any
	switch n := node.(type) {
	case *Object:
		for _, key := range n.Keys() {
			value, _ := n.Get(key)
			if strings.EqualFold(key, "status") {
				statuses = append(statuses, value)
			}
			statuses = append(statuses, FindStatusValues(value)...)
		}
	case Array:
		for _, item := range n {
			statuses = append(statuses, FindStatusValues(item)...)
		}
	}
	return statuses
}

// ContainsTrimmed reports whether any string anywhere in the tree equals
// target after trimming surrounding whitespace.
func ContainsTrimmed(node Node, target string) bool {
	switch n := node.(type) {
	case *Object:
		for _, key := range n.Keys() {
			value, _ := n.Get(key)
			if ContainsTrimmed(value, target) {
				return true
			}
		}
	case Array:
		for _, item := range n {
			if ContainsTrimmed(item, target) {
				return true
			}
		}
	case string:
		return strings.TrimSpace(n) == target
	}
	return false
}
