// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

// Normalize returns the ids of order that are in valid, first occurrence only,
// in their original relative order. It never fails; bad input just shrinks.
func Normalize(order []string, valid map[string]bool) []string {
	seen := make(map[string]bool, len(order))
	normalized := make([]string, 0, len(order))
	for _, id := range order {
		if !valid[id] || seen[id] {
			continue
		}
		seen[id] = true
		normalized = append(normalized, id)
	}
	return normalized
}
