// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import "sort"

// MarkActive returns a copy of bundles with IsActive set on exactly the
// bundle whose ID equals version.CurrentBundleID, and cleared on every
// other bundle. Any IsActive value already present on the input is
// discarded.
//
// An empty CurrentBundleID, or one naming a bundle that is not in
// bundles, marks nothing. The result always satisfies
// CountActive(result) <= 1 as long as bundle IDs are unique.
func MarkActive(version Version, bundles []Bundle) []Bundle {
	marked := make([]Bundle, len(bundles))
	for i, bundle := range bundles {
		bundle.IsActive = version.CurrentBundleID != "" && bundle.ID == version.CurrentBundleID
		marked[i] = bundle
	}
	return marked
}

// CountActive returns the number of bundles with IsActive set.
func CountActive(bundles []Bundle) int {
	count := 0
	for _, bundle := range bundles {
		if bundle.IsActive {
			count++
		}
	}
	return count
}

// SortBySequence sorts bundles in place by descending SequenceID, which
// is most-recently-published first. Ties keep their input order.
func SortBySequence(bundles []Bundle) {
	sort.SliceStable(bundles, func(i, j int) bool {
		return bundles[i].SequenceID > bundles[j].SequenceID
	})
}

// SplitActive separates the active bundle from the publish history.
// active is nil when no bundle is marked. history excludes the active
// bundle and is ordered by descending SequenceID. The input slice is
// not modified.
func SplitActive(bundles []Bundle) (active *Bundle, history []Bundle) {
	history = make([]Bundle, 0, len(bundles))
	for _, bundle := range bundles {
		if bundle.IsActive && active == nil {
			current := bundle
			active = &current
			continue
		}
		history = append(history, bundle)
	}
	SortBySequence(history)
	return active, history
}
