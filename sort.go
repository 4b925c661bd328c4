// Package gamsort sorts streams of graph alignments by the smallest position
// on their paths. Streams larger than memory are split into sorted runs in
// temporary storage and merged back together. gamsort is NOT a stable sort.
package gamsort

import (
	"slices"
)

// SortFunc sorts items in place. Items that compare equal may end up in any
// order relative to each other.
func SortFunc[E any](items []E, compare Compare[E]) {
	slices.SortFunc(items, compare)
}

// SortAlignments sorts alignments in place by their sort keys, unmapped
// alignments first.
func SortAlignments(alns []Alignment) {
	SortFunc(alns, CompareAlignments)
}
