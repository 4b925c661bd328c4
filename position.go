package gamsort

// Position is a location on a sequence graph: a node, a strand and an offset
// along that strand. The zero Position is reserved for "no position" and sorts
// before every position on a real node.
type Position struct {
	NodeID    uint64
	IsReverse bool
	Offset    uint64
	// Name is carried through encoding but never takes part in ordering.
	Name string
}

// IsSentinel reports whether p is the reserved unplaced position.
func (p Position) IsSentinel() bool {
	return p.NodeID == 0 && !p.IsReverse && p.Offset == 0
}

// ComparePositions orders positions by node, then forward before reverse,
// then offset. It returns -1, 0 or +1.
func ComparePositions(a, b Position) int {
	switch {
	case a.NodeID < b.NodeID:
		return -1
	case a.NodeID > b.NodeID:
		return 1
	}
	if a.IsReverse != b.IsReverse {
		if b.IsReverse {
			return -1
		}
		return 1
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

// PositionLess reports whether a sorts strictly before b.
func PositionLess(a, b Position) bool {
	return ComparePositions(a, b) < 0
}

// PositionGreater reports whether a sorts strictly after b.
func PositionGreater(a, b Position) bool {
	return ComparePositions(a, b) > 0
}

// MinPosition returns the smallest mapping position on the path, or the zero
// Position for an empty path.
func MinPosition(path Path) Position {
	if len(path.Mappings) == 0 {
		return Position{}
	}
	lowest := path.Mappings[0].Position
	for _, m := range path.Mappings[1:] {
		if PositionLess(m.Position, lowest) {
			lowest = m.Position
		}
	}
	return lowest
}

// SortKey is the position an alignment is sorted by.
func (a *Alignment) SortKey() Position {
	return MinPosition(a.Path)
}

// CompareAlignments compares alignments by their sort keys.
func CompareAlignments(a, b Alignment) int {
	return ComparePositions(a.SortKey(), b.SortKey())
}

// AlignmentLess reports whether a sorts strictly before b.
func AlignmentLess(a, b Alignment) bool {
	return CompareAlignments(a, b) < 0
}

// AlignmentGreater reports whether a sorts strictly after b.
func AlignmentGreater(a, b Alignment) bool {
	return CompareAlignments(a, b) > 0
}
