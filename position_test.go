package gamsort_test

import (
	"math/rand"
	"testing"

	"github.com/lanrat/gamsort"
	"github.com/stretchr/testify/assert"
)

func TestComparePositions(t *testing.T) {
	tests := []struct {
		name string
		a, b gamsort.Position
		want int
	}{
		{"node decides", pos(1, true, 99), pos(2, false, 0), -1},
		{"node decides reversed", pos(3, false, 0), pos(2, true, 99), 1},
		{"forward before reverse", pos(5, false, 99), pos(5, true, 0), -1},
		{"reverse after forward", pos(5, true, 0), pos(5, false, 99), 1},
		{"offset decides", pos(5, true, 1), pos(5, true, 2), -1},
		{"equal", pos(5, true, 7), pos(5, true, 7), 0},
		{"sentinel first", gamsort.Position{}, pos(1, false, 0), -1},
		{"sentinel equal", gamsort.Position{}, gamsort.Position{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gamsort.ComparePositions(tt.a, tt.b))
			assert.Equal(t, -tt.want, gamsort.ComparePositions(tt.b, tt.a))
			assert.Equal(t, tt.want < 0, gamsort.PositionLess(tt.a, tt.b))
			assert.Equal(t, tt.want > 0, gamsort.PositionGreater(tt.a, tt.b))
		})
	}
}

func TestEqualOffsetsAreEquivalent(t *testing.T) {
	a := pos(4, false, 10)
	b := pos(4, false, 10)
	b.Name = "chr1"

	assert.False(t, gamsort.PositionLess(a, b))
	assert.False(t, gamsort.PositionLess(b, a))
	assert.False(t, gamsort.PositionGreater(a, b))
	assert.False(t, gamsort.PositionGreater(b, a))
	assert.Zero(t, gamsort.ComparePositions(a, b))
}

func TestPositionStrictWeakOrder(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	positions := make([]gamsort.Position, 40)
	for i := range positions {
		positions[i] = pos(uint64(r.Intn(3)), r.Intn(2) == 0, uint64(r.Intn(3)))
	}

	for _, a := range positions {
		assert.False(t, gamsort.PositionLess(a, a), "irreflexive")
		for _, b := range positions {
			// greater(a,b) <=> less(b,a)
			assert.Equal(t, gamsort.PositionLess(b, a), gamsort.PositionGreater(a, b))
			if gamsort.PositionLess(a, b) {
				assert.False(t, gamsort.PositionLess(b, a), "asymmetric")
			}
			for _, c := range positions {
				if gamsort.PositionLess(a, b) && gamsort.PositionLess(b, c) {
					assert.True(t, gamsort.PositionLess(a, c), "transitive")
				}
			}
		}
	}
}

func TestMinPosition(t *testing.T) {
	assert.True(t, gamsort.MinPosition(gamsort.Path{}).IsSentinel())

	a := aln("a", pos(9, false, 0), pos(3, true, 2), pos(3, false, 8), pos(3, false, 9))
	assert.Equal(t, pos(3, false, 8), gamsort.MinPosition(a.Path))
	assert.Equal(t, pos(3, false, 8), a.SortKey())

	single := aln("single", pos(12, true, 4))
	assert.Equal(t, pos(12, true, 4), single.SortKey())
}

func TestCompareAlignments(t *testing.T) {
	unmapped1 := aln("u1")
	unmapped2 := aln("u2")
	mapped := aln("m", pos(1, false, 0))

	assert.True(t, gamsort.AlignmentLess(unmapped1, mapped))
	assert.True(t, gamsort.AlignmentGreater(mapped, unmapped1))
	assert.Zero(t, gamsort.CompareAlignments(unmapped1, unmapped2))
	assert.False(t, gamsort.AlignmentLess(unmapped1, unmapped2))
	assert.False(t, gamsort.AlignmentGreater(unmapped1, unmapped2))
}

func TestSortAlignments(t *testing.T) {
	t.Run("keys", func(t *testing.T) {
		alns := []gamsort.Alignment{
			aln("a", pos(5, false, 10)),
			aln("b", pos(3, true, 2)),
			aln("c", pos(5, false, 1)),
		}
		gamsort.SortAlignments(alns)
		assert.Equal(t, []string{"b", "c", "a"}, []string{alns[0].Name, alns[1].Name, alns[2].Name})
	})

	t.Run("unmapped first", func(t *testing.T) {
		alns := []gamsort.Alignment{aln("mapped", pos(1, false, 0)), aln("unmapped")}
		gamsort.SortAlignments(alns)
		assert.Equal(t, "unmapped", alns[0].Name)
		assert.Equal(t, "mapped", alns[1].Name)
	})

	t.Run("empty and single", func(t *testing.T) {
		var none []gamsort.Alignment
		gamsort.SortAlignments(none)
		assert.Empty(t, none)

		one := []gamsort.Alignment{aln("one", pos(2, false, 2))}
		gamsort.SortAlignments(one)
		assert.Equal(t, "one", one[0].Name)
	})

	t.Run("duplicates", func(t *testing.T) {
		alns := makeRandomAlignments(500, 3)
		gamsort.SortAlignments(alns)
		assert.True(t, isSorted(alns))
		assert.Len(t, alns, 500)
	})
}
