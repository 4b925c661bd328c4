package gamsort_test

import (
	"fmt"
	"iter"
	"math/rand"
	"slices"
	"sync"

	"github.com/lanrat/gamsort"
)

func pos(node uint64, reverse bool, offset uint64) gamsort.Position {
	return gamsort.Position{NodeID: node, IsReverse: reverse, Offset: offset}
}

// aln builds an alignment whose path visits positions in the given order.
func aln(name string, positions ...gamsort.Position) gamsort.Alignment {
	a := gamsort.Alignment{Name: name, Sequence: "ACGT"}
	for i, p := range positions {
		a.Path.Mappings = append(a.Path.Mappings, gamsort.Mapping{
			Position: p,
			Rank:     int64(i + 1),
			Edits:    []gamsort.Edit{{FromLength: 4, ToLength: 4}},
		})
	}
	return a
}

// makeRandomAlignments returns n alignments with few distinct keys so ties
// are common. Roughly one in ten is unmapped.
func makeRandomAlignments(n int, seed int64) []gamsort.Alignment {
	r := rand.New(rand.NewSource(seed))
	alns := make([]gamsort.Alignment, n)
	for i := range alns {
		name := fmt.Sprintf("read-%d", i)
		if r.Intn(10) == 0 {
			alns[i] = aln(name)
			continue
		}
		var positions []gamsort.Position
		for j := r.Intn(3) + 1; j > 0; j-- {
			positions = append(positions, pos(uint64(r.Intn(20)+1), r.Intn(2) == 0, uint64(r.Intn(5))))
		}
		alns[i] = aln(name, positions...)
	}
	return alns
}

func seqOf[E any](items []E) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func keysOf(alns []gamsort.Alignment) []gamsort.Position {
	keys := make([]gamsort.Position, len(alns))
	for i := range alns {
		keys[i] = alns[i].SortKey()
	}
	return keys
}

func namesOf(alns []gamsort.Alignment) []string {
	names := make([]string, len(alns))
	for i := range alns {
		names[i] = alns[i].Name
	}
	slices.Sort(names)
	return names
}

func isSorted(alns []gamsort.Alignment) bool {
	return slices.IsSortedFunc(alns, gamsort.CompareAlignments)
}

// recordingWriter keeps a copy of every batch it is given.
type recordingWriter[E any] struct {
	mu      sync.Mutex
	batches [][]E
	err     error
}

func (w *recordingWriter[E]) WriteBatch(batch []E) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, slices.Clone(batch))
	return nil
}

func (w *recordingWriter[E]) all() []E {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []E
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

func (w *recordingWriter[E]) sizes() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	sizes := make([]int, len(w.batches))
	for i, b := range w.batches {
		sizes[i] = len(b)
	}
	return sizes
}

// recordingObserver records every event it receives.
type recordingObserver struct {
	mu       sync.Mutex
	runs     []gamsort.RunEvent
	started  []int
	progress []int64
	finished []int64
}

func (o *recordingObserver) RunCreated(e gamsort.RunEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, e)
}

func (o *recordingObserver) MergeStarted(runs int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, runs)
}

func (o *recordingObserver) MergeProgress(merged int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, merged)
}

func (o *recordingObserver) MergeFinished(merged int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, merged)
}
