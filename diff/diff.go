// Package diff compares two sorted record sequences.
package diff

import (
	"context"
	"fmt"
	"iter"
)

// Delta says which sequence a record was found in.
type Delta int

const (
	// NEW is a record only in the second sequence (B).
	NEW Delta = iota // +
	// OLD is a record only in the first sequence (A).
	OLD // -
)

func (d Delta) String() string {
	switch d {
	case NEW:
		return ">"
	case OLD:
		return "<"
	default:
		return "?"
	}
}

// ResultFunc is called once for each record present in only one sequence.
// Returning an error stops the diff.
type ResultFunc[T any] func(Delta, T) error

// Result counts the records seen in each sequence.
type Result struct {
	ExtraA uint64 // records only in A
	ExtraB uint64 // records only in B
	TotalA uint64
	TotalB uint64
	Common uint64 // records in both
}

func (r *Result) String() string {
	return fmt.Sprintf("A: %d/%d\tB: %d/%d\tC: %d", r.ExtraA, r.TotalA, r.ExtraB, r.TotalB, r.Common)
}

// Equal reports whether the sequences held the same records.
func (r *Result) Equal() bool {
	return r.ExtraA == 0 && r.ExtraB == 0
}

// side pulls records from one sequence, remembering the first error.
type side[T any] struct {
	next func() (T, error, bool)
	stop func()
	cur  T
	ok   bool
}

func newSide[T any](seq iter.Seq2[T, error]) *side[T] {
	next, stop := iter.Pull2(seq)
	return &side[T]{next: next, stop: stop}
}

func (s *side[T]) advance() error {
	rec, err, ok := s.next()
	if ok && err != nil {
		s.ok = false
		return err
	}
	s.cur, s.ok = rec, ok
	return nil
}

// Diff walks a and b, which must both be sorted by compare, and calls
// resultFunc for every record found in only one of them. Records comparing
// equal are matched one to one. Sortedness is not checked.
func Diff[T any](ctx context.Context, a, b iter.Seq2[T, error], compare func(T, T) int, resultFunc ResultFunc[T]) (r Result, err error) {
	if a == nil || b == nil || compare == nil || resultFunc == nil {
		return r, fmt.Errorf("arguments must not be nil")
	}
	sa, sb := newSide(a), newSide(b)
	defer sa.stop()
	defer sb.stop()

	if err = sa.advance(); err != nil {
		return r, fmt.Errorf("reading A: %w", err)
	}
	if err = sb.advance(); err != nil {
		return r, fmt.Errorf("reading B: %w", err)
	}

	for sa.ok || sb.ok {
		if err = ctx.Err(); err != nil {
			return r, err
		}
		var c int
		switch {
		case !sb.ok:
			c = -1
		case !sa.ok:
			c = 1
		default:
			c = compare(sa.cur, sb.cur)
		}

		if c <= 0 {
			r.TotalA++
		}
		if c >= 0 {
			r.TotalB++
		}
		switch {
		case c < 0:
			r.ExtraA++
			if err = resultFunc(OLD, sa.cur); err != nil {
				return r, err
			}
		case c > 0:
			r.ExtraB++
			if err = resultFunc(NEW, sb.cur); err != nil {
				return r, err
			}
		default:
			r.Common++
		}

		if c <= 0 {
			if err = sa.advance(); err != nil {
				return r, fmt.Errorf("reading A: %w", err)
			}
		}
		if c >= 0 {
			if err = sb.advance(); err != nil {
				return r, fmt.Errorf("reading B: %w", err)
			}
		}
	}
	return r, nil
}

// PrintDiff is a ResultFunc printing each difference to stdout, prefixed with
// the Delta symbol.
func PrintDiff[T any](d Delta, rec T) error {
	_, err := fmt.Printf("%s %v\n", d, rec)
	return err
}
