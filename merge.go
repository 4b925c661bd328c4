package gamsort

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lanrat/gamsort/queue"
	"github.com/lanrat/gamsort/stream"
	"go.uber.org/zap"
)

// cursor reads one run forward. cur holds the current record while ok is true,
// and key its sort key when the Sorter has a KeyFunc.
type cursor[E any] struct {
	run    Run
	closer io.Closer
	reader *stream.Reader[E]
	keyOf  KeyFunc[E]
	cur    E
	key    Position
	ok     bool
}

// advance moves to the next record in the run. At the end of the run ok
// becomes false and the run is closed.
func (c *cursor[E]) advance() error {
	rec, err := c.reader.Next()
	if err == io.EOF {
		var zero E
		c.cur, c.key, c.ok = zero, Position{}, false
		return c.close()
	}
	if err != nil {
		c.ok = false
		return err
	}
	c.cur, c.ok = rec, true
	if c.keyOf != nil {
		c.key = c.keyOf(&c.cur)
	}
	return nil
}

func (c *cursor[E]) close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// MergeRuns merges sorted runs into output in batches of OutputFlushSize.
//
// Every run is opened at once, one cursor each. Cursors live in a slice and the
// merge frontier orders their indexes by each cursor's current record; a
// cursor is only in the frontier while it has a record. Memory use is one
// record and one read buffer per run.
func (s *Sorter[E]) MergeRuns(ctx context.Context, runs []Run, output BatchWriter[E]) (err error) {
	cursors := make([]cursor[E], 0, len(runs))
	defer func() {
		for i := range cursors {
			if closeErr := cursors[i].close(); closeErr != nil && err == nil {
				err = NewStorageError(closeErr, "close run", cursors[i].run.Name)
			}
		}
	}()

	for i, run := range runs {
		if s.config.MaxOpenRuns > 0 && i >= s.config.MaxOpenRuns {
			return NewStorageError(fmt.Errorf("%w: limit is %d, have %d runs", ErrTooManyOpenRuns, s.config.MaxOpenRuns, len(runs)), "open run", run.Name)
		}
		rc, err := s.store.Open(run.Name)
		if err != nil {
			return NewStorageError(err, "open run", run.Name)
		}
		cursors = append(cursors, cursor[E]{
			run:    run,
			closer: rc,
			reader: stream.NewReader(rc, s.codec.FromBytes, s.config.FileBufferSize),
			keyOf:  s.key,
		})
		if err := cursors[len(cursors)-1].advance(); err != nil {
			return readError(err, run.Name)
		}
		s.logger.Debug("opened run", zap.String("name", run.Name), zap.Int("records", run.Records))
	}

	compare := func(a, b int) int {
		return s.compare(cursors[a].cur, cursors[b].cur)
	}
	if s.key != nil {
		compare = func(a, b int) int {
			return ComparePositions(cursors[a].key, cursors[b].key)
		}
	}
	frontier := queue.NewPriorityQueue(compare, len(cursors))
	for h := range cursors {
		if cursors[h].ok {
			frontier.Push(h)
		}
	}

	s.logger.Debug("merging runs", zap.Int("runs", len(runs)), zap.Int("cursors", frontier.Len()))
	s.config.Observer.MergeStarted(len(runs))

	batcher := NewBatcher(output, s.config.OutputFlushSize)
	var merged int64
	for {
		h, ok := frontier.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		winner := &cursors[h]
		if err := batcher.Add(winner.cur); err != nil {
			return outputError(err)
		}
		merged++
		if s.config.ProgressInterval > 0 && merged%int64(s.config.ProgressInterval) == 0 {
			s.config.Observer.MergeProgress(merged)
		}
		if err := winner.advance(); err != nil {
			return readError(err, winner.run.Name)
		}
		if winner.ok {
			frontier.Push(h)
		}
	}
	if err := batcher.Flush(); err != nil {
		return outputError(err)
	}

	s.config.Observer.MergeFinished(merged)
	s.logger.Debug("merge finished", zap.Int64("records", merged), zap.Int("flushes", batcher.Flushes()))
	return nil
}

// readError classifies an error reading a run.
func readError(err error, name string) error {
	var de *stream.DecodeError
	if errors.As(err, &de) {
		return NewDeserializationError(de.Err, de.Size, "merge "+name)
	}
	return NewStorageError(err, "read run", name)
}
