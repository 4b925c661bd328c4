package gamsort

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/lanrat/gamsort/stream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run is a sorted sequence of records written to the Sorter's store.
type Run struct {
	Name    string
	Records int
}

// batch is a chunk of input records and its position in the input
type batch[E any] struct {
	index int
	data  []E
}

// ProduceRuns reads input in batches of MaxBatchSize records and writes each
// batch as a sorted run. The returned runs are in input order. Empty input
// produces no runs.
//
// With NumWorkers > 1, batches are sorted and written by NumWorkers goroutines
// while the next batch is read, holding up to NumWorkers+1 batches in memory.
// ProduceRuns returns only after every run has been written and closed.
func (s *Sorter[E]) ProduceRuns(ctx context.Context, input iter.Seq2[E, error]) ([]Run, error) {
	if s.config.NumWorkers > 1 {
		return s.produceRunsParallel(ctx, input)
	}

	var runs []Run
	data := make([]E, 0, s.config.MaxBatchSize)
	for rec, err := range input {
		if err != nil {
			return nil, inputError(err)
		}
		data = append(data, rec)
		if len(data) < s.config.MaxBatchSize {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := s.spill(batch[E]{index: len(runs), data: data})
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
		clear(data)
		data = data[:0]
	}
	if len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := s.spill(batch[E]{index: len(runs), data: data})
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// produceRunsParallel reads batches on one goroutine and spills them on
// NumWorkers others.
func (s *Sorter[E]) produceRunsParallel(ctx context.Context, input iter.Seq2[E, error]) ([]Run, error) {
	errGroup, groupCtx := errgroup.WithContext(ctx)
	batches := make(chan batch[E])

	// build batches
	errGroup.Go(func() error {
		defer close(batches) // if this is not called on error, causes a deadlock

		index := 0
		data := make([]E, 0, s.config.MaxBatchSize)
		send := func() error {
			select {
			case batches <- batch[E]{index: index, data: data}:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
			index++
			data = make([]E, 0, s.config.MaxBatchSize)
			return nil
		}
		for rec, err := range input {
			if err != nil {
				return inputError(err)
			}
			data = append(data, rec)
			if len(data) == s.config.MaxBatchSize {
				if err := send(); err != nil {
					return err
				}
			}
		}
		if len(data) > 0 {
			return send()
		}
		return nil
	})

	// sort and save batches
	var runsMutex sync.Mutex
	var runs []Run
	for i := 0; i < s.config.NumWorkers; i++ {
		errGroup.Go(func() error {
			for b := range batches {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				run, err := s.spill(b)
				if err != nil {
					return err
				}
				runsMutex.Lock()
				for len(runs) <= b.index {
					runs = append(runs, Run{})
				}
				runs[b.index] = run
				runsMutex.Unlock()
			}
			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// spill sorts b in place and writes it to a new run.
func (s *Sorter[E]) spill(b batch[E]) (Run, error) {
	start := time.Now()
	SortFunc(b.data, s.compare)

	w, err := s.store.Create()
	if err != nil {
		return Run{}, NewStorageError(err, "create run", "")
	}
	name := w.Name()
	sw := stream.NewWriter(w, s.codec.ToBytes, s.config.FileBufferSize)
	for _, rec := range b.data {
		if err := sw.Write(rec); err != nil {
			_ = w.Close()
			var ee *stream.EncodeError
			if errors.As(err, &ee) {
				return Run{}, NewSerializationError(ee.Err, "spill run")
			}
			return Run{}, NewStorageError(err, "write run", name)
		}
	}
	if err := sw.Flush(); err != nil {
		_ = w.Close()
		return Run{}, NewStorageError(err, "write run", name)
	}
	if err := w.Close(); err != nil {
		return Run{}, NewStorageError(err, "close run", name)
	}

	run := Run{Name: name, Records: len(b.data)}
	event := RunEvent{Index: b.index, Name: name, Records: run.Records, Duration: time.Since(start)}
	s.logger.Debug("spilled run",
		zap.Int("index", event.Index),
		zap.String("name", name),
		zap.Int("records", run.Records))
	s.config.Observer.RunCreated(event)
	return run, nil
}
