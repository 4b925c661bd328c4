package gamsort

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/lanrat/gamsort/stream"
	"github.com/lanrat/gamsort/tempfile"
	"go.uber.org/zap"
)

// Sorter sorts records of type E larger than memory by spilling sorted runs to
// a tempfile.Store and merging them. A Sorter may be reused for several sorts;
// runs from every sort stay in the store until Close.
type Sorter[E any] struct {
	config  Config
	codec   Codec[E]
	compare Compare[E]
	key     KeyFunc[E] // optional, lets merges compare cached keys
	store   tempfile.Store
	logger  *zap.Logger
}

// New returns a Sorter spilling runs to files under config.TempFilesDir.
// config can be nil to use the defaults, or only set the non-default values desired.
// Call Close to remove the runs once the sorted output has been consumed.
func New[E any](codec Codec[E], compare Compare[E], config *Config) (*Sorter[E], error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	config = mergeConfig(config)
	store, err := tempfile.New(config.TempFilesDir,
		tempfile.WithCompression(config.Compress),
		tempfile.WithBufferSize(config.FileBufferSize))
	if err != nil {
		return nil, NewStorageError(err, "create temp dir", config.TempFilesDir)
	}
	return newSorter(codec, compare, config, store), nil
}

// NewWithStore returns a Sorter spilling runs to store. The Sorter takes
// ownership of store and closes it in Close.
func NewWithStore[E any](codec Codec[E], compare Compare[E], store tempfile.Store, config *Config) (*Sorter[E], error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	return newSorter(codec, compare, mergeConfig(config), store), nil
}

// NewMock returns a Sorter that keeps its runs in memory instead of on disk.
// All other behavior is identical to New.
func NewMock[E any](codec Codec[E], compare Compare[E], config *Config) (*Sorter[E], error) {
	return NewWithStore(codec, compare, tempfile.Mock(), config)
}

// NewAlignmentSorter returns a Sorter for alignments encoded in protobuf wire
// format, ordered by CompareAlignments. Each merged alignment's sort key is
// computed once when it is read instead of on every comparison.
func NewAlignmentSorter(config *Config) (*Sorter[Alignment], error) {
	s, err := New(AlignmentCodec, CompareAlignments, config)
	if err != nil {
		return nil, err
	}
	s.key = (*Alignment).SortKey
	return s, nil
}

// NewAlignmentMock is NewAlignmentSorter keeping its runs in memory.
func NewAlignmentMock(config *Config) (*Sorter[Alignment], error) {
	s, err := NewMock(AlignmentCodec, CompareAlignments, config)
	if err != nil {
		return nil, err
	}
	s.key = (*Alignment).SortKey
	return s, nil
}

func newSorter[E any](codec Codec[E], compare Compare[E], config *Config, store tempfile.Store) *Sorter[E] {
	return &Sorter[E]{
		config:  *config,
		codec:   codec,
		compare: compare,
		store:   store,
		logger:  config.Logger.Named("gamsort"),
	}
}

// Store returns the store runs are spilled to.
func (s *Sorter[E]) Store() tempfile.Store {
	return s.store
}

// Close removes all runs created by the Sorter.
func (s *Sorter[E]) Close() error {
	return s.store.Close()
}

// Sort reads every record from input, spills sorted runs of at most
// MaxBatchSize records, then merges the runs into output in batches of
// OutputFlushSize records. Output already written when an error occurs is
// not rolled back.
func (s *Sorter[E]) Sort(ctx context.Context, input iter.Seq2[E, error], output BatchWriter[E]) error {
	runs, err := s.ProduceRuns(ctx, input)
	if err != nil {
		return err
	}
	return s.MergeRuns(ctx, runs, output)
}

// SortInMemory reads every record from input, sorts them in memory, and
// writes them to output in batches of OutputFlushSize records. Nothing is
// spilled, so the whole input must fit in memory.
func (s *Sorter[E]) SortInMemory(ctx context.Context, input iter.Seq2[E, error], output BatchWriter[E]) error {
	var items []E
	for rec, err := range input {
		if err != nil {
			return inputError(err)
		}
		items = append(items, rec)
	}
	SortFunc(items, s.compare)
	s.logger.Debug("sorted in memory", zap.Int("records", len(items)))

	batcher := NewBatcher(output, s.config.OutputFlushSize)
	for _, rec := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batcher.Add(rec); err != nil {
			return outputError(err)
		}
	}
	if err := batcher.Flush(); err != nil {
		return outputError(err)
	}
	return nil
}

// SortStream sorts the framed records in r into w.
func (s *Sorter[E]) SortStream(ctx context.Context, r io.Reader, w io.Writer) error {
	in := stream.NewReader(r, s.codec.FromBytes, s.config.FileBufferSize)
	out := stream.NewWriter(w, s.codec.ToBytes, s.config.FileBufferSize)
	return s.Sort(ctx, in.All(), out)
}

// inputError classifies an error yielded by the input sequence.
func inputError(err error) error {
	var de *stream.DecodeError
	if errors.As(err, &de) {
		return NewDeserializationError(de.Err, de.Size, "read input")
	}
	return fmt.Errorf("read input: %w", err)
}

// outputError classifies an error returned by the output writer.
func outputError(err error) error {
	var ee *stream.EncodeError
	if errors.As(err, &ee) {
		return NewSerializationError(ee.Err, "write output")
	}
	return fmt.Errorf("write output: %w", err)
}
