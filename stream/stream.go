// Package stream reads and writes sequences of records framed by a uvarint
// length prefix.
package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultBufferSize is used when a Reader or Writer is created with a
// non-positive buffer size.
const DefaultBufferSize = 1 << 16

// maxFrameSize guards against allocating for a corrupt length prefix.
const maxFrameSize = 1 << 30

// DecodeError is returned when a frame was read but its payload could not be
// decoded into a record.
type DecodeError struct {
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %d byte frame: %v", e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when a record could not be encoded.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding record: %v", e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// ErrFrameTooLarge is returned for a length prefix above the frame size limit.
var ErrFrameTooLarge = errors.New("stream: frame too large")

// byteReader is a reader that is already buffered.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// Reader decodes records from a framed byte stream.
type Reader[E any] struct {
	r         byteReader
	fromBytes func([]byte) (E, error)
	buf       []byte
	count     int64
}

// NewReader returns a Reader decoding frames from r with fromBytes. If r
// implements io.ByteReader it is read directly, otherwise it is wrapped in a
// bufio.Reader of bufSize bytes.
func NewReader[E any](r io.Reader, fromBytes func([]byte) (E, error), bufSize int) *Reader[E] {
	br, ok := r.(byteReader)
	if !ok {
		if bufSize <= 0 {
			bufSize = DefaultBufferSize
		}
		br = bufio.NewReaderSize(r, bufSize)
	}
	return &Reader[E]{r: br, fromBytes: fromBytes}
}

// Next returns the next record. It returns io.EOF once the stream ends on a
// frame boundary and io.ErrUnexpectedEOF if it ends inside a frame.
func (r *Reader[E]) Next() (E, error) {
	var rec E
	n, err := binary.ReadUvarint(r.r)
	if err != nil {
		if err == io.EOF {
			return rec, io.EOF
		}
		return rec, err
	}
	if n > maxFrameSize {
		return rec, ErrFrameTooLarge
	}
	if cap(r.buf) < int(n) {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	if _, err = io.ReadFull(r.r, r.buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return rec, err
	}
	rec, err = r.fromBytes(r.buf)
	if err != nil {
		return rec, &DecodeError{Size: int(n), Err: err}
	}
	r.count++
	return rec, nil
}

// Count returns the number of records decoded so far.
func (r *Reader[E]) Count() int64 {
	return r.count
}

// All iterates over the remaining records. Iteration stops after the first
// error, which is yielded with a zero record. A clean end of stream is not an
// error.
func (r *Reader[E]) All() iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				var zero E
				yield(zero, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Writer encodes records into a framed byte stream.
type Writer[E any] struct {
	w       *bufio.Writer
	toBytes func(E) ([]byte, error)
	scratch [binary.MaxVarintLen64]byte
	count   int64
}

// NewWriter returns a Writer encoding records to w with toBytes.
func NewWriter[E any](w io.Writer, toBytes func(E) ([]byte, error), bufSize int) *Writer[E] {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Writer[E]{w: bufio.NewWriterSize(w, bufSize), toBytes: toBytes}
}

// Write buffers one record. Call Flush to push buffered bytes to the
// underlying writer.
func (w *Writer[E]) Write(rec E) error {
	raw, err := w.toBytes(rec)
	if err != nil {
		return &EncodeError{Err: err}
	}
	n := binary.PutUvarint(w.scratch[:], uint64(len(raw)))
	if _, err = w.w.Write(w.scratch[:n]); err != nil {
		return err
	}
	if _, err = w.w.Write(raw); err != nil {
		return err
	}
	w.count++
	return nil
}

// WriteBatch writes every record in batch and flushes.
func (w *Writer[E]) WriteBatch(batch []E) error {
	for _, rec := range batch {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer[E]) Flush() error {
	return w.w.Flush()
}

// Count returns the number of records written so far.
func (w *Writer[E]) Count() int64 {
	return w.count
}
