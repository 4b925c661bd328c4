package gamsort

// Batcher accumulates records and writes them downstream in batches of a
// fixed size. The slice passed to WriteBatch is reused after it returns, so
// writers must not retain it.
type Batcher[E any] struct {
	w       BatchWriter[E]
	size    int
	buf     []E
	flushes int
	written int64
}

// NewBatcher returns a Batcher writing to w every size records. A size below
// one writes every record as its own batch.
func NewBatcher[E any](w BatchWriter[E], size int) *Batcher[E] {
	if size < 1 {
		size = 1
	}
	return &Batcher[E]{
		w:    w,
		size: size,
		buf:  make([]E, 0, size),
	}
}

// Add buffers rec, writing the whole buffer once it holds size records.
func (b *Batcher[E]) Add(rec E) error {
	b.buf = append(b.buf, rec)
	if len(b.buf) >= b.size {
		return b.Flush()
	}
	return nil
}

// Flush writes any buffered records regardless of the batch size. Flushing
// an empty buffer does nothing.
func (b *Batcher[E]) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	if err := b.w.WriteBatch(b.buf); err != nil {
		return err
	}
	b.flushes++
	b.written += int64(len(b.buf))
	clear(b.buf)
	b.buf = b.buf[:0]
	return nil
}

// Buffered returns the number of records waiting to be written.
func (b *Batcher[E]) Buffered() int {
	return len(b.buf)
}

// Flushes returns the number of batches written.
func (b *Batcher[E]) Flushes() int {
	return b.flushes
}

// Written returns the number of records written downstream.
func (b *Batcher[E]) Written() int64 {
	return b.written
}
