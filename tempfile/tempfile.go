// Package tempfile provides the temporary storage gamsort spills sorted runs
// to. Every run is its own uniquely named file which is written once, read
// back forward, and removed when the Store is closed.
package tempfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
)

var (
	// file IO buffer size for each run
	defaultBufferSize = 1 << 16 // 64k
	// filename prefix for runs put in the temp directory
	defaultPrefix = fmt.Sprintf("gamsort_%d_", os.Getpid())
)

// Option configures a DiskStore.
type Option func(*DiskStore)

// WithCompression zstd compresses runs on disk.
func WithCompression(enabled bool) Option {
	return func(s *DiskStore) {
		s.compress = enabled
	}
}

// WithBufferSize sets the read and write buffer size for each run.
func WithBufferSize(n int) Option {
	return func(s *DiskStore) {
		if n > 0 {
			s.bufSize = n
		}
	}
}

// WithPrefix sets the filename prefix for runs.
func WithPrefix(prefix string) Option {
	return func(s *DiskStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// DiskStore keeps runs as files in a single directory.
type DiskStore struct {
	dir      string
	prefix   string
	bufSize  int
	compress bool

	mu     sync.Mutex
	names  []string
	closed bool
}

// New returns a DiskStore creating runs in dir. An empty dir selects a
// directory with GetTempDir. The directory is created if needed.
func New(dir string, opts ...Option) (*DiskStore, error) {
	s := &DiskStore{
		dir:     GetTempDir(dir),
		prefix:  defaultPrefix,
		bufSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating temp dir %s: %w", s.dir, err)
	}
	return s, nil
}

// Dir returns the directory runs are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Names returns the names of all runs created so far, in creation order.
func (s *DiskStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// Create allocates a new run file. Names are a ksuid under the store prefix so
// concurrent stores sharing a directory never collide.
func (s *DiskStore) Create() (RunWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, os.ErrClosed
	}

	name := filepath.Join(s.dir, s.prefix+ksuid.New().String())
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	s.names = append(s.names, name)

	w := &fileRunWriter{file: f}
	w.buf = bufio.NewWriterSize(f, s.bufSize)
	w.w = w.buf
	if s.compress {
		w.enc, err = zstd.NewWriter(w.buf,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		w.w = w.enc
	}
	return w, nil
}

// Open opens a finished run for reading. The returned reader is buffered and
// implements io.ByteReader.
func (s *DiskStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	r := &fileRunReader{file: f}
	var src io.Reader = f
	if s.compress {
		// one decoder goroutine per run, merges keep every run open at once
		r.dec, err = zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		src = r.dec
	}
	r.r = bufio.NewReaderSize(src, s.bufSize)
	return r, nil
}

// Close removes every run the store created. Readers still open on Unix keep
// working until they are closed.
func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	var errs []error
	for _, name := range s.names {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	s.names = nil
	return errors.Join(errs...)
}

type fileRunWriter struct {
	file *os.File
	buf  *bufio.Writer
	enc  *zstd.Encoder
	w    io.Writer
}

func (w *fileRunWriter) Name() string {
	return w.file.Name()
}

func (w *fileRunWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Close flushes all buffered data and syncs the run to disk before closing.
func (w *fileRunWriter) Close() error {
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			_ = w.file.Close()
			return err
		}
	}
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

type fileRunReader struct {
	file *os.File
	dec  *zstd.Decoder
	r    *bufio.Reader
}

func (r *fileRunReader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

func (r *fileRunReader) ReadByte() (byte, error) {
	return r.r.ReadByte()
}

func (r *fileRunReader) Close() error {
	if r.dec != nil {
		r.dec.Close()
	}
	return r.file.Close()
}
