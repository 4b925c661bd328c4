package tempfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// MockStore provides an in-memory implementation of the Store interface.
// Runs are kept in byte buffers instead of files on disk. This is useful for
// testing and benchmarking without filesystem I/O overhead.
type MockStore struct {
	mu     sync.Mutex
	runs   map[string]*bytes.Buffer
	names  []string
	closed bool
}

// Mock creates a new in-memory Store.
func Mock() *MockStore {
	return &MockStore{runs: make(map[string]*bytes.Buffer)}
}

// Names returns the names of all runs created so far, in creation order.
func (s *MockStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// Size returns the number of bytes stored for the named run.
func (s *MockStore) Size(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.runs[name]; ok {
		return b.Len()
	}
	return 0
}

// Create allocates a new in-memory run.
func (s *MockStore) Create() (RunWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, os.ErrClosed
	}
	name := fmt.Sprintf("mock-run-%d", len(s.names))
	buf := &bytes.Buffer{}
	s.runs[name] = buf
	s.names = append(s.names, name)
	return &mockRunWriter{name: name, buf: buf}, nil
}

// Open returns a reader sharing the run's bytes. Runs must not be written
// after they are opened.
func (s *MockStore) Open(name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.runs[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
	}
	return mockRunReader{bytes.NewReader(b.Bytes())}, nil
}

// Close releases all runs.
func (s *MockStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.runs = make(map[string]*bytes.Buffer)
	s.names = nil
	return nil
}

type mockRunWriter struct {
	name string
	buf  *bytes.Buffer
}

func (w *mockRunWriter) Name() string {
	return w.name
}

func (w *mockRunWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *mockRunWriter) Close() error {
	return nil
}

type mockRunReader struct {
	*bytes.Reader
}

func (mockRunReader) Close() error {
	return nil
}
