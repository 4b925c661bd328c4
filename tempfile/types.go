package tempfile

import (
	"io"
)

// RunWriter is a uniquely named run being written. Closing it finalizes the
// run; after Close the run can be opened for reading by name.
type RunWriter interface {
	io.WriteCloser

	// Name returns the unique name the run can be opened with.
	Name() string
}

// Store creates uniquely named runs and opens them again for forward reads.
// Runs are owned by the Store: Close removes every run it created.
type Store interface {
	// Close removes all runs created by the store.
	io.Closer

	// Create allocates a new uniquely named run for writing.
	Create() (RunWriter, error)

	// Open returns a reader positioned at the start of a finished run.
	// Each call returns an independent reader.
	Open(name string) (io.ReadCloser, error)
}
