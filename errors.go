package gamsort

import (
	"errors"
	"fmt"
)

// ErrTooManyOpenRuns is wrapped in a StorageError when opening another run for
// merging would exceed Config.MaxOpenRuns.
var ErrTooManyOpenRuns = errors.New("too many open runs")

// SerializationError represents an error that occurred while encoding a record
type SerializationError struct {
	// Cause is the underlying error returned by the encoder
	Cause error
	// Context provides additional information about what was being serialized
	Context string
}

func (e *SerializationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("serialization error in %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("serialization error: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a SerializationError
func NewSerializationError(cause error, context string) error {
	return &SerializationError{Cause: cause, Context: context}
}

// DeserializationError represents a record that could not be decoded, either
// from the input stream or from a spilled run.
type DeserializationError struct {
	// Cause is the underlying error returned by the decoder
	Cause error
	// DataSize is the size of the data that failed to deserialize
	DataSize int
	// Context provides additional information about what was being deserialized
	Context string
}

func (e *DeserializationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("deserialization error in %s (data size: %d bytes): %v", e.Context, e.DataSize, e.Cause)
	}
	return fmt.Sprintf("deserialization error (data size: %d bytes): %v", e.DataSize, e.Cause)
}

func (e *DeserializationError) Unwrap() error {
	return e.Cause
}

// NewDeserializationError creates a DeserializationError
func NewDeserializationError(cause error, dataSize int, context string) error {
	return &DeserializationError{Cause: cause, DataSize: dataSize, Context: context}
}

// StorageError represents a failure to create, write, open, read or close a run.
type StorageError struct {
	// Op is the storage operation that failed, ex: "create run"
	Op string
	// Name is the run name, empty if the run was never named
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("storage error during %s on %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a StorageError wrapping the underlying I/O error
func NewStorageError(err error, op, name string) error {
	return &StorageError{Op: op, Name: name, Err: err}
}

// ConfigError represents an error in configuration parameters
type ConfigError struct {
	// Field is the name of the configuration field that's invalid
	Field string
	// Value is the invalid value provided
	Value interface{}
	// Reason explains why the value is invalid
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %s", e.Field, e.Value, e.Reason)
}
