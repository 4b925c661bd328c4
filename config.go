package gamsort

import (
	"go.uber.org/zap"
)

// Config holds configuration settings for gamsort
type Config struct {
	MaxBatchSize     int         // records held in memory and written to each run
	OutputFlushSize  int         // records buffered before each output write
	NumWorkers       int         // >1 overlaps sorting and spilling with reading the next batch
	MaxOpenRuns      int         // maximum runs open at once while merging, 0 for no limit
	FileBufferSize   int         // file IO buffer size for each run
	TempFilesDir     string      // empty for automatic selection, ex: /var/tmp
	Compress         bool        // zstd compress runs on disk
	ProgressInterval int         // records merged between Observer.MergeProgress calls, 0 disables
	Observer         Observer    // notified on run creation and merge milestones, nil for none
	Logger           *zap.Logger // nil for no logging
}

// DefaultConfig returns the default configuration options used if none provided
func DefaultConfig() *Config {
	return &Config{
		MaxBatchSize:     100000,
		OutputFlushSize:  1000,
		NumWorkers:       1,
		MaxOpenRuns:      0,
		FileBufferSize:   1 << 16, // 64k
		TempFilesDir:     "",
		ProgressInterval: 1000000,
		Observer:         nopObserver{},
		Logger:           zap.NewNop(),
	}
}

// mergeConfig takes a provided config and replaces any values not set with the defaults
func mergeConfig(c *Config) *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	merged := *c
	if merged.MaxBatchSize <= 0 {
		merged.MaxBatchSize = d.MaxBatchSize
	}
	if merged.OutputFlushSize <= 0 {
		merged.OutputFlushSize = d.OutputFlushSize
	}
	if merged.NumWorkers <= 0 {
		merged.NumWorkers = d.NumWorkers
	}
	if merged.MaxOpenRuns < 0 {
		merged.MaxOpenRuns = d.MaxOpenRuns
	}
	if merged.FileBufferSize <= 0 {
		merged.FileBufferSize = d.FileBufferSize
	}
	if merged.ProgressInterval < 0 {
		merged.ProgressInterval = 0
	}
	if merged.Observer == nil {
		merged.Observer = d.Observer
	}
	if merged.Logger == nil {
		merged.Logger = d.Logger
	}
	// skipping TempFilesDir as it is the empty string
	return &merged
}

// Validate reports the first setting that can not be used as given.
// Zero values are valid and mean "use the default".
func (c *Config) Validate() error {
	if c.MaxBatchSize < 0 {
		return &ConfigError{Field: "MaxBatchSize", Value: c.MaxBatchSize, Reason: "must not be negative"}
	}
	if c.OutputFlushSize < 0 {
		return &ConfigError{Field: "OutputFlushSize", Value: c.OutputFlushSize, Reason: "must not be negative"}
	}
	if c.NumWorkers < 0 {
		return &ConfigError{Field: "NumWorkers", Value: c.NumWorkers, Reason: "must not be negative"}
	}
	if c.MaxOpenRuns < 0 {
		return &ConfigError{Field: "MaxOpenRuns", Value: c.MaxOpenRuns, Reason: "must not be negative"}
	}
	if c.FileBufferSize < 0 {
		return &ConfigError{Field: "FileBufferSize", Value: c.FileBufferSize, Reason: "must not be negative"}
	}
	return nil
}
