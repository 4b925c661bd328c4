package gamsort

import (
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"
)

// RunEvent describes a run that has been fully written.
type RunEvent struct {
	Index    int    // batch sequence number, starting at 0
	Name     string // name the run was created with
	Records  int
	Duration time.Duration // time spent sorting and writing the run
}

// Observer is notified at sort milestones. With NumWorkers > 1, RunCreated may
// be called from several goroutines at once.
type Observer interface {
	RunCreated(RunEvent)
	MergeStarted(runs int)
	// MergeProgress is called every Config.ProgressInterval records.
	MergeProgress(merged int64)
	MergeFinished(merged int64)
}

type nopObserver struct{}

func (nopObserver) RunCreated(RunEvent) {}
func (nopObserver) MergeStarted(int)    {}
func (nopObserver) MergeProgress(int64) {}
func (nopObserver) MergeFinished(int64) {}

// MultiObserver forwards every event to each observer in turn.
type MultiObserver []Observer

// RunCreated forwards e to every observer.
func (m MultiObserver) RunCreated(e RunEvent) {
	for _, o := range m {
		o.RunCreated(e)
	}
}

// MergeStarted forwards the run count to every observer.
func (m MultiObserver) MergeStarted(runs int) {
	for _, o := range m {
		o.MergeStarted(runs)
	}
}

// MergeProgress forwards the merged count to every observer.
func (m MultiObserver) MergeProgress(merged int64) {
	for _, o := range m {
		o.MergeProgress(merged)
	}
}

// MergeFinished forwards the final count to every observer.
func (m MultiObserver) MergeFinished(merged int64) {
	for _, o := range m {
		o.MergeFinished(merged)
	}
}

// LogObserver logs sort milestones.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver returns an Observer logging to logger.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.Named("gamsort")}
}

// RunCreated logs the run at info level.
func (o *LogObserver) RunCreated(e RunEvent) {
	o.logger.Info("created run",
		zap.Int("index", e.Index),
		zap.String("name", e.Name),
		zap.Int("records", e.Records),
		zap.Duration("duration", e.Duration))
}

// MergeStarted logs the number of runs being merged.
func (o *LogObserver) MergeStarted(runs int) {
	o.logger.Info("merging runs", zap.Int("runs", runs))
}

// MergeProgress logs the records merged so far at debug level.
func (o *LogObserver) MergeProgress(merged int64) {
	o.logger.Debug("merge progress", zap.Int64("records", merged))
}

// MergeFinished logs the total records merged.
func (o *LogObserver) MergeFinished(merged int64) {
	o.logger.Info("merge finished", zap.Int64("records", merged))
}

// MetricsObserver counts sort work in its own metrics set.
type MetricsObserver struct {
	set            *metrics.Set
	runsCreated    *metrics.Counter
	recordsSpilled *metrics.Counter
	recordsMerged  *metrics.Counter
	merges         *metrics.Counter
	spillDuration  *metrics.Histogram
	lastMerged     int64
}

// NewMetricsObserver returns an Observer backed by a new metrics set.
func NewMetricsObserver() *MetricsObserver {
	s := metrics.NewSet()
	return &MetricsObserver{
		set:            s,
		runsCreated:    s.NewCounter("gamsort_runs_created_total"),
		recordsSpilled: s.NewCounter("gamsort_records_spilled_total"),
		recordsMerged:  s.NewCounter("gamsort_records_merged_total"),
		merges:         s.NewCounter("gamsort_merges_total"),
		spillDuration:  s.NewHistogram("gamsort_run_spill_duration_seconds"),
	}
}

// RunCreated counts the run and its records and times the spill.
func (o *MetricsObserver) RunCreated(e RunEvent) {
	o.runsCreated.Inc()
	o.recordsSpilled.Add(e.Records)
	o.spillDuration.Update(e.Duration.Seconds())
}

// MergeStarted counts a merge.
func (o *MetricsObserver) MergeStarted(int) {
	o.merges.Inc()
	o.lastMerged = 0
}

// MergeProgress adds the records merged since the last call.
func (o *MetricsObserver) MergeProgress(merged int64) {
	o.recordsMerged.Add(int(merged - o.lastMerged))
	o.lastMerged = merged
}

// MergeFinished adds the records merged since the last progress call.
func (o *MetricsObserver) MergeFinished(merged int64) {
	o.MergeProgress(merged)
}

// RunsCreated returns the number of runs written.
func (o *MetricsObserver) RunsCreated() uint64 {
	return o.runsCreated.Get()
}

// RecordsMerged returns the number of records emitted by merges.
func (o *MetricsObserver) RecordsMerged() uint64 {
	return o.recordsMerged.Get()
}

// WritePrometheus writes all metrics in Prometheus text exposition format.
func (o *MetricsObserver) WritePrometheus(w io.Writer) {
	o.set.WritePrometheus(w)
}
