package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// File outcome labels
const (
	FileStatusCompleted = "completed"
	FileStatusFailed    = "failed"
	FileStatusSkipped   = "skipped"
)

// IngestMetrics records pipeline and merge counters.
// A nil *IngestMetrics is valid and records nothing.
type IngestMetrics struct {
	logger *zap.Logger

	filesTotal     *Counter
	rowsTotal      *Counter
	fileDuration   *Histogram
	conflictsTotal *Counter
	sourcesRemoved *Counter
}

// IngestMetricsConfig holds configuration for ingestion metrics.
type IngestMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewIngestMetrics creates the ingestion instruments on the given meter.
func NewIngestMetrics(cfg IngestMetricsConfig) (*IngestMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &IngestMetrics{logger: logger}

	var err error
	m.filesTotal, err = NewCounter(cfg.Meter,
		"ingest_files_total",
		"Files processed by the ingestion pipeline",
		"{file}",
	)
	if err != nil {
		return nil, err
	}

	m.rowsTotal, err = NewCounter(cfg.Meter,
		"ingest_rows_total",
		"Rows processed by outcome",
		"{row}",
	)
	if err != nil {
		return nil, err
	}

	m.fileDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ingest_file_duration_seconds",
		Description: "Wall time of one file pass",
		Unit:        "s",
		Boundaries:  FileDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	m.conflictsTotal, err = NewCounter(cfg.Meter,
		"merge_conflicts_resolved_total",
		"Children deleted during source consolidation",
		"{record}",
	)
	if err != nil {
		return nil, err
	}

	m.sourcesRemoved, err = NewCounter(cfg.Meter,
		"merge_sources_removed_total",
		"Duplicate sources deleted during consolidation",
		"{source}",
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("Ingestion metrics initialized")
	return m, nil
}

// RecordFile records one finished file pass.
func (m *IngestMetrics) RecordFile(ctx context.Context, shop, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.filesTotal.Inc(ctx, AttrShop.String(shop), AttrStatus.String(status))
	m.fileDuration.RecordDuration(ctx, d, AttrStatus.String(status))
}

// RecordRows records the row outcomes of one file pass.
func (m *IngestMetrics) RecordRows(ctx context.Context, shop string, inserted, updated, errored int) {
	if m == nil {
		return
	}
	for outcome, n := range map[string]int{"inserted": inserted, "updated": updated, "errored": errored} {
		if n > 0 {
			m.rowsTotal.Add(ctx, int64(n), AttrShop.String(shop), AttrOutcome.String(outcome))
		}
	}
}

// RecordMerge records the outcome of one consolidation run.
func (m *IngestMetrics) RecordMerge(ctx context.Context, sourcesRemoved int, conflicts map[string]int) {
	if m == nil {
		return
	}
	if sourcesRemoved > 0 {
		m.sourcesRemoved.Add(ctx, int64(sourcesRemoved))
	}
	for kind, n := range conflicts {
		if n > 0 {
			m.conflictsTotal.Add(ctx, int64(n), AttrKind.String(kind))
		}
	}
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewIngestMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
