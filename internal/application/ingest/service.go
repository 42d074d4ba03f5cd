// Package ingestapp runs order-export files through the ingestion pipeline:
// source resolution, content dedup, parse, normalize and per-row upsert.
package ingestapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/cache"
	csvimport "github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/import"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/logger"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/scheduler"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Defaults for the service options
const (
	DefaultMaxRowErrors = 100
	DefaultRecentFiles  = 5
)

// Archiver copies a completed file to long-term storage.
type Archiver interface {
	Archive(ctx context.Context, shop, fingerprint, filePath string) error
}

// Stores is the persistence the service is built on.
type Stores struct {
	Sources    ingest.SourceRepository
	Files      ingest.IngestedFileRepository
	Logs       ingest.ProcessingLogRepository
	Summaries  ingest.SummaryReader
	Transactor ingest.Transactor
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSummaryCache sets the cache GetSummaries reads through
func WithSummaryCache(c cache.SummaryCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithArchiver archives every completed file
func WithArchiver(a Archiver) Option {
	return func(s *Service) {
		s.archiver = a
	}
}

// WithMetrics records pipeline metrics
func WithMetrics(m *telemetry.IngestMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxRowErrors caps the row errors kept in a summary
func WithMaxRowErrors(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRowErrors = n
		}
	}
}

// WithRecentFiles sets how many files each source summary lists
func WithRecentFiles(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentFiles = n
		}
	}
}

// WithLineItemReplace replaces the items of updated orders instead of appending.
func WithLineItemReplace(replace bool) Option {
	return func(s *Service) {
		s.replaceLineItems = replace
	}
}

// Service is the ingestion entry point for both the watcher and manual callers.
type Service struct {
	stores   Stores
	resolver *SourceResolver
	gate     *ContentGate
	upserter *Upserter

	cache    cache.SummaryCache
	archiver Archiver
	metrics  *telemetry.IngestMetrics
	log      *zap.Logger

	maxRowErrors     int
	recentFiles      int
	replaceLineItems bool

	locks *keyedMutex
	now   func() time.Time
}

// NewService creates a new Service
func NewService(stores Stores, opts ...Option) *Service {
	s := &Service{
		stores:       stores,
		resolver:     NewSourceResolver(stores.Sources),
		gate:         NewContentGate(stores.Files),
		log:          zap.NewNop(),
		maxRowErrors: DefaultMaxRowErrors,
		recentFiles:  DefaultRecentFiles,
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upserter = NewUpserter(stores.Transactor, WithReplaceLineItems(s.replaceLineItems))
	return s
}

// IngestFile runs one file through the pipeline. Calls for the same source are
// serialized. Re-ingesting completed content returns the stored counts without
// parsing. Fatal failures mark the file failed, are logged against the source
// and returned; they match ingest.ErrFileAccess, ingest.ErrParse,
// ingest.ErrFingerprint or ingest.ErrPersistenceUnavailable.
func (s *Service) IngestFile(ctx context.Context, path string) (*ingest.IngestionSummary, error) {
	start := s.now()
	shop := SourceKey(path)

	ctx = logger.WithRunID(ctx, uuid.NewString())
	ctx = logger.WithFile(logger.WithShop(ctx, shop), path)
	ctx, span := telemetry.StartServiceSpan(ctx, "ingest", "file",
		telemetry.WithAttribute(telemetry.SpanAttrShop, shop),
		telemetry.WithAttribute(telemetry.SpanAttrFile, path),
	)
	defer span.End()
	log := logger.WithLogger(ctx, s.log)

	unlock := s.locks.Lock(shop)
	defer unlock()

	if err := checkReadable(path); err != nil {
		src, lookupErr := s.resolver.Lookup(ctx, path)
		if lookupErr != nil {
			log.Warn("Failed to look up source", zap.Error(lookupErr))
		}
		return nil, s.fail(ctx, shop, src, nil, path, start, err)
	}

	src, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, s.fail(ctx, shop, nil, nil, path, start, err)
	}

	adm, err := s.gate.Admit(ctx, src, path)
	if err != nil {
		return nil, s.fail(ctx, shop, src, nil, path, start, err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrFingerprint, adm.File.Fingerprint)

	if adm.Done != nil {
		telemetry.AddEvent(span, "file_skipped", telemetry.SpanAttrFingerprint, adm.File.Fingerprint)
		s.metrics.RecordFile(ctx, shop, telemetry.FileStatusSkipped, s.now().Sub(start))
		log.Info("File already processed, skipping", zap.String("fingerprint", adm.File.Fingerprint))
		return adm.Done, nil
	}

	var summary *ingest.IngestionSummary
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: "ingest",
		telemetry.ProfilingLabelShop:      src.Name,
	}, func(ctx context.Context) {
		summary, err = s.process(ctx, src, path)
	})
	if err != nil {
		return nil, s.fail(ctx, shop, src, adm.File, path, start, err)
	}

	finished := s.now()
	adm.File.Complete(summary, finished)
	if err := s.stores.Files.Save(ctx, adm.File); err != nil {
		return nil, s.fail(ctx, shop, src, adm.File, path, start, fmt.Errorf("save file record: %w", err))
	}
	if err := s.stores.Sources.MarkSynced(ctx, src.ID, finished); err != nil {
		log.Warn("Failed to update last sync", zap.Error(err))
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, src.Name, adm.File.Fingerprint, path); err != nil {
			log.Warn("Failed to archive file", zap.Error(err))
		}
	}
	s.invalidate(ctx)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrRows, summary.TotalRows,
		telemetry.SpanAttrErrored, summary.Errored,
	)
	telemetry.SetOK(span)
	s.metrics.RecordRows(ctx, shop, summary.Inserted, summary.Updated, summary.Errored)
	s.metrics.RecordFile(ctx, shop, telemetry.FileStatusCompleted, finished.Sub(start))

	log.Info("File processed",
		zap.Int("total", summary.TotalRows),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("errored", summary.Errored),
		zap.Duration("duration", finished.Sub(start)),
	)
	return summary, nil
}

// process parses and upserts every row. Row failures are collected; fatal
// errors stop the pass.
func (s *Service) process(ctx context.Context, src *ingest.Source, path string) (*ingest.IngestionSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ingest.NewFileError(ingest.FileErrorAccess, path, err)
	}
	defer f.Close()

	parser, err := csvimport.NewCSVParser(f)
	if err != nil {
		return nil, ingest.NewFileError(ingest.FileErrorAccess, path, err)
	}

	var rows csvimport.RowSource = parser
	errs := csvimport.NewErrorCollection(s.maxRowErrors)
	summary := &ingest.IngestionSummary{}
	log := logger.WithLogger(ctx, s.log)

	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csvimport.ErrMalformedCSV) {
				return nil, ingest.NewFileError(ingest.FileErrorParse, path, err)
			}
			return nil, ingest.NewFileError(ingest.FileErrorAccess, path, err)
		}

		if row.Index == 1 {
			if missing := missingColumns(parser); len(missing) > 0 {
				log.Warn("Export is missing required columns, rows will be rejected",
					zap.Strings("missing", missing),
					zap.Strings("headers", parser.Headers()),
				)
			}
		}

		bundle := Normalize(row)
		kind, err := s.upserter.Write(ctx, src.ID, row.Index, &bundle)
		if err != nil {
			if ingest.IsFatal(err) {
				return nil, err
			}
			var rowErr csvimport.RowError
			if !errors.As(err, &rowErr) {
				rowErr = csvimport.NewRowError(row.Index, "", csvimport.ErrCodeImportUnknown, err.Error())
			}
			errs.Add(rowErr)
			summary.Errored++
			log.Warn("Row failed", logger.Row(row.Index), zap.String("code", rowErr.Code), zap.String("error", rowErr.Message))
			continue
		}

		switch kind {
		case ingest.WriteCreated:
			summary.Inserted++
		case ingest.WriteUpdated:
			summary.Updated++
		}
	}

	summary.TotalRows = parser.TotalRows()
	summary.Errors = toFailures(errs.Errors())
	summary.IsTruncated = errs.IsTruncated()
	if errs.HasErrors() {
		log.Info("Rows rejected", zap.Int("count", errs.TotalCount()), zap.Any("by_code", errs.ErrorSummary()))
	}
	if parser.Encoding() != csvimport.EncodingUTF8 {
		log.Info("Decoded non UTF-8 export", zap.String("encoding", string(parser.Encoding())))
	}
	return summary, nil
}

// fail records a fatal file error and returns it. src is nil when the file
// failed before its source could be resolved; the log entry is then kept
// without a source.
func (s *Service) fail(ctx context.Context, shop string, src *ingest.Source, file *ingest.IngestedFile, path string, start time.Time, cause error) error {
	span := trace.SpanFromContext(ctx)
	telemetry.RecordError(span, cause)
	log := logger.WithLogger(ctx, s.log)

	if file != nil {
		file.Fail(cause.Error())
		if err := s.stores.Files.Save(ctx, file); err != nil {
			log.Error("Failed to mark file failed", zap.Error(err))
		}
	}

	var sourceID *uuid.UUID
	if src != nil {
		sourceID = &src.ID
	}
	entry := ingest.NewProcessingLogEntry(sourceID, ingest.LogLevelError,
		fmt.Sprintf("File processing error: %v", cause),
		map[string]any{"filename": filepath.Base(path), "path": path, "shop": shop},
	)
	if err := s.stores.Logs.Append(ctx, entry); err != nil {
		log.Error("Failed to append processing log", zap.Error(err))
	}

	// rows committed before the failure are visible in the summaries
	s.invalidate(ctx)

	s.metrics.RecordFile(ctx, shop, telemetry.FileStatusFailed, s.now().Sub(start))
	log.Error("File processing failed", zap.Error(cause))
	return cause
}

// GetSummaries returns per-source counts and recent files, through the cache.
func (s *Service) GetSummaries(ctx context.Context) ([]ingest.SourceSummary, error) {
	log := logger.WithLogger(ctx, s.log)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn("Summary cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	summaries, err := s.stores.Summaries.Summaries(ctx, s.recentFiles)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, summaries); err != nil {
			log.Warn("Summary cache write failed", zap.Error(err))
		}
	}
	return summaries, nil
}

// Handle implements scheduler.JobHandler for watcher-driven work.
func (s *Service) Handle(ctx context.Context, job scheduler.Job) error {
	_, err := s.IngestFile(ctx, job.Path)
	return err
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WithLogger(ctx, s.log).Warn("Summary cache invalidation failed", zap.Error(err))
	}
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ingest.NewFileError(ingest.FileErrorAccess, path, err)
	}
	if info.IsDir() {
		return ingest.NewFileError(ingest.FileErrorAccess, path, errors.New("is a directory"))
	}
	return nil
}

func missingColumns(parser *csvimport.CSVParser) []string {
	var missing []string
	for _, col := range requiredColumns {
		if !parser.HasHeader(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func toFailures(errs []csvimport.RowError) []ingest.RowFailure {
	out := make([]ingest.RowFailure, 0, len(errs))
	for _, e := range errs {
		msg := e.Message
		if e.Column != "" {
			msg = fmt.Sprintf("%s: %s", e.Column, e.Message)
		}
		out = append(out, ingest.RowFailure{Row: e.Row, Code: e.Code, Message: msg})
	}
	return out
}
