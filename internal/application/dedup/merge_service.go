// Package dedupapp consolidates sources that were created more than once for
// the same shop, e.g. "2025-08-03T23-20-16-775Z_Acme" next to "Acme".
package dedupapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/cache"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/logger"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Stores is the persistence the merge engine works on.
type Stores struct {
	Sources   ingest.SourceRepository
	Customers ingest.CustomerRepository
	Orders    ingest.OrderRepository
	Files     ingest.IngestedFileRepository
	Logs      ingest.ProcessingLogRepository
}

// Option configures a MergeService
type Option func(*MergeService)

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *MergeService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSummaryCache invalidates c after a merge that changed anything
func WithSummaryCache(c cache.SummaryCache) Option {
	return func(s *MergeService) {
		s.cache = c
	}
}

// WithMetrics records merge counters
func WithMetrics(m *telemetry.IngestMetrics) Option {
	return func(s *MergeService) {
		s.metrics = m
	}
}

// MergeService runs duplicate-source consolidation.
//
// Children are moved one statement at a time without a surrounding
// transaction: a unique-key collision on one row must not abort the others.
// A run interrupted halfway is completed by the next run.
type MergeService struct {
	stores  Stores
	cache   cache.SummaryCache
	metrics *telemetry.IngestMetrics
	log     *zap.Logger
}

// NewMergeService creates a new MergeService
func NewMergeService(stores Stores, opts ...Option) *MergeService {
	s := &MergeService{stores: stores, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// group is the set of sources sharing one canonical name, oldest first.
type group struct {
	name    string
	members []*ingest.Source
}

// MergeDuplicateSources folds every group of same-named sources into one
// keeper. Running it again is a no-op.
func (s *MergeService) MergeDuplicateSources(ctx context.Context) (*ingest.MergeReport, error) {
	ctx = logger.WithRunID(ctx, uuid.NewString())
	ctx, span := telemetry.StartServiceSpan(ctx, "dedup", "merge")
	defer span.End()
	log := logger.WithLogger(ctx, s.log)

	sources, err := s.stores.Sources.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load sources: %w", err)
	}

	report := &ingest.MergeReport{}
	for _, g := range groupSources(sources) {
		if len(g.members) < 2 {
			continue
		}
		report.GroupsFound++

		keeper := pickKeeper(g.members)
		log.Info("Merging duplicate sources",
			logger.Shop(g.name),
			zap.String("keeper", keeper.Name),
			zap.Int("duplicates", len(g.members)-1),
		)

		for _, loser := range g.members {
			if loser.ID == keeper.ID {
				continue
			}
			if err := s.absorb(ctx, keeper, loser, report); err != nil {
				telemetry.RecordError(span, err)
				return report, fmt.Errorf("merge %q into %q: %w", loser.Name, keeper.Name, err)
			}
			report.SourcesRemoved++
		}

		if keeper.Name != g.name || keeper.DisplayName != g.name {
			res, err := s.stores.Sources.Rename(ctx, keeper.ID, g.name)
			if err != nil {
				telemetry.RecordError(span, err)
				return report, fmt.Errorf("rename %q: %w", keeper.Name, err)
			}
			if res.IsConflict() {
				return report, fmt.Errorf("rename %q to %q: %w", keeper.Name, g.name, shared.ErrAlreadyExists)
			}
			keeper.Rename(g.name)
			report.SourcesRenamed++
		}
		report.Kept = append(report.Kept, g.name)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrGroups, report.GroupsFound,
		"sources_removed", report.SourcesRemoved,
	)
	s.metrics.RecordMerge(ctx, report.SourcesRemoved, map[string]int{
		string(ingest.ConflictExternalOrderID):    report.OrdersDeleted,
		string(ingest.ConflictCustomerExternalID): report.CustomersDeleted,
		string(ingest.ConflictFingerprint):        report.FilesDeleted,
	})

	if report.GroupsFound > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("Summary cache invalidation failed", zap.Error(err))
		}
	}

	log.Info("Merge finished",
		zap.Int("groups", report.GroupsFound),
		zap.Int("sources_removed", report.SourcesRemoved),
		zap.Int("orders_moved", report.OrdersMoved),
		zap.Int("orders_deleted", report.OrdersDeleted),
		zap.Int("customers_moved", report.CustomersMoved),
		zap.Int("customers_deleted", report.CustomersDeleted),
		zap.Int("files_moved", report.FilesMoved),
		zap.Int("files_deleted", report.FilesDeleted),
	)
	return report, nil
}

// absorb moves every child of loser to keeper, then deletes loser.
func (s *MergeService) absorb(ctx context.Context, keeper, loser *ingest.Source, report *ingest.MergeReport) error {
	orderIDs, err := s.stores.Orders.ListIDsBySource(ctx, loser.ID)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	for _, id := range orderIDs {
		res, err := s.stores.Orders.Reassign(ctx, id, keeper.ID)
		if err != nil {
			return fmt.Errorf("move order %s: %w", id, err)
		}
		if !res.IsConflict() {
			report.OrdersMoved++
			continue
		}
		if err := s.stores.Orders.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete order %s: %w", id, err)
		}
		report.OrdersDeleted++
	}

	customerIDs, err := s.stores.Customers.ListIDsBySource(ctx, loser.ID)
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}
	for _, id := range customerIDs {
		res, err := s.stores.Customers.Reassign(ctx, id, keeper.ID)
		if err != nil {
			return fmt.Errorf("move customer %s: %w", id, err)
		}
		if !res.IsConflict() {
			report.CustomersMoved++
			continue
		}
		if err := s.dropCustomer(ctx, keeper, id); err != nil {
			return err
		}
		report.CustomersDeleted++
	}

	fileIDs, err := s.stores.Files.ListIDsBySource(ctx, loser.ID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	for _, id := range fileIDs {
		res, err := s.stores.Files.Reassign(ctx, id, keeper.ID)
		if err != nil {
			return fmt.Errorf("move file %s: %w", id, err)
		}
		if !res.IsConflict() {
			report.FilesMoved++
			continue
		}
		if err := s.stores.Files.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete file %s: %w", id, err)
		}
		report.FilesDeleted++
	}

	moved, err := s.stores.Logs.ReassignSource(ctx, loser.ID, keeper.ID)
	if err != nil {
		return fmt.Errorf("move processing logs: %w", err)
	}
	report.LogsMoved += int(moved)

	if err := s.stores.Sources.Delete(ctx, loser.ID); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// dropCustomer deletes a loser customer whose external id already exists on
// the keeper, after pointing its orders at the keeper's customer.
func (s *MergeService) dropCustomer(ctx context.Context, keeper *ingest.Source, id uuid.UUID) error {
	loserCustomer, err := s.stores.Customers.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", id, err)
	}
	ext := loserCustomer.ExternalID
	if ext != "" {
		survivor, err := s.stores.Customers.FindByExternalID(ctx, keeper.ID, ext)
		switch {
		case err == nil:
			if _, err := s.stores.Orders.RelinkCustomer(ctx, id, survivor.ID); err != nil {
				return fmt.Errorf("relink orders of customer %s: %w", id, err)
			}
		case !errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("find keeper customer %q: %w", ext, err)
		}
	}
	if err := s.stores.Customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	return nil
}

// groupSources groups by canonical name, keeping first-seen order.
func groupSources(sources []*ingest.Source) []*group {
	var groups []*group
	index := make(map[string]*group)
	for _, src := range sources {
		name := ingest.CanonicalName(src.Name)
		g, ok := index[name]
		if !ok {
			g = &group{name: name}
			index[name] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, src)
	}
	return groups
}

// pickKeeper prefers the oldest member without an upload prefix, then the
// oldest member. members must be ordered oldest first.
func pickKeeper(members []*ingest.Source) *ingest.Source {
	for _, m := range members {
		if !ingest.HasIngestPrefix(m.Name) {
			return m
		}
	}
	return members[0]
}
