// Package scheduler loads the catalog at startup, reloads it on a daily
// schedule and watches for stale data. Every reload builds a new snapshot
// and swaps it into the data store; a failed reload leaves the previous
// snapshot in place.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"
	"github.com/giygas/pharmacy-inventory-api/metrics"
	"github.com/giygas/pharmacy-inventory-api/validation"
	"github.com/go-co-op/gocron"
)

// ErrReloadInProgress is returned when another reload holds the store.
var ErrReloadInProgress = errors.New("reload already in progress")

const (
	scheduledReloadTimeout = 10 * time.Minute
	staleAfter             = 25 * time.Hour
	monitorInterval        = time.Hour
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Options configures the reload schedule and the startup retries.
type Options struct {
	Schedule   string // gocron At() expression, e.g. "06:00;18:00"
	MaxRetries int
	RetryDelay time.Duration
}

// Scheduler handles catalog reloads and freshness monitoring
type Scheduler struct {
	dataStore interfaces.DataStore
	loader    interfaces.CatalogLoader
	validator interfaces.DataValidator
	opts      Options
	scheduler *gocron.Scheduler

	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.CatalogLoader, opts Options) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		loader:    loader,
		validator: validation.NewDataValidator(),
		opts:      opts,
		scheduler: gocron.NewScheduler(time.Local),
		stop:      make(chan struct{}),
	}
}

// Start performs the initial load, retrying with backoff, then schedules
// the daily reloads and the staleness monitor. An initial load that still
// fails after the retries is returned to the caller.
func (s *Scheduler) Start() error {
	if err := s.loadWithRetry(context.Background()); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	s.scheduler.SingletonModeAll()
	_, err := s.scheduler.Every(1).Days().At(s.opts.Schedule).Do(s.scheduledReload)
	if err != nil {
		logging.Error("Failed to schedule reloads", "schedule", s.opts.Schedule, "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}
	s.scheduler.StartAsync()

	go s.monitorFreshness()

	logging.Info("Catalog reloads scheduled", "schedule", s.opts.Schedule)
	return nil
}

// Stop stops the scheduled jobs and the monitor
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Stop()
	})
}

// scheduledReload retries with the same backoff as the initial load, bounded
// by scheduledReloadTimeout. The previous snapshot keeps serving meanwhile.
func (s *Scheduler) scheduledReload() {
	ctx, cancel := context.WithTimeout(context.Background(), scheduledReloadTimeout)
	defer cancel()

	if err := s.loadWithRetry(ctx); err != nil {
		if errors.Is(err, ErrReloadInProgress) {
			logging.Info("Reload already in progress, skipping scheduled run")
			return
		}
		logging.Error("Scheduled catalog reload failed, serving previous snapshot", "error", err)
	}
}

// Reload reads the whole catalog and swaps in a new snapshot. Concurrent
// calls fail fast with ErrReloadInProgress.
func (s *Scheduler) Reload(ctx context.Context) error {
	if !s.dataStore.BeginUpdate() {
		metrics.CatalogReloadTotal.WithLabelValues(metrics.ReloadSkipped).Inc()
		return ErrReloadInProgress
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting catalog reload")
	start := time.Now()

	records, report, err := s.loader.LoadRecords(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load catalog: %w", err)
		s.dataStore.RecordReloadError(err)
		metrics.CatalogReloadTotal.WithLabelValues(metrics.ReloadFailure).Inc()
		return err
	}

	s.logLoadReport(report)
	s.logDataQuality(s.validator.ReportDataQuality(records))
	if len(records) == 0 {
		logging.Warn("Catalog is empty", "source", report.Source)
	}

	previous := s.dataStore.GetSnapshot()
	snap := catalog.NewSnapshot(records, previous.Version()+1)
	s.dataStore.UpdateSnapshot(snap)

	metrics.RecordSnapshot(snap.Len(), snap.Version(), snap.LoadedAt())
	metrics.RecordCoercions(report.CoercedPrices, report.CoercedQuantities, report.UnparsedExpiry)

	logging.Info("Catalog reload completed",
		"duration", time.Since(start).String(),
		"records", snap.Len(),
		"version", snap.Version(),
		"snapshot_id", snap.ID(),
	)
	return nil
}

func (s *Scheduler) logLoadReport(report interfaces.LoadReport) {
	if report.SkippedRows > 0 {
		logging.Warn("Catalog rows without a usable id were skipped",
			"source", report.Source,
			"count", report.SkippedRows,
		)
	}
	if len(report.DuplicateIDs) > 0 {
		logging.Warn("Duplicate catalog ids dropped",
			"total", len(report.DuplicateIDs),
			"id_list", report.DuplicateIDs,
		)
	}
	if report.CoercedPrices > 0 || report.CoercedQuantities > 0 {
		logging.Warn("Catalog values coerced to 0",
			"prices", report.CoercedPrices,
			"quantities", report.CoercedQuantities,
		)
	}
	if report.UnparsedExpiry > 0 {
		logging.Warn("Expiry dates in an unknown format", "count", report.UnparsedExpiry)
	}
}

func (s *Scheduler) logDataQuality(report *interfaces.DataQualityReport) {
	if len(report.DuplicateNames) > 0 {
		logging.Warn("Medicine names sharing a matching key",
			"total", len(report.DuplicateNames),
			"names", report.DuplicateNames,
		)
	}
	logging.Debug("Catalog data quality",
		"records", report.TotalRecords,
		"missing_expiry", report.MissingExpiry,
		"without_substitutes", report.WithoutSubstitutes,
		"without_composition", report.WithoutComposition,
		"zero_price", report.ZeroPrice,
		"out_of_stock", report.OutOfStock,
	)
}

// monitorFreshness warns every hour while the catalog is stale
func (s *Scheduler) monitorFreshness() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if isStale(s.dataStore.GetLastUpdated(), now) {
				logging.Warn("Catalog hasn't been reloaded in over 25 hours",
					"last_updated", s.dataStore.GetLastUpdated().Format(time.RFC3339))
			}
		}
	}
}

func isStale(lastUpdated, now time.Time) bool {
	return now.Sub(lastUpdated) > staleAfter
}
