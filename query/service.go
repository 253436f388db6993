// Package query is the single entry point of the HTTP handlers and the CLI:
// fuzzy search, the management listing, substitute resolution, inventory
// stats and prescription matching, all evaluated against one snapshot per
// call.
package query

import (
	"errors"
	"fmt"
	"time"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/config"
	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/matcher"
	"github.com/giygas/pharmacy-inventory-api/metrics"
	"github.com/giygas/pharmacy-inventory-api/status"
)

// Options are the tunables of the service.
type Options struct {
	SearchTopK      int
	FilterTopK      int
	Threshold       float64 // 0-100
	DefaultPageSize int
	MaxPageSize     int
	ListThresholds  status.Thresholds
	StatsThresholds status.Thresholds
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		SearchTopK:      3,
		FilterTopK:      100,
		Threshold:       50,
		DefaultPageSize: 50,
		MaxPageSize:     5000,
		ListThresholds:  status.Thresholds{LowStock: 10, ExpiringSoonDays: 30},
		StatsThresholds: status.Thresholds{LowStock: 5, ExpiringSoonDays: 15},
	}
}

// OptionsFromConfig copies the query settings of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SearchTopK:      cfg.SearchTopK,
		FilterTopK:      cfg.FilterTopK,
		Threshold:       cfg.SearchThreshold,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		ListThresholds:  cfg.ListThresholds,
		StatsThresholds: cfg.StatsThresholds,
	}
}

var _ interfaces.QueryService = (*Service)(nil)

// Service answers queries against the snapshot held by the store.
type Service struct {
	store interfaces.DataStore
	opts  Options
	now   func() time.Time
}

// NewService creates a service reading from store.
func NewService(store interfaces.DataStore, opts Options) *Service {
	return &Service{
		store: store,
		opts:  opts,
		now:   time.Now,
	}
}

// FindBest returns the best few matches for a name.
func (s *Service) FindBest(query string) ([]entities.MatchResult, error) {
	return s.search(s.store.GetSnapshot(), query, s.opts.SearchTopK, "find_best")
}

// FilterByNameLike is the broad variant of FindBest used to narrow the
// listing to a name.
func (s *Service) FilterByNameLike(query string) ([]entities.MatchResult, error) {
	return s.search(s.store.GetSnapshot(), query, s.opts.FilterTopK, "filter_by_name")
}

func (s *Service) search(snap *catalog.Snapshot, query string, topK int, operation string) ([]entities.MatchResult, error) {
	start := time.Now()
	results, err := matcher.Search(snap, query, matcher.Options{TopK: topK, Threshold: s.opts.Threshold})
	if err != nil {
		if errors.Is(err, matcher.ErrQueryTooShort) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}
	metrics.ObserveMatch(operation, start, len(results))
	return results, nil
}

// Stats counts the tiers of the whole catalog with the stats profile.
func (s *Service) Stats() entities.InventoryStats {
	snap := s.store.GetSnapshot()
	now := s.now()

	stats := entities.InventoryStats{TotalItems: snap.Len()}
	records := snap.Records()
	for i := range records {
		set := status.ClassifyRecord(&records[i], s.opts.StatsThresholds, now)
		switch set.Stock {
		case entities.StatusOutOfStock:
			stats.OutOfStock++
		case entities.StatusLowStock:
			stats.LowStockItems++
		}
		switch set.Expiry {
		case entities.StatusExpired:
			stats.Expired++
		case entities.StatusExpiringSoon:
			stats.ExpiringSoon++
		}
	}
	return stats
}

// ResolveSubstitutes looks up every substitute named on a record and keeps
// the best catalog hit of each when it is in stock. A substitute that
// cannot be searched or matches nothing is skipped.
func (s *Service) ResolveSubstitutes(id int) (entities.SubstitutesResponse, error) {
	snap := s.store.GetSnapshot()

	rec, ok := snap.ByID(id)
	if !ok {
		return entities.SubstitutesResponse{}, fmt.Errorf("%w: medicine %d", ErrNotFound, id)
	}

	resp := entities.SubstitutesResponse{
		Medicine:    entities.Enrich(rec),
		Substitutes: []entities.SubstituteCandidate{},
	}
	for _, name := range rec.Substitutes {
		results, err := s.search(snap, name, s.opts.SearchTopK, "substitutes")
		if err != nil || len(results) == 0 {
			continue
		}
		best := results[0]
		if !best.Record.InStock() {
			continue
		}
		resp.Substitutes = append(resp.Substitutes, entities.SubstituteCandidate{
			SubstituteName: name,
			Medicine:       entities.EnrichMatch(best),
		})
	}
	return resp, nil
}
