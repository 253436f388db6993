package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/status"
)

// Sort fields accepted by List.
const (
	SortByID               = "id"
	SortByName             = "name"
	SortByPrice            = "price"
	SortByQuantity         = "quantity_available"
	SortByPackSizeLabel    = "pack_size_label"
	SortByTherapeuticClass = "therapeutic_class"
	SortByActionClass      = "action_class"
	SortByExpiryDate       = "expiry_date"
	SortBySimilarity       = "similarity_score"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Records without a usable expiry sort as if they expired on this date.
var expirySentinel = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

type listItem struct {
	rec    entities.MedicineRecord
	status entities.StatusSet
	score  *float64
}

var comparators = map[string]func(a, b *listItem) int{
	SortByID: func(a, b *listItem) int { return cmp.Compare(a.rec.ID, b.rec.ID) },
	SortByName: func(a, b *listItem) int {
		return strings.Compare(strings.ToLower(a.rec.Name), strings.ToLower(b.rec.Name))
	},
	SortByPrice:    func(a, b *listItem) int { return a.rec.Price.Cmp(b.rec.Price) },
	SortByQuantity: func(a, b *listItem) int { return cmp.Compare(a.rec.QuantityAvailable, b.rec.QuantityAvailable) },
	SortByPackSizeLabel: func(a, b *listItem) int {
		return strings.Compare(a.rec.PackSizeLabel, b.rec.PackSizeLabel)
	},
	SortByTherapeuticClass: func(a, b *listItem) int {
		return strings.Compare(a.rec.TherapeuticClass, b.rec.TherapeuticClass)
	},
	SortByActionClass: func(a, b *listItem) int {
		return strings.Compare(a.rec.ActionClass, b.rec.ActionClass)
	},
	SortByExpiryDate: func(a, b *listItem) int { return expiryOf(a).Compare(expiryOf(b)) },
	SortBySimilarity: func(a, b *listItem) int { return cmp.Compare(scoreOf(a), scoreOf(b)) },
}

func expiryOf(it *listItem) time.Time {
	if it.rec.Expiry == nil {
		return expirySentinel
	}
	return *it.rec.Expiry
}

func scoreOf(it *listItem) float64 {
	if it.score == nil {
		return 0
	}
	return *it.score
}

// List returns one page of the management listing. The working set is the
// whole catalog, or the name matches of filter.Search in rank order. Sorting
// is stable, so equal keys keep working-set order in both directions.
func (s *Service) List(filter entities.ListFilter) (entities.ListResult, error) {
	if err := s.normalizeFilter(&filter); err != nil {
		return entities.ListResult{}, err
	}

	snap := s.store.GetSnapshot()

	var items []listItem
	if filter.Search != "" {
		matches, err := s.search(snap, filter.Search, s.opts.FilterTopK, "list")
		if err != nil {
			return entities.ListResult{}, err
		}
		items = make([]listItem, len(matches))
		for i := range matches {
			score := matches[i].SimilarityScore
			items[i] = listItem{rec: matches[i].Record, score: &score}
		}
	} else {
		records := snap.Records()
		items = make([]listItem, len(records))
		for i := range records {
			items[i] = listItem{rec: records[i]}
		}
	}

	now := s.now()
	kept := items[:0]
	for _, it := range items {
		it.status = status.ClassifyRecord(&it.rec, s.opts.ListThresholds, now)
		if len(filter.StatusFilter) > 0 && !it.status.Intersects(filter.StatusFilter) {
			continue
		}
		kept = append(kept, it)
	}

	if filter.SortBy != "" {
		compare := comparators[filter.SortBy]
		if filter.SortOrder == SortDesc {
			slices.SortStableFunc(kept, func(a, b listItem) int { return compare(&b, &a) })
		} else {
			slices.SortStableFunc(kept, func(a, b listItem) int { return compare(&a, &b) })
		}
	}

	result := entities.ListResult{
		Total:     len(kept),
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Medicines: []entities.EnrichedRecord{},
	}

	start := (filter.Page - 1) * filter.PageSize
	if start >= len(kept) {
		return result, nil
	}
	end := min(start+filter.PageSize, len(kept))

	for _, it := range kept[start:end] {
		e := entities.Enrich(it.rec)
		e.SimilarityScore = it.score
		e.Status = it.status.Tags()
		result.Medicines = append(result.Medicines, e)
	}
	return result, nil
}

// normalizeFilter applies defaults and rejects values List cannot honour.
func (s *Service) normalizeFilter(f *entities.ListFilter) error {
	f.Search = strings.TrimSpace(f.Search)
	f.SortBy = strings.ToLower(strings.TrimSpace(f.SortBy))
	f.SortOrder = strings.ToLower(strings.TrimSpace(f.SortOrder))

	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = s.opts.DefaultPageSize
	}

	if f.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidInput, f.Page)
	}
	if f.PageSize < 1 || f.PageSize > s.opts.MaxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d, got %d", ErrInvalidInput, s.opts.MaxPageSize, f.PageSize)
	}
	if f.SortBy != "" {
		if _, ok := comparators[f.SortBy]; !ok {
			return fmt.Errorf("%w: unknown sort_by %q", ErrInvalidInput, f.SortBy)
		}
	}
	switch f.SortOrder {
	case "":
		f.SortOrder = SortAsc
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("%w: sort_order must be asc or desc, got %q", ErrInvalidInput, f.SortOrder)
	}
	return nil
}
