// Package status derives the stock and expiry tags of a record.
package status

import (
	"time"

	"github.com/giygas/pharmacy-inventory-api/entities"
)

// Thresholds is one classification profile. The management listing and the
// inventory stats use different profiles.
type Thresholds struct {
	LowStock         int
	ExpiringSoonDays int
}

// Classify tags a quantity and an optional expiry date. Both halves are
// always evaluated; a missing expiry only leaves the expiry tag empty.
// Dates are compared at day granularity in now's location.
func Classify(quantity int, expiry *time.Time, th Thresholds, now time.Time) entities.StatusSet {
	var set entities.StatusSet

	switch {
	case quantity <= 0:
		set.Stock = entities.StatusOutOfStock
	case quantity < th.LowStock:
		set.Stock = entities.StatusLowStock
	default:
		set.Stock = entities.StatusInStock
	}

	if expiry == nil {
		return set
	}

	today := truncateDay(now)
	day := truncateDay(expiry.In(now.Location()))
	switch {
	case day.Before(today):
		set.Expiry = entities.StatusExpired
	case day.Before(today.AddDate(0, 0, th.ExpiringSoonDays)):
		set.Expiry = entities.StatusExpiringSoon
	}

	return set
}

// ClassifyRecord is Classify applied to a catalog record.
func ClassifyRecord(m *entities.MedicineRecord, th Thresholds, now time.Time) entities.StatusSet {
	return Classify(m.QuantityAvailable, m.Expiry, th, now)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
