// Package health reports whether the catalog being served is present and fresh.
package health

import (
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/giygas/pharmacy-inventory-api/interfaces"
)

// DefaultSchedule is used when the configured schedule cannot be read.
const DefaultSchedule = "06:00;18:00"

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	times     []time.Duration // reload times as offsets from midnight, sorted
	now       func() time.Time
}

// NewHealthChecker creates a new health checker. schedule uses the reload
// scheduler's "HH:MM;HH:MM" form.
func NewHealthChecker(dataStore interfaces.DataStore, schedule string) interfaces.HealthChecker {
	return newHealthChecker(dataStore, schedule, time.Now)
}

func newHealthChecker(dataStore interfaces.DataStore, schedule string, now func() time.Time) *HealthCheckerImpl {
	times := parseSchedule(schedule)
	if len(times) == 0 {
		times = parseSchedule(DefaultSchedule)
	}
	return &HealthCheckerImpl{
		dataStore: dataStore,
		times:     times,
		now:       now,
	}
}

func parseSchedule(schedule string) []time.Duration {
	var times []time.Duration
	for _, part := range strings.Split(schedule, ";") {
		t, err := time.Parse("15:04", strings.TrimSpace(part))
		if err != nil {
			continue
		}
		times = append(times, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

// HealthCheck grades the catalog:
//   - unhealthy (503): no records, or data older than 48h
//   - degraded (503): data older than 24h, or a reload running for a catalog older than 6h
//   - degraded (200): the last reload failed but the previous catalog is recent
//   - healthy (200): otherwise
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snap := h.dataStore.GetSnapshot()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	reloadErr, reloadErrAt := h.dataStore.GetLastReloadError()

	dataAge := h.now().Sub(lastUpdate)

	switch {
	case snap.Len() == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 48*time.Hour:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 24*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && dataAge > 6*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case reloadErr != "":
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":      lastUpdate.Format(time.RFC3339),
		"data_age_hours":   math.Round(dataAge.Hours()*10) / 10,
		"records":          snap.Len(),
		"snapshot_version": snap.Version(),
		"snapshot_id":      snap.ID(),
		"is_updating":      isUpdating,
		"next_update":      h.CalculateNextUpdate().Format(time.RFC3339),
	}
	if reloadErr != "" {
		data["last_reload_error"] = reloadErr
		data["last_reload_error_at"] = reloadErrAt.Format(time.RFC3339)
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled reload time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := h.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, offset := range h.times {
		if next := midnight.Add(offset); next.After(now) {
			return next
		}
	}

	tomorrow := midnight.AddDate(0, 0, 1)
	return tomorrow.Add(h.times[0])
}
