package health

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/entities"
)

// mockHealthDataStore implements interfaces.DataStore for testing
type mockHealthDataStore struct {
	snapshot    *catalog.Snapshot
	lastUpdated time.Time
	isUpdating  bool
	reloadErr   string
	reloadErrAt time.Time
}

func (m *mockHealthDataStore) GetSnapshot() *catalog.Snapshot {
	if m.snapshot == nil {
		return catalog.Empty()
	}
	return m.snapshot
}

func (m *mockHealthDataStore) UpdateSnapshot(snap *catalog.Snapshot) { m.snapshot = snap }
func (m *mockHealthDataStore) GetLastUpdated() time.Time             { return m.lastUpdated }
func (m *mockHealthDataStore) IsUpdating() bool                      { return m.isUpdating }
func (m *mockHealthDataStore) GetServerStartTime() time.Time         { return time.Time{} }
func (m *mockHealthDataStore) BeginUpdate() bool                     { return true }
func (m *mockHealthDataStore) EndUpdate()                            {}

func (m *mockHealthDataStore) RecordReloadError(err error) {
	m.reloadErr = err.Error()
	m.reloadErrAt = m.lastUpdated
}

func (m *mockHealthDataStore) GetLastReloadError() (string, time.Time) {
	return m.reloadErr, m.reloadErrAt
}

var fixedNow = time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func loadedSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot([]entities.MedicineRecord{
		{ID: 1, Name: "Dolo 650 Tablet"},
		{ID: 2, Name: "Pan 40 Tablet"},
	}, 4)
}

func TestNewHealthChecker(t *testing.T) {
	checker := NewHealthChecker(&mockHealthDataStore{}, DefaultSchedule)
	if checker == nil {
		t.Fatal("NewHealthChecker returned nil")
	}
}

func TestHealthCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		store      *mockHealthDataStore
		wantStatus string
		wantCode   int
	}{
		{
			name:       "healthy",
			store:      &mockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-2 * time.Hour)},
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
		{
			name:       "no records",
			store:      &mockHealthDataStore{lastUpdated: fixedNow},
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "very old data",
			store:      &mockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-49 * time.Hour)},
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "old data",
			store:      &mockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-30 * time.Hour)},
			wantStatus: "degraded",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "long running reload",
			store:      &mockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-7 * time.Hour), isUpdating: true},
			wantStatus: "degraded",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "reload on fresh data",
			store:      &mockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-time.Hour), isUpdating: true},
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
		{
			name: "failed reload",
			store: &mockHealthDataStore{
				snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-3 * time.Hour),
				reloadErr: "failed to load catalog: connection refused", reloadErrAt: fixedNow.Add(-time.Hour),
			},
			wantStatus: "degraded",
			wantCode:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newHealthChecker(tt.store, DefaultSchedule, clock)
			status, _, code := checker.HealthCheck()
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("HealthCheck() = %s/%d, want %s/%d", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestHealthCheckDetails(t *testing.T) {
	store := &mockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: fixedNow.Add(-90 * time.Minute)}
	checker := newHealthChecker(store, DefaultSchedule, clock)

	_, data, _ := checker.HealthCheck()

	if data["records"] != 2 {
		t.Errorf("Expected 2 records, got %v", data["records"])
	}
	if data["snapshot_version"] != uint64(4) {
		t.Errorf("Expected version 4, got %v", data["snapshot_version"])
	}
	if data["data_age_hours"] != 1.5 {
		t.Errorf("Expected 1.5 hours, got %v", data["data_age_hours"])
	}
	if data["next_update"] != "2026-10-18T18:00:00Z" {
		t.Errorf("Unexpected next update %v", data["next_update"])
	}
	if _, ok := data["last_reload_error"]; ok {
		t.Error("last_reload_error should be absent after a successful reload")
	}

	store.RecordReloadError(errors.New("boom"))
	_, data, _ = checker.HealthCheck()
	if data["last_reload_error"] != "boom" {
		t.Errorf("Expected reload error in details, got %v", data["last_reload_error"])
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		now      time.Time
		want     time.Time
	}{
		{"before first", "06:00;18:00", time.Date(2026, 10, 18, 5, 0, 0, 0, time.UTC), time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)},
		{"between", "06:00;18:00", time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)},
		{"after last", "06:00;18:00", time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC), time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)},
		{"exactly at", "06:00;18:00", time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC), time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)},
		{"unsorted schedule", "22:15; 03:30", time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), time.Date(2026, 10, 18, 22, 15, 0, 0, time.UTC)},
		{"month end", "03:00", time.Date(2026, 10, 31, 4, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 3, 0, 0, 0, time.UTC)},
		{"invalid schedule falls back", "soon", time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC), time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			checker := newHealthChecker(&mockHealthDataStore{}, tt.schedule, func() time.Time { return now })
			if got := checker.CalculateNextUpdate(); !got.Equal(tt.want) {
				t.Errorf("CalculateNextUpdate() = %v, want %v", got, tt.want)
			}
		})
	}
}
