// Package data holds the catalog snapshot shared by every request. A reload
// swaps the snapshot pointer in one atomic store, so readers see either the
// old catalog or the new one.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

type reloadError struct {
	msg string
	at  time.Time
}

// DataContainer holds the current snapshot with atomic pointers for zero-downtime updates
type DataContainer struct {
	snapshot        atomic.Pointer[catalog.Snapshot]
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
	lastError       atomic.Pointer[reloadError]
}

// NewDataContainer creates a new DataContainer with an empty snapshot
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.snapshot.Store(catalog.Empty())
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetSnapshot returns the current snapshot. Callers should take it once per
// request and keep using that value.
func (dc *DataContainer) GetSnapshot() *catalog.Snapshot {
	if snap := dc.snapshot.Load(); snap != nil {
		return snap
	}

	logging.Warn("Catalog snapshot is not set")
	return catalog.Empty()
}

// UpdateSnapshot replaces the snapshot and clears the last reload error
func (dc *DataContainer) UpdateSnapshot(snap *catalog.Snapshot) {
	if snap == nil {
		logging.Warn("Ignoring nil snapshot update")
		return
	}
	dc.snapshot.Store(snap)
	dc.lastUpdated.Store(time.Now())
	dc.lastError.Store(nil)
}

// GetLastUpdated returns the timestamp of the last successful update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a reload is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// BeginUpdate marks the start of a reload.
// Returns true if the reload can proceed, false if another one is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}

// RecordReloadError keeps the last failed reload for the health endpoint.
// The snapshot itself is left untouched.
func (dc *DataContainer) RecordReloadError(err error) {
	if err == nil {
		return
	}
	dc.lastError.Store(&reloadError{msg: err.Error(), at: time.Now()})
}

// GetLastReloadError returns the message and time of the last failed
// reload, or an empty message when the last reload succeeded.
func (dc *DataContainer) GetLastReloadError() (string, time.Time) {
	if e := dc.lastError.Load(); e != nil {
		return e.msg, e.at
	}
	return "", time.Time{}
}
