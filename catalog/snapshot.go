// Package catalog provides the immutable, point-in-time view of the medicine
// catalog that every request reads from.
package catalog

import (
	"time"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/textnorm"
	"github.com/google/uuid"
)

// Snapshot is never mutated after NewSnapshot returns. A reload builds a
// new one and swaps the pointer held by the data container.
type Snapshot struct {
	id       uuid.UUID
	version  uint64
	loadedAt time.Time
	records  []entities.MedicineRecord
	names    []string // normalized names, parallel to records
	byID     map[int]int
}

// NewSnapshot indexes records in the given order. The order matters: it is
// the tie-break order of the matcher.
func NewSnapshot(records []entities.MedicineRecord, version uint64) *Snapshot {
	s := &Snapshot{
		id:       uuid.New(),
		version:  version,
		loadedAt: time.Now(),
		records:  records,
		names:    make([]string, len(records)),
		byID:     make(map[int]int, len(records)),
	}

	for i := range records {
		s.names[i] = textnorm.Normalize(records[i].Name)
		if _, exists := s.byID[records[i].ID]; !exists {
			s.byID[records[i].ID] = i
		}
	}

	return s
}

// Empty returns a snapshot without records, used before the first load.
func Empty() *Snapshot {
	return NewSnapshot(nil, 0)
}

// ID identifies this snapshot in logs and health output.
func (s *Snapshot) ID() string { return s.id.String() }

// Version increases by one on every successful reload.
func (s *Snapshot) Version() uint64 { return s.version }

// LoadedAt is the time the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Record returns the record at position i.
func (s *Snapshot) Record(i int) entities.MedicineRecord { return s.records[i] }

// NormalizedName returns the matching key of the record at position i.
func (s *Snapshot) NormalizedName(i int) string { return s.names[i] }

// Records exposes the backing slice. Callers must not modify it.
func (s *Snapshot) Records() []entities.MedicineRecord { return s.records }

// ByID looks a record up by its catalog id.
func (s *Snapshot) ByID(id int) (entities.MedicineRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entities.MedicineRecord{}, false
	}
	return s.records[i], true
}
