// Package interfaces defines the contracts between the catalog, the query
// layer, the scheduler and the HTTP boundary so each side can be mocked.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/entities"
)

// LoadReport counts what happened to the rows of one catalog load.
type LoadReport struct {
	Source            string
	Rows              int
	Loaded            int
	SkippedRows       int   // rows without a usable id
	DuplicateIDs      []int // ids seen again after their first row
	CoercedPrices     int
	CoercedQuantities int
	UnparsedExpiry    int // expiry present but in no known format
}

// DataQualityReport summarises the records of a snapshot.
type DataQualityReport struct {
	TotalRecords       int
	DuplicateNames     []string
	MissingExpiry      int
	WithoutSubstitutes int
	WithoutComposition int
	ZeroPrice          int
	OutOfStock         int
}

// DataStore holds the current catalog snapshot. Readers take one snapshot
// per request; a reload swaps it in a single step.
type DataStore interface {
	GetSnapshot() *catalog.Snapshot
	UpdateSnapshot(snap *catalog.Snapshot)
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	BeginUpdate() bool
	EndUpdate()

	RecordReloadError(err error)
	GetLastReloadError() (msg string, at time.Time)
}

// CatalogLoader reads every record from the backing store.
type CatalogLoader interface {
	LoadRecords(ctx context.Context) ([]entities.MedicineRecord, LoadReport, error)
	Close() error
}

// Reloader rebuilds the snapshot on demand.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler defines the contract for job scheduling and health monitoring.
type Scheduler interface {
	Reloader

	// Lifecycle management
	Start() error
	Stop()
}

// QueryService is the entry point of the HTTP handlers and the CLI.
type QueryService interface {
	FindBest(query string) ([]entities.MatchResult, error)
	FilterByNameLike(query string) ([]entities.MatchResult, error)
	List(filter entities.ListFilter) (entities.ListResult, error)
	ResolveSubstitutes(id int) (entities.SubstitutesResponse, error)
	Stats() entities.InventoryStats
	MatchPrescription(items []entities.PrescribedItem) entities.PrescriptionResponse
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	SearchMedicine(w http.ResponseWriter, r *http.Request)
	ListMedicines(w http.ResponseWriter, r *http.Request)
	InventoryStats(w http.ResponseWriter, r *http.Request)
	Substitutes(w http.ResponseWriter, r *http.Request)
	MatchPrescription(w http.ResponseWriter, r *http.Request)
	TriggerReload(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the health status, its details and the HTTP code to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled reload time
	CalculateNextUpdate() time.Time
}

// DataValidator checks user input and reports on loaded records.
type DataValidator interface {
	// ValidateInput validates free-text user input such as search queries
	ValidateInput(input string) error

	// ValidateID parses a catalog id from a path parameter
	ValidateID(input string) (int, error)

	// ReportDataQuality generates a data quality report for the records
	ReportDataQuality(records []entities.MedicineRecord) *DataQualityReport
}
