// Package catalogloader reads the medicine catalog from its backing store
// and turns raw rows into records. Bad values are coerced and counted, never
// fatal; only an unreachable or unreadable store fails a load.
package catalogloader

import (
	"fmt"

	"github.com/giygas/pharmacy-inventory-api/config"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
)

// NewLoader returns the loader for a CATALOG_DRIVER value.
func NewLoader(driver, dsn string) (interfaces.CatalogLoader, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
		return NewSQLLoader(driver, dsn)
	case config.DriverFile:
		return NewFileLoader(dsn)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", driver)
	}
}
