package catalogloader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// TableName is the table every SQL catalog is read from.
const TableName = "medicine"

var _ interfaces.CatalogLoader = (*SQLLoader)(nil)

// SQLLoader reads the medicine table through database/sql. The driver is
// "postgres" or "sqlite3".
type SQLLoader struct {
	db     *sql.DB
	driver string
}

// NewSQLLoader prepares the connection pool. Nothing is dialled here, so a
// store that is still starting up surfaces in LoadRecords, where the
// scheduler retries it.
func NewSQLLoader(driver, dsn string) (*SQLLoader, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s catalog: %w", driver, err)
	}

	return &SQLLoader{db: db, driver: driver}, nil
}

// Close releases the database connection.
func (l *SQLLoader) Close() error {
	return l.db.Close()
}

// LoadRecords reads every row ordered by id. Columns missing from the table
// (older schemas have no expiry_date) read as empty.
func (l *SQLLoader) LoadRecords(ctx context.Context) ([]entities.MedicineRecord, interfaces.LoadReport, error) {
	if err := l.db.PingContext(ctx); err != nil {
		return nil, interfaces.LoadReport{}, fmt.Errorf("failed to reach %s catalog: %w", l.driver, err)
	}

	columns, err := l.availableColumns(ctx)
	if err != nil {
		return nil, interfaces.LoadReport{}, err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(quoted, ", "), TableName)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, interfaces.LoadReport{}, fmt.Errorf("failed to query %s: %w", TableName, err)
	}
	defer rows.Close()

	c := newCollector(l.driver + ":" + TableName)
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, interfaces.LoadReport{}, fmt.Errorf("failed to scan %s row: %w", TableName, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if values[i].Valid {
				row[strings.ToLower(col)] = values[i].String
			}
		}
		c.add(row)
	}
	if err := rows.Err(); err != nil {
		return nil, interfaces.LoadReport{}, fmt.Errorf("failed to read %s: %w", TableName, err)
	}

	records, report := c.result()
	logging.Debug("Catalog rows read", "source", report.Source, "rows", report.Rows, "loaded", report.Loaded)
	return records, report, nil
}

// availableColumns returns the known columns present in the table, spelled
// the way the table spells them.
func (l *SQLLoader) availableColumns(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", TableName))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", TableName, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", TableName, err)
	}

	present := make(map[string]string, len(names))
	for _, n := range names {
		present[strings.ToLower(n)] = n
	}

	columns := make([]string, 0, len(Columns))
	for _, want := range Columns {
		if actual, ok := present[strings.ToLower(want)]; ok {
			columns = append(columns, actual)
		}
	}

	for _, required := range []string{ColID, ColName} {
		if _, ok := present[required]; !ok {
			return nil, fmt.Errorf("table %s has no %s column", TableName, required)
		}
	}
	return columns, nil
}
