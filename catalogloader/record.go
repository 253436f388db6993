package catalogloader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/textnorm"
	"github.com/shopspring/decimal"
)

// Column names of the medicine table. Rows are keyed by the lower-cased
// form so "sideEffect0" and "sideeffect0" address the same value.
const (
	ColID               = "id"
	ColName             = "name"
	ColPrice            = "price"
	ColQuantity         = "quantity_available"
	ColPackSizeLabel    = "pack_size_label"
	ColTherapeuticClass = "therapeutic_class"
	ColActionClass      = "action_class"
	ColExpiryDate       = "expiry_date"
)

// Columns lists every column the loaders read, in table order.
var Columns = buildColumns()

func buildColumns() []string {
	cols := []string{ColID, ColName, ColPrice, ColQuantity, ColPackSizeLabel}
	cols = append(cols, numbered("short_composition", 1, entities.MaxCompositions)...)
	cols = append(cols, numbered("substitute", 0, entities.MaxSubstitutes)...)
	cols = append(cols, numbered("sideEffect", 0, entities.MaxSideEffects)...)
	cols = append(cols, numbered("use", 0, entities.MaxUses)...)
	return append(cols, ColTherapeuticClass, ColActionClass, ColExpiryDate)
}

func numbered(prefix string, first, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(first+i)
	}
	return out
}

// Row is one source row keyed by lower-cased column name.
type Row map[string]string

func (r Row) get(col string) string {
	return r[strings.ToLower(col)]
}

func (r Row) list(prefix string, first, n int) []string {
	values := make([]string, 0, n)
	for _, col := range numbered(prefix, first, n) {
		values = append(values, r.get(col))
	}
	return textnorm.CleanAll(values, n)
}

// Coercion flags the fields of a row that were replaced by a default.
type Coercion struct {
	Price    bool
	Quantity bool
	Expiry   bool
}

// BuildRecord turns a raw row into a record. Only a missing or malformed id
// is an error; every other bad value is coerced and flagged.
func BuildRecord(row Row) (entities.MedicineRecord, Coercion, error) {
	var c Coercion

	id, err := parseID(row.get(ColID))
	if err != nil {
		return entities.MedicineRecord{}, c, err
	}

	price, ok := parsePrice(row.get(ColPrice))
	c.Price = !ok
	quantity, ok := parseQuantity(row.get(ColQuantity))
	c.Quantity = !ok
	expiry, display, ok := parseExpiry(row.get(ColExpiryDate))
	c.Expiry = !ok

	packLabel := textnorm.Clean(row.get(ColPackSizeLabel))

	return entities.MedicineRecord{
		ID:                id,
		Name:              textnorm.Clean(row.get(ColName)),
		Price:             price,
		QuantityAvailable: quantity,
		PackSizeLabel:     packLabel,
		PackCount:         textnorm.PackCount(packLabel),
		Compositions:      row.list("short_composition", 1, entities.MaxCompositions),
		Substitutes:       row.list("substitute", 0, entities.MaxSubstitutes),
		SideEffects:       row.list("sideEffect", 0, entities.MaxSideEffects),
		Uses:              row.list("use", 0, entities.MaxUses),
		TherapeuticClass:  textnorm.Clean(row.get(ColTherapeuticClass)),
		ActionClass:       textnorm.Clean(row.get(ColActionClass)),
		Expiry:            expiry,
		ExpiryDate:        display,
	}, c, nil
}

func parseID(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets hand integers back as "12.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid id %q", raw)
		}
		id = int(f)
	}
	return id, nil
}

// parsePrice accepts plain decimals with an optional currency prefix and
// thousands separators. Missing, malformed or negative values become 0
// with ok=false.
func parsePrice(raw string) (decimal.Decimal, bool) {
	s := textnorm.Clean(raw)
	if s == "" {
		return decimal.Zero, false
	}
	for _, prefix := range []string{"₹", "Rs.", "Rs", "INR", "$"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func parseQuantity(raw string) (int, bool) {
	s := textnorm.Clean(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		n = int(f)
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

// Day-precision layouts first, then month-precision ones. A month-only
// expiry means the last day of that month.
var (
	dayLayouts = []string{
		"2006-01-02",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"02/01/2006",
		"02-01-2006",
		"02.01.2006",
		"2 Jan 2006",
		"Jan 2, 2006",
	}
	monthLayouts = []string{
		"01/2006",
		"01-2006",
		"2006-01",
		"Jan 2006",
		"Jan-2006",
		"January 2006",
	}
)

// parseExpiry returns the expiry as a local calendar date and the string to
// display. A missing value yields nil with ok=true. An unparseable value
// yields nil, keeps the raw text for display and reports ok=false.
func parseExpiry(raw string) (*time.Time, string, bool) {
	s := textnorm.Clean(raw)
	if s == "" {
		return nil, "", true
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
			return &day, day.Format("2006-01-02"), true
		}
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.Local)
			return &last, s, true
		}
	}

	return nil, s, false
}

// collector applies the catalog-wide rules while rows stream in: rows
// without an id are skipped, later rows repeating an id are dropped.
type collector struct {
	report  interfaces.LoadReport
	seen    map[int]struct{}
	records []entities.MedicineRecord
}

func newCollector(source string) *collector {
	return &collector{
		report: interfaces.LoadReport{Source: source, DuplicateIDs: []int{}},
		seen:   make(map[int]struct{}),
	}
}

func (c *collector) add(row Row) {
	c.report.Rows++

	rec, coercion, err := BuildRecord(row)
	if err != nil {
		c.report.SkippedRows++
		return
	}
	if _, dup := c.seen[rec.ID]; dup {
		c.report.DuplicateIDs = append(c.report.DuplicateIDs, rec.ID)
		return
	}
	c.seen[rec.ID] = struct{}{}

	if coercion.Price {
		c.report.CoercedPrices++
	}
	if coercion.Quantity {
		c.report.CoercedQuantities++
	}
	if coercion.Expiry {
		c.report.UnparsedExpiry++
	}

	c.records = append(c.records, rec)
	c.report.Loaded++
}

func (c *collector) result() ([]entities.MedicineRecord, interfaces.LoadReport) {
	if c.records == nil {
		c.records = []entities.MedicineRecord{}
	}
	return c.records, c.report
}
