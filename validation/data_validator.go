// Package validation checks user input at the HTTP boundary and reports on
// the quality of loaded catalog records.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/textnorm"
)

const (
	maxInputLength  = 100
	maxInputWords   = 10
	maxIDDigits     = 10
	maxReportedKeys = 10
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateInput bounds the size of a free-text search or prescription
// name. Punctuation and OCR noise are accepted: the matcher normalizes them
// away and rejects queries that normalize to too few characters.
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", maxInputLength)
	}

	if len(strings.Fields(input)) > maxInputWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", maxInputWords)
	}

	return nil
}

// ValidateID parses a positive catalog id
func (v *DataValidatorImpl) ValidateID(input string) (int, error) {
	if input == "" {
		return -1, fmt.Errorf("id cannot be empty")
	}

	if len(input) > maxIDDigits {
		return -1, fmt.Errorf("id too long: maximum %d digits", maxIDDigits)
	}

	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return -1, fmt.Errorf("id contains invalid characters. Only numeric characters are allowed")
		}
	}

	id, err := strconv.Atoi(input)
	if err != nil || id <= 0 {
		return -1, fmt.Errorf("id must be a positive integer")
	}

	return id, nil
}

// ReportDataQuality counts records with missing optional data and names
// that normalize to the same matching key. Duplicate keys are not errors
// but make ties between catalog entries likely.
func (v *DataValidatorImpl) ReportDataQuality(records []entities.MedicineRecord) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		TotalRecords:   len(records),
		DuplicateNames: []string{},
	}

	seen := make(map[string]int, len(records))
	for i := range records {
		m := &records[i]

		key := textnorm.Normalize(m.Name)
		seen[key]++
		if seen[key] == 2 && len(report.DuplicateNames) < maxReportedKeys {
			report.DuplicateNames = append(report.DuplicateNames, key)
		}

		if m.Expiry == nil {
			report.MissingExpiry++
		}
		if len(m.Substitutes) == 0 {
			report.WithoutSubstitutes++
		}
		if len(m.Compositions) == 0 {
			report.WithoutComposition++
		}
		if m.Price.IsZero() {
			report.ZeroPrice++
		}
		if !m.InStock() {
			report.OutOfStock++
		}
	}

	return report
}
