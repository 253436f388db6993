// Package entities holds the catalog records and the response shapes shared
// by the query service, the HTTP handlers and the CLI.
package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Upper bounds on the repeated columns of the medicine table.
const (
	MaxCompositions = 2
	MaxSubstitutes  = 5
	MaxSideEffects  = 5
	MaxUses         = 5
)

func init() {
	// Prices go over the wire as JSON numbers, which is what the UI casts with float().
	decimal.MarshalJSONWithoutQuotes = true
}

// MedicineRecord is one catalog entry. Optional text fields are empty when
// the source had nothing (or a placeholder) for them; slices hold only the
// values that were present.
type MedicineRecord struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	PackSizeLabel     string          `json:"pack_size_label"`
	PackCount         int             `json:"pack_count"`
	Compositions      []string        `json:"compositions"`
	Substitutes       []string        `json:"substitutes"`
	SideEffects       []string        `json:"side_effects"`
	Uses              []string        `json:"uses"`
	TherapeuticClass  string          `json:"therapeutic_class"`
	ActionClass       string          `json:"action_class"`
	Expiry            *time.Time      `json:"-"`
	ExpiryDate        string          `json:"expiry_date"`
}

// InStock reports whether at least one unit is available.
func (m *MedicineRecord) InStock() bool {
	return m.QuantityAvailable > 0
}

// MatchResult pairs a record with its similarity to a query, in [0,1].
type MatchResult struct {
	Record          MedicineRecord
	SimilarityScore float64
}
