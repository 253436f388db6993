package entities

import (
	"github.com/giygas/pharmacy-inventory-api/textnorm"
	"github.com/shopspring/decimal"
)

// EnrichedRecord is the flat wire shape consumed by the UI. Column names
// follow the medicine table so existing clients keep working.
type EnrichedRecord struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	DisplayName       string          `json:"display_name"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	PackSizeLabel     string          `json:"pack_size_label"`
	ShortComposition1 string          `json:"short_composition1"`
	ShortComposition2 string          `json:"short_composition2"`
	Substitute0       string          `json:"substitute0"`
	Substitute1       string          `json:"substitute1"`
	Substitute2       string          `json:"substitute2"`
	Substitute3       string          `json:"substitute3"`
	Substitute4       string          `json:"substitute4"`
	SideEffect0       string          `json:"sideEffect0"`
	SideEffect1       string          `json:"sideEffect1"`
	SideEffect2       string          `json:"sideEffect2"`
	SideEffect3       string          `json:"sideEffect3"`
	SideEffect4       string          `json:"sideEffect4"`
	Use0              string          `json:"use0"`
	Use1              string          `json:"use1"`
	Use2              string          `json:"use2"`
	Use3              string          `json:"use3"`
	Use4              string          `json:"use4"`
	Uses              []string        `json:"uses"`
	TherapeuticClass  string          `json:"therapeutic_class"`
	ActionClass       string          `json:"action_class"`
	ExpiryDate        string          `json:"expiry_date"`
	SimilarityScore   *float64        `json:"similarity_score,omitempty"`
	Status            []StatusTag     `json:"status,omitempty"`
}

// Enrich flattens a record into its wire shape.
func Enrich(m MedicineRecord) EnrichedRecord {
	e := EnrichedRecord{
		ID:                m.ID,
		Name:              m.Name,
		DisplayName:       textnorm.DisplayName(m.Name),
		Price:             m.Price,
		QuantityAvailable: m.QuantityAvailable,
		PackSizeLabel:     m.PackSizeLabel,
		TherapeuticClass:  m.TherapeuticClass,
		ActionClass:       m.ActionClass,
		ExpiryDate:        m.ExpiryDate,
		Uses:              append([]string{}, m.Uses...),
	}

	compositions := [MaxCompositions]*string{&e.ShortComposition1, &e.ShortComposition2}
	fill(compositions[:], m.Compositions)

	substitutes := [MaxSubstitutes]*string{&e.Substitute0, &e.Substitute1, &e.Substitute2, &e.Substitute3, &e.Substitute4}
	fill(substitutes[:], m.Substitutes)

	sideEffects := [MaxSideEffects]*string{&e.SideEffect0, &e.SideEffect1, &e.SideEffect2, &e.SideEffect3, &e.SideEffect4}
	fill(sideEffects[:], m.SideEffects)

	uses := [MaxUses]*string{&e.Use0, &e.Use1, &e.Use2, &e.Use3, &e.Use4}
	fill(uses[:], m.Uses)

	return e
}

// EnrichMatch flattens a match and keeps its score.
func EnrichMatch(r MatchResult) EnrichedRecord {
	e := Enrich(r.Record)
	score := r.SimilarityScore
	e.SimilarityScore = &score
	return e
}

func fill(dst []*string, values []string) {
	for i := 0; i < len(dst) && i < len(values); i++ {
		*dst[i] = values[i]
	}
}
