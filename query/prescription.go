package query

import (
	"strconv"
	"strings"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/textnorm"
)

// NoMatchMessage is returned for a prescribed line without catalog hits.
const NoMatchMessage = "No matches found"

// MatchPrescription runs FindBest for every extracted line. Lines are
// independent: placeholder names are skipped and a line that cannot be
// searched only carries a message.
func (s *Service) MatchPrescription(items []entities.PrescribedItem) entities.PrescriptionResponse {
	snap := s.store.GetSnapshot()
	resp := entities.PrescriptionResponse{Results: []entities.PrescriptionMatch{}}

	for _, item := range items {
		name := textnorm.Clean(item.MedicineName)
		if name == "" {
			continue
		}

		line := entities.PrescriptionMatch{
			MedicineName:       name,
			PrescribedQuantity: ParseQuantity(item.Quantity),
			Matches:            []entities.PrescriptionMatchItem{},
		}

		results, err := s.search(snap, name, s.opts.SearchTopK, "prescription")
		switch {
		case err != nil:
			line.Message = err.Error()
		case len(results) == 0:
			line.Message = NoMatchMessage
		}

		for _, r := range results {
			packCount := r.Record.PackCount
			if packCount < 1 {
				packCount = textnorm.PackCount(r.Record.PackSizeLabel)
			}
			m := entities.PrescriptionMatchItem{
				EnrichedRecord: entities.EnrichMatch(r),
				PackCount:      packCount,
			}
			if r.Record.InStock() && line.PrescribedQuantity > 0 {
				packs := SuggestPacks(line.PrescribedQuantity, packCount)
				m.Suggestion = &entities.OrderSuggestion{Packs: packs, Units: packs * packCount}
			}
			line.Matches = append(line.Matches, m)
		}

		resp.Results = append(resp.Results, line)
	}
	return resp
}

// SuggestPacks is the number of packs that covers units, rounded up.
func SuggestPacks(units, packCount int) int {
	if units <= 0 {
		return 0
	}
	if packCount < 1 {
		packCount = 1
	}
	return (units + packCount - 1) / packCount
}

// ParseQuantity reads the leading integer of an extracted quantity ("10",
// "10 tablets"). Anything else counts as 0.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
