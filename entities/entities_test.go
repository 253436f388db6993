package entities

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEnrich(t *testing.T) {
	rec := MedicineRecord{
		ID:                7,
		Name:              "AUGMENTIN 625 Duo Tablet",
		Price:             decimal.RequireFromString("223.42"),
		QuantityAvailable: 12,
		PackSizeLabel:     "strip of 10 tablets",
		Compositions:      []string{"Amoxycillin (500mg)", "Clavulanic Acid (125mg)"},
		Substitutes:       []string{"Moxikind-CV 625 Tablet", "Clavam 625 Tablet", "Amoxyclav 625 Tablet"},
		SideEffects:       []string{"Vomiting"},
		Uses:              []string{"Treatment of Bacterial infections"},
		ExpiryDate:        "2027-05-31",
	}

	e := Enrich(rec)

	if e.DisplayName != "Augmentin 625 duo tablet" {
		t.Errorf("Unexpected display name %q", e.DisplayName)
	}
	if e.ShortComposition1 != "Amoxycillin (500mg)" || e.ShortComposition2 != "Clavulanic Acid (125mg)" {
		t.Errorf("Compositions not flattened: %q %q", e.ShortComposition1, e.ShortComposition2)
	}
	if e.Substitute2 != "Amoxyclav 625 Tablet" || e.Substitute3 != "" {
		t.Errorf("Substitutes not flattened: %q %q", e.Substitute2, e.Substitute3)
	}
	if e.SideEffect0 != "Vomiting" || e.Use0 != "Treatment of Bacterial infections" {
		t.Errorf("Unexpected side effect/use columns: %q %q", e.SideEffect0, e.Use0)
	}
	if e.SimilarityScore != nil || e.Status != nil {
		t.Error("Plain enrichment should carry neither score nor status")
	}

	// The enriched copy must not alias the record's slices.
	e.Uses[0] = "changed"
	if rec.Uses[0] != "Treatment of Bacterial infections" {
		t.Error("Enrich should copy the uses slice")
	}
}

func TestEnrichMatchJSON(t *testing.T) {
	e := EnrichMatch(MatchResult{
		Record:          MedicineRecord{ID: 1, Name: "Dolo 650 Tablet", Price: decimal.RequireFromString("30.91")},
		SimilarityScore: 0.875,
	})

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	body := string(data)

	for _, want := range []string{`"price":30.91`, `"similarity_score":0.875`, `"display_name":"Dolo 650 tablet"`, `"substitute4":""`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %s in %s", want, body)
		}
	}
	if strings.Contains(body, `"status"`) {
		t.Errorf("Empty status should be omitted: %s", body)
	}
}

func TestParseStatusTag(t *testing.T) {
	for _, s := range []string{"out_of_stock", "low_stock", "in_stock", "expired", "expiring_soon"} {
		if tag, err := ParseStatusTag(s); err != nil || string(tag) != s {
			t.Errorf("ParseStatusTag(%q) = %q, %v", s, tag, err)
		}
	}
	for _, s := range []string{"", "Expired", "discontinued"} {
		if _, err := ParseStatusTag(s); err == nil {
			t.Errorf("ParseStatusTag(%q) should fail", s)
		}
	}
}

func TestStatusSet(t *testing.T) {
	set := StatusSet{Stock: StatusLowStock, Expiry: StatusExpiringSoon}

	tags := set.Tags()
	if len(tags) != 2 || tags[0] != StatusLowStock || tags[1] != StatusExpiringSoon {
		t.Errorf("Unexpected tags %v", tags)
	}
	if !set.Has(StatusExpiringSoon) || set.Has(StatusExpired) || set.Has("") {
		t.Error("Has returned a wrong answer")
	}
	if !set.Intersects([]StatusTag{StatusOutOfStock, StatusLowStock}) {
		t.Error("Expected intersection on low_stock")
	}
	if set.Intersects(nil) {
		t.Error("Empty filter should not intersect")
	}

	noExpiry := StatusSet{Stock: StatusInStock}
	if got := noExpiry.Tags(); len(got) != 1 || got[0] != StatusInStock {
		t.Errorf("Unexpected tags without expiry: %v", got)
	}
}

func TestInStock(t *testing.T) {
	tests := []struct {
		qty  int
		want bool
	}{{0, false}, {1, true}, {250, true}}
	for _, tt := range tests {
		rec := MedicineRecord{QuantityAvailable: tt.qty}
		if rec.InStock() != tt.want {
			t.Errorf("InStock() with %d = %v", tt.qty, !tt.want)
		}
	}
}
