package matcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/entities"
)

func testSnapshot(names ...string) *catalog.Snapshot {
	records := make([]entities.MedicineRecord, len(names))
	for i, n := range names {
		records[i] = entities.MedicineRecord{ID: i + 1, Name: n}
	}
	return catalog.NewSnapshot(records, 1)
}

var defaultOpts = Options{TopK: 3, Threshold: 50}

func TestSearchExactEntryFirst(t *testing.T) {
	snap := testSnapshot("Azithral 500 Tablet", "Amoxicillin 500mg", "Augmentin 625 Duo Tablet", "Ascoril LS Syrup")

	results, err := Search(snap, "amoxicillin", defaultOpts)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least one match")
	}
	if results[0].Record.Name != "Amoxicillin 500mg" {
		t.Errorf("Expected Amoxicillin 500mg first, got %q", results[0].Record.Name)
	}
	if results[0].SimilarityScore < 0.9 {
		t.Errorf("Expected score >= 0.9, got %f", results[0].SimilarityScore)
	}
}

func TestSearchMisspelledName(t *testing.T) {
	snap := testSnapshot("Dolo 650 Tablet", "Paracetamol 500", "Paracetamol 650", "Crocin Advance")

	results, err := Search(snap, "paracitamol 650", defaultOpts)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected a match for the misspelled query")
	}
	if results[0].Record.Name != "Paracetamol 650" {
		t.Errorf("Expected Paracetamol 650 first, got %q", results[0].Record.Name)
	}
	if results[0].SimilarityScore < 0.5 {
		t.Errorf("Expected score >= 0.5, got %f", results[0].SimilarityScore)
	}
}

func TestSearchOrderAndThreshold(t *testing.T) {
	snap := testSnapshot(
		"Amoxicillin 250mg", "Amoxyclav 625", "Amlodipine 5mg", "Amoxicillin 500mg",
		"Atorvastatin 10", "Cetirizine", "Amoxil Forte", "Moxikind CV",
	)

	queries := []string{"amoxicillin", "amox", "amlo 5", "cetrizine tab", "xyz qq"}
	thresholds := []float64{0, 50, 80}

	for _, q := range queries {
		for _, th := range thresholds {
			t.Run(fmt.Sprintf("%s/%v", q, th), func(t *testing.T) {
				results, err := Search(snap, q, Options{TopK: 5, Threshold: th})
				if err != nil {
					t.Fatalf("Search returned error: %v", err)
				}
				if len(results) > 5 {
					t.Errorf("Expected at most 5 results, got %d", len(results))
				}
				for i, r := range results {
					if r.SimilarityScore < th/100 {
						t.Errorf("Result %d score %f below threshold %f", i, r.SimilarityScore, th/100)
					}
					if r.SimilarityScore > 1 {
						t.Errorf("Result %d score %f above 1", i, r.SimilarityScore)
					}
					if i > 0 && results[i-1].SimilarityScore < r.SimilarityScore {
						t.Errorf("Results not sorted: %f before %f", results[i-1].SimilarityScore, r.SimilarityScore)
					}
				}
			})
		}
	}
}

func TestSearchQueryTooShort(t *testing.T) {
	snap := testSnapshot("Amoxicillin 500mg")

	for _, q := range []string{"", " ", "a", "-a-", "%%", "é"} {
		results, err := Search(snap, q, defaultOpts)
		if !errors.Is(err, ErrQueryTooShort) {
			t.Errorf("Search(%q) error = %v, want ErrQueryTooShort", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results", q, len(results))
		}
	}
}

func TestSearchNoMatchIsNotAnError(t *testing.T) {
	snap := testSnapshot("Amoxicillin 500mg", "Dolo 650")

	results, err := Search(snap, "zzzzqqqq", defaultOpts)
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", results)
	}
}

func TestSearchTiesKeepCatalogOrder(t *testing.T) {
	snap := catalog.NewSnapshot([]entities.MedicineRecord{
		{ID: 7, Name: "Crocin 500"},
		{ID: 3, Name: "Crocin 500"},
		{ID: 9, Name: "Crocin 500"},
		{ID: 1, Name: "Crocin 500"},
	}, 1)

	results, err := Search(snap, "crocin 500", Options{TopK: 3, Threshold: 50})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	wantIDs := []int{7, 3, 9}
	for i, id := range wantIDs {
		if results[i].Record.ID != id {
			t.Errorf("Result %d id = %d, want %d", i, results[i].Record.ID, id)
		}
	}
}

func TestSearchSkipsEmptyNames(t *testing.T) {
	snap := testSnapshot("", "---", "Dolo 650")

	results, err := Search(snap, "dolo 650", defaultOpts)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].Record.Name != "Dolo 650" {
		t.Errorf("Expected only Dolo 650, got %+v", results)
	}
}

func TestSearchEmptySnapshot(t *testing.T) {
	results, err := Search(catalog.Empty(), "dolo", defaultOpts)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestInsertCandidate(t *testing.T) {
	var top []candidate
	for i, s := range []float64{60, 90, 60, 75, 90, 50} {
		top = insertCandidate(top, candidate{index: i, score: s}, 4)
	}

	want := []candidate{{1, 90}, {4, 90}, {3, 75}, {0, 60}}
	if len(top) != len(want) {
		t.Fatalf("Expected %d candidates, got %d", len(want), len(top))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	names := make([]string, 0, 10000)
	for i := 0; i < 10000; i++ {
		names = append(names, fmt.Sprintf("Medicine %d Tablet %dmg", i, (i%20)*25))
	}
	snap := testSnapshot(names...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Search(snap, "medicne 4521 tablet", defaultOpts); err != nil {
			b.Fatal(err)
		}
	}
}
