package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giygas/pharmacy-inventory-api/entities"
)

const testCatalog = "id,name,price,quantity_available,pack_size_label,substitute0,expiry_date\n" +
	"1,Dolo 650 Tablet,30.91,120,strip of 15 tablets,Crocin Advance Tablet,2099-01-31\n" +
	"2,Crocin Advance Tablet,27.50,0,strip of 20 tablets,,2000-01-01\n" +
	"2,Crocin Advance Tablet,27.50,0,strip of 20 tablets,,2000-01-01\n" +
	"x,Broken Row,1,1,,,\n" +
	"3,Pan 40 Tablet,abc,3,strip of 15 tablets,,\n"

// run executes catalogctl with args against a temporary CSV catalog.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	// Registered so the values set by the command are restored afterwards.
	t.Setenv("ENV", "test")
	t.Setenv("CATALOG_DRIVER", "file")
	t.Setenv("CATALOG_DSN", path)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--driver", "file", "--dsn", path))

	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}

	for _, want := range []string{"loaded", "3", "skipped rows", "duplicate ids", "coerced prices"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestValidateCommandJSON(t *testing.T) {
	out, err := run(t, "validate", "--json")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	var got validationOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if got.Load.Loaded != 3 || got.Load.SkippedRows != 1 || len(got.Load.DuplicateIDs) != 1 {
		t.Errorf("Unexpected load report %+v", got.Load)
	}
	if got.Load.CoercedPrices != 1 {
		t.Errorf("Expected 1 coerced price, got %d", got.Load.CoercedPrices)
	}
	if got.Quality.TotalRecords != 3 || got.Quality.OutOfStock != 1 {
		t.Errorf("Unexpected quality report %+v", got.Quality)
	}
}

func TestValidateCommandStrict(t *testing.T) {
	if _, err := run(t, "validate", "--strict"); err == nil {
		t.Error("Expected --strict to fail on a skipped row")
	}
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, "search", "dolo")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "SCORE") {
		t.Fatalf("Expected a header and results, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "Dolo 650 Tablet") {
		t.Errorf("Expected Dolo first, got %q", lines[1])
	}
}

func TestSearchCommandJSON(t *testing.T) {
	out, err := run(t, "search", "crocin advance", "--json", "--top", "1")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var results []entities.EnrichedRecord
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0].ID != 2 || results[0].SimilarityScore == nil {
		t.Errorf("Unexpected results %+v", results)
	}
}

func TestSearchCommandErrors(t *testing.T) {
	if _, err := run(t, "search"); err == nil {
		t.Error("Expected an error without a query")
	}
	if _, err := run(t, "search", "a"); err == nil {
		t.Error("Expected an error for a one-letter query")
	}

	out, err := run(t, "search", "xyzzyvwk")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if strings.TrimSpace(out) != "No matches found" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "stats", "--json")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	var stats entities.InventoryStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	want := entities.InventoryStats{TotalItems: 3, LowStockItems: 1, OutOfStock: 1, Expired: 1}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CATALOG_DRIVER", "file")
	t.Setenv("CATALOG_DSN", "missing.csv")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"stats", "--dsn", filepath.Join(t.TempDir(), "missing.csv")})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for a missing catalog file")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "catalogctl dev" {
		t.Errorf("Unexpected version output %q", out.String())
	}
}
