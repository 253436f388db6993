package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/shopspring/decimal"
)

func TestValidateInput(t *testing.T) {
	validator := NewDataValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "paracetamol", false},
		{"name with strength", "Amoxicillin 500mg", false},
		{"syrup ratio", "Ascoril LS Syrup 100ml/5ml", false},
		{"percent and parens", "5% Dextrose (IV)", false},
		{"accented", "Paracétamol", false},
		{"hyphenated", "Dolo-650", false},
		{"single char is left to the matcher", "a", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a b ", 30), true},
		{"too many words", "a b c d e f g h i j k", true},
		{"ampersand", "Dolo 650 & Crocin", false},
		{"colon", "Dolo: 650", false},
		{"asterisk", "Dolo 650*", false},
		{"underscore", "Dolo_650", false},
		{"double dash", "Dolo 650 -- tab", false},
		{"semicolon", "Dolo; 650", false},
		{"hash", "Dolo 650 #2", false},
		{"ocr smear", "D0lo|650 ~~~~~~~~~~~~", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	validator := NewDataValidator()

	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"248", 248, false},
		{"0", -1, true},
		{"", -1, true},
		{"-4", -1, true},
		{" 12", -1, true},
		{"12a", -1, true},
		{"12345678901", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validator.ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestReportDataQuality(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []entities.MedicineRecord{
		{
			ID: 1, Name: "Dolo 650", Price: decimal.NewFromInt(30), QuantityAvailable: 10,
			Compositions: []string{"Paracetamol (650mg)"}, Substitutes: []string{"Crocin 650"}, Expiry: &expiry,
		},
		{ID: 2, Name: "DOLO-650", Price: decimal.Zero, QuantityAvailable: 0},
		{ID: 3, Name: "Crocin 650", Price: decimal.RequireFromString("28.50"), QuantityAvailable: 4},
	}

	report := NewDataValidator().ReportDataQuality(records)

	if report.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", report.TotalRecords)
	}
	// "dolo 650" and "dolo650" are different keys
	if len(report.DuplicateNames) != 0 {
		t.Errorf("DuplicateNames = %v, want none", report.DuplicateNames)
	}
	if report.MissingExpiry != 2 {
		t.Errorf("MissingExpiry = %d, want 2", report.MissingExpiry)
	}
	if report.WithoutSubstitutes != 2 || report.WithoutComposition != 2 {
		t.Errorf("WithoutSubstitutes = %d, WithoutComposition = %d, want 2 and 2",
			report.WithoutSubstitutes, report.WithoutComposition)
	}
	if report.ZeroPrice != 1 || report.OutOfStock != 1 {
		t.Errorf("ZeroPrice = %d, OutOfStock = %d, want 1 and 1", report.ZeroPrice, report.OutOfStock)
	}
}

func TestReportDataQualityDuplicateNames(t *testing.T) {
	records := []entities.MedicineRecord{
		{ID: 1, Name: "Crocin Advance"},
		{ID: 2, Name: "crocin advance"},
		{ID: 3, Name: "Crocin Advance!"},
		{ID: 4, Name: "Dolo 650"},
	}

	report := NewDataValidator().ReportDataQuality(records)

	if len(report.DuplicateNames) != 1 || report.DuplicateNames[0] != "crocin advance" {
		t.Errorf("DuplicateNames = %v, want [crocin advance]", report.DuplicateNames)
	}
}
