package matcher

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"", "", 100},
		{"abc", "", 0},
		{"abc", "abc", 100},
		{"abc", "xyz", 0},
		{"paracitamol 650", "paracetamol 650", 93.33},
		{"ab", "ba", 50},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); !almostEqual(got, tt.expected) {
				t.Errorf("Ratio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestWRatio(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "dolo 650", "dolo 650", 100},
		{"empty query", "", "dolo 650", 0},
		{"empty name", "dolo", "", 0},
		{"substring of longer name", "amoxicillin", "amoxicillin 500mg", 90},
		{"reordered tokens", "650 dolo", "dolo 650", 95},
		{"very long name", "ab", "ab cdefghijklmnopqrstuvwxyz", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WRatio(tt.a, tt.b); !almostEqual(got, tt.expected) {
				t.Errorf("WRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestWRatioSymmetricBounds(t *testing.T) {
	pairs := [][2]string{
		{"crocin advance", "crocin"},
		{"azithral 500 tablet", "azithromycin"},
		{"pan 40", "pantop 40 tablet"},
		{"b complex", "becosules capsule"},
	}

	for _, p := range pairs {
		ab := WRatio(p[0], p[1])
		ba := WRatio(p[1], p[0])
		if !almostEqual(ab, ba) {
			t.Errorf("WRatio not symmetric for %q/%q: %f vs %f", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 100 {
			t.Errorf("WRatio(%q, %q) = %f out of range", p[0], p[1], ab)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"dolo", "dolo 650 tablet", 100},
		{"dolo 650 tablet", "dolo", 100},
		{"xyz", "dolo 650", 0},
		{"tabet", "dolo 650 tablet", 80},
	}

	for _, tt := range tests {
		if got := partialRatio(tt.a, tt.b); !almostEqual(got, tt.expected) {
			t.Errorf("partialRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestTokenSetRatioSubset(t *testing.T) {
	aTokens, aSet := uniqueSortedTokens("dolo 650")
	bTokens, bSet := uniqueSortedTokens("650 dolo tablet")

	if got := tokenSetRatio(aTokens, aSet, bTokens, bSet); got != 100 {
		t.Errorf("tokenSetRatio for a token subset = %f, want 100", got)
	}
}

func TestLCSImplementationsAgree(t *testing.T) {
	inputs := []string{
		"", "a", "amoxicillin", "amoxicillin 500mg", "paracetamol 650",
		"augmentin 625 duo tablet", strings.Repeat("ab", 40), strings.Repeat("ba", 33),
	}

	for _, a := range inputs {
		for _, b := range inputs {
			got := lcsLength(a, b)
			want := lcsDP(a, b)
			if got != want {
				t.Errorf("lcsLength(%q, %q) = %d, DP = %d", a, b, got, want)
			}
		}
	}
}

func TestLCSBitParallelFullWord(t *testing.T) {
	pattern := strings.Repeat("x", 64)
	if got := lcsBitParallel(pattern, pattern); got != 64 {
		t.Errorf("lcsBitParallel on 64-byte pattern = %d, want 64", got)
	}
}
