// Package textnorm turns free-form medicine names into comparable keys and
// filters the placeholder values the upstream data uses for "no value".
package textnorm

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholders the catalog and the extraction step use instead of leaving a
// field empty. Compared after trimming and lowercasing.
var missingValues = map[string]struct{}{
	"":              {},
	"unknown":       {},
	"n/a":           {},
	"not available": {},
	"-":             {},
	"...":           {},
	"none":          {},
	"null":          {},
	"nan":           {},
}

// Normalize keeps ASCII letters, digits and spaces, lowercases and trims.
// The same function is applied to catalog names and to queries so scores
// are symmetric.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == ' ':
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits a normalized string on runs of spaces.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// IsMissing reports whether s is empty or one of the placeholder values.
func IsMissing(s string) bool {
	_, ok := missingValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Clean trims s and maps placeholders to the empty string.
func Clean(s string) string {
	if IsMissing(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// CleanAll cleans every value and drops the ones that end up empty,
// keeping at most limit entries.
func CleanAll(values []string, limit int) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if len(out) == limit {
			break
		}
		if c := Clean(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// DisplayName upper-cases the first character and lower-cases the rest.
// The result is the key the cart uses for an item.
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}

// PackCount extracts the first integer of a pack label ("strip of 10
// tablets" -> 10). Labels without a positive integer count as a single unit.
func PackCount(label string) int {
	start := -1
	for i := 0; i <= len(label); i++ {
		isDigit := i < len(label) && label[i] >= '0' && label[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			n, err := strconv.Atoi(label[start:i])
			if err != nil || n <= 0 {
				return 1
			}
			return n
		}
	}
	return 1
}
