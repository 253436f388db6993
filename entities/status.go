package entities

import "fmt"

// StatusTag is one word of the stock/expiry vocabulary.
type StatusTag string

const (
	StatusOutOfStock   StatusTag = "out_of_stock"
	StatusLowStock     StatusTag = "low_stock"
	StatusInStock      StatusTag = "in_stock"
	StatusExpired      StatusTag = "expired"
	StatusExpiringSoon StatusTag = "expiring_soon"
)

var knownTags = map[StatusTag]struct{}{
	StatusOutOfStock:   {},
	StatusLowStock:     {},
	StatusInStock:      {},
	StatusExpired:      {},
	StatusExpiringSoon: {},
}

// ParseStatusTag validates a tag coming from user input.
func ParseStatusTag(s string) (StatusTag, error) {
	tag := StatusTag(s)
	if _, ok := knownTags[tag]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return tag, nil
}

// StatusSet carries exactly one quantity tier and at most one expiry tag.
// The two halves are separate fields so the exclusivity rules hold by construction.
type StatusSet struct {
	Stock  StatusTag
	Expiry StatusTag // empty when the record has no usable expiry date
}

// Tags returns the tags in a stable order: stock tier first.
func (s StatusSet) Tags() []StatusTag {
	tags := make([]StatusTag, 0, 2)
	if s.Stock != "" {
		tags = append(tags, s.Stock)
	}
	if s.Expiry != "" {
		tags = append(tags, s.Expiry)
	}
	return tags
}

// Has reports whether tag is part of the set.
func (s StatusSet) Has(tag StatusTag) bool {
	return tag != "" && (s.Stock == tag || s.Expiry == tag)
}

// Intersects reports whether any of the given tags is in the set.
func (s StatusSet) Intersects(tags []StatusTag) bool {
	for _, tag := range tags {
		if s.Has(tag) {
			return true
		}
	}
	return false
}
