// Package matcher ranks catalog names against a free-form query.
package matcher

import (
	"errors"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/textnorm"
)

// MinQueryLength is the shortest normalized query worth scoring.
const MinQueryLength = 2

// ErrQueryTooShort is returned when the normalized query cannot discriminate
// between catalog names.
var ErrQueryTooShort = errors.New("query too short")

// Options controls how many candidates are kept and the minimum score on
// the 0-100 scale.
type Options struct {
	TopK      int
	Threshold float64
}

type candidate struct {
	index int
	score float64
}

// Search scores every name of the snapshot against query and returns the
// TopK best candidates at or above Threshold, best first. Equal scores keep
// catalog order. An empty result with a nil error means nothing matched.
func Search(snap *catalog.Snapshot, query string, opts Options) ([]entities.MatchResult, error) {
	q := textnorm.Normalize(query)
	if len(q) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	if opts.TopK <= 0 || snap == nil || snap.Len() == 0 {
		return []entities.MatchResult{}, nil
	}

	prepared := prepare(q)
	top := make([]candidate, 0, opts.TopK)

	for i := 0; i < snap.Len(); i++ {
		name := snap.NormalizedName(i)
		if name == "" {
			continue
		}
		score := prepared.wratio(name)
		if score < opts.Threshold {
			continue
		}
		top = insertCandidate(top, candidate{index: i, score: score}, opts.TopK)
	}

	results := make([]entities.MatchResult, len(top))
	for i, c := range top {
		results[i] = entities.MatchResult{
			Record:          snap.Record(c.index),
			SimilarityScore: c.score / 100,
		}
	}
	return results, nil
}

// insertCandidate keeps top sorted by descending score. A new candidate goes
// after every kept candidate with an equal score, so earlier catalog entries
// win ties.
func insertCandidate(top []candidate, c candidate, limit int) []candidate {
	if len(top) == limit && c.score <= top[len(top)-1].score {
		return top
	}

	pos := len(top)
	for pos > 0 && top[pos-1].score < c.score {
		pos--
	}

	if len(top) < limit {
		top = append(top, candidate{})
	}
	copy(top[pos+1:], top[pos:len(top)-1])
	top[pos] = c
	return top
}
