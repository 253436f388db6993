package matcher

import (
	"math/bits"
	"sort"
	"strings"
)

// Weights of the weighted ratio. Token and partial comparisons are allowed
// to win over the plain ratio only when they beat it by a margin.
const (
	unbaseScale       = 0.95
	partialScale      = 0.90
	longPartialScale  = 0.60
	partialLenRatio   = 1.5
	longPartialRatio  = 8.0
	bitParallelMaxLen = 64
)

// WRatio scores two normalized strings on a 0-100 scale. It takes the best
// of a whole-string ratio, token sort/set ratios and, when the lengths
// differ enough, partial substring ratios.
func WRatio(a, b string) float64 {
	return prepare(a).wratio(b)
}

// Ratio is the Indel similarity: 2*LCS / (len(a)+len(b)), scaled to 100.
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(a, b)) / float64(total)
}

// preparedQuery caches the query-side pieces reused against every name.
type preparedQuery struct {
	text     string
	tokens   []string // unique, sorted
	sorted   string   // tokens joined by a space
	tokenSet map[string]struct{}
	byteSet  [256]bool
}

func prepare(q string) *preparedQuery {
	p := &preparedQuery{text: q}
	p.tokens, p.tokenSet = uniqueSortedTokens(q)
	p.sorted = strings.Join(p.tokens, " ")
	for i := 0; i < len(q); i++ {
		p.byteSet[q[i]] = true
	}
	return p
}

func (p *preparedQuery) wratio(name string) float64 {
	if p.text == "" || name == "" {
		return 0
	}

	shorter, longer := len(p.text), len(name)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lenRatio := float64(longer) / float64(shorter)

	best := Ratio(p.text, name)

	nameTokens, nameSet := uniqueSortedTokens(name)

	if lenRatio < partialLenRatio {
		tokenRatio := max(
			Ratio(p.sorted, strings.Join(nameTokens, " ")),
			tokenSetRatio(p.tokens, p.tokenSet, nameTokens, nameSet),
		)
		return max(best, tokenRatio*unbaseScale)
	}

	scale := partialScale
	if lenRatio > longPartialRatio {
		scale = longPartialScale
	}

	best = max(best, p.partialRatio(name)*scale)
	best = max(best, partialTokenRatio(p.tokens, p.tokenSet, nameTokens)*unbaseScale*scale)
	return best
}

// partialRatio aligns the shorter string against every window of the longer
// one and keeps the best ratio. Windows that neither start nor end on a byte
// of the shorter string cannot improve the alignment and are skipped.
func (p *preparedQuery) partialRatio(name string) float64 {
	if len(p.text) <= len(name) {
		return partialRatioNeedle(p.text, &p.byteSet, name)
	}
	var set [256]bool
	for i := 0; i < len(name); i++ {
		set[name[i]] = true
	}
	return partialRatioNeedle(name, &set, p.text)
}

func partialRatio(a, b string) float64 {
	return prepare(a).partialRatio(b)
}

func partialRatioNeedle(needle string, needleBytes *[256]bool, haystack string) float64 {
	m, n := len(needle), len(haystack)
	if m == 0 || n == 0 {
		return 0
	}
	if strings.Contains(haystack, needle) {
		return 100
	}

	best := 0.0

	// windows cut by the start of the haystack
	for i := 1; i < m; i++ {
		if needleBytes[haystack[i-1]] {
			best = max(best, Ratio(needle, haystack[:i]))
		}
	}

	for start := 0; start+m <= n; start++ {
		if !needleBytes[haystack[start]] && !needleBytes[haystack[start+m-1]] {
			continue
		}
		best = max(best, Ratio(needle, haystack[start:start+m]))
		if best == 100 {
			return best
		}
	}

	// windows cut by the end of the haystack
	for i := m - 1; i >= 1; i-- {
		if needleBytes[haystack[n-i]] {
			best = max(best, Ratio(needle, haystack[n-i:]))
		}
	}

	return best
}

// tokenSetRatio compares the shared tokens with each side's remainder, so
// extra words on one side ("500mg", "tablet") cost little.
func tokenSetRatio(aTokens []string, aSet map[string]struct{}, bTokens []string, bSet map[string]struct{}) float64 {
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for _, t := range aTokens {
		if _, ok := bSet[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range bTokens {
		if _, ok := aSet[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sect := strings.Join(common, " ")
	withA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := Ratio(withA, withB)
	if sect != "" {
		best = max(best, Ratio(sect, withA), Ratio(sect, withB))
	}
	return best
}

// partialTokenRatio is 100 as soon as one token is shared; otherwise the
// partial ratio of the sorted token strings.
func partialTokenRatio(aTokens []string, aSet map[string]struct{}, bTokens []string) float64 {
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}
	for _, t := range bTokens {
		if _, ok := aSet[t]; ok {
			return 100
		}
	}
	return partialRatio(strings.Join(aTokens, " "), strings.Join(bTokens, " "))
}

func uniqueSortedTokens(s string) ([]string, map[string]struct{}) {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := set[f]; dup {
			continue
		}
		set[f] = struct{}{}
		tokens = append(tokens, f)
	}
	sort.Strings(tokens)
	return tokens, set
}

// lcsLength returns the length of the longest common subsequence. Inputs
// are normalized ASCII, so bytes are compared directly.
func lcsLength(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) == 0 {
		return 0
	}
	if len(a) <= bitParallelMaxLen {
		return lcsBitParallel(a, b)
	}
	return lcsDP(a, b)
}

// lcsBitParallel is Hyyrö's bit-vector LCS for a pattern of at most 64 bytes.
func lcsBitParallel(pattern, text string) int {
	var match [256]uint64
	for i := 0; i < len(pattern); i++ {
		match[pattern[i]] |= 1 << uint(i)
	}

	s := ^uint64(0)
	for i := 0; i < len(text); i++ {
		u := s & match[text[i]]
		s = (s + u) | (s - u)
	}

	mask := ^uint64(0)
	if len(pattern) < 64 {
		mask = (uint64(1) << uint(len(pattern))) - 1
	}
	return bits.OnesCount64(^s & mask)
}

func lcsDP(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
