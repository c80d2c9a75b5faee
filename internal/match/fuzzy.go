// Package match scores candidate article titles against a target site
// name. Scoring is case- and diacritic-insensitive and combines
// order-sensitive token overlap with whole-string edit distance.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Weighting between token overlap and edit-distance similarity.
const (
	tokenWeight = 0.6
	editWeight  = 0.4
)

// Matcher scores and ranks fuzzy candidates.
type Matcher struct {
	// Threshold is the minimum acceptable score. A candidate scoring
	// exactly the threshold is accepted.
	Threshold float64
}

// New creates a Matcher with the given acceptance threshold.
func New(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Score rates candidate against target in [0, 1].
func (m *Matcher) Score(target, candidate string) float64 {
	a := Normalize(target)
	b := Normalize(candidate)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return tokenWeight*tokenOverlap(a, b) + editWeight*editSimilarity(a, b)
}

// Accepts reports whether the score clears the acceptance threshold.
func (m *Matcher) Accepts(score float64) bool {
	return score >= m.Threshold
}

// Best returns the highest-scoring candidate and its score, or ok=false
// when no candidate clears the threshold.
func (m *Matcher) Best(target string, candidates []string) (string, float64, bool) {
	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		if s := m.Score(target, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < 0 || !m.Accepts(bestScore) {
		return "", bestScore, false
	}
	return best, bestScore, true
}

// Normalize lower-cases, folds diacritics, and collapses separators so
// "Kom El-Dikka" and "kom el dikka" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '\'', '’', ',', '(', ')':
			return ' '
		}
		return r
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}

// tokenOverlap measures how much of the shorter token sequence appears
// in the longer one, normalized by the shorter length so "Karnak" still
// matches "Karnak Temple". Out-of-order matches count at a discount:
// "Temple Karnak" is a weaker hit than "Karnak Temple".
func tokenOverlap(target, candidate string) float64 {
	short := strings.Fields(target)
	long := strings.Fields(candidate)
	if len(short) == 0 || len(long) == 0 {
		return 0
	}
	if len(long) < len(short) {
		short, long = long, short
	}

	longSet := make(map[string]struct{}, len(long))
	for _, tok := range long {
		longSet[tok] = struct{}{}
	}

	contained := 0
	inOrder := 0
	li := 0
	for _, tok := range short {
		if _, ok := longSet[tok]; ok {
			contained++
		}
		for j := li; j < len(long); j++ {
			if long[j] == tok {
				inOrder++
				li = j + 1
				break
			}
		}
	}
	if contained == 0 {
		return 0
	}
	orderFactor := float64(inOrder) / float64(contained)
	return float64(contained) / float64(len(short)) * (0.85 + 0.15*orderFactor)
}

// editSimilarity compares both the raw strings and their token-sorted
// forms, so a pure word permutation is not punished as a rewrite.
func editSimilarity(a, b string) float64 {
	raw := levenshteinSimilarity(a, b)
	sorted := levenshteinSimilarity(sortTokens(a), sortTokens(b))
	if sorted > raw {
		return sorted
	}
	return raw
}

func levenshteinSimilarity(a, b string) float64 {
	dist := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		sim = 0
	}
	return sim
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
