package screen

import (
	"math/rand"
	"sort"
	"strings"
)

// Candidate is an unordered pair of asset symbols with a canonical
// identifier. SymbolA sorts before SymbolB, so a pair and its reverse
// always produce the same record.
type Candidate struct {
	ID      string
	SymbolA string
	SymbolB string
}

// PairID builds the canonical identifier for an unordered symbol pair.
func PairID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// NewCandidate canonicalizes a symbol pair into a Candidate.
func NewCandidate(a, b string) Candidate {
	if b < a {
		a, b = b, a
	}
	return Candidate{ID: a + "|" + b, SymbolA: a, SymbolB: b}
}

// SplitPairID recovers the two symbols from a canonical pair identifier.
func SplitPairID(id string) (a, b string) {
	parts := strings.SplitN(id, "|", 2)
	if len(parts) != 2 {
		return id, ""
	}
	return parts[0], parts[1]
}

// GeneratePairs enumerates every unordered pair over the universe in a
// deterministic order. Duplicate symbols are collapsed first.
func GeneratePairs(symbols []string) []Candidate {
	uniq := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}
	sort.Strings(uniq)

	n := len(uniq)
	pairs := make([]Candidate, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, NewCandidate(uniq[i], uniq[j]))
		}
	}
	return pairs
}

// Sample deterministically subsamples the candidate list for smoke runs.
// ratio >= 1 returns the input unchanged; the seed fixes the selection so a
// sampled run is repeatable.
func Sample(pairs []Candidate, ratio float64, seed int64) []Candidate {
	if ratio >= 1 || len(pairs) == 0 {
		return pairs
	}
	size := int(float64(len(pairs)) * ratio)
	if size < 1 {
		size = 1
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(pairs))[:size]
	sort.Ints(perm)

	sampled := make([]Candidate, 0, size)
	for _, idx := range perm {
		sampled = append(sampled, pairs[idx])
	}
	return sampled
}
