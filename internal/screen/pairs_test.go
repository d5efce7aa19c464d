package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairIDCanonical(t *testing.T) {
	assert.Equal(t, "AAA|BBB", PairID("AAA", "BBB"))
	assert.Equal(t, "AAA|BBB", PairID("BBB", "AAA"))
}

func TestNewCandidateOrdersSymbols(t *testing.T) {
	c := NewCandidate("ZZZ", "AAA")
	assert.Equal(t, "AAA", c.SymbolA)
	assert.Equal(t, "ZZZ", c.SymbolB)
	assert.Equal(t, "AAA|ZZZ", c.ID)
}

func TestSplitPairID(t *testing.T) {
	a, b := SplitPairID("AAA|BBB")
	assert.Equal(t, "AAA", a)
	assert.Equal(t, "BBB", b)
}

func TestGeneratePairs(t *testing.T) {
	pairs := GeneratePairs([]string{"CCC", "AAA", "BBB", "AAA"})
	require.Len(t, pairs, 3)
	assert.Equal(t, "AAA|BBB", pairs[0].ID)
	assert.Equal(t, "AAA|CCC", pairs[1].ID)
	assert.Equal(t, "BBB|CCC", pairs[2].ID)
}

func TestGeneratePairsEmptyAndSingle(t *testing.T) {
	assert.Empty(t, GeneratePairs(nil))
	assert.Empty(t, GeneratePairs([]string{"AAA"}))
}

func TestSampleDeterministic(t *testing.T) {
	pairs := GeneratePairs([]string{"A", "B", "C", "D", "E", "F", "G", "H"})

	s1 := Sample(pairs, 0.5, 42)
	s2 := Sample(pairs, 0.5, 42)
	require.Equal(t, s1, s2)
	assert.Len(t, s1, len(pairs)/2)

	s3 := Sample(pairs, 0.5, 43)
	assert.NotEqual(t, s1, s3)
}

func TestSampleFullRatioIsIdentity(t *testing.T) {
	pairs := GeneratePairs([]string{"A", "B", "C"})
	assert.Equal(t, pairs, Sample(pairs, 1.0, 42))
}

func TestSampleFloorOfOne(t *testing.T) {
	pairs := GeneratePairs([]string{"A", "B", "C"})
	assert.Len(t, Sample(pairs, 0.01, 42), 1)
}
