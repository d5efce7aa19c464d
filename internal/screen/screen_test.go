package screen

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statarb/pairscan/internal/series"
)

func testConfig() Config {
	return Config{
		MinCorrelation:  0.85,
		MaxSpreadVol:    0.25,
		MinObservations: 50,
		LiquidityFloor:  1_000_000,
	}
}

func mkSeries(symbol string, closes []float64) *series.Series {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	s := &series.Series{Symbol: symbol}
	for i, c := range closes {
		s.Dates = append(s.Dates, base.AddDate(0, 0, i))
		s.Closes = append(s.Closes, c)
	}
	return s
}

// testUniverse builds four assets over a shared calendar:
// AAA and BBB track the same log walk (tight spread), CCC moves inversely
// to AAA, DDD tracks AAA with heavy idiosyncratic noise.
func testUniverse(n int) (aaa, bbb, ccc, ddd *series.Series) {
	rng := rand.New(rand.NewSource(11))

	logA := make([]float64, n)
	logA[0] = math.Log(100)
	for i := 1; i < n; i++ {
		logA[i] = logA[i-1] + 0.02*rng.NormFloat64()
	}

	ca := make([]float64, n)
	cb := make([]float64, n)
	cc := make([]float64, n)
	cd := make([]float64, n)
	for i := 0; i < n; i++ {
		ca[i] = math.Exp(logA[i])
		cb[i] = math.Exp(logA[i] + 0.002*rng.NormFloat64())
		cc[i] = math.Exp(2*math.Log(100) - logA[i])
		cd[i] = math.Exp(logA[i] + 0.05*rng.NormFloat64())
	}
	return mkSeries("AAA", ca), mkSeries("BBB", cb), mkSeries("CCC", cc), mkSeries("DDD", cd)
}

func TestScreenPairAccepts(t *testing.T) {
	aaa, bbb, _, _ := testUniverse(300)
	s := NewScreener(testConfig(), nil, nil)

	pa, pb := series.Align(aaa, bbb)
	res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pb), NewCandidate("AAA", "BBB"))

	assert.True(t, res.Passed)
	assert.Empty(t, res.Reason)
	assert.Greater(t, res.Correlation, 0.85)
	assert.Less(t, res.SpreadVol, 0.25)
	assert.Equal(t, 300, res.Observations)
}

func TestScreenPairRejectsLowCorrelation(t *testing.T) {
	aaa, _, ccc, _ := testUniverse(300)
	s := NewScreener(testConfig(), nil, nil)

	pa, pc := series.Align(aaa, ccc)
	res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pc), NewCandidate("AAA", "CCC"))

	assert.False(t, res.Passed)
	assert.Equal(t, ReasonLowCorrelation, res.Reason)
	assert.Less(t, res.Correlation, 0.0)
}

func TestScreenPairRejectsHighSpreadVolatility(t *testing.T) {
	aaa, _, _, ddd := testUniverse(300)
	s := NewScreener(testConfig(), nil, nil)

	pa, pd := series.Align(aaa, ddd)
	res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pd), NewCandidate("AAA", "DDD"))

	assert.False(t, res.Passed)
	assert.Equal(t, ReasonHighSpreadVol, res.Reason)
	assert.GreaterOrEqual(t, res.SpreadVol, 0.25)
}

func TestScreenPairRejectsInsufficientData(t *testing.T) {
	aaa, bbb, _, _ := testUniverse(20)
	s := NewScreener(testConfig(), nil, nil)

	pa, pb := series.Align(aaa, bbb)
	res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pb), NewCandidate("AAA", "BBB"))

	assert.False(t, res.Passed)
	assert.Equal(t, ReasonInsufficientData, res.Reason)
}

func TestScreenPairRejectsIlliquid(t *testing.T) {
	aaa, bbb, _, _ := testUniverse(300)
	liquidity := func(symbol string) (float64, bool) {
		if symbol == "BBB" {
			return 500_000, true
		}
		return 50_000_000, true
	}
	s := NewScreener(testConfig(), nil, liquidity)

	pa, pb := series.Align(aaa, bbb)
	res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pb), NewCandidate("AAA", "BBB"))

	assert.False(t, res.Passed)
	assert.Equal(t, ReasonIlliquid, res.Reason)
}

func TestScreenPairUnknownLiquidityFailsFilter(t *testing.T) {
	aaa, bbb, _, _ := testUniverse(300)
	liquidity := func(string) (float64, bool) { return 0, false }
	s := NewScreener(testConfig(), nil, liquidity)

	pa, pb := series.Align(aaa, bbb)
	res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pb), NewCandidate("AAA", "BBB"))
	assert.Equal(t, ReasonIlliquid, res.Reason)
}

func TestScreenUniverse(t *testing.T) {
	aaa, bbb, ccc, ddd := testUniverse(300)
	store := series.NewMapStore(aaa, bbb, ccc, ddd)
	s := NewScreener(testConfig(), store, nil)

	universe := []string{"AAA", "BBB", "CCC", "DDD", "MISS"}
	passed, results, stats, err := s.ScreenUniverse(context.Background(), universe)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Universe)
	assert.Equal(t, 4, stats.Resolved)
	assert.Equal(t, 10, stats.Generated)
	assert.Len(t, results, 10)

	// Pairs touching the unresolvable symbol drop with an upstream reason.
	assert.Equal(t, 4, stats.Exclusions[ReasonUpstream])
	assert.Equal(t, ReasonUpstream, results[PairID("AAA", "MISS")].Reason)

	// The tight pair survives.
	require.NotEmpty(t, passed)
	ids := make(map[string]bool)
	for _, c := range passed {
		ids[c.ID] = true
	}
	assert.True(t, ids["AAA|BBB"])
	assert.Equal(t, len(passed), stats.Passed)

	var excluded int
	for _, n := range stats.Exclusions {
		excluded += n
	}
	assert.Equal(t, stats.Generated, stats.Passed+excluded)
}

func TestScreenUniverseShortHistoryIsInsufficientData(t *testing.T) {
	aaa, bbb, _, _ := testUniverse(300)
	stub := mkSeries("EEE", []float64{100, 101, 102, 103, 104})
	store := series.NewMapStore(aaa, bbb, stub)
	s := NewScreener(testConfig(), store, nil)

	universe := []string{"AAA", "BBB", "EEE", "MISS"}
	_, results, stats, err := s.ScreenUniverse(context.Background(), universe)
	require.NoError(t, err)

	// EEE resolves but has too little history; MISS does not resolve at all.
	assert.Equal(t, 3, stats.Resolved)
	assert.Equal(t, ReasonInsufficientData, results[PairID("AAA", "EEE")].Reason)
	assert.Equal(t, ReasonInsufficientData, results[PairID("BBB", "EEE")].Reason)
	assert.Equal(t, ReasonUpstream, results[PairID("AAA", "MISS")].Reason)
	assert.Equal(t, ReasonUpstream, results[PairID("EEE", "MISS")].Reason)
	assert.Equal(t, 2, stats.Exclusions[ReasonInsufficientData])
	assert.Equal(t, 3, stats.Exclusions[ReasonUpstream])
}

func TestScreenUniverseDeterministic(t *testing.T) {
	aaa, bbb, ccc, ddd := testUniverse(300)
	store := series.NewMapStore(aaa, bbb, ccc, ddd)
	s := NewScreener(testConfig(), store, nil)
	universe := store.Symbols()

	p1, r1, st1, err := s.ScreenUniverse(context.Background(), universe)
	require.NoError(t, err)
	p2, r2, st2, err := s.ScreenUniverse(context.Background(), universe)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, st1, st2)
}

func TestScreenUniverseCancelled(t *testing.T) {
	aaa, bbb, _, _ := testUniverse(300)
	store := series.NewMapStore(aaa, bbb)
	s := NewScreener(testConfig(), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, err := s.ScreenUniverse(ctx, store.Symbols())
	require.ErrorIs(t, err, context.Canceled)
}
