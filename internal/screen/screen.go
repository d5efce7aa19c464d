package screen

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/statarb/pairscan/internal/series"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// Screening failure reasons, recorded per rejected pair so attrition is
// observable in the run summary.
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonLowCorrelation   = "low_correlation"
	ReasonHighSpreadVol    = "high_spread_volatility"
	ReasonIlliquid         = "illiquid"
	ReasonUpstream         = "upstream_unavailable"
)

// Config holds the three cheap filter thresholds.
type Config struct {
	MinCorrelation  float64 `yaml:"min_correlation"`
	MaxSpreadVol    float64 `yaml:"max_spread_volatility"`
	MinObservations int     `yaml:"min_observations"`
	LiquidityFloor  float64 `yaml:"liquidity_floor"`
}

// LiquidityFunc supplies the trailing average daily traded value for an
// asset. The second return is false when no figure is known, which fails
// the liquidity filter.
type LiquidityFunc func(symbol string) (float64, bool)

// Result records the screening outcome for one candidate pair. Created
// once per pair and never mutated.
type Result struct {
	ID           string  `json:"id"`
	Correlation  float64 `json:"correlation"`
	SpreadVol    float64 `json:"spread_volatility"`
	Observations int     `json:"observations"`
	Passed       bool    `json:"passed"`
	Reason       string  `json:"reason,omitempty"`
}

// Stats summarizes a screening pass over a universe.
type Stats struct {
	Universe   int
	Resolved   int
	Generated  int
	Passed     int
	Exclusions map[string]int
}

// Screener applies the correlation, spread-volatility and liquidity filters
// that shrink the candidate set before the expensive tests run. Screening
// is a pure filter: rerunning it on the same inputs is deterministic.
type Screener struct {
	cfg       Config
	store     series.Store
	liquidity LiquidityFunc
}

// NewScreener builds a screener over the given store. liquidity may be nil,
// in which case the liquidity filter is skipped.
func NewScreener(cfg Config, store series.Store, liquidity LiquidityFunc) *Screener {
	return &Screener{cfg: cfg, store: store, liquidity: liquidity}
}

// ScreenPair evaluates one candidate against all three filters over the
// aligned log-price window.
func (s *Screener) ScreenPair(logA, logB []float64, cand Candidate) Result {
	res := Result{ID: cand.ID, Observations: len(logA)}

	if len(logA) < s.cfg.MinObservations {
		res.Reason = ReasonInsufficientData
		return res
	}

	res.Correlation = stat.Correlation(logA, logB, nil)
	if math.IsNaN(res.Correlation) {
		res.Reason = ReasonInsufficientData
		return res
	}
	if res.Correlation < s.cfg.MinCorrelation {
		res.Reason = ReasonLowCorrelation
		return res
	}

	res.SpreadVol = spreadVolatility(logA, logB)
	if res.SpreadVol >= s.cfg.MaxSpreadVol {
		res.Reason = ReasonHighSpreadVol
		return res
	}

	if s.liquidity != nil {
		va, okA := s.liquidity(cand.SymbolA)
		vb, okB := s.liquidity(cand.SymbolB)
		if !okA || !okB || math.Min(va, vb) <= s.cfg.LiquidityFloor {
			res.Reason = ReasonIlliquid
			return res
		}
	}

	res.Passed = true
	return res
}

// ScreenUniverse enumerates pairs over the universe and screens each one.
// It returns the surviving candidates, the full per-pair result map keyed
// by pair ID, and funnel statistics. Assets the store cannot resolve drop
// every pair they appear in, without failing the run.
func (s *Screener) ScreenUniverse(ctx context.Context, symbols []string) ([]Candidate, map[string]Result, Stats, error) {
	stats := Stats{Universe: len(symbols), Exclusions: make(map[string]int)}

	histories := make(map[string]*series.Series, len(symbols))
	short := make(map[string]struct{})
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, nil, stats, err
		}
		sr, err := s.store.Get(ctx, sym)
		if err != nil {
			if errors.Is(err, series.ErrNoHistory) {
				log.Warn().Str("symbol", sym).Msg("no price history, excluding asset")
				continue
			}
			return nil, nil, stats, fmt.Errorf("series store: %w", err)
		}
		stats.Resolved++
		if sr.Len() < s.cfg.MinObservations {
			log.Debug().Str("symbol", sym).Int("observations", sr.Len()).Msg("history below minimum, excluding asset")
			short[sym] = struct{}{}
			continue
		}
		histories[sym] = sr
	}

	all := GeneratePairs(symbols)
	stats.Generated = len(all)

	var passed []Candidate
	results := make(map[string]Result, len(all))
	for _, cand := range all {
		sa, okA := histories[cand.SymbolA]
		sb, okB := histories[cand.SymbolB]
		if !okA || !okB {
			// A symbol with a resolvable but too-short history is a data
			// shortfall, not an upstream failure.
			reason := ReasonInsufficientData
			if _, sh := short[cand.SymbolA]; !okA && !sh {
				reason = ReasonUpstream
			}
			if _, sh := short[cand.SymbolB]; !okB && !sh {
				reason = ReasonUpstream
			}
			results[cand.ID] = Result{ID: cand.ID, Reason: reason}
			stats.Exclusions[reason]++
			continue
		}

		pa, pb := series.Align(sa, sb)
		res := s.ScreenPair(series.LogPrices(pa), series.LogPrices(pb), cand)
		results[cand.ID] = res
		if res.Passed {
			passed = append(passed, cand)
		} else {
			stats.Exclusions[res.Reason]++
		}
	}
	stats.Passed = len(passed)

	log.Info().
		Int("universe", stats.Universe).
		Int("resolved", stats.Resolved).
		Int("generated", stats.Generated).
		Int("passed", stats.Passed).
		Msg("screening complete")

	return passed, results, stats, nil
}

// spreadVolatility is the annualized standard deviation of daily changes in
// the unweighted log-price spread.
func spreadVolatility(logA, logB []float64) float64 {
	diffs := make([]float64, 0, len(logA)-1)
	prev := logA[0] - logB[0]
	for i := 1; i < len(logA); i++ {
		cur := logA[i] - logB[i]
		diffs = append(diffs, cur-prev)
		prev = cur
	}
	return stat.StdDev(diffs, nil) * math.Sqrt(TradingDaysPerYear)
}
