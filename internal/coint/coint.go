// Package coint implements the Engle-Granger two-step residual-based
// cointegration test: an OLS regression of one log-price series on the
// other yields the hedge ratio, and an augmented Dickey-Fuller test on the
// regression residual yields a p-value under the null of no cointegration.
package coint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/statarb/pairscan/internal/stats"
)

// Config holds tester parameters.
type Config struct {
	// MinObservations is the minimum aligned sample size.
	MinObservations int `yaml:"min_observations"`
	// MaxLag bounds the ADF lag search; 0 selects the Schwert rule.
	MaxLag int `yaml:"max_adf_lag"`
}

// Result carries the outcome of a cointegration test. The spread is the
// OLS residual series y - alpha - beta*x, zero-mean by construction.
type Result struct {
	PValue     float64
	HedgeRatio float64
	Intercept  float64
	Tau        float64
	Spread     []float64
	SpreadMean float64
	SpreadStd  float64
	Obs        int
}

// Tester runs Engle-Granger tests. It holds no per-pair state, so a single
// instance is safe to share across workers.
type Tester struct {
	cfg Config
}

// NewTester builds a tester with the given configuration.
func NewTester(cfg Config) *Tester {
	return &Tester{cfg: cfg}
}

// Test decides whether logY and logX share a stable long-run linear
// relationship. Calling it twice on the same series yields bit-identical
// results. A singular regression (identical or constant series) returns
// stats.ErrDegenerate; the caller excludes the pair rather than fabricating
// a value.
func (t *Tester) Test(logX, logY []float64) (Result, error) {
	if len(logX) != len(logY) {
		return Result{}, fmt.Errorf("coint: length mismatch %d != %d", len(logX), len(logY))
	}
	if len(logX) < t.cfg.MinObservations {
		return Result{}, stats.ErrInsufficientData
	}

	alpha, beta, spread, err := stats.FitLine(logX, logY)
	if err != nil {
		return Result{}, fmt.Errorf("hedge regression: %w", err)
	}

	adf, err := stats.ADF(spread, t.cfg.MaxLag)
	if err != nil {
		return Result{}, fmt.Errorf("residual unit-root test: %w", err)
	}

	mean := stat.Mean(spread, nil)
	std := math.Sqrt(stat.Variance(spread, nil))

	return Result{
		PValue:     stats.EGPValue(adf.Tau),
		HedgeRatio: beta,
		Intercept:  alpha,
		Tau:        adf.Tau,
		Spread:     spread,
		SpreadMean: mean,
		SpreadStd:  std,
		Obs:        len(spread),
	}, nil
}
