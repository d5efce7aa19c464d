// Package halflife estimates how quickly a stationary spread reverts to
// its mean, expressed in trading days. The raw spread is denoised with a
// scalar random-walk-plus-noise Kalman filter, then a first-order
// autoregression on the smoothed series yields the reversion coefficient.
package halflife

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/statarb/pairscan/internal/stats"
)

// Config holds filter parameters and the tradable half-life bounds.
type Config struct {
	// ProcessVar is the transition (process) noise variance of the filter.
	ProcessVar float64 `yaml:"process_variance"`
	// ObsVar is the observation noise variance of the filter.
	ObsVar float64 `yaml:"observation_variance"`
	// MinDays excludes spreads that revert too fast to trade net of costs.
	MinDays float64 `yaml:"min_days"`
	// MaxDays excludes spreads that revert too slowly to be useful.
	MaxDays float64 `yaml:"max_days"`
}

// Result carries the half-life estimate for one spread. HalfLife is +Inf
// when the fitted process is non-mean-reverting.
type Result struct {
	HalfLife float64
	Phi      float64
}

// Estimator computes half-life estimates. Stateless across calls.
type Estimator struct {
	cfg Config
}

// NewEstimator builds an estimator with the given configuration.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate de-means the spread, smooths it, and fits z_t = phi*z_{t-1}.
// phi outside (0, 1) means the process does not revert toward its mean;
// the half-life is then reported as +Inf and the downstream bound check
// excludes the pair.
func (e *Estimator) Estimate(spread []float64) (Result, error) {
	if len(spread) < 10 {
		return Result{}, stats.ErrInsufficientData
	}

	mean := stat.Mean(spread, nil)
	centered := make([]float64, len(spread))
	for i, v := range spread {
		centered[i] = v - mean
	}

	smoothed := stats.SmoothRW(centered, e.cfg.ProcessVar, e.cfg.ObsVar)

	phi, err := stats.AR1Slope(smoothed)
	if err != nil {
		return Result{}, err
	}

	if phi <= 0 || math.Abs(phi) >= 1 {
		return Result{HalfLife: math.Inf(1), Phi: phi}, nil
	}

	// Discrete-time Ornstein-Uhlenbeck half-life: periods for the expected
	// deviation from the mean to halve.
	return Result{HalfLife: -math.Ln2 / math.Log(phi), Phi: phi}, nil
}

// InBounds reports whether a half-life falls inside the configured
// economically tradable window.
func (e *Estimator) InBounds(h float64) bool {
	if math.IsInf(h, 1) || math.IsNaN(h) {
		return false
	}
	return h > e.cfg.MinDays && h < e.cfg.MaxDays
}
