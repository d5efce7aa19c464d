package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// egQuantiles approximates the asymptotic distribution of the Engle-Granger
// tau statistic for two variables with a constant in the cointegrating
// regression. The tail anchors follow MacKinnon's response-surface critical
// values; interior anchors are interpolated in probit space, which keeps the
// mapping smooth and strictly monotone.
var egQuantiles = []struct {
	p   float64
	tau float64
}{
	{0.001, -4.62},
	{0.010, -3.90},
	{0.025, -3.59},
	{0.050, -3.34},
	{0.100, -3.05},
	{0.250, -2.63},
	{0.500, -2.19},
	{0.750, -1.75},
	{0.900, -1.37},
	{0.950, -1.14},
	{0.990, -0.69},
	{0.999, -0.10},
}

const (
	egPValueFloor   = 1e-4
	egPValueCeiling = 1 - 1e-4
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// EGPValue converts an Engle-Granger tau statistic into an approximate
// p-value under the null of no cointegration. Values beyond the tabulated
// tails are clamped so the result stays in (0, 1).
func EGPValue(tau float64) float64 {
	qs := egQuantiles
	if tau <= qs[0].tau {
		return egPValueFloor
	}
	if tau >= qs[len(qs)-1].tau {
		return egPValueCeiling
	}

	i := sort.Search(len(qs), func(i int) bool { return qs[i].tau >= tau })
	lo, hi := qs[i-1], qs[i]

	// Linear interpolation between anchors in probit space.
	zlo := stdNormal.Quantile(lo.p)
	zhi := stdNormal.Quantile(hi.p)
	frac := (tau - lo.tau) / (hi.tau - lo.tau)
	z := zlo + frac*(zhi-zlo)

	p := stdNormal.CDF(z)
	if p < egPValueFloor {
		p = egPValueFloor
	}
	if p > egPValueCeiling {
		p = egPValueCeiling
	}
	return p
}
