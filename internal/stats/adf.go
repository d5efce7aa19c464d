package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ADFResult holds the outcome of an augmented Dickey-Fuller regression on a
// residual series.
type ADFResult struct {
	// Tau is the t-statistic on the lagged level; more negative means
	// stronger evidence against a unit root.
	Tau float64
	// Lags is the number of lagged differences selected by AIC.
	Lags int
	// Obs is the number of usable observations in the final regression.
	Obs int
}

// ADF runs an augmented Dickey-Fuller unit-root test without a constant
// term, suitable for OLS residuals which are zero-mean by construction:
//
//	Δe_t = γ·e_{t-1} + Σ δ_i·Δe_{t-i} + ε_t
//
// The lag order is chosen by minimizing AIC over 0..maxLag with a common
// sample, then the regression is refit at the chosen lag on the full usable
// sample. maxLag <= 0 selects the Schwert rule 12·(n/100)^¼.
func ADF(series []float64, maxLag int) (ADFResult, error) {
	n := len(series)
	if n < 20 {
		return ADFResult{}, ErrInsufficientData
	}
	if maxLag <= 0 {
		maxLag = int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if maxLag > n/2-2 {
		maxLag = n/2 - 2
	}
	if maxLag < 0 {
		maxLag = 0
	}

	diff := make([]float64, n-1)
	for t := 1; t < n; t++ {
		diff[t-1] = series[t] - series[t-1]
	}

	// Lag selection on the common sample so AIC values are comparable.
	bestLag, bestAIC := 0, math.Inf(1)
	for k := 0; k <= maxLag; k++ {
		_, _, aic, err := adfFit(series, diff, k, maxLag)
		if err != nil {
			continue
		}
		if aic < bestAIC {
			bestAIC = aic
			bestLag = k
		}
	}
	if math.IsInf(bestAIC, 1) {
		return ADFResult{}, ErrDegenerate
	}

	tau, obs, _, err := adfFit(series, diff, bestLag, bestLag)
	if err != nil {
		return ADFResult{}, err
	}
	return ADFResult{Tau: tau, Lags: bestLag, Obs: obs}, nil
}

// adfFit runs the ADF regression with k lagged differences, discarding the
// first startLag observations, and returns the tau statistic and AIC.
func adfFit(series, diff []float64, k, startLag int) (tau float64, obs int, aic float64, err error) {
	// diff[t] = series[t+1] - series[t]; rows run over t = startLag..len(diff)-1.
	rows := len(diff) - startLag
	cols := k + 1
	if rows <= cols+1 {
		return 0, 0, 0, ErrInsufficientData
	}

	x := mat.NewDense(rows, cols, nil)
	y := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := startLag + r
		y[r] = diff[t]
		x.Set(r, 0, series[t])
		for i := 1; i <= k; i++ {
			x.Set(r, i, diff[t-i])
		}
	}

	coef, rss, invDiag, err := lstsq(x, y)
	if err != nil {
		return 0, 0, 0, err
	}
	if rss <= 0 {
		return 0, 0, 0, ErrDegenerate
	}

	s2 := rss / float64(rows-cols)
	se := math.Sqrt(s2 * invDiag[0])
	if se <= 0 || math.IsNaN(se) {
		return 0, 0, 0, ErrDegenerate
	}
	tau = coef[0] / se
	aic = float64(rows)*math.Log(rss/float64(rows)) + 2*float64(cols)
	return tau, rows, aic, nil
}
