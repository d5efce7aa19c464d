package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate indicates a singular or near-singular regression design
// (identical series, zero variance). Callers exclude the offending pair
// rather than scoring it with a fabricated coefficient.
var ErrDegenerate = errors.New("stats: degenerate regression design")

// ErrInsufficientData indicates too few observations for the requested fit.
var ErrInsufficientData = errors.New("stats: insufficient observations")

// FitLine regresses y on x with an intercept by ordinary least squares and
// returns the intercept, slope and residual series.
func FitLine(x, y []float64) (alpha, beta float64, resid []float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, nil, fmt.Errorf("stats: length mismatch %d != %d", n, len(y))
	}
	if n < 3 {
		return 0, 0, nil, ErrInsufficientData
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx <= degenerateTol*float64(n)*math.Max(meanX*meanX, 1) {
		return 0, 0, nil, ErrDegenerate
	}

	beta = sxy / sxx
	alpha = meanY - beta*meanX

	resid = make([]float64, n)
	for i := 0; i < n; i++ {
		resid[i] = y[i] - alpha - beta*x[i]
	}
	return alpha, beta, resid, nil
}

// degenerateTol is the relative variance floor below which a regressor is
// treated as constant.
const degenerateTol = 1e-12

// lstsq solves min ||Xb - y|| via QR and returns the coefficient vector,
// the residual sum of squares, and the diagonal of (X'X)^-1 for standard
// errors. X must have full column rank.
func lstsq(x *mat.Dense, y []float64) (coef []float64, rss float64, xtxInvDiag []float64, err error) {
	rows, cols := x.Dims()
	if rows != len(y) || rows <= cols {
		return nil, 0, nil, ErrInsufficientData
	}

	var qr mat.QR
	qr.Factorize(x)

	b := mat.NewVecDense(rows, y)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	coef = make([]float64, cols)
	for i := 0; i < cols; i++ {
		coef[i] = sol.AtVec(i)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &sol)
	for i := 0; i < rows; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
	}

	var gram mat.SymDense
	gram.SymOuterK(1, x.T())
	var gramInv mat.Dense
	if err := gramInv.Inverse(&gram); err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	xtxInvDiag = make([]float64, cols)
	for i := 0; i < cols; i++ {
		xtxInvDiag[i] = gramInv.At(i, i)
	}
	return coef, rss, xtxInvDiag, nil
}

// AR1Slope fits z_t = phi * z_{t-1} by least squares through the origin.
// The input is assumed de-meaned by the caller.
func AR1Slope(z []float64) (float64, error) {
	if len(z) < 3 {
		return 0, ErrInsufficientData
	}
	var num, den float64
	for t := 1; t < len(z); t++ {
		num += z[t-1] * z[t]
		den += z[t-1] * z[t-1]
	}
	if den <= 0 || math.IsNaN(den) {
		return 0, ErrDegenerate
	}
	return num / den, nil
}
