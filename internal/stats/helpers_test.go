package stats

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

func makeDense(rows, cols int, fill func(r, c int) float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, fill(r, c))
		}
	}
	return m
}

// ar1Series simulates z_t = phi*z_{t-1} + sigma*eps_t from a fixed seed.
func ar1Series(phi, sigma float64, n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	z := make([]float64, n)
	for t := 1; t < n; t++ {
		z[t] = phi*z[t-1] + sigma*rng.NormFloat64()
	}
	return z
}

// randomWalk simulates a unit-root series from a fixed seed.
func randomWalk(sigma float64, n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	z := make([]float64, n)
	for t := 1; t < n; t++ {
		z[t] = z[t-1] + sigma*rng.NormFloat64()
	}
	return z
}
