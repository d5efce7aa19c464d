package stats

// SmoothRW runs a scalar Kalman filter with a random-walk-plus-noise model
// over the observations: the latent state follows an identity transition
// with variance processVar and is observed directly with variance obsVar.
// The returned slice holds the filtered state means.
//
// Microstructure noise in a raw spread biases an AR(1) fit toward faster
// reversion; filtering first removes most of that bias.
func SmoothRW(obs []float64, processVar, obsVar float64) []float64 {
	if len(obs) == 0 {
		return nil
	}

	smoothed := make([]float64, len(obs))

	// Initial state mean 0 with unit variance, matching a diffuse prior on
	// a de-meaned spread.
	x, p := 0.0, 1.0
	for t, y := range obs {
		// Predict.
		p += processVar

		// Update.
		k := p / (p + obsVar)
		x += k * (y - x)
		p *= 1 - k

		smoothed[t] = x
	}
	return smoothed
}
