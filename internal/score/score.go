package score

// ScoredPair is the terminal, read-only record for a pair that survived
// every stage. It is the unit of output and the payload accumulated in the
// progress checkpoint.
type ScoredPair struct {
	ID           string  `json:"id"`
	SymbolA      string  `json:"symbol_a"`
	SymbolB      string  `json:"symbol_b"`
	HedgeRatio   float64 `json:"hedge_ratio"`
	PValue       float64 `json:"p_value"`
	HalfLife     float64 `json:"half_life"`
	Correlation  float64 `json:"correlation"`
	Score        float64 `json:"score"`
	Observations int     `json:"observations"`
}

// Weights parameterizes the composite ranking statistic.
type Weights struct {
	PValue      float64 `yaml:"p_value_weight"`
	HalfLife    float64 `yaml:"half_life_weight"`
	MaxHalfLife float64 `yaml:"max_half_life"`
}

// Score combines cointegration significance and reversion speed into one
// ranking value:
//
//	score = Wp·max(0, 1-p) + Wh·max(0, 1-H/Hmax)
//
// Both terms clamp at zero, so p >= 1 or H >= Hmax never contribute
// negatively. The function is pure and monotonically decreasing in both
// arguments.
func (w Weights) Score(pValue, halfLife float64) float64 {
	pTerm := 1 - pValue
	if pTerm < 0 {
		pTerm = 0
	}

	hTerm := 0.0
	if w.MaxHalfLife > 0 {
		hTerm = 1 - halfLife/w.MaxHalfLife
		if hTerm < 0 {
			hTerm = 0
		}
	}

	return w.PValue*pTerm + w.HalfLife*hTerm
}
