package series

import (
	"math"
	"time"
)

// Series holds the adjusted daily close history for a single asset.
// Dates are sorted ascending and parallel to Closes. A Series is never
// mutated after it is loaded into a store.
type Series struct {
	Symbol string
	Dates  []time.Time
	Closes []float64
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Closes)
}

// Align intersects two series on date and returns the closes of each over
// the overlapping window. Observations with non-positive prices on either
// side are dropped so the log transform downstream stays defined.
func Align(a, b *Series) (pa, pb []float64) {
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		da, db := a.Dates[i], b.Dates[j]
		switch {
		case da.Before(db):
			i++
		case db.Before(da):
			j++
		default:
			if a.Closes[i] > 0 && b.Closes[j] > 0 {
				pa = append(pa, a.Closes[i])
				pb = append(pb, b.Closes[j])
			}
			i++
			j++
		}
	}
	return pa, pb
}

// LogPrices returns the element-wise natural log of a price slice.
func LogPrices(prices []float64) []float64 {
	logs := make([]float64, len(prices))
	for i, p := range prices {
		logs[i] = math.Log(p)
	}
	return logs
}
