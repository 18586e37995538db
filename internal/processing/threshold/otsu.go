package threshold

import (
	"math"

	"adaptive-otsu/internal/processing/histogram"

	"gonum.org/v1/gonum/floats"
)

// DefaultEps guards the divisions in the variance ratios.
const DefaultEps = 1.0e-14

var levels = histogram.LevelValues()

// moments holds the cumulative class probability p1, the cumulative first
// moment m and the global mean of a histogram.
type moments struct {
	p1 [histogram.Levels]float64
	m  [histogram.Levels]float64
	mg float64
}

func cumulate(h *histogram.Histogram) *moments {
	mo := &moments{}
	floats.CumSum(mo.p1[:], h[:])

	var weighted [histogram.Levels]float64
	floats.MulTo(weighted[:], levels, h[:])
	floats.CumSum(mo.m[:], weighted[:])

	mo.mg = mo.m[histogram.Levels-1]
	return mo
}

// between is the between-class variance for a split after level t.
func (mo *moments) between(t int, eps float64) float64 {
	p1 := mo.p1[t]
	div := p1 * (1 - p1)
	if math.Abs(div) < eps {
		return 0
	}
	diff := mo.mg*p1 - mo.m[t]
	return diff * diff / div
}

// Select returns the level maximizing the between-class variance of h.
// Ties resolve to the lowest level; when no level separates anything the
// result is 0.
func Select(h histogram.Histogram, eps float64) uint8 {
	mo := cumulate(&h)

	var b [histogram.Levels]float64
	for i := range b {
		b[i] = mo.between(i, eps)
	}

	best := floats.MaxIdx(b[:])
	if b[best] <= 0 {
		return 0
	}
	return uint8(best)
}

// BetweenClassVariance returns σ_B for threshold t.
func BetweenClassVariance(h histogram.Histogram, t uint8, eps float64) float64 {
	return cumulate(&h).between(int(t), eps)
}
