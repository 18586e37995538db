package threshold

import (
	"math"

	"adaptive-otsu/internal/processing/histogram"

	"gonum.org/v1/gonum/floats"
)

// TotalVariance is the variance of the whole distribution around its mean.
func TotalVariance(h histogram.Histogram) float64 {
	mg := floats.Dot(levels, h[:])

	sigmaT := 0.0
	for i, p := range h {
		diff := float64(i) - mg
		sigmaT += diff * diff * p
	}
	return sigmaT
}

// Separability returns η = σ_B/σ_T for threshold t, in [0, 1]. A histogram
// without variance (constant or empty region) has η = 0.
func Separability(h histogram.Histogram, t uint8, eps float64) float64 {
	sigmaT := TotalVariance(h)
	if math.Abs(sigmaT) < eps {
		return 0
	}

	eta := cumulate(&h).between(int(t), eps) / sigmaT
	if eta > 1 {
		// rounding only; σ_B never exceeds σ_T
		return 1
	}
	return eta
}
