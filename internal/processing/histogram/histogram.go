package histogram

import (
	"image"

	"adaptive-otsu/internal/models"
)

// Levels is the size of the intensity domain.
const Levels = models.IntensMax + 1

// Histogram is the empirical probability of each intensity level inside a
// region. It sums to 1 for a region with at least one pixel and is all zero
// otherwise.
type Histogram [Levels]float64

// LevelValues returns a new slice holding 0, 1, ..., Levels-1 as float64,
// the x values of a histogram.
func LevelValues() []float64 {
	l := make([]float64, Levels)
	for i := range l {
		l[i] = float64(i)
	}
	return l
}

// Estimate computes the normalized histogram of region. Parts of the region
// outside the buffer are skipped.
func Estimate(buf *models.PixelBuffer, region image.Rectangle) Histogram {
	var counts [Levels]int
	r := buf.Clip(region)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, v := range buf.Row(y, r.Min.X, r.Max.X) {
			counts[v]++
		}
	}

	var h Histogram
	total := r.Dx() * r.Dy()
	if total == 0 {
		return h
	}

	for i, c := range counts {
		h[i] = float64(c) / float64(total)
	}
	return h
}

// Degenerate reports whether the histogram came from an empty region.
func (h *Histogram) Degenerate() bool {
	for _, p := range h {
		if p != 0 {
			return false
		}
	}
	return true
}

// Slice returns the bins as a slice aliasing h.
func (h *Histogram) Slice() []float64 {
	return h[:]
}
