// Package report renders run diagnostics.
package report

import (
	"fmt"
	"io"

	"adaptive-otsu/internal/processing/histogram"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	ChartWidth  = 1024
	ChartHeight = 512
)

// HistogramChart draws h as a line with a vertical marker at the threshold
// and writes it as PNG.
func HistogramChart(w io.Writer, h histogram.Histogram, threshold uint8, title string) error {
	peak := 0.0
	for _, p := range h {
		if p > peak {
			peak = p
		}
	}
	if peak == 0 {
		peak = 1
	}

	hist := chart.ContinuousSeries{
		Name:    "histogram",
		XValues: histogram.LevelValues(),
		YValues: h.Slice(),
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			FillColor:   chart.ColorBlue.WithAlpha(64),
		},
	}

	marker := chart.ContinuousSeries{
		Name:    fmt.Sprintf("threshold %d", threshold),
		XValues: []float64{float64(threshold), float64(threshold)},
		YValues: []float64{0, peak},
		Style: chart.Style{
			StrokeColor:     drawing.ColorRed,
			StrokeWidth:     2,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}

	graph := chart.Chart{
		Title:  title,
		Width:  ChartWidth,
		Height: ChartHeight,
		XAxis: chart.XAxis{
			Name:  "Intensity",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(histogram.Levels - 1)},
		},
		YAxis: chart.YAxis{
			Name:  "Probability",
			Range: &chart.ContinuousRange{Min: 0, Max: peak},
		},
		Series: []chart.Series{hist, marker},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render histogram chart: %w", err)
	}
	return nil
}
