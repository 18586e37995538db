// Package global binarizes with a single Otsu threshold for the whole image.
package global

import (
	"adaptive-otsu/internal/models"
	"adaptive-otsu/internal/processing/histogram"
	"adaptive-otsu/internal/processing/threshold"
)

type Processor struct {
	name string
	eps  float64
}

func NewProcessor(eps float64) *Processor {
	return &Processor{
		name: "Global Otsu",
		eps:  eps,
	}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) Process(buf *models.PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	r := buf.Bounds()
	threshold.Apply(buf, r, threshold.Select(histogram.Estimate(buf, r), p.eps))
	return nil
}
