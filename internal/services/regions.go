package services

import (
	"fmt"

	"adaptive-otsu/internal/algorithms/adaptive"
	"adaptive-otsu/internal/logger"
)

// RegionLogger writes one debug line per visited region.
type RegionLogger struct {
	log logger.Logger
}

func NewRegionLogger(log logger.Logger) *RegionLogger {
	return &RegionLogger{log: log}
}

func (rl *RegionLogger) Observe(e adaptive.Event) {
	// the end corner is exclusive, as in image.Rectangle
	fields := map[string]interface{}{
		"depth":     e.Depth,
		"region":    fmt.Sprintf("[%d,%d] to [%d,%d]", e.Region.Min.X, e.Region.Min.Y, e.Region.Max.X, e.Region.Max.Y),
		"threshold": e.Threshold,
		"decision":  e.Decision.String(),
	}
	if e.EtaComputed {
		fields["eta"] = e.Eta
	}

	var msg string
	switch e.Decision {
	case adaptive.DecisionTooSmall:
		msg = "region too small, applying Otsu directly"
	case adaptive.DecisionSeparable:
		msg = "region separable, applying Otsu directly"
	default:
		msg = "dividing region"
	}
	rl.log.Debug("AdaptiveOtsu", msg, fields)
}
