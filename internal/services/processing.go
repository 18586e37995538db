package services

import (
	"context"
	"time"

	"adaptive-otsu/internal/algorithms"
	"adaptive-otsu/internal/algorithms/adaptive"
	"adaptive-otsu/internal/config"
	"adaptive-otsu/internal/logger"
	"adaptive-otsu/internal/processing/histogram"
	"adaptive-otsu/internal/processing/threshold"
)

// ProcessingResult summarises one binarization run.
type ProcessingResult struct {
	Stats adaptive.StatsSnapshot
	// Histogram, Threshold and Eta describe the whole image before
	// binarization.
	Histogram   histogram.Histogram
	Threshold   uint8
	Eta         float64
	ProcessTime time.Duration
}

// ProcessingService runs the configured binarizer over loaded images.
type ProcessingService struct {
	algorithm  string
	cfg        adaptive.Config
	logRegions bool
	log        logger.Logger
}

func NewProcessingService(cfg config.Config, log logger.Logger) (*ProcessingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ProcessingService{
		algorithm:  cfg.Algorithm,
		cfg:        cfg.Binarize,
		logRegions: cfg.Log.Regions,
		log:        log,
	}, nil
}

// ProcessImage binarizes data.Buffer in place. Memory was checked when the
// image was loaded; the run allocates no further pixel buffers.
func (ps *ProcessingService) ProcessImage(ctx context.Context, data *ImageData) (*ProcessingResult, error) {
	stats := &adaptive.Stats{}
	opts := []adaptive.Option{adaptive.WithObserver(stats)}
	if ps.logRegions {
		opts = append(opts, adaptive.WithObserver(NewRegionLogger(ps.log)))
	}
	manager, err := algorithms.NewManager(ps.cfg, opts...)
	if err != nil {
		return nil, err
	}

	result := &ProcessingResult{
		Histogram: histogram.Estimate(data.Buffer, data.Buffer.Bounds()),
	}
	result.Threshold = threshold.Select(result.Histogram, ps.cfg.Eps)
	result.Eta = threshold.Separability(result.Histogram, result.Threshold, ps.cfg.Eps)

	ps.log.Info("ProcessingService", "processing image", map[string]interface{}{
		"algorithm":       ps.algorithm,
		"file":            data.Path,
		"format":          data.Format,
		"width":           data.Width,
		"height":          data.Height,
		"eta_threshold":   ps.cfg.EtaThreshold,
		"min_region_size": ps.cfg.MinRegionSize,
		"workers":         ps.cfg.Workers,
	})

	start := time.Now()
	err = manager.Run(ctx, ps.algorithm, data.Buffer)
	result.ProcessTime = time.Since(start)
	result.Stats = stats.Snapshot()
	if err != nil {
		return nil, err
	}

	ps.log.Info("ProcessingService", "processing completed", map[string]interface{}{
		"regions":     result.Stats.Regions,
		"leaves":      result.Stats.Leaves(),
		"too_small":   result.Stats.TooSmall,
		"separable":   result.Stats.Separable,
		"splits":      result.Stats.Splits,
		"max_depth":   result.Stats.MaxDepth,
		"global_eta":  result.Eta,
		"global_th":   result.Threshold,
		"duration_ms": result.ProcessTime.Milliseconds(),
	})
	return result, nil
}
