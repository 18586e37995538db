package adaptive

import (
	"errors"
	"fmt"

	"adaptive-otsu/internal/processing/threshold"
)

var ErrInvalidConfig = errors.New("invalid adaptive binarization config")

// Config tunes the recursive partitioning.
type Config struct {
	// EtaThreshold is the separability at which a region is thresholded
	// directly instead of being split.
	EtaThreshold float64 `yaml:"eta_threshold"`
	// MinRegionSize is the width and height a region needs before it may
	// be split again.
	MinRegionSize int `yaml:"min_region_size"`
	// Eps guards the variance divisions.
	Eps float64 `yaml:"eps"`
	// MaxDepth stops recursion on malformed input; bisection normally
	// bottoms out long before it.
	MaxDepth int `yaml:"max_depth"`
	// Workers bounds the goroutines used for sibling regions. 1 runs the
	// recursion depth-first on the calling goroutine.
	Workers int `yaml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		EtaThreshold:  0.5,
		MinRegionSize: 32,
		Eps:           threshold.DefaultEps,
		MaxDepth:      64,
		Workers:       1,
	}
}

func (c Config) Validate() error {
	if c.EtaThreshold < 0 || c.EtaThreshold > 1 {
		return fmt.Errorf("%w: eta_threshold must be between 0 and 1, got: %f", ErrInvalidConfig, c.EtaThreshold)
	}
	if c.MinRegionSize < 1 {
		return fmt.Errorf("%w: min_region_size must be positive, got: %d", ErrInvalidConfig, c.MinRegionSize)
	}
	if c.Eps <= 0 {
		return fmt.Errorf("%w: eps must be positive, got: %g", ErrInvalidConfig, c.Eps)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max_depth must be positive, got: %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got: %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}
