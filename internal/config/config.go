// Package config loads the YAML settings file and merges command-line
// overrides into it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"adaptive-otsu/internal/algorithms"
	"adaptive-otsu/internal/algorithms/adaptive"
	"adaptive-otsu/internal/logger"

	"gopkg.in/yaml.v3"
)

const (
	BackendOpenCV = "opencv"
	BackendNative = "native"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Algorithm is "adaptive" or "global".
	Algorithm string          `yaml:"algorithm"`
	Binarize  adaptive.Config `yaml:"binarize"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
	Memory    MemoryConfig    `yaml:"memory"`
}

type InputConfig struct {
	// Backend selects the decoder: "opencv" or "native" (pure Go).
	Backend string `yaml:"backend"`
	// Convert turns color input into luminance instead of rejecting it.
	Convert bool `yaml:"convert"`
	// Page and DPI apply to PDF input only. Pages count from 0.
	Page int `yaml:"page"`
	DPI  int `yaml:"dpi"`
}

type OutputConfig struct {
	JPEGQuality int `yaml:"jpeg_quality"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	// Regions logs one debug line per visited region.
	Regions bool `yaml:"regions"`
}

type MemoryConfig struct {
	// Headroom is the fraction of available memory a run may claim.
	Headroom float64 `yaml:"headroom"`
}

func Default() Config {
	return Config{
		Algorithm: algorithms.Adaptive,
		Binarize:  adaptive.DefaultConfig(),
		Input: InputConfig{
			Backend: BackendOpenCV,
			DPI:     150,
		},
		Output: OutputConfig{JPEGQuality: 95},
		Log:    LogConfig{Level: "info"},
		Memory: MemoryConfig{Headroom: 0.5},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write stores cfg as YAML, used by -dump-config.
func Write(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func (c Config) Validate() error {
	if !algorithms.Known(c.Algorithm) {
		return fmt.Errorf("%w: algorithm must be %q or %q, got: %q", ErrInvalid, algorithms.Adaptive, algorithms.Global, c.Algorithm)
	}
	if err := c.Binarize.Validate(); err != nil {
		return err
	}

	switch c.Input.Backend {
	case BackendOpenCV, BackendNative:
	default:
		return fmt.Errorf("%w: input.backend must be %q or %q, got: %q", ErrInvalid, BackendOpenCV, BackendNative, c.Input.Backend)
	}
	if c.Input.Page < 0 {
		return fmt.Errorf("%w: input.page must not be negative, got: %d", ErrInvalid, c.Input.Page)
	}
	if c.Input.DPI < 36 || c.Input.DPI > 1200 {
		return fmt.Errorf("%w: input.dpi must be between 36 and 1200, got: %d", ErrInvalid, c.Input.DPI)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("%w: output.jpeg_quality must be between 1 and 100, got: %d", ErrInvalid, c.Output.JPEGQuality)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Memory.Headroom <= 0 || c.Memory.Headroom > 1 {
		return fmt.Errorf("%w: memory.headroom must be in (0, 1], got: %f", ErrInvalid, c.Memory.Headroom)
	}
	return nil
}
