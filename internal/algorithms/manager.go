package algorithms

import (
	"context"
	"fmt"
	"sort"

	"adaptive-otsu/internal/algorithms/adaptive"
	"adaptive-otsu/internal/algorithms/global"
	"adaptive-otsu/internal/models"
)

const (
	Adaptive = "adaptive"
	Global   = "global"
)

// Known reports whether name is a registered algorithm key.
func Known(name string) bool {
	return name == Adaptive || name == Global
}

type Manager struct {
	algorithms map[string]Algorithm
}

// NewManager registers every algorithm with cfg. Observers only see the
// adaptive algorithm's regions.
func NewManager(cfg adaptive.Config, opts ...adaptive.Option) (*Manager, error) {
	adaptiveAlg, err := adaptive.NewProcessor(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return &Manager{
		algorithms: map[string]Algorithm{
			Adaptive: adaptiveAlg,
			Global:   global.NewProcessor(cfg.Eps),
		},
	}, nil
}

func (m *Manager) GetAlgorithm(name string) (Algorithm, error) {
	if algorithm, exists := m.algorithms[name]; exists {
		return algorithm, nil
	}

	return nil, fmt.Errorf("unknown algorithm: %s", name)
}

func (m *Manager) GetAvailableAlgorithms() []string {
	names := make([]string, 0, len(m.algorithms))
	for name := range m.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run processes buf with the named algorithm, honouring ctx when the
// algorithm supports it.
func (m *Manager) Run(ctx context.Context, name string, buf *models.PixelBuffer) error {
	algorithm, err := m.GetAlgorithm(name)
	if err != nil {
		return err
	}

	if contextual, ok := algorithm.(ContextualAlgorithm); ok {
		return contextual.ProcessWithContext(ctx, buf)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return algorithm.Process(buf)
}
