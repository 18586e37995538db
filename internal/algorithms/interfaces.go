package algorithms

import (
	"context"

	"adaptive-otsu/internal/models"
)

// Algorithm binarizes an 8-bit buffer in place.
type Algorithm interface {
	Process(buf *models.PixelBuffer) error
	GetName() string
}

// ContextualAlgorithm extends Algorithm with context support for cancellation
type ContextualAlgorithm interface {
	Algorithm
	ProcessWithContext(ctx context.Context, buf *models.PixelBuffer) error
}
