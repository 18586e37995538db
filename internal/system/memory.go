// Package system checks host resources before a run allocates its buffers.
package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

var ErrInsufficientMemory = errors.New("insufficient memory")

// AvailableMemory reports the bytes the OS can hand out without swapping.
func AvailableMemory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query memory: %w", err)
	}
	return vm.Available, nil
}

// WorkingSet estimates the bytes a width×height run needs: the decoded
// image with its channel count plus the 8-bit work buffer, and one extra
// gray copy when the original is kept for display.
func WorkingSet(width, height, channels int, keepOriginal bool) uint64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	planes := uint64(channels) + 1
	if keepOriginal {
		planes++
	}
	return uint64(width) * uint64(height) * planes
}

type MemoryChecker struct {
	headroom  float64
	available func(context.Context) (uint64, error)
}

type MemoryOption func(*MemoryChecker)

// WithAvailable replaces the gopsutil query, for hosts where it is not
// meaningful and for tests.
func WithAvailable(fn func(context.Context) (uint64, error)) MemoryOption {
	return func(c *MemoryChecker) {
		c.available = fn
	}
}

// NewMemoryChecker allows a run to claim headroom (0, 1] of the available
// memory.
func NewMemoryChecker(headroom float64, opts ...MemoryOption) *MemoryChecker {
	c := &MemoryChecker{headroom: headroom, available: AvailableMemory}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryChecker) Check(ctx context.Context, need uint64) error {
	avail, err := c.available(ctx)
	if err != nil {
		return err
	}

	limit := uint64(float64(avail) * c.headroom)
	if need > limit {
		return fmt.Errorf("%w: need %d MB, limit %d MB of %d MB available",
			ErrInsufficientMemory, need>>20, limit>>20, avail>>20)
	}
	return nil
}
