package adaptive

import (
	"image"
	"sync"
)

// Decision is what the partitioner did with a region.
type Decision int

const (
	// DecisionTooSmall: region below the minimum size, thresholded directly.
	DecisionTooSmall Decision = iota
	// DecisionSeparable: η reached the threshold, thresholded directly.
	DecisionSeparable
	// DecisionSplit: region divided in two and processed recursively.
	DecisionSplit
)

func (d Decision) String() string {
	switch d {
	case DecisionTooSmall:
		return "too_small"
	case DecisionSeparable:
		return "separable"
	case DecisionSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Event describes one visited region.
type Event struct {
	Region      image.Rectangle
	Depth       int
	Eta         float64
	EtaComputed bool
	Threshold   uint8
	Decision    Decision
}

// Observer receives an Event for every region after its decision is taken.
// With more than one worker, Observe is called from several goroutines.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Stats counts regions by decision and tracks the deepest level reached.
type Stats struct {
	mu        sync.Mutex
	regions   int
	decisions [3]int
	maxDepth  int
}

func (s *Stats) Observe(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions++
	if int(e.Decision) < len(s.decisions) {
		s.decisions[e.Decision]++
	}
	if e.Depth > s.maxDepth {
		s.maxDepth = e.Depth
	}
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Regions   int
	TooSmall  int
	Separable int
	Splits    int
	MaxDepth  int
}

// Leaves is the number of regions that committed a threshold.
func (s StatsSnapshot) Leaves() int {
	return s.TooSmall + s.Separable
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StatsSnapshot{
		Regions:   s.regions,
		TooSmall:  s.decisions[DecisionTooSmall],
		Separable: s.decisions[DecisionSeparable],
		Splits:    s.decisions[DecisionSplit],
		MaxDepth:  s.maxDepth,
	}
}
