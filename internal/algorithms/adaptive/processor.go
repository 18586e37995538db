// Package adaptive binarizes grayscale images by recursive bisection: each
// region gets its own Otsu threshold, which is kept when it separates the
// region's intensities well enough and replaced by thresholds of the two
// halves otherwise.
package adaptive

import (
	"context"
	"fmt"
	"image"

	"adaptive-otsu/internal/models"
	"adaptive-otsu/internal/processing/histogram"
	"adaptive-otsu/internal/processing/threshold"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type Processor struct {
	name     string
	cfg      Config
	observer Observer
	sem      *semaphore.Weighted
}

type Option func(*Processor)

// WithObserver adds an observer. Repeating the option adds more.
func WithObserver(o Observer) Option {
	return func(p *Processor) {
		if o == nil {
			return
		}
		switch existing := p.observer.(type) {
		case nil:
			p.observer = o
		case multiObserver:
			p.observer = append(existing, o)
		default:
			p.observer = multiObserver{existing, o}
		}
	}
}

func NewProcessor(cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		name: "Adaptive Otsu",
		cfg:  cfg,
	}
	if cfg.Workers > 1 {
		p.sem = semaphore.NewWeighted(int64(cfg.Workers - 1))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) Config() Config {
	return p.cfg
}

func (p *Processor) Process(buf *models.PixelBuffer) error {
	return p.ProcessWithContext(context.Background(), buf)
}

// ProcessWithContext binarizes buf in place. On cancellation the regions
// already visited stay binarized and ctx.Err() is returned.
func (p *Processor) ProcessWithContext(ctx context.Context, buf *models.PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return p.processRegion(ctx, buf, buf.Bounds(), 0)
}

// ProcessImage binarizes a *image.Gray in place and refuses any other
// image type.
func (p *Processor) ProcessImage(ctx context.Context, img image.Image) error {
	buf, err := models.FromImage(img)
	if err != nil {
		return fmt.Errorf("adaptive binarization: %w", err)
	}
	return p.ProcessWithContext(ctx, buf)
}

func (p *Processor) processRegion(ctx context.Context, buf *models.PixelBuffer, r image.Rectangle, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hist := histogram.Estimate(buf, r)
	th := threshold.Select(hist, p.cfg.Eps)

	if r.Dx() < p.cfg.MinRegionSize || r.Dy() < p.cfg.MinRegionSize || depth >= p.cfg.MaxDepth {
		threshold.Apply(buf, r, th)
		p.emit(Event{Region: r, Depth: depth, Threshold: th, Decision: DecisionTooSmall})
		return nil
	}

	eta := threshold.Separability(hist, th, p.cfg.Eps)
	if eta >= p.cfg.EtaThreshold {
		threshold.Apply(buf, r, th)
		p.emit(Event{Region: r, Depth: depth, Eta: eta, EtaComputed: true, Threshold: th, Decision: DecisionSeparable})
		return nil
	}

	p.emit(Event{Region: r, Depth: depth, Eta: eta, EtaComputed: true, Threshold: th, Decision: DecisionSplit})

	first, second := split(r)
	return p.fork(ctx, buf, first, second, depth+1)
}

// split halves r across its longer side; squares are cut into top and
// bottom halves.
func split(r image.Rectangle) (image.Rectangle, image.Rectangle) {
	w, h := r.Dx(), r.Dy()
	if w > h {
		mid := r.Min.X + w/2
		return image.Rect(r.Min.X, r.Min.Y, mid, r.Max.Y), image.Rect(mid, r.Min.Y, r.Max.X, r.Max.Y)
	}
	mid := r.Min.Y + h/2
	return image.Rect(r.Min.X, r.Min.Y, r.Max.X, mid), image.Rect(r.Min.X, mid, r.Max.X, r.Max.Y)
}

// fork processes two disjoint sibling regions. The first one moves to its
// own goroutine when a worker slot is free.
func (p *Processor) fork(ctx context.Context, buf *models.PixelBuffer, first, second image.Rectangle, depth int) error {
	if p.sem == nil || !p.sem.TryAcquire(1) {
		if err := p.processRegion(ctx, buf, first, depth); err != nil {
			return err
		}
		return p.processRegion(ctx, buf, second, depth)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.sem.Release(1)
		return p.processRegion(gctx, buf, first, depth)
	})

	errSecond := p.processRegion(gctx, buf, second, depth)
	if err := g.Wait(); err != nil {
		return err
	}
	return errSecond
}

func (p *Processor) emit(e Event) {
	if p.observer != nil {
		p.observer.Observe(e)
	}
}

// Binarize runs the default configuration over buf.
func Binarize(buf *models.PixelBuffer) error {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		return err
	}
	return p.Process(buf)
}
