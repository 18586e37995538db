package models

import (
	"errors"
	"fmt"
	"image"
)

const (
	IntensMin = 0
	IntensMax = 255
)

var (
	// ErrInvalidFormat is returned when pixel data is not single-channel 8-bit.
	ErrInvalidFormat = errors.New("image is not single-channel 8-bit grayscale")
	// ErrInvalidBuffer is returned when buffer geometry does not match its storage.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
)

// PixelBuffer is a grayscale raster addressed by (x, y) with a row stride
// that may exceed the width. Pixel (x, y) lives at Pix[y*Stride+x].
type PixelBuffer struct {
	Pix    []uint8
	Width  int
	Height int
	Stride int
}

// NewPixelBuffer allocates a zeroed buffer with Stride == width.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
		Stride: width,
	}
}

// FromImage wraps the storage of a *image.Gray without copying, so the
// binarization writes straight into the caller's image. Any other image
// type is rejected with ErrInvalidFormat.
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidBuffer)
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidFormat, img)
	}

	b := gray.Bounds()
	offset := gray.PixOffset(b.Min.X, b.Min.Y)
	if b.Empty() {
		offset = 0
	}

	buf := &PixelBuffer{
		Pix:    gray.Pix[offset:],
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: gray.Stride,
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Image returns an *image.Gray sharing the buffer storage.
func (b *PixelBuffer) Image() *image.Gray {
	return &image.Gray{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Bounds is the full-image region.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Clip restricts a region to the buffer bounds. The result may be empty.
func (b *PixelBuffer) Clip(region image.Rectangle) image.Rectangle {
	return region.Intersect(b.Bounds())
}

// Row returns the pixels of row y in [x0, x1). Callers clip first.
func (b *PixelBuffer) Row(y, x0, x1 int) []uint8 {
	start := y * b.Stride
	return b.Pix[start+x0 : start+x1]
}

func (b *PixelBuffer) At(x, y int) uint8 {
	return b.Pix[y*b.Stride+x]
}

func (b *PixelBuffer) Set(x, y int, v uint8) {
	b.Pix[y*b.Stride+x] = v
}

// Clone copies the pixels into a new buffer with Stride == Width.
func (b *PixelBuffer) Clone() *PixelBuffer {
	c := NewPixelBuffer(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		copy(c.Pix[y*c.Stride:(y+1)*c.Stride], b.Row(y, 0, b.Width))
	}
	return c
}

// Validate checks the geometry against the backing slice.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if b.Stride < b.Width {
		return fmt.Errorf("%w: stride %d smaller than width %d", ErrInvalidBuffer, b.Stride, b.Width)
	}
	if b.Width == 0 || b.Height == 0 {
		return nil
	}
	need := (b.Height-1)*b.Stride + b.Width
	if len(b.Pix) < need {
		return fmt.Errorf("%w: need %d bytes for %dx%d stride %d, have %d",
			ErrInvalidBuffer, need, b.Width, b.Height, b.Stride, len(b.Pix))
	}
	return nil
}

// IsBinary reports whether every pixel is IntensMin or IntensMax.
func (b *PixelBuffer) IsBinary() bool {
	for y := 0; y < b.Height; y++ {
		for _, v := range b.Row(y, 0, b.Width) {
			if v != IntensMin && v != IntensMax {
				return false
			}
		}
	}
	return true
}

// Fill sets every pixel of region (clipped) to v.
func (b *PixelBuffer) Fill(region image.Rectangle, v uint8) {
	r := b.Clip(region)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Row(y, r.Min.X, r.Max.X)
		for i := range row {
			row[i] = v
		}
	}
}
