package imageio

import (
	"image"
	"image/color"
)

// Luma weights of the grayscale conversion; the weighted sum is truncated.
const (
	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140
)

// Luma converts one color to its 8-bit luminance. Neutral colors keep
// their level exactly.
func Luma(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	if r == g && g == b {
		return uint8(r >> 8)
	}
	y := lumaR*float64(r>>8) + lumaG*float64(g>>8) + lumaB*float64(b>>8)
	if y > 255 {
		y = 255
	}
	return uint8(y)
}

// IsGray reports whether img already stores one 8-bit channel.
func IsGray(img image.Image) bool {
	_, ok := img.(*image.Gray)
	return ok
}

// ToGray returns img as an *image.Gray with origin (0, 0). A gray input is
// copied so the caller's image is never binarized by accident.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(gray.Pix[y*gray.Stride:(y+1)*gray.Stride], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return gray
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			row[x-b.Min.X] = Luma(img.At(x, y))
		}
	}
	return gray
}
