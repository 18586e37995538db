// Package sample builds synthetic test images.
package sample

import (
	"fmt"
	"image"
	"image/color"

	"adaptive-otsu/internal/imageio"

	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

// SwatchSize is the edge length the 2×2 swatch is usually shown at.
const SwatchSize = 300

var swatchColors = [2][2]color.RGBA{
	{{R: 0xff, G: 0xcc, B: 0xcc, A: 0xff}, {R: 0x66, G: 0x66, B: 0xff, A: 0xff}},
	{{R: 0xe5, G: 0xff, B: 0xcc, A: 0xff}, {R: 0xff, G: 0xff, B: 0x00, A: 0xff}},
}

// Swatch returns a 2×2 color image, one color per pixel, row by row.
func Swatch() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y, row := range swatchColors {
		for x, c := range row {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Scaled enlarges img to size×size without blending neighbouring pixels.
func Scaled(img image.Image, size int) image.Image {
	return resize.Resize(uint(size), uint(size), img, resize.NearestNeighbor)
}

// Illumination is the light level reaching column x of a card width pixels
// wide when gradient of the light is lost from left to right.
func Illumination(x, width int, gradient float64) float64 {
	if width <= 1 {
		return 255
	}
	return 255 * (1 - gradient*float64(x)/float64(width-1))
}

// darkReflectance is the share of light reflected by a dark module.
const darkReflectance = 0.25

// QRCard renders content as a size×size QR code lit by a horizontal
// illumination ramp. gradient must be in [0, 1).
func QRCard(content string, size int, gradient float64) (*image.Gray, error) {
	if gradient < 0 || gradient >= 1 {
		return nil, fmt.Errorf("gradient must be between 0 and 1, got: %f", gradient)
	}

	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	code := q.Image(size)
	b := code.Bounds()
	card := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			light := Illumination(x, b.Dx(), gradient)
			if imageio.Luma(code.At(b.Min.X+x, b.Min.Y+y)) < 128 {
				light *= darkReflectance
			}
			card.SetGray(x, y, color.Gray{Y: uint8(light)})
		}
	}
	return card, nil
}
