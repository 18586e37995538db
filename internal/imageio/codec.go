// Package imageio decodes and encodes images without OpenCV and renders
// PDF pages through MuPDF.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedOutput = errors.New("unsupported output format")

// Format derives the output format from a file name.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	case ".pdf":
		return "pdf"
	default:
		return "png"
	}
}

// Decode reads any registered raster format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

func ReadFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return Decode(f)
}

// ValidateOutput rejects paths whose format Encode cannot write.
func ValidateOutput(path string) error {
	switch format := Format(path); format {
	case "pdf", "gif", "webp":
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedOutput, format, path)
	}
	return nil
}

// ReadConfig reads only the header of path: dimensions, color model and
// format name.
func ReadConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg, format, nil
}

// Channels is the number of bytes per pixel a decoder allocates for model.
func Channels(model color.Model) int {
	switch model {
	case color.GrayModel:
		return 1
	case color.Gray16Model:
		return 2
	case color.YCbCrModel:
		return 3
	case color.RGBA64Model, color.NRGBA64Model:
		return 8
	default:
		return 4
	}
}

// Encode writes img as format. PDF, GIF and WebP are decode-only.
func Encode(w io.Writer, img image.Image, format string, jpegQuality int) error {
	switch format {
	case "pdf", "gif", "webp":
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, format)
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

func WriteFile(path string, img image.Image, jpegQuality int) (err error) {
	if err := ValidateOutput(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return Encode(f, img, Format(path), jpegQuality)
}
