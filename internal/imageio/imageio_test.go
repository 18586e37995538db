package imageio

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := map[string]string{
		"out.png":      "png",
		"scan.JPG":     "jpeg",
		"page.tiff":    "tiff",
		"page.tif":     "tiff",
		"legacy.bmp":   "bmp",
		"book.pdf":     "pdf",
		"no-extension": "png",
	}
	for in, want := range tests {
		assert.Equal(t, want, Format(in), in)
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		c    color.Color
		want uint8
	}{
		{color.RGBA{0, 0, 0, 255}, 0},
		{color.RGBA{255, 255, 255, 255}, 255},
		{color.RGBA{255, 255, 254, 255}, 254},
		{color.RGBA{255, 0, 0, 255}, 76},
		{color.RGBA{0, 255, 0, 255}, 149},
		{color.RGBA{0, 0, 255, 255}, 29},
		{color.RGBA{0x66, 0x66, 0xff, 0xff}, 119},
		{color.Gray{Y: 200}, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Luma(tt.c), "%v", tt.c)
	}
}

func TestToGrayCopiesGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 6, 6))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	sub := src.SubImage(image.Rect(2, 2, 5, 4))

	gray := ToGray(sub)
	assert.Equal(t, image.Rect(0, 0, 3, 2), gray.Bounds())
	assert.Equal(t, []uint8{14, 15, 16, 20, 21, 22}, gray.Pix)

	gray.Pix[0] = 0
	assert.Equal(t, uint8(14), src.Pix[14])
}

func TestToGrayConvertsColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(1, 1, 3, 2))
	src.Set(1, 1, color.RGBA{255, 0, 0, 255})
	src.Set(2, 1, color.RGBA{0, 0, 255, 255})

	gray := ToGray(src)
	assert.Equal(t, []uint8{76, 29}, gray.Pix)
	assert.True(t, IsGray(gray))
	assert.False(t, IsGray(src))
}

func TestEncodeDecodeKeepsGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 3))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 255
		}
	}

	for _, format := range []string{"png", "tiff", "bmp"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, img, format, 95))

			decoded, got, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, format, got)
			assert.Equal(t, img.Pix, ToGray(decoded).Pix)
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Pix[5] = 255
	path := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, WriteFile(path, img, 95))

	decoded, format, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	require.IsType(t, &image.Gray{}, decoded)
	assert.Equal(t, img.Pix, decoded.(*image.Gray).Pix)

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestValidateOutput(t *testing.T) {
	for _, p := range []string{"a.png", "b.JPG", "c.tif", "d.bmp", "noext"} {
		assert.NoError(t, ValidateOutput(p), p)
	}
	for _, p := range []string{"a.pdf", "b.webp", "c.gif", "d.GIF"} {
		assert.ErrorIs(t, ValidateOutput(p), ErrUnsupportedOutput, p)
	}
}

func TestEncodeRefusesDecodeOnlyFormats(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))

	for _, format := range []string{"gif", "webp", "pdf"} {
		var buf bytes.Buffer
		assert.ErrorIs(t, Encode(&buf, img, format, 95), ErrUnsupportedOutput, format)
		assert.Zero(t, buf.Len(), format)
	}

	path := filepath.Join(t.TempDir(), "card.gif")
	assert.ErrorIs(t, WriteFile(path, img, 95), ErrUnsupportedOutput)
	assert.NoFileExists(t, path)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	gray := filepath.Join(dir, "gray.png")
	rgba := filepath.Join(dir, "rgba.png")
	require.NoError(t, WriteFile(gray, image.NewGray(image.Rect(0, 0, 7, 3)), 95))

	colored := image.NewRGBA(image.Rect(0, 0, 5, 2))
	colored.Set(0, 0, color.RGBA{R: 255, A: 128})
	require.NoError(t, WriteFile(rgba, colored, 95))

	cfg, format, err := ReadConfig(gray)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 7, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
	assert.Equal(t, 1, Channels(cfg.ColorModel))

	cfg, _, err = ReadConfig(rgba)
	require.NoError(t, err)
	assert.Equal(t, 4, Channels(cfg.ColorModel))

	_, _, err = ReadConfig(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
