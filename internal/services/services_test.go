package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"adaptive-otsu/internal/algorithms/adaptive"
	"adaptive-otsu/internal/config"
	"adaptive-otsu/internal/imageio"
	"adaptive-otsu/internal/logger"
	"adaptive-otsu/internal/models"
	"adaptive-otsu/internal/system"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	level, component, message string
	fields                    map[string]interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (r *recordingLogger) add(level, component, message string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{level, component, message, fields})
}

func (r *recordingLogger) Debug(c, m string, f map[string]interface{})   { r.add("debug", c, m, f) }
func (r *recordingLogger) Info(c, m string, f map[string]interface{})    { r.add("info", c, m, f) }
func (r *recordingLogger) Warning(c, m string, f map[string]interface{}) { r.add("warn", c, m, f) }
func (r *recordingLogger) Error(c string, err error, f map[string]interface{}) {
	r.add("error", c, err.Error(), f)
}

func (r *recordingLogger) byLevel(level string) []entry {
	var out []entry
	for _, e := range r.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

func nativeConfig() config.Config {
	cfg := config.Default()
	cfg.Input.Backend = config.BackendNative
	return cfg
}

func writeGray(t *testing.T, name string, fill func(x, y int) uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imageio.WriteFile(path, img, 95))
	return path
}

func TestRegionLogger(t *testing.T) {
	rec := &recordingLogger{}
	rl := NewRegionLogger(rec)

	rl.Observe(adaptive.Event{Region: image.Rect(0, 0, 64, 32), Depth: 1, Eta: 0.25, EtaComputed: true, Threshold: 90, Decision: adaptive.DecisionSplit})
	rl.Observe(adaptive.Event{Region: image.Rect(0, 0, 16, 16), Depth: 4, Decision: adaptive.DecisionTooSmall})

	require.Len(t, rec.entries, 2)
	split := rec.entries[0]
	assert.Equal(t, "debug", split.level)
	assert.Equal(t, "dividing region", split.message)
	assert.Equal(t, "[0,0] to [64,32]", split.fields["region"])
	assert.Equal(t, 0.25, split.fields["eta"])

	small := rec.entries[1]
	assert.Equal(t, "region too small, applying Otsu directly", small.message)
	assert.NotContains(t, small.fields, "eta")
	assert.Equal(t, "[0,0] to [16,16]", small.fields["region"])
	assert.Equal(t, "too_small", small.fields["decision"])
}

func TestLoadProcessSaveNative(t *testing.T) {
	in := writeGray(t, "in.png", func(x, y int) uint8 {
		if x < 32 {
			return 10
		}
		return 240
	})
	out := filepath.Join(t.TempDir(), "out.png")

	cfg := nativeConfig()
	cfg.Log.Regions = true
	rec := &recordingLogger{}

	images := NewImageService(cfg, false, rec)
	proc, err := NewProcessingService(cfg, rec)
	require.NoError(t, err)

	data, err := images.LoadImage(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "png", data.Format)
	assert.Equal(t, 1, data.Channels)
	assert.False(t, data.Converted)

	res, err := proc.ProcessImage(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, adaptive.StatsSnapshot{Regions: 1, Separable: 1}, res.Stats)
	assert.Equal(t, uint8(10), res.Threshold)
	assert.InDelta(t, 1.0, res.Eta, 1e-9)
	assert.Len(t, rec.byLevel("debug"), 2)
	assert.Len(t, rec.byLevel("info"), 2)

	require.NoError(t, images.SaveImage(context.Background(), out, data.Buffer))

	saved, err := images.LoadImage(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), saved.Buffer.At(0, 0))
	assert.Equal(t, uint8(255), saved.Buffer.At(63, 63))
}

func TestLoadColorNative(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	path := filepath.Join(t.TempDir(), "color.png")
	require.NoError(t, imageio.WriteFile(path, img, 95))

	cfg := nativeConfig()
	_, err := NewImageService(cfg, false, logger.Nop{}).LoadImage(context.Background(), path)
	assert.ErrorIs(t, err, models.ErrInvalidFormat)

	cfg.Input.Convert = true
	data, err := NewImageService(cfg, false, logger.Nop{}).LoadImage(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, data.Converted)
	assert.Equal(t, uint8(76), data.Buffer.At(0, 0))
	assert.Equal(t, uint8(255), data.Buffer.At(1, 0))
}

func TestSaveRejectsUnsupportedOutput(t *testing.T) {
	cfg := nativeConfig()
	images := NewImageService(cfg, false, logger.Nop{})
	path := filepath.Join(t.TempDir(), "out.gif")

	err := images.SaveImage(context.Background(), path, models.NewPixelBuffer(4, 4))
	assert.ErrorIs(t, err, imageio.ErrUnsupportedOutput)
	assert.NoFileExists(t, path)
}

func TestProcessCancelled(t *testing.T) {
	cfg := nativeConfig()
	proc, err := NewProcessingService(cfg, logger.Nop{})
	require.NoError(t, err)

	buf := models.NewPixelBuffer(64, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = proc.ProcessImage(ctx, &ImageData{Buffer: buf, Width: 64, Height: 64, Channels: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func availableBytes(n uint64) system.MemoryOption {
	return system.WithAvailable(func(context.Context) (uint64, error) { return n, nil })
}

// headerOnlyPNG writes the signature and IHDR chunk of a 64x64 gray PNG
// with no pixel data behind them.
func headerOnlyPNG(t *testing.T) string {
	t.Helper()
	var full bytes.Buffer
	require.NoError(t, png.Encode(&full, image.NewGray(image.Rect(0, 0, 64, 64))))

	path := filepath.Join(t.TempDir(), "header.png")
	require.NoError(t, os.WriteFile(path, full.Bytes()[:33], 0o644))
	return path
}

func TestLoadRefusesLargeImageBeforeDecoding(t *testing.T) {
	path := headerOnlyPNG(t)

	for _, backend := range []string{config.BackendNative, config.BackendOpenCV} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Input.Backend = backend

			// 64x64 gray needs 8192 bytes; half of 1000 is far below
			images := NewImageService(cfg, false, logger.Nop{})
			images.memory = system.NewMemoryChecker(cfg.Memory.Headroom, availableBytes(1000))

			data, err := images.LoadImage(context.Background(), path)
			assert.ErrorIs(t, err, system.ErrInsufficientMemory)
			assert.Nil(t, data)

			// with enough memory the missing pixel data is reached
			images.memory = system.NewMemoryChecker(cfg.Memory.Headroom, availableBytes(1<<30))
			_, err = images.LoadImage(context.Background(), path)
			require.Error(t, err)
			assert.NotErrorIs(t, err, system.ErrInsufficientMemory)
		})
	}
}

func TestLoadReservesOriginalCopy(t *testing.T) {
	path := writeGray(t, "in.png", func(x, y int) uint8 { return uint8(x) })
	cfg := nativeConfig()

	// limit 10000 bytes: 8192 for the buffer alone, 12288 with the copy
	tests := []struct {
		name         string
		keepOriginal bool
		wantErr      bool
	}{
		{"buffer only", false, false},
		{"buffer and original", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := NewImageService(cfg, tt.keepOriginal, logger.Nop{})
			images.memory = system.NewMemoryChecker(0.5, availableBytes(20000))

			data, err := images.LoadImage(context.Background(), path)
			if tt.wantErr {
				assert.ErrorIs(t, err, system.ErrInsufficientMemory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 64, data.Width)
		})
	}
}

func TestLoadColorRejectedFromHeader(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	path := filepath.Join(t.TempDir(), "color.png")
	require.NoError(t, imageio.WriteFile(path, img, 95))

	images := NewImageService(nativeConfig(), false, logger.Nop{})
	images.memory = system.NewMemoryChecker(0.5, availableBytes(1))

	// the format error comes first, before any memory is considered
	_, err := images.LoadImage(context.Background(), path)
	assert.ErrorIs(t, err, models.ErrInvalidFormat)
}
