package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"adaptive-otsu/internal/config"
	"adaptive-otsu/internal/imageio"
	"adaptive-otsu/internal/logger"
	"adaptive-otsu/internal/models"
	"adaptive-otsu/internal/opencv/conversion"
	"adaptive-otsu/internal/system"
)

// ImageData is a decoded input page ready for binarization.
type ImageData struct {
	Buffer    *models.PixelBuffer
	Path      string
	Format    string
	Width     int
	Height    int
	Channels  int
	Converted bool
	LoadTime  time.Duration
}

// ImageService handles image loading and saving for both decoding backends.
// Every load is sized from the file header and checked against available
// memory before the pixels are decoded.
type ImageService struct {
	input        config.InputConfig
	output       config.OutputConfig
	memory       *system.MemoryChecker
	keepOriginal bool
	log          logger.Logger
}

// NewImageService builds the service for cfg. keepOriginal reserves memory
// for a gray copy of the input kept next to the result.
func NewImageService(cfg config.Config, keepOriginal bool, log logger.Logger) *ImageService {
	return &ImageService{
		input:        cfg.Input,
		output:       cfg.Output,
		memory:       system.NewMemoryChecker(cfg.Memory.Headroom),
		keepOriginal: keepOriginal,
		log:          log,
	}
}

// LoadImage decodes path into an 8-bit buffer. PDF input is rendered and
// always reduced to luminance; other color input needs input.convert.
func (is *ImageService) LoadImage(ctx context.Context, path string) (*ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	data := &ImageData{Path: path, Format: imageio.Format(path)}

	var err error
	switch {
	case data.Format == "pdf":
		err = is.loadPDF(ctx, data)
	case is.input.Backend == config.BackendOpenCV:
		err = is.loadOpenCV(ctx, data)
	default:
		err = is.loadNative(ctx, data)
	}
	if err != nil {
		return nil, err
	}

	data.Width, data.Height = data.Buffer.Width, data.Buffer.Height
	data.LoadTime = time.Since(start)

	is.log.Debug("ImageService", "image loaded", map[string]interface{}{
		"path":      path,
		"backend":   is.input.Backend,
		"channels":  data.Channels,
		"converted": data.Converted,
		"load_ms":   data.LoadTime.Milliseconds(),
	})
	return data, nil
}

// checkMemory refuses a width×height image whose decode would not fit. A
// failing memory query only logs a warning.
func (is *ImageService) checkMemory(ctx context.Context, width, height, channels int) error {
	need := system.WorkingSet(width, height, channels, is.keepOriginal)
	err := is.memory.Check(ctx, need)
	if err == nil || errors.Is(err, system.ErrInsufficientMemory) {
		return err
	}

	is.log.Warning("ImageService", "memory check skipped", map[string]interface{}{
		"error": err.Error(),
	})
	return nil
}

func (is *ImageService) loadNative(ctx context.Context, data *ImageData) error {
	header, format, err := imageio.ReadConfig(data.Path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", data.Path, err)
	}
	data.Format = format
	data.Channels = imageio.Channels(header.ColorModel)

	if data.Channels != 1 && !is.input.Convert {
		return fmt.Errorf("%w: %s is not 8-bit gray, enable input.convert to use its luminance",
			models.ErrInvalidFormat, data.Path)
	}
	if err := is.checkMemory(ctx, header.Width, header.Height, data.Channels); err != nil {
		return err
	}

	img, _, err := imageio.ReadFile(data.Path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", data.Path, err)
	}

	if imageio.IsGray(img) {
		return is.setBuffer(data, img)
	}
	if !is.input.Convert {
		return fmt.Errorf("%w: %s decodes as %T, enable input.convert to use its luminance",
			models.ErrInvalidFormat, data.Path, img)
	}
	data.Converted = true
	return is.setBuffer(data, imageio.ToGray(img))
}

// loadOpenCV sizes the file with the Go header readers. Formats only
// OpenCV understands are loaded without the memory check.
func (is *ImageService) loadOpenCV(ctx context.Context, data *ImageData) error {
	header, _, err := imageio.ReadConfig(data.Path)
	if err == nil {
		err = is.checkMemory(ctx, header.Width, header.Height, imageio.Channels(header.ColorModel))
		if err != nil {
			return err
		}
	} else {
		is.log.Debug("ImageService", "header not readable, memory check skipped", map[string]interface{}{
			"path":  data.Path,
			"error": err.Error(),
		})
	}

	data.Buffer, data.Channels, err = conversion.ReadFile(data.Path, is.input.Convert)
	if err != nil {
		return err
	}
	data.Converted = data.Channels != 1
	return nil
}

func (is *ImageService) loadPDF(ctx context.Context, data *ImageData) error {
	src, err := imageio.OpenPDF(data.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	size, err := src.PageSize(is.input.Page, is.input.DPI)
	if err != nil {
		return err
	}
	// pages render as RGBA
	data.Channels = 4
	if err := is.checkMemory(ctx, size.X, size.Y, data.Channels); err != nil {
		return err
	}

	page, err := src.RenderPage(is.input.Page, is.input.DPI)
	if err != nil {
		return err
	}

	is.log.Info("ImageService", "PDF page rendered", map[string]interface{}{
		"page":  is.input.Page,
		"pages": src.PageCount(),
		"dpi":   is.input.DPI,
	})

	data.Converted = true
	return is.setBuffer(data, imageio.ToGray(page))
}

func (is *ImageService) setBuffer(data *ImageData, img image.Image) error {
	buf, err := models.FromImage(img)
	if err != nil {
		return err
	}
	data.Buffer = buf
	return nil
}

func (is *ImageService) SaveImage(ctx context.Context, path string, buf *models.PixelBuffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := imageio.ValidateOutput(path); err != nil {
		return err
	}

	var err error
	if is.input.Backend == config.BackendOpenCV {
		err = conversion.WriteFile(path, buf, is.output.JPEGQuality)
	} else {
		err = imageio.WriteFile(path, buf.Image(), is.output.JPEGQuality)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
