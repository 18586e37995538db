package conversion

import (
	"fmt"

	"adaptive-otsu/internal/models"
	"adaptive-otsu/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ReadFile loads an image with OpenCV and reports the channel count of the
// file. With convert set, color and 16-bit images are reduced to 8-bit
// gray; otherwise they are rejected with models.ErrInvalidFormat.
func ReadFile(path string, convert bool) (*models.PixelBuffer, int, error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()

	if err := safe.ValidateMatForOperation(mat, "read "+path); err != nil {
		return nil, 0, fmt.Errorf("failed to read image: %w", err)
	}

	channels := mat.Channels()
	if mat.Type() == gocv.MatTypeCV8UC1 {
		buf, err := MatToBuffer(mat)
		return buf, channels, err
	}
	if !convert {
		return nil, channels, fmt.Errorf("%w: %s has %d channels, type %d",
			models.ErrInvalidFormat, path, channels, int(mat.Type()))
	}

	gray, err := ConvertToGrayscale(mat)
	if err != nil {
		return nil, channels, err
	}
	defer gray.Close()

	buf, err := MatToBuffer(gray)
	return buf, channels, err
}

// ConvertToGrayscale returns a new CV_8UC1 Mat. The caller closes it.
func ConvertToGrayscale(src gocv.Mat) (gocv.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return gocv.NewMat(), fmt.Errorf("validation failed: %w", err)
	}

	gray := src.Clone()
	if src.Channels() != 1 {
		code, err := safe.GrayConversionCode(src.Channels())
		if err != nil {
			gray.Close()
			return gocv.NewMat(), err
		}
		dst := gocv.NewMat()
		gocv.CvtColor(gray, &dst, code)
		gray.Close()
		gray = dst
	}

	switch gray.Type() {
	case gocv.MatTypeCV8UC1:
		return gray, nil
	case gocv.MatTypeCV16UC1:
		dst := gocv.NewMat()
		gray.ConvertToWithParams(&dst, gocv.MatTypeCV8UC1, 1.0/257.0, 0)
		gray.Close()
		return dst, nil
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("%w: unsupported Mat type %d", models.ErrInvalidFormat, int(src.Type()))
	}
}

// MatToBuffer copies a CV_8UC1 Mat into a new PixelBuffer.
func MatToBuffer(mat gocv.Mat) (*models.PixelBuffer, error) {
	if err := safe.ValidateGrayMat(mat, "Mat to buffer"); err != nil {
		return nil, err
	}

	if !mat.IsContinuous() {
		c := mat.Clone()
		defer c.Close()
		mat = c
	}

	buf := &models.PixelBuffer{
		Pix:    mat.ToBytes(),
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Stride: mat.Cols(),
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// BufferToMat copies buf into a new CV_8UC1 Mat. The caller closes it.
func BufferToMat(buf *models.PixelBuffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	if err := safe.ValidateDimensions(buf.Width, buf.Height, "buffer to Mat"); err != nil {
		return gocv.NewMat(), err
	}

	compact := buf
	if buf.Stride != buf.Width {
		compact = buf.Clone()
	}

	mat, err := gocv.NewMatFromBytes(compact.Height, compact.Width, gocv.MatTypeCV8UC1, compact.Pix[:compact.Width*compact.Height])
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("Mat creation failed: %w", err)
	}
	return mat, nil
}

// WriteFile encodes buf with OpenCV; the format follows the extension.
func WriteFile(path string, buf *models.PixelBuffer, jpegQuality int) error {
	mat, err := BufferToMat(buf)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWriteWithParams(path, mat, []int{int(gocv.IMWriteJpegQuality), jpegQuality}) {
		return fmt.Errorf("failed to write image: %s", path)
	}
	return nil
}
