package safe

import (
	"fmt"

	"adaptive-otsu/internal/models"

	"gocv.io/x/gocv"
)

// MaxDimension caps either side of an image accepted for processing.
const MaxDimension = 32768

func ValidateMatForOperation(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return ValidateDimensions(mat.Cols(), mat.Rows(), operation)
}

// ValidateGrayMat accepts only single-channel 8-bit Mats.
func ValidateGrayMat(mat gocv.Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("%w: Mat has %d channels, type %d for operation: %s",
			models.ErrInvalidFormat, mat.Channels(), int(mat.Type()), operation)
	}

	return nil
}

// GrayConversionCode picks the CvtColor code that brings a Mat of the given
// channel count to one channel.
func GrayConversionCode(channels int) (gocv.ColorConversionCode, error) {
	switch channels {
	case 3:
		return gocv.ColorBGRToGray, nil
	case 4:
		return gocv.ColorBGRAToGray, nil
	default:
		return 0, fmt.Errorf("%w: gray conversion does not support %d channels", models.ErrInvalidFormat, channels)
	}
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}
