package threshold

import (
	"image"

	"adaptive-otsu/internal/models"
)

// Apply binarizes region in place: values above t become IntensMax, the rest
// IntensMin. The region is clipped to the buffer.
func Apply(buf *models.PixelBuffer, region image.Rectangle, t uint8) {
	r := buf.Clip(region)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := buf.Row(y, r.Min.X, r.Max.X)
		for i, v := range row {
			if v > t {
				row[i] = models.IntensMax
			} else {
				row[i] = models.IntensMin
			}
		}
	}
}
