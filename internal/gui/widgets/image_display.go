package widgets

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 500
	ImageAreaHeight = 400
)

// ImageDisplay shows two images side by side, each under a caption.
type ImageDisplay struct {
	container fyne.CanvasObject
	left      *canvas.Image
	right     *canvas.Image
	splitView *container.Split
}

func NewImageDisplay(leftCaption, rightCaption string) *ImageDisplay {
	display := &ImageDisplay{
		left:  newPane(),
		right: newPane(),
	}

	display.splitView = container.NewHSplit(
		container.NewBorder(widget.NewRichTextFromMarkdown("**"+leftCaption+"**"), nil, nil, nil, display.left),
		container.NewBorder(widget.NewRichTextFromMarkdown("**"+rightCaption+"**"), nil, nil, nil, display.right),
	)
	display.splitView.SetOffset(0.5)
	display.container = display.splitView
	return display
}

// newPane keeps binarized pixels crisp when the window scales them.
func newPane() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	return img
}

func (id *ImageDisplay) GetContainer() fyne.CanvasObject {
	return id.container
}

func (id *ImageDisplay) SetLeft(img image.Image) {
	id.left.Image = img
	id.left.Refresh()
}

func (id *ImageDisplay) SetRight(img image.Image) {
	id.right.Image = img
	id.right.Refresh()
}
