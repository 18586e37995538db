// Package gui opens a desktop window showing input and result images.
package gui

import (
	"image"

	"adaptive-otsu/internal/gui/widgets"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
)

const AppID = "com.imageprocessing.adaptive-otsu"

// ShowPair blocks until the window showing original and result is closed.
func ShowPair(title string, original, result image.Image) {
	a := app.NewWithID(AppID)
	w := a.NewWindow(title)

	display := widgets.NewImageDisplay("Original", "Binarized")
	display.SetLeft(original)
	display.SetRight(result)

	w.SetContent(display.GetContainer())
	w.Resize(fyne.NewSize(2*widgets.ImageAreaWidth, widgets.ImageAreaHeight+40))
	w.CenterOnScreen()
	w.ShowAndRun()
}

// Show blocks until the window showing img is closed.
func Show(title string, img image.Image) {
	a := app.NewWithID(AppID)
	w := a.NewWindow(title)

	pane := canvas.NewImageFromImage(img)
	pane.FillMode = canvas.ImageFillOriginal
	pane.ScaleMode = canvas.ImageScalePixels

	w.SetContent(pane)
	w.CenterOnScreen()
	w.ShowAndRun()
}
