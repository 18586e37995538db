package imageio

import (
	"fmt"
	"image"
	"math"

	"github.com/gen2brain/go-fitz"
)

// PDFSource rasterizes pages of a PDF document.
type PDFSource struct {
	doc  *fitz.Document
	path string
}

func OpenPDF(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &PDFSource{doc: doc, path: path}, nil
}

func (s *PDFSource) PageCount() int {
	return s.doc.NumPage()
}

// RenderPage renders page (0-based) at dpi.
func (s *PDFSource) RenderPage(page, dpi int) (image.Image, error) {
	if page < 0 || page >= s.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range [0, %d) in %s", page, s.doc.NumPage(), s.path)
	}

	img, err := s.doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

// PageSize predicts the pixel size RenderPage returns for page at dpi,
// without rendering it.
func (s *PDFSource) PageSize(page, dpi int) (image.Point, error) {
	if page < 0 || page >= s.doc.NumPage() {
		return image.Point{}, fmt.Errorf("page %d out of range [0, %d) in %s", page, s.doc.NumPage(), s.path)
	}

	bound, err := s.doc.Bound(page)
	if err != nil {
		return image.Point{}, fmt.Errorf("failed to read page %d bounds: %w", page, err)
	}

	scale := float64(dpi) / 72
	return image.Pt(
		int(math.Ceil(float64(bound.Dx())*scale)),
		int(math.Ceil(float64(bound.Dy())*scale)),
	), nil
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
