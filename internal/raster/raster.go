// Package raster renders PDF pages to bitmaps with MuPDF (github.com/gen2brain/go-fitz)
// and carries the bitmap helpers the importer needs: PNG encoding,
// downscaling, uniform-color sampling and embedded image normalization.
package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Sentinel errors for rasterization.
var (
	ErrOpen      = errors.New("cannot open PDF for rendering")
	ErrRender    = errors.New("cannot render page")
	ErrPageRange = errors.New("page index out of range")
	ErrScale     = errors.New("invalid render scale")
)

// pointsPerInch is the PDF user-space resolution; scale 1 renders one pixel per point.
const pointsPerInch = 72.0

// MaxScale bounds the render scale so one page cannot allocate unbounded memory.
const MaxScale = 8.0

// Document is a MuPDF document handle. It is not safe for concurrent use and
// must be closed.
type Document struct {
	doc   *fitz.Document
	pages int
}

// Open parses data with MuPDF.
func Open(data []byte) (d *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = fmt.Errorf("%w: %v", ErrOpen, r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrOpen)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return &Document{doc: doc, pages: doc.NumPage()}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.pages
}

// Render rasterizes page i (0-based) at scale pixels per point.
func (d *Document) Render(i int, scale float64) (img *image.RGBA, err error) {
	if i < 0 || i >= d.pages {
		return nil, fmt.Errorf("%w: %d (pages: %d)", ErrPageRange, i, d.pages)
	}
	if scale <= 0 || scale > MaxScale {
		return nil, fmt.Errorf("%w: %g", ErrScale, scale)
	}

	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: page %d: %v", ErrRender, i, r)
		}
	}()

	img, err = d.doc.ImageDPI(i, scale*pointsPerInch)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrRender, i, err)
	}
	return img, nil
}

// PageSize returns the page bounds in points, rounded to whole points.
func (d *Document) PageSize(i int) (w, h float64, err error) {
	if i < 0 || i >= d.pages {
		return 0, 0, fmt.Errorf("%w: %d (pages: %d)", ErrPageRange, i, d.pages)
	}
	b, err := d.doc.Bound(i)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: page %d: %v", ErrRender, i, err)
	}
	return float64(b.Dx()), float64(b.Dy()), nil
}

// Close releases the MuPDF handle. Safe to call more than once.
func (d *Document) Close() error {
	if d == nil || d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}
