package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Sentinel errors for extraction.
var (
	ErrOpen      = errors.New("cannot open PDF")
	ErrPageRange = errors.New("page index out of range")
	ErrContent   = errors.New("cannot interpret page content")
)

// Default page size used when a page has no usable MediaBox (US Letter).
const (
	defaultPageW = 612.0
	defaultPageH = 792.0
)

// Rect is an axis-aligned rectangle with a top-left origin.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// W returns the rectangle width.
func (r Rect) W() float64 { return r.X1 - r.X0 }

// H returns the rectangle height.
func (r Rect) H() float64 { return r.Y1 - r.Y0 }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Document is an opened PDF. It is not safe for concurrent use.
type Document struct {
	raw    []byte
	reader *pdf.Reader
	images *imageIndex
}

// Open parses data as a PDF. Parser panics on malformed input surface as ErrOpen.
func Open(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrOpen, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if reader.NumPage() < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrOpen)
	}
	return &Document{raw: data, reader: reader}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageSize returns the MediaBox width and height of page i (0-based).
func (d *Document) PageSize(i int) (w, h float64, err error) {
	p, err := d.page(i)
	if err != nil {
		return 0, 0, err
	}
	box := mediaBox(p)
	return box.W(), box.H(), nil
}

func (d *Document) page(i int) (pdf.Page, error) {
	if i < 0 || i >= d.NumPages() {
		return pdf.Page{}, fmt.Errorf("%w: %d (pages: %d)", ErrPageRange, i, d.NumPages())
	}
	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("%w: %d", ErrPageRange, i)
	}
	return p, nil
}

// inherited looks key up on the page and then on its ancestors in the page tree.
func inherited(p pdf.Page, key string) pdf.Value {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return pdf.Value{}
}

// mediaBox returns the page box in PDF user space (bottom-left origin).
func mediaBox(p pdf.Page) Rect {
	box := inherited(p, "MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return Rect{X1: defaultPageW, Y1: defaultPageH}
	}
	r := Rect{
		X0: box.Index(0).Float64(),
		Y0: box.Index(1).Float64(),
		X1: box.Index(2).Float64(),
		Y1: box.Index(3).Float64(),
	}
	if r.X1 < r.X0 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y1 < r.Y0 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	if r.W() <= 0 || r.H() <= 0 {
		return Rect{X1: defaultPageW, Y1: defaultPageH}
	}
	return r
}

// Blocks returns the text blocks of page i in content-stream order.
func (d *Document) Blocks(i int) ([]Block, error) {
	res, err := d.scan(i)
	if err != nil {
		return nil, err
	}
	return groupBlocks(res.pieces), nil
}

// Placements returns every image XObject drawn on page i.
func (d *Document) Placements(i int) ([]Placement, error) {
	res, err := d.scan(i)
	if err != nil {
		return nil, err
	}
	return res.placements, nil
}

// Scan returns both text blocks and image placements of page i from a single
// pass over the content stream.
func (d *Document) Scan(i int) ([]Block, []Placement, error) {
	res, err := d.scan(i)
	if err != nil {
		return nil, nil, err
	}
	return groupBlocks(res.pieces), res.placements, nil
}

func (d *Document) scan(i int) (res *scanResult, err error) {
	p, err := d.page(i)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: page %d: %v", ErrContent, i, r)
		}
	}()

	return scanPage(p), nil
}
