package revista

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/larabashadi/Revista-2/internal/extract"
)

// Letter-sized source pages make the A4 mapping non-trivial.
const (
	letterW = 612.0
	letterH = 792.0
)

// fakePDF passes the size and header checks; the fake opener never parses it.
var fakePDF = append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("0"), 600)...)

// fakeSource is an in-memory pageSource.
type fakeSource struct {
	mu         sync.Mutex
	pages      int
	w, h       float64
	raster     image.Image
	renderErr  error
	blocks     map[int][]extract.Block
	placements map[int][]extract.Placement
	images     map[int]map[string]extract.Image
	scanErr    error
	imagesErr  error
	scanPanic  bool

	scales []float64
	closed bool
}

func newFakeSource(pages int) *fakeSource {
	return &fakeSource{
		pages:      pages,
		w:          letterW,
		h:          letterH,
		raster:     solidImage(60, 80, color.RGBA{255, 255, 255, 255}),
		blocks:     map[int][]extract.Block{},
		placements: map[int][]extract.Placement{},
		images:     map[int]map[string]extract.Image{},
	}
}

func (f *fakeSource) NumPages() int { return f.pages }

func (f *fakeSource) PageSize(int) (float64, float64, error) { return f.w, f.h, nil }

func (f *fakeSource) Render(_ int, scale float64) (image.Image, error) {
	f.mu.Lock()
	f.scales = append(f.scales, scale)
	f.mu.Unlock()
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return f.raster, nil
}

func (f *fakeSource) Scan(i int) ([]extract.Block, []extract.Placement, error) {
	if f.scanPanic {
		panic("corrupt content stream")
	}
	if f.scanErr != nil {
		return nil, nil, f.scanErr
	}
	return f.blocks[i], f.placements[i], nil
}

func (f *fakeSource) Images(i int) (map[string]extract.Image, error) {
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return f.images[i], nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// newTestConverter returns a converter backed by a memory store whose opener
// always yields src.
func newTestConverter(t *testing.T, src pageSource, opts ...Option) (*Converter, *MemoryAssetStore) {
	t.Helper()

	store := NewMemoryAssetStore()
	c, err := NewConverter(append([]Option{WithAssetStore(store)}, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	c.open = func([]byte) (pageSource, error) {
		if src == nil {
			return nil, errors.New("no source")
		}
		return src, nil
	}
	return c, store
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// span builds a span with its rect in source points.
func span(text string, x0, y0, x1, y1 float64, flags int, rgb uint32) extract.Span {
	return extract.Span{
		Text:  text,
		Font:  "Helvetica",
		Size:  12,
		Color: rgb,
		Flags: flags,
		Rect:  extract.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1},
	}
}

// block wraps lines of spans and computes the union rect.
func block(lines ...[]extract.Span) extract.Block {
	var b extract.Block
	for i, spans := range lines {
		l := extract.Line{Spans: spans, Rect: spans[0].Rect}
		for _, s := range spans[1:] {
			l.Rect = l.Rect.Union(s.Rect)
		}
		b.Lines = append(b.Lines, l)
		if i == 0 {
			b.Rect = l.Rect
		} else {
			b.Rect = b.Rect.Union(l.Rect)
		}
	}
	return b
}
