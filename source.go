package revista

import (
	"bytes"
	"fmt"
	"image"

	"github.com/larabashadi/Revista-2/internal/extract"
	"github.com/larabashadi/Revista-2/internal/raster"
)

// minPDFSize rejects truncated uploads before any parser sees them.
const minPDFSize = 500

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

// pageSource is the read side of a source PDF. Page indices are 0-based and
// sizes are in source points.
type pageSource interface {
	NumPages() int
	PageSize(i int) (w, h float64, err error)
	Render(i int, scale float64) (image.Image, error)
	Scan(i int) ([]extract.Block, []extract.Placement, error)
	Images(i int) (map[string]extract.Image, error)
	Close() error
}

// sourceOpener opens PDF bytes. Tests substitute fakes.
type sourceOpener func(data []byte) (pageSource, error)

// checkPDF rejects empty, short and header-less input.
func checkPDF(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPDF
	}
	if len(data) < minPDFSize {
		return fmt.Errorf("%w: %d bytes", ErrNotPDF, len(data))
	}
	if !bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-")) {
		return fmt.Errorf("%w: missing %%PDF- header", ErrNotPDF)
	}
	return nil
}

// pdfSource renders with MuPDF and reads structure with the pure-Go parser.
// The structure parser is opened on first use, so background-only imports
// never depend on it.
type pdfSource struct {
	data   []byte
	ras    *raster.Document
	ex     *extract.Document
	exErr  error
	opened bool
}

func openPDFSource(data []byte) (pageSource, error) {
	ras, err := raster.Open(data)
	if err != nil {
		return nil, err
	}
	return &pdfSource{data: data, ras: ras}, nil
}

func (s *pdfSource) structure() (*extract.Document, error) {
	if !s.opened {
		s.opened = true
		s.ex, s.exErr = extract.Open(s.data)
	}
	return s.ex, s.exErr
}

func (s *pdfSource) NumPages() int {
	return s.ras.NumPages()
}

// PageSize prefers the MediaBox read by the structure parser and falls back
// to the MuPDF bounds.
func (s *pdfSource) PageSize(i int) (float64, float64, error) {
	if ex, err := s.structure(); err == nil && i < ex.NumPages() {
		if w, h, err := ex.PageSize(i); err == nil && w > 0 && h > 0 {
			return w, h, nil
		}
	}
	return s.ras.PageSize(i)
}

func (s *pdfSource) Render(i int, scale float64) (image.Image, error) {
	img, err := s.ras.Render(i, scale)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *pdfSource) Scan(i int) ([]extract.Block, []extract.Placement, error) {
	ex, err := s.structure()
	if err != nil {
		return nil, nil, err
	}
	return ex.Scan(i)
}

func (s *pdfSource) Images(i int) (map[string]extract.Image, error) {
	ex, err := s.structure()
	if err != nil {
		return nil, err
	}
	return ex.Images(i)
}

func (s *pdfSource) Close() error {
	return s.ras.Close()
}
