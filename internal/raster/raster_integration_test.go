//go:build integration

package raster

import (
	"bytes"
	"errors"
	"testing"

	"codeberg.org/go-pdf/fpdf"
)

func twoPagePDF(t *testing.T) []byte {
	t.Helper()

	f := fpdf.New("P", "pt", "A4", "")
	for i := 0; i < 2; i++ {
		f.AddPage()
		f.SetFillColor(255, 0, 0)
		f.Rect(0, 0, 595, 842, "F")
	}
	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRender_Integration(t *testing.T) {
	doc, err := Open(twoPagePDF(t))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer func() { _ = doc.Close() }()

	if doc.NumPages() != 2 {
		t.Fatalf("NumPages() = %d, want 2", doc.NumPages())
	}

	img, err := doc.Render(1, 0.5)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if w := img.Bounds().Dx(); w < 295 || w > 299 {
		t.Errorf("Render(0.5) width = %d, want about 297", w)
	}

	c, ok := SampleAround(img, 0.1, 0.1, 0.9, 0.9, 5, 10)
	if !ok || c.R < 240 || c.G > 15 {
		t.Errorf("SampleAround() = %v/%v, want red", c, ok)
	}

	if _, err := doc.Render(2, 1); !errors.Is(err, ErrPageRange) {
		t.Errorf("Render(2) error = %v, want ErrPageRange", err)
	}
	if _, err := doc.Render(0, 0); !errors.Is(err, ErrScale) {
		t.Errorf("Render(scale 0) error = %v, want ErrScale", err)
	}
}

func TestOpen_Garbage_Integration(t *testing.T) {
	if _, err := Open([]byte("definitely not a pdf")); !errors.Is(err, ErrOpen) {
		t.Errorf("Open() error = %v, want ErrOpen", err)
	}
}
