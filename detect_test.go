package revista

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/larabashadi/Revista-2/internal/extract"
)

func TestDetect_PageIndex(t *testing.T) {
	t.Parallel()

	for _, idx := range []int{-1, 2, 10} {
		c, _ := newTestConverter(t, newFakeSource(2))
		_, err := c.Detect(context.Background(), fakePDF, idx)
		if !errors.Is(err, ErrPageIndex) || !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Detect(%d) error = %v, want ErrPageIndex", idx, err)
		}
	}
}

func TestDetect_Text(t *testing.T) {
	t.Parallel()

	src := newFakeSource(3)
	src.raster = solidImage(40, 40, color.RGBA{0xee, 0xf2, 0xff, 0xff})
	src.blocks[1] = []extract.Block{
		block([]extract.Span{span("Crónica del partido", 61.2, 79.2, 306, 91.2, 0, 0x333333)}),
	}
	c, store := newTestConverter(t, src)

	ov, err := c.Detect(context.Background(), fakePDF, 1)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if ov.Meta.OCRNeeded {
		t.Error("Meta.OCRNeeded = true, want false for a clean text layer")
	}
	if ov.Meta.PageIndex != 1 || ov.Meta.PageCount != 3 {
		t.Errorf("Meta = %+v, want page 1 of 3", ov.Meta)
	}
	if len(ov.Text) != 1 {
		t.Fatalf("len(Text) = %d, want 1", len(ov.Text))
	}

	got := ov.Text[0]
	if got.ID != "dt-1-0" || got.Text != "Crónica del partido" {
		t.Errorf("Text[0] = %q %q", got.ID, got.Text)
	}
	if got.Confidence != 1 {
		t.Errorf("Confidence = %g, want 1", got.Confidence)
	}
	if got.X != 59.53 || got.W != 238.11 {
		t.Errorf("Text[0] x/w = %g/%g, want 59.53/238.11", got.X, got.W)
	}
	if got.BG != "#eef2ff" {
		t.Errorf("BG = %q, want #eef2ff", got.BG)
	}
	if len(got.Runs) != 1 || got.Runs[0].Marks.Color != "#333333" || got.Runs[0].Marks.BG != "#eef2ff" {
		t.Errorf("Runs = %+v", got.Runs)
	}
	if len(ov.Images) != 0 || store.Len() != 0 {
		t.Errorf("Images = %d, stored = %d, want none", len(ov.Images), store.Len())
	}
	if diffScale := src.scales; len(diffScale) != 1 || diffScale[0] != DefaultLimits().SampleScale {
		t.Errorf("render scales = %v, want one sample render", src.scales)
	}
}

func TestDetect_OCRHeuristic(t *testing.T) {
	t.Parallel()

	garbage := func(n int) []extract.Block {
		return []extract.Block{block([]extract.Span{span(strings.Repeat("\x01", n), 10, 10, 300, 22, 0, 0)})}
	}

	tests := []struct {
		name     string
		blocks   []extract.Block
		wantOCR  bool
		wantText int
	}{
		{name: "no text at all", blocks: nil, wantOCR: true},
		{name: "mostly unprintable and long", blocks: garbage(60), wantOCR: true},
		{name: "unprintable but short", blocks: garbage(40), wantOCR: false, wantText: 1},
		{
			name: "printable text",
			blocks: []extract.Block{
				block([]extract.Span{span(strings.Repeat("abc ", 30), 10, 10, 300, 22, 0, 0)}),
			},
			wantOCR:  false,
			wantText: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newFakeSource(1)
			src.blocks[0] = tt.blocks
			c, _ := newTestConverter(t, src)

			ov, err := c.Detect(context.Background(), fakePDF, 0)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if ov.Meta.OCRNeeded != tt.wantOCR {
				t.Errorf("Meta.OCRNeeded = %v, want %v", ov.Meta.OCRNeeded, tt.wantOCR)
			}
			if len(ov.Text) != tt.wantText {
				t.Errorf("len(Text) = %d, want %d", len(ov.Text), tt.wantText)
			}
		})
	}
}

func TestDetect_Images(t *testing.T) {
	t.Parallel()

	src := newFakeSource(1)
	photo := pngBytes(t, solidImage(2, 2, color.RGBA{200, 10, 10, 255}))
	var placements []extract.Placement
	for i := 0; i < 12; i++ {
		y := float64(i * 60)
		placements = append(placements, extract.Placement{Name: "Im3", Rect: extract.Rect{X0: 10, Y0: y, X1: 60, Y1: y + 50}})
	}
	src.placements[0] = placements
	src.images[0] = map[string]extract.Image{"Im3": {Ref: 42, Format: "png", Data: photo}}

	c, store := newTestConverter(t, src)
	ov, err := c.Detect(context.Background(), fakePDF, 0)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if got, want := len(ov.Images), DefaultLimits().DetectMaxOccurrencesPerImage; got != want {
		t.Fatalf("len(Images) = %d, want %d (capped)", got, want)
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
	for k, img := range ov.Images {
		if img.XRef != 42 || img.AssetID != ov.Images[0].AssetID {
			t.Errorf("Images[%d] = %+v", k, img)
		}
	}
	if ov.Images[3].ID != "di-0-42-3" {
		t.Errorf("Images[3].ID = %q, want di-0-42-3", ov.Images[3].ID)
	}
	if name := store.Name(ov.Images[0].AssetID); name != "import_img_x42.png" {
		t.Errorf("asset name = %q", name)
	}
}

func TestDetect_UnsupportedImageIsWarning(t *testing.T) {
	t.Parallel()

	src := newFakeSource(1)
	src.placements[0] = []extract.Placement{{Name: "Im0", Rect: extract.Rect{X0: 0, Y0: 0, X1: 200, Y1: 200}}}
	src.images[0] = map[string]extract.Image{"Im0": {Ref: 5, Format: "jpx", Data: []byte{0, 1, 2}}}

	c, store := newTestConverter(t, src)
	ov, err := c.Detect(context.Background(), fakePDF, 0)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(ov.Images) != 0 || store.Len() != 0 {
		t.Errorf("Images = %d, stored = %d, want none", len(ov.Images), store.Len())
	}
	if len(ov.Warnings) != 1 || !errors.Is(ov.Warnings[0], ErrExtraction) {
		t.Errorf("Warnings = %v, want one extraction warning", ov.Warnings)
	}
}

func TestDetect_ScanFailureNeedsOCR(t *testing.T) {
	t.Parallel()

	src := newFakeSource(1)
	src.scanErr = errors.New("unknown filter")
	c, _ := newTestConverter(t, src)

	ov, err := c.Detect(context.Background(), fakePDF, 0)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !ov.Meta.OCRNeeded || len(ov.Warnings) != 1 {
		t.Errorf("Overlay = %+v, want OCR needed and one warning", ov)
	}
}
