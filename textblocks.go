package revista

import (
	"image"
	"strings"
	"unicode"

	"github.com/larabashadi/Revista-2/internal/extract"
	"github.com/larabashadi/Revista-2/internal/raster"
)

// textBox is one extracted text block mapped onto the A4 canvas.
type textBox struct {
	rect      Rect
	text      string
	runs      []Run
	bg        string // sampled background, "" when not uniform
	chars     int
	printable int
}

// confidence is the share of printable characters in the block.
func (b textBox) confidence() float64 {
	if b.chars == 0 {
		return 0
	}
	return round2(float64(b.printable) / float64(b.chars))
}

// textStats counts characters across every block on a page, including
// blocks later dropped as blank.
type textStats struct {
	chars     int
	printable int
}

// ocrNeeded reports whether the text layer is missing or mostly garbage.
func (s textStats) ocrNeeded(l Limits) bool {
	if s.chars == 0 {
		return true
	}
	ratio := float64(s.printable) / float64(s.chars)
	return ratio < l.OCRPrintableRatio && s.chars > l.OCRMinChars
}

// isPrintable accepts printable ASCII, tab, newline and any letter.
func isPrintable(r rune) bool {
	return (r >= 32 && r <= 126) || r == '\t' || r == '\n' || unicode.IsLetter(r)
}

// pageSample is a low resolution raster used to sample colors behind text.
type pageSample struct {
	img          image.Image
	srcW, srcH   float64
	grid         int
	maxDeviation float64
}

// sampleMargin is how far outside a block, in points, the backdrop is probed.
const sampleMargin = 4.0

// background returns the uniform color behind r (source points), if any.
// Probes sit on a ring just outside the block so glyphs do not pollute them.
// The ring is kept at least two pixels clear of the block at the sample
// resolution.
func (s *pageSample) background(r extract.Rect) string {
	if s == nil || s.img == nil || !(s.srcW > 0) || !(s.srcH > 0) {
		return ""
	}
	b := s.img.Bounds()
	if b.Empty() {
		return ""
	}
	mx := max(sampleMargin, 2*s.srcW/float64(b.Dx()))
	my := max(sampleMargin, 2*s.srcH/float64(b.Dy()))

	c, ok := raster.SampleAround(s.img,
		(r.X0-mx)/s.srcW, (r.Y0-my)/s.srcH, (r.X1+mx)/s.srcW, (r.Y1+my)/s.srcH,
		s.grid, s.maxDeviation)
	if !ok {
		return ""
	}
	return RGB{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// buildTextBoxes converts extracted blocks into canvas boxes with runs.
// Blank blocks are dropped but still counted in the returned stats.
func buildTextBoxes(blocks []extract.Block, srcW, srcH float64, sample *pageSample) ([]textBox, textStats) {
	var (
		boxes []textBox
		stats textStats
	)
	for _, b := range blocks {
		box := textBox{}
		for j, line := range b.Lines {
			if j > 0 && len(box.runs) > 0 {
				box.runs = append(box.runs, Run{Text: "\n"})
			}
			for _, sp := range line.Spans {
				if sp.Text == "" {
					continue
				}
				for _, r := range sp.Text {
					box.chars++
					if isPrintable(r) {
						box.printable++
					}
				}
				box.runs = append(box.runs, spanRun(sp))
			}
		}
		stats.chars += box.chars
		stats.printable += box.printable

		box.text = strings.TrimSpace(b.Text())
		if box.text == "" {
			continue
		}
		box.rect = canvasRect(b.Rect, srcW, srcH)
		if box.bg = sample.background(b.Rect); box.bg != "" {
			for i := range box.runs {
				if box.runs[i].Marks != nil && box.runs[i].Marks.BG == "" {
					box.runs[i].Marks.BG = box.bg
				}
			}
		}
		boxes = append(boxes, box)
	}
	return boxes, stats
}

func spanRun(sp extract.Span) Run {
	return Run{
		Text: sp.Text,
		Marks: &Marks{
			Size:   round2(sp.Size),
			Color:  hexFromPacked(sp.Color),
			Font:   sp.Font,
			Bold:   sp.Flags&extract.FlagBold != 0,
			Italic: sp.Flags&extract.FlagItalic != 0,
		},
	}
}

// canvasRect maps a source rectangle onto A4 and rounds for stable output.
func canvasRect(r extract.Rect, srcW, srcH float64) Rect {
	s := ScaleRect(Rect{X: r.X0, Y: r.Y0, W: r.W(), H: r.H()}, srcW, srcH)
	return Rect{X: round2(s.X), Y: round2(s.Y), W: round2(s.W), H: round2(s.H)}
}
