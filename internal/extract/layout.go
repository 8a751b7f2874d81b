package extract

import (
	"math"
	"strings"
)

// Layout tolerances, as fractions of the font size.
const (
	baselineTolerance = 0.5
	wordGap           = 0.15
	maxLineGap        = 3.0
	maxLeading        = 0.8 // vertical gap between lines of one block
)

// Span is a run of text with one font, size, color and flag set on one line.
type Span struct {
	Text  string
	Font  string
	Size  float64
	Color uint32 // 0xRRGGBB
	Flags int
	Rect  Rect
}

// Line is a sequence of spans sharing a baseline.
type Line struct {
	Spans []Span
	Rect  Rect
}

// Text concatenates the span texts.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is a paragraph-like group of consecutive lines.
type Block struct {
	Lines []Line
	Rect  Rect
}

// Text joins the lines with newlines.
func (b Block) Text() string {
	parts := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// CharCount returns the rune count of the block text, excluding line breaks.
func (b Block) CharCount() int {
	n := 0
	for _, l := range b.Lines {
		for _, s := range l.Spans {
			n += len([]rune(s.Text))
		}
	}
	return n
}

type lineBuilder struct {
	line Line
	base float64
	size float64
}

func groupBlocks(pieces []piece) []Block {
	lines := groupLines(pieces)

	var blocks []Block
	for _, l := range lines {
		if n := len(blocks); n > 0 && continuesBlock(blocks[n-1], l) {
			b := &blocks[n-1]
			b.Lines = append(b.Lines, l)
			b.Rect = b.Rect.Union(l.Rect)
			continue
		}
		blocks = append(blocks, Block{Lines: []Line{l}, Rect: l.Rect})
	}
	return blocks
}

func groupLines(pieces []piece) []Line {
	var lines []Line
	var cur *lineBuilder

	for _, p := range pieces {
		if cur != nil && continuesLine(cur, p) {
			appendPiece(&cur.line, p)
			cur.size = math.Max(cur.size, p.size)
			continue
		}
		if cur != nil {
			lines = append(lines, cur.line)
		}
		cur = &lineBuilder{
			line: Line{Spans: []Span{spanOf(p)}, Rect: p.rect},
			base: p.base,
			size: p.size,
		}
	}
	if cur != nil {
		lines = append(lines, cur.line)
	}
	return lines
}

func continuesLine(lb *lineBuilder, p piece) bool {
	size := math.Max(lb.size, p.size)
	if math.Abs(p.base-lb.base) > baselineTolerance*size {
		return false
	}
	gap := p.rect.X0 - lb.line.Rect.X1
	return gap >= -baselineTolerance*size && gap <= maxLineGap*size
}

func appendPiece(l *Line, p piece) {
	last := &l.Spans[len(l.Spans)-1]
	gap := p.rect.X0 - last.Rect.X1
	needSpace := gap > wordGap*p.size &&
		!strings.HasSuffix(last.Text, " ") &&
		!strings.HasPrefix(p.text, " ")

	if sameStyle(*last, p) {
		if needSpace {
			last.Text += " "
		}
		last.Text += p.text
		last.Rect = last.Rect.Union(p.rect)
	} else {
		s := spanOf(p)
		if needSpace {
			s.Text = " " + s.Text
		}
		l.Spans = append(l.Spans, s)
	}
	l.Rect = l.Rect.Union(p.rect)
}

func continuesBlock(b Block, l Line) bool {
	prev := b.Lines[len(b.Lines)-1]
	size := math.Max(lineSize(prev), lineSize(l))
	if size <= 0 {
		return false
	}
	gap := l.Rect.Y0 - prev.Rect.Y1
	if gap < -baselineTolerance*size || gap > maxLeading*size {
		return false
	}
	// Require horizontal overlap with the block so side-by-side columns stay apart.
	return l.Rect.X0 < b.Rect.X1 && l.Rect.X1 > b.Rect.X0
}

func lineSize(l Line) float64 {
	var size float64
	for _, s := range l.Spans {
		size = math.Max(size, s.Size)
	}
	return size
}

func sameStyle(s Span, p piece) bool {
	return s.Font == p.font &&
		math.Abs(s.Size-p.size) < 0.1 &&
		s.Color == p.color &&
		s.Flags == p.flags
}

func spanOf(p piece) Span {
	return Span{
		Text:  p.text,
		Font:  p.font,
		Size:  p.size,
		Color: p.color,
		Flags: p.flags,
		Rect:  p.rect,
	}
}
