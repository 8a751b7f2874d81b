package extract

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Text geometry approximations used when fonts lack metrics.
const (
	ascent        = 0.8
	descent       = 0.2
	fallbackWidth = 500.0 // glyph advance in 1/1000 em
	kernSpace     = 200.0 // negated TJ adjustment read as a word gap
	maxFormDepth  = 8
)

// Placement is one drawing of an image XObject.
type Placement struct {
	Name string // resource name, e.g. "Im0"
	Form string // enclosing form XObjects, e.g. "Fm0/Fm1"; empty at page level
	Rect Rect
}

// Key names the image within its page: the resource name scoped by the
// enclosing forms. Images returns its map under the same keys.
func (p Placement) Key() string {
	return scopedName(p.Form, p.Name)
}

func scopedName(form, name string) string {
	if form == "" {
		return name
	}
	return form + "/" + name
}

// piece is the output of one text-showing operator.
type piece struct {
	text  string
	font  string
	size  float64
	color uint32
	flags int
	rect  Rect
	base  float64 // baseline, top-left origin
}

type scanResult struct {
	pieces     []piece
	placements []Placement
}

type matrix [3][3]float64

var ident = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (x matrix) mul(y matrix) matrix {
	var z matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				z[i][j] += x[i][k] * y[k][j]
			}
		}
	}
	return z
}

func translate(tx, ty float64) matrix {
	return matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
}

// apply maps a point through m.
func (x matrix) apply(px, py float64) (float64, float64) {
	return px*x[0][0] + py*x[1][0] + x[2][0], px*x[0][1] + py*x[1][1] + x[2][1]
}

type gstate struct {
	Tc, Tw, Th, Tl, Tfs, Trise float64

	font     pdf.Font
	fontName string
	twoByte  bool
	enc      pdf.TextEncoding
	flags    int

	Tm, Tlm, CTM matrix
	fill         uint32
}

type rawEncoder struct{}

func (rawEncoder) Decode(raw string) string { return raw }

// scanner walks one page's content stream, including nested form XObjects.
type scanner struct {
	box    Rect
	g      gstate
	stack  []gstate
	res    pdf.Value
	form   string
	depth  int
	result scanResult
}

func scanPage(p pdf.Page) *scanResult {
	s := &scanner{
		box: mediaBox(p),
		g:   gstate{Th: 1, CTM: ident, Tm: ident, Tlm: ident, enc: rawEncoder{}},
		res: p.Resources(),
	}

	contents := p.V.Key("Contents")
	if contents.Kind() == pdf.Null {
		return &s.result
	}
	pdf.Interpret(contents, s.do)
	return &s.result
}

func (s *scanner) do(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}
	g := &s.g

	switch op {
	case "q":
		s.stack = append(s.stack, s.g)
	case "Q":
		if len(s.stack) > 0 {
			s.g = s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
		}
	case "cm":
		if m, ok := matrixArgs(args); ok {
			g.CTM = m.mul(g.CTM)
		}

	case "g":
		if len(args) == 1 {
			g.fill = packGray(args[0].Float64())
		}
	case "rg":
		if len(args) == 3 {
			g.fill = packRGB(args[0].Float64(), args[1].Float64(), args[2].Float64())
		}
	case "k":
		if len(args) == 4 {
			g.fill = packCMYK(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
		}
	case "cs":
		g.fill = 0
	case "sc", "scn":
		g.fill = colorFromOperands(args, g.fill)

	case "BT":
		g.Tm = ident
		g.Tlm = ident
	case "Tc":
		if len(args) == 1 {
			g.Tc = args[0].Float64()
		}
	case "Tw":
		if len(args) == 1 {
			g.Tw = args[0].Float64()
		}
	case "Tz":
		if len(args) == 1 {
			g.Th = args[0].Float64() / 100
		}
	case "TL":
		if len(args) == 1 {
			g.Tl = args[0].Float64()
		}
	case "Ts":
		if len(args) == 1 {
			g.Trise = args[0].Float64()
		}
	case "Tf":
		if len(args) == 2 {
			s.setFont(args[0].Name())
			g.Tfs = args[1].Float64()
		}
	case "Td", "TD":
		if len(args) == 2 {
			if op == "TD" {
				g.Tl = -args[1].Float64()
			}
			g.Tlm = translate(args[0].Float64(), args[1].Float64()).mul(g.Tlm)
			g.Tm = g.Tlm
		}
	case "Tm":
		if m, ok := matrixArgs(args); ok {
			g.Tm = m
			g.Tlm = m
		}
	case "T*":
		s.nextLine()

	case "Tj":
		if len(args) == 1 {
			s.show([]pdf.Value{args[0]})
		}
	case "'":
		if len(args) == 1 {
			s.nextLine()
			s.show([]pdf.Value{args[0]})
		}
	case "\"":
		if len(args) == 3 {
			g.Tw = args[0].Float64()
			g.Tc = args[1].Float64()
			s.nextLine()
			s.show([]pdf.Value{args[2]})
		}
	case "TJ":
		if len(args) == 1 && args[0].Kind() == pdf.Array {
			arr := args[0]
			items := make([]pdf.Value, arr.Len())
			for i := range items {
				items[i] = arr.Index(i)
			}
			s.show(items)
		}

	case "Do":
		if len(args) == 1 {
			s.drawXObject(args[0].Name())
		}
	}
}

func (s *scanner) nextLine() {
	s.g.Tlm = translate(0, -s.g.Tl).mul(s.g.Tlm)
	s.g.Tm = s.g.Tlm
}

func (s *scanner) setFont(name string) {
	g := &s.g
	g.font = pdf.Font{V: s.res.Key("Font").Key(name)}
	g.fontName = cleanFontName(g.font.BaseFont())
	g.twoByte = g.font.V.Key("Subtype").Name() == "Type0"
	g.flags = fontFlags(g.font, g.fontName)
	g.enc = safeEncoder(g.font)
}

// safeEncoder returns the font's text decoder, or a pass-through decoder if
// building it panics on a malformed CMap.
func safeEncoder(f pdf.Font) (enc pdf.TextEncoding) {
	defer func() {
		if recover() != nil {
			enc = rawEncoder{}
		}
	}()
	if e := f.Encoder(); e != nil {
		return e
	}
	return rawEncoder{}
}

// textRenderMatrix is the text space to device space transform for the
// current state.
func (s *scanner) textRenderMatrix() matrix {
	g := &s.g
	return matrix{{g.Tfs * g.Th, 0, 0}, {0, g.Tfs, 0}, {0, g.Trise, 1}}.mul(g.Tm).mul(g.CTM)
}

// show runs one text-showing operator over strings and TJ kerning numbers,
// emitting a single piece.
func (s *scanner) show(items []pdf.Value) {
	g := &s.g
	start := s.textRenderMatrix()

	var text strings.Builder
	for _, it := range items {
		switch it.Kind() {
		case pdf.String:
			raw := it.RawString()
			text.WriteString(s.decode(raw))
			s.advance(raw)
		case pdf.Integer, pdf.Real:
			adj := it.Float64()
			g.Tm = translate(-adj/1000*g.Tfs*g.Th, 0).mul(g.Tm)
			if adj <= -kernSpace && text.Len() > 0 {
				text.WriteByte(' ')
			}
		}
	}

	end := s.textRenderMatrix()
	out := norm.NFC.String(strings.ToValidUTF8(text.String(), ""))
	if out == "" {
		return
	}

	size := math.Hypot(start[1][0], start[1][1])
	if size <= 0 {
		size = math.Abs(g.Tfs)
	}
	x0, x1 := start[2][0], end[2][0]
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	baseline := s.box.Y1 - start[2][1]

	s.result.pieces = append(s.result.pieces, piece{
		text:  out,
		font:  g.fontName,
		size:  size,
		color: g.fill,
		flags: g.flags,
		base:  baseline,
		rect: Rect{
			X0: x0 - s.box.X0,
			Y0: baseline - ascent*size,
			X1: x1 - s.box.X0,
			Y1: baseline + descent*size,
		},
	})
}

func (s *scanner) decode(raw string) string {
	if s.g.enc == nil {
		return raw
	}
	return s.g.enc.Decode(raw)
}

// advance moves the text matrix past the glyphs of raw.
func (s *scanner) advance(raw string) {
	g := &s.g
	step := 1
	if g.twoByte {
		step = 2
	}
	for i := 0; i+step <= len(raw); i += step {
		w0 := fallbackWidth
		if !g.twoByte {
			if w := g.font.Width(int(raw[i])); w > 0 {
				w0 = w
			}
		}
		tx := w0/1000*g.Tfs + g.Tc
		if step == 1 && raw[i] == ' ' {
			tx += g.Tw
		}
		g.Tm = translate(tx*g.Th, 0).mul(g.Tm)
	}
}

// drawXObject records image placements and descends into form XObjects.
func (s *scanner) drawXObject(name string) {
	xobj := s.res.Key("XObject").Key(name)
	switch xobj.Key("Subtype").Name() {
	case "Image":
		s.result.placements = append(s.result.placements, Placement{
			Name: name,
			Form: s.form,
			Rect: s.unitSquare(),
		})
	case "Form":
		if s.depth >= maxFormDepth {
			return
		}
		saved, savedRes, savedStack, savedForm := s.g, s.res, s.stack, s.form
		if m, ok := arrayMatrix(xobj.Key("Matrix")); ok {
			s.g.CTM = m.mul(s.g.CTM)
		}
		if r := xobj.Key("Resources"); r.Kind() == pdf.Dict {
			s.res = r
		}
		s.stack = nil
		s.form = scopedName(s.form, name)
		s.depth++
		pdf.Interpret(xobj, s.do)
		s.depth--
		s.g, s.res, s.stack, s.form = saved, savedRes, savedStack, savedForm
	}
}

// unitSquare maps the image unit square through the CTM into page
// coordinates with a top-left origin.
func (s *scanner) unitSquare() Rect {
	ctm := s.g.CTM
	xs := [4]float64{}
	ys := [4]float64{}
	corners := [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, c := range corners {
		xs[i], ys[i] = ctm.apply(c[0], c[1])
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	return Rect{
		X0: minX - s.box.X0,
		Y0: s.box.Y1 - maxY,
		X1: maxX - s.box.X0,
		Y1: s.box.Y1 - minY,
	}
}

func matrixArgs(args []pdf.Value) (matrix, bool) {
	if len(args) != 6 {
		return ident, false
	}
	var m matrix
	for i := 0; i < 6; i++ {
		m[i/2][i%2] = args[i].Float64()
	}
	m[2][2] = 1
	return m, true
}

func arrayMatrix(v pdf.Value) (matrix, bool) {
	if v.Kind() != pdf.Array || v.Len() != 6 {
		return ident, false
	}
	args := make([]pdf.Value, 6)
	for i := range args {
		args[i] = v.Index(i)
	}
	return matrixArgs(args)
}
