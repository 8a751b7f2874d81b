package revista

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Text defaults applied under the style table.
const (
	DefaultFontSize  = 13.0
	DefaultTextColor = "#111827"
	DefaultShapeFill = "#eef2ff"
	DefaultPadding   = 8.0
)

// RGB is a color with components in [0,1].
type RGB struct {
	R, G, B float64
}

// Black is the fallback for unparseable colors.
var Black = RGB{}

// ParseColor accepts #RGB, #RRGGBB, #RRGGBBAA and rgb()/rgba() with 0-255
// components. Alpha is ignored. Anything else yields black; parsing never
// fails.
func ParseColor(value string) RGB {
	s := strings.TrimSpace(value)
	lower := strings.ToLower(s)

	if strings.HasPrefix(lower, "rgb") {
		open := strings.IndexByte(s, '(')
		end := strings.IndexByte(s, ')')
		if open < 0 || end < open {
			return Black
		}
		parts := strings.Split(s[open+1:end], ",")
		if len(parts) < 3 {
			return Black
		}
		var c [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if err != nil || math.IsNaN(v) {
				return Black
			}
			c[i] = clamp01(v / 255)
		}
		return RGB{c[0], c[1], c[2]}
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Black
	}
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return Black
	}
	n, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Black
	}
	return RGB{
		R: float64(n>>16&0xff) / 255,
		G: float64(n>>8&0xff) / 255,
		B: float64(n&0xff) / 255,
	}
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	r, g, b := c.Bytes()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Bytes returns the components scaled to 0-255.
func (c RGB) Bytes() (r, g, b int) {
	return to255(c.R), to255(c.G), to255(c.B)
}

func to255(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// hexFromPacked formats a 0xRRGGBB integer as #rrggbb.
func hexFromPacked(c uint32) string {
	return fmt.Sprintf("#%06x", c&0xffffff)
}

// IsTransparent reports whether a background value means "no fill".
func IsTransparent(value string) bool {
	v := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "")
	return v == "" || v == "transparent" || v == "rgba(0,0,0,0)"
}

// BaseFont is one of the three standard PDF font families.
type BaseFont string

// Standard families.
const (
	Helvetica BaseFont = "Helvetica"
	Times     BaseFont = "Times"
	Courier   BaseFont = "Courier"
)

// ResolveFontFamily maps any family name onto a standard PDF family by
// case-insensitive substring. "cour" gives Courier, then "times", "serif" or
// "playfair" give Times, and anything else gives Helvetica. The mapping is
// lossy: "sans-serif" contains "serif" and lands on Times.
func ResolveFontFamily(name string) BaseFont {
	l := strings.ToLower(name)
	switch {
	case strings.Contains(l, "cour"):
		return Courier
	case strings.Contains(l, "times"), strings.Contains(l, "serif"), strings.Contains(l, "playfair"):
		return Times
	default:
		return Helvetica
	}
}

// textStyle is the effective frame-level style of a text frame.
type textStyle struct {
	family BaseFont
	css    string // original family name, for thumbnails
	size   float64
	color  string
	bold   bool
}

// resolveTextStyle merges item overrides over the named style over the
// defaults.
func resolveTextStyle(doc *Document, f *TextFrame) textStyle {
	st, _ := doc.TextStyle(f.StyleRef)

	size := DefaultFontSize
	switch {
	case f.FontSize > 0:
		size = f.FontSize
	case st.FontSize > 0:
		size = st.FontSize
	}

	color := DefaultTextColor
	switch {
	case f.Color != "":
		color = f.Color
	case st.Color != "":
		color = st.Color
	}

	family := st.FontFamily
	if f.FontFamily != "" {
		family = f.FontFamily
	}

	return textStyle{
		family: ResolveFontFamily(family),
		css:    family,
		size:   size,
		color:  color,
		bold:   st.FontWeight.Bold(),
	}
}

// framePadding returns the frame padding, defaulting to 8 when unset.
func framePadding(f *TextFrame) float64 {
	if f.Padding == nil {
		return DefaultPadding
	}
	return *f.Padding
}
