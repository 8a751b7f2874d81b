package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// Style flag bits.
const (
	FlagSuperscript = 1 << 0
	FlagItalic      = 1 << 1
	FlagSerif       = 1 << 2
	FlagMono        = 1 << 3
	FlagBold        = 1 << 4
)

// Font descriptor /Flags bits (PDF 32000-1, table 123).
const (
	descFixedPitch = 1 << 0
	descSerif      = 1 << 1
	descItalic     = 1 << 6
	descForceBold  = 1 << 18
)

// cleanFontName strips a subset prefix ("ABCDEF+Helvetica" -> "Helvetica").
func cleanFontName(name string) string {
	if i := strings.IndexByte(name, '+'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

// fontFlags derives style flags from the descriptor, then the font name.
func fontFlags(f pdf.Font, name string) int {
	var flags int

	desc := f.V.Key("FontDescriptor")
	if desc.Kind() == pdf.Null {
		// Type0 fonts keep the descriptor on the descendant.
		if kids := f.V.Key("DescendantFonts"); kids.Kind() == pdf.Array && kids.Len() > 0 {
			desc = kids.Index(0).Key("FontDescriptor")
		}
	}
	if desc.Kind() == pdf.Dict {
		df := desc.Key("Flags").Int64()
		if df&descFixedPitch != 0 {
			flags |= FlagMono
		}
		if df&descSerif != 0 {
			flags |= FlagSerif
		}
		if df&descItalic != 0 {
			flags |= FlagItalic
		}
		if df&descForceBold != 0 {
			flags |= FlagBold
		}
		if desc.Key("FontWeight").Float64() >= 600 {
			flags |= FlagBold
		}
		if desc.Key("ItalicAngle").Float64() != 0 {
			flags |= FlagItalic
		}
	}

	return flags | nameFlags(name)
}

// nameFlags guesses style flags from a PostScript font name.
func nameFlags(name string) int {
	lower := strings.ToLower(name)
	var flags int
	for _, w := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(lower, w) {
			flags |= FlagBold
			break
		}
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= FlagItalic
	}
	if strings.Contains(lower, "courier") || strings.Contains(lower, "mono") {
		flags |= FlagMono
	}
	if strings.Contains(lower, "times") || strings.Contains(lower, "serif") && !strings.Contains(lower, "sans") {
		flags |= FlagSerif
	}
	return flags
}
