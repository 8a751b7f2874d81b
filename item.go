package revista

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ItemType is the "type" discriminator of an item.
type ItemType string

// Item types the renderer understands.
const (
	TypeShape           ItemType = "Shape"
	TypeImageFrame      ItemType = "ImageFrame"
	TypeTextFrame       ItemType = "TextFrame"
	TypeLockedLogoStamp ItemType = "LockedLogoStamp"
)

// Item roles set by the importer.
const (
	RolePDFBackground = "pdf_background"
	RoleImportedText  = "imported_text"
	RoleImportedImage = "imported_image"
)

// defaultRectSize replaces a missing rect width or height.
const defaultRectSize = 10

// Rect is an item rectangle in document points, origin top-left.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// UnmarshalJSON implements json.Unmarshaler. Missing or null w/h become 10.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var w struct {
		X, Y float64
		W, H *float64
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Rect{X: w.X, Y: w.Y, W: defaultRectSize, H: defaultRectSize}
	if w.W != nil {
		r.W = *w.W
	}
	if w.H != nil {
		r.H = *w.H
	}
	return nil
}

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool {
	return !(r.W > 0) || !(r.H > 0)
}

// Item is one of *Shape, *ImageFrame, *TextFrame, *LockedLogoStamp or
// *UnknownItem.
type Item interface {
	Type() ItemType
	Base() *ItemBase
	isItem()
}

// ItemBase carries the members every item has.
type ItemBase struct {
	ID     string `json:"id,omitempty"`
	Rect   Rect   `json:"rect"`
	Locked bool   `json:"locked,omitempty"`
	Role   string `json:"role,omitempty"`
	Extra  Extra  `json:"-"`
}

// Base returns the shared members.
func (b *ItemBase) Base() *ItemBase { return b }

func (*ItemBase) isItem() {}

// Shape is a filled rectangle.
type Shape struct {
	ItemBase
	Fill string `json:"fill,omitempty"`
}

// ImageFrame places an image asset or inline data URI, stretched to the rect.
type ImageFrame struct {
	ItemBase
	AssetRef string `json:"assetRef,omitempty"`
	FitMode  string `json:"fitMode,omitempty"`
	Crop     *Crop  `json:"crop,omitempty"`
}

// Crop is a normalized crop window kept for editors; the renderer ignores it.
type Crop struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// TextFrame is a box of plain or run-styled text.
type TextFrame struct {
	ItemBase
	Text       TextContent `json:"text"`
	StyleRef   string      `json:"styleRef,omitempty"`
	Padding    *float64    `json:"padding,omitempty"`
	FontFamily string      `json:"fontFamily,omitempty"`
	FontSize   float64     `json:"fontSize,omitempty"`
	Color      string      `json:"color,omitempty"`
	BG         string      `json:"bg,omitempty"`
}

// LockedLogoStamp is a club logo placeholder. Its AssetRef is a template
// token until ResolveLockedLogos replaces it.
type LockedLogoStamp struct {
	ItemBase
	AssetRef string `json:"assetRef,omitempty"`
}

// UnknownItem keeps an item of an unrecognized type verbatim.
type UnknownItem struct {
	ItemBase
	Kind string
	Raw  json.RawMessage
}

func (*Shape) Type() ItemType           { return TypeShape }
func (*ImageFrame) Type() ItemType      { return TypeImageFrame }
func (*TextFrame) Type() ItemType       { return TypeTextFrame }
func (*LockedLogoStamp) Type() ItemType { return TypeLockedLogoStamp }
func (u *UnknownItem) Type() ItemType   { return ItemType(u.Kind) }

// Run is a styled slice of text.
type Run struct {
	Text  string `json:"text"`
	Marks *Marks `json:"marks,omitempty"`
}

// Marks are per-run style overrides.
type Marks struct {
	Size   float64 `json:"size,omitempty"`
	Color  string  `json:"color,omitempty"`
	Font   string  `json:"font,omitempty"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	BG     string  `json:"bg,omitempty"`
}

// TextContent is either a plain string or a run sequence.
type TextContent struct {
	Plain string
	Runs  []Run
}

// PlainText returns the text with run boundaries removed.
func (t TextContent) PlainText() string {
	if t.Runs == nil {
		return t.Plain
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// PlainRuns returns the content as runs; plain text becomes one unmarked run.
func (t TextContent) PlainRuns() []Run {
	if t.Runs != nil {
		return t.Runs
	}
	if t.Plain == "" {
		return nil
	}
	return []Run{{Text: t.Plain}}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextContent) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*t = TextContent{}
		return nil
	case strings.HasPrefix(trimmed, "["):
		var runs []Run
		if err := json.Unmarshal(data, &runs); err != nil {
			return err
		}
		if runs == nil {
			runs = []Run{}
		}
		*t = TextContent{Runs: runs}
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TextContent{Plain: s}
		return nil
	default:
		// Numbers and booleans show up in hand-edited documents.
		*t = TextContent{Plain: trimmed}
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (t TextContent) MarshalJSON() ([]byte, error) {
	if t.Runs != nil {
		return marshalRaw(t.Runs)
	}
	return marshalRaw(t.Plain)
}

// decodeItem dispatches on the "type" member. Unknown types are kept raw.
func decodeItem(raw json.RawMessage) (Item, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	base := ItemBase{Rect: Rect{W: defaultRectSize, H: defaultRectSize}}

	switch ItemType(head.Type) {
	case TypeShape:
		type plain Shape
		v := plain{ItemBase: base}
		extra, err := decodeWithExtra(raw, &v, "type")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", head.Type, err)
		}
		v.Extra = extra
		s := Shape(v)
		return &s, nil

	case TypeImageFrame:
		type plain ImageFrame
		v := plain{ItemBase: base}
		extra, err := decodeWithExtra(raw, &v, "type")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", head.Type, err)
		}
		v.Extra = extra
		f := ImageFrame(v)
		return &f, nil

	case TypeTextFrame:
		type plain TextFrame
		v := plain{ItemBase: base}
		extra, err := decodeWithExtra(raw, &v, "type")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", head.Type, err)
		}
		v.Extra = extra
		f := TextFrame(v)
		return &f, nil

	case TypeLockedLogoStamp:
		type plain LockedLogoStamp
		v := plain{ItemBase: base}
		extra, err := decodeWithExtra(raw, &v, "type")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", head.Type, err)
		}
		v.Extra = extra
		s := LockedLogoStamp(v)
		return &s, nil

	default:
		u := &UnknownItem{Kind: head.Type, Raw: append(json.RawMessage(nil), raw...)}
		// Best effort: expose id and rect for warnings and thumbnails.
		_ = json.Unmarshal(raw, &u.ItemBase)
		u.Extra = nil
		return u, nil
	}
}

// MarshalJSON implements json.Marshaler.
func (s Shape) MarshalJSON() ([]byte, error) {
	type plain Shape
	return encodeWithExtra(plain(s), s.Extra, string(TypeShape))
}

// MarshalJSON implements json.Marshaler.
func (f ImageFrame) MarshalJSON() ([]byte, error) {
	type plain ImageFrame
	return encodeWithExtra(plain(f), f.Extra, string(TypeImageFrame))
}

// MarshalJSON implements json.Marshaler.
func (f TextFrame) MarshalJSON() ([]byte, error) {
	type plain TextFrame
	return encodeWithExtra(plain(f), f.Extra, string(TypeTextFrame))
}

// MarshalJSON implements json.Marshaler.
func (s LockedLogoStamp) MarshalJSON() ([]byte, error) {
	type plain LockedLogoStamp
	return encodeWithExtra(plain(s), s.Extra, string(TypeLockedLogoStamp))
}

// MarshalJSON implements json.Marshaler. The original bytes are emitted unchanged.
func (u UnknownItem) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}
