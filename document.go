package revista

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fixed canvas, in PDF points.
const (
	A4Width  = 595.2756
	A4Height = 841.8898
)

// SchemaVersion tags documents produced by this package.
const SchemaVersion = "magazine-doc@1"

// Well-known meta keys.
const (
	MetaSourcePDFAssetID = "source_pdf_asset_id"
	MetaImportPreset     = "import_preset"
	MetaImportMode       = "import_mode"
	MetaTitle            = "title"
)

// DefaultStyleName is the style used when a text frame names none or an
// unknown one.
const DefaultStyleName = "Body"

// Size is a page size in points.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Document is the editable magazine model shared by the renderer and the
// importer. Unknown JSON members are preserved at every level.
type Document struct {
	Schema   string         `json:"schema,omitempty"`
	PageSize Size           `json:"pageSize"`
	Pages    []Page         `json:"pages"`
	Styles   Styles         `json:"styles,omitzero"`
	Meta     map[string]any `json:"meta,omitempty"`
	Extra    Extra          `json:"-"`
}

// Page is an ordered stack of layers, painted bottom to top.
type Page struct {
	ID          string    `json:"id,omitempty"`
	SectionType string    `json:"sectionType,omitempty"`
	Layers      []Layer   `json:"layers"`
	Detected    *Detected `json:"detected,omitempty"`
	Extra       Extra     `json:"-"`
}

// Layer groups items. Hidden layers are kept but never painted; locked
// layers are painted normally.
type Layer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Visible bool   `json:"visible"`
	Locked  bool   `json:"locked"`
	Items   []Item `json:"items"`
	Extra   Extra  `json:"-"`
}

// Styles is the document's style-token table.
type Styles struct {
	TextStyles map[string]TextStyle `json:"textStyles,omitempty"`
	Extra      Extra                `json:"-"`
}

// TextStyle is one named text style.
type TextStyle struct {
	FontFamily string     `json:"fontFamily,omitempty"`
	FontSize   float64    `json:"fontSize,omitempty"`
	FontWeight FontWeight `json:"fontWeight,omitempty"`
	Color      string     `json:"color,omitempty"`
	Extra      Extra      `json:"-"`
}

// FontWeight is a CSS-style numeric weight. It decodes from numbers, numeric
// strings, "normal" and "bold".
type FontWeight int

// Common weights.
const (
	WeightNormal FontWeight = 400
	WeightBold   FontWeight = 700
)

// UnmarshalJSON implements json.Unmarshaler.
func (w *FontWeight) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*w = FontWeight(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fontWeight: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		*w = WeightNormal
	case "bold":
		*w = WeightBold
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("fontWeight: invalid value %q", s)
		}
		*w = FontWeight(n)
	}
	return nil
}

// Bold reports whether the weight renders as a bold face.
func (w FontWeight) Bold() bool {
	return w >= 600
}

// NewDocument returns an empty A4 document.
func NewDocument() *Document {
	return &Document{
		Schema:   SchemaVersion,
		PageSize: Size{W: A4Width, H: A4Height},
		Meta:     map[string]any{},
	}
}

// ParseDocument decodes document JSON.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return &doc, nil
}

// ReadDocument decodes document JSON from r.
func ReadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return ParseDocument(data)
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// Validate reports structural problems that make the document unrenderable.
func (d *Document) Validate() error {
	if d == nil || len(d.Pages) == 0 {
		return ErrNoPages
	}
	return nil
}

// MetaString returns a string meta value, or "".
func (d *Document) MetaString(key string) string {
	if d == nil || d.Meta == nil {
		return ""
	}
	s, _ := d.Meta[key].(string)
	return s
}

// SetMeta sets a meta value, allocating the map if needed.
func (d *Document) SetMeta(key string, value any) {
	if d.Meta == nil {
		d.Meta = make(map[string]any)
	}
	d.Meta[key] = value
}

// TextStyle looks up a named style with the Body fallback. The second result
// is false when neither exists.
func (d *Document) TextStyle(name string) (TextStyle, bool) {
	if name == "" {
		name = DefaultStyleName
	}
	if st, ok := d.Styles.TextStyles[name]; ok {
		return st, true
	}
	st, ok := d.Styles.TextStyles[DefaultStyleName]
	return st, ok
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*d = Document(p)
	d.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	if d.Pages == nil {
		d.Pages = []Page{}
	}
	return encodeWithExtra(plain(d), d.Extra, "")
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Page) UnmarshalJSON(data []byte) error {
	type plain Page
	var v plain
	extra, err := decodeWithExtra(data, &v)
	if err != nil {
		return err
	}
	*p = Page(v)
	p.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Page) MarshalJSON() ([]byte, error) {
	type plain Page
	if p.Layers == nil {
		p.Layers = []Layer{}
	}
	return encodeWithExtra(plain(p), p.Extra, "")
}

// layerWire mirrors Layer with undecoded items.
type layerWire struct {
	ID      string            `json:"id,omitempty"`
	Name    string            `json:"name,omitempty"`
	Visible bool              `json:"visible"`
	Locked  bool              `json:"locked"`
	Items   []json.RawMessage `json:"items"`
}

// UnmarshalJSON implements json.Unmarshaler. A missing "visible" means visible.
func (l *Layer) UnmarshalJSON(data []byte) error {
	w := layerWire{Visible: true}
	extra, err := decodeWithExtra(data, &w)
	if err != nil {
		return err
	}

	items := make([]Item, 0, len(w.Items))
	for i, raw := range w.Items {
		it, err := decodeItem(raw)
		if err != nil {
			return fmt.Errorf("layer %q item %d: %w", w.ID, i, err)
		}
		items = append(items, it)
	}

	*l = Layer{
		ID:      w.ID,
		Name:    w.Name,
		Visible: w.Visible,
		Locked:  w.Locked,
		Items:   items,
		Extra:   extra,
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Layer) MarshalJSON() ([]byte, error) {
	type plain Layer
	if l.Items == nil {
		l.Items = []Item{}
	}
	return encodeWithExtra(plain(l), l.Extra, "")
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Styles) UnmarshalJSON(data []byte) error {
	type plain Styles
	var v plain
	extra, err := decodeWithExtra(data, &v)
	if err != nil {
		return err
	}
	*s = Styles(v)
	s.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Styles) MarshalJSON() ([]byte, error) {
	type plain Styles
	return encodeWithExtra(plain(s), s.Extra, "")
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextStyle) UnmarshalJSON(data []byte) error {
	type plain TextStyle
	var v plain
	extra, err := decodeWithExtra(data, &v)
	if err != nil {
		return err
	}
	*t = TextStyle(v)
	t.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TextStyle) MarshalJSON() ([]byte, error) {
	type plain TextStyle
	return encodeWithExtra(plain(t), t.Extra, "")
}
