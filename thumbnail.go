package revista

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"image"
	"math"
	"strings"
)

// Thumbnail renders the first page to a PNG preview of the configured width.
// Hidden layers are skipped and per-run marks are honored. Images that
// cannot be resolved are left out of the preview.
func (c *Converter) Thumbnail(ctx context.Context, doc *Document) (png []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			png = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	width := c.cfg.thumbWidth
	height := int(math.Round(float64(width) * A4Height / A4Width))
	b := &thumbnailBuilder{doc: doc, store: c.store, log: c.log, scale: float64(width) / A4Width}
	page := b.build(&doc.Pages[0], width, height)

	c.mu.Lock()
	if c.shots == nil {
		c.shots = newRodScreenshotter(c.cfg.timeout)
	}
	shots := c.shots
	c.mu.Unlock()

	return shots.Capture(ctx, page, width, height)
}

// thumbnailBuilder lays a page out as absolutely positioned HTML, with CSS
// pixels equal to A4 points times scale.
type thumbnailBuilder struct {
	doc   *Document
	store AssetStore
	log   Logger
	scale float64
	sb    strings.Builder
}

func (b *thumbnailBuilder) build(page *Page, width, height int) string {
	b.sb.Reset()
	b.sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>`)
	b.sb.WriteString(`html,body{margin:0;padding:0;background:#fff}`)
	fmt.Fprintf(&b.sb, `.page{position:relative;width:%dpx;height:%dpx;overflow:hidden;background:#fff}`, width, height)
	b.sb.WriteString(`.item{position:absolute;box-sizing:border-box;overflow:hidden}`)
	b.sb.WriteString(`.item img{display:block;width:100%;height:100%;object-fit:fill}`)
	b.sb.WriteString(`.text{white-space:pre-wrap;word-wrap:break-word;line-height:1.2}`)
	b.sb.WriteString(`</style></head><body><div class="page">`)

	for _, layer := range page.Layers {
		if !layer.Visible {
			continue
		}
		for _, item := range layer.Items {
			b.item(item)
		}
	}

	b.sb.WriteString(`</div></body></html>`)
	return b.sb.String()
}

func (b *thumbnailBuilder) item(item Item) {
	switch it := item.(type) {
	case *Shape:
		if it.Rect.Empty() {
			return
		}
		fill := it.Fill
		if fill == "" {
			fill = DefaultShapeFill
		}
		b.open(it.Rect, "item", "background:"+ParseColor(fill).Hex())
		b.sb.WriteString(`</div>`)
	case *ImageFrame:
		b.image(it.Rect, it.AssetRef)
	case *LockedLogoStamp:
		if !isTemplateToken(it.AssetRef) {
			b.image(it.Rect, it.AssetRef)
		}
	case *TextFrame:
		b.text(it)
	}
}

// open starts a positioned div for rect.
func (b *thumbnailBuilder) open(r Rect, class, style string) {
	fmt.Fprintf(&b.sb, `<div class="%s" style="left:%spx;top:%spx;width:%spx;height:%spx`,
		class, b.px(r.X), b.px(r.Y), b.px(r.W), b.px(r.H))
	if style != "" {
		b.sb.WriteByte(';')
		b.sb.WriteString(html.EscapeString(style))
	}
	b.sb.WriteString(`">`)
}

func (b *thumbnailBuilder) px(v float64) string {
	return formatNum(v * b.scale)
}

func (b *thumbnailBuilder) image(r Rect, ref string) {
	if r.Empty() || ref == "" {
		return
	}
	src, err := b.dataURI(ref)
	if err != nil {
		b.log.Debug("thumbnail image skipped", String("ref", shortRef(ref)), Err(err))
		return
	}
	b.open(r, "item", "")
	fmt.Fprintf(&b.sb, `<img alt="" src="%s">`, html.EscapeString(src))
	b.sb.WriteString(`</div>`)
}

// dataURI returns ref as an inline data URI.
func (b *thumbnailBuilder) dataURI(ref string) (string, error) {
	for _, prefix := range dataURIPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return ref, nil
		}
	}
	if b.store == nil {
		return "", ErrNoAssetStore
	}
	data, err := b.store.Resolve(AssetID(ref))
	if err != nil {
		return "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetUnresolved, err)
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (b *thumbnailBuilder) text(f *TextFrame) {
	if f.Rect.Empty() {
		return
	}
	st := resolveTextStyle(b.doc, f)

	outer := ""
	if !IsTransparent(f.BG) {
		outer = "background:" + ParseColor(f.BG).Hex()
	}
	b.open(f.Rect, "item", outer)
	defer b.sb.WriteString(`</div>`)

	runs := f.Text.PlainRuns()
	if strings.TrimSpace(f.Text.PlainText()) == "" {
		return
	}
	inner, ok := Inset(f.Rect, framePadding(f))
	if !ok {
		return
	}
	inner.X -= f.Rect.X
	inner.Y -= f.Rect.Y

	base := []string{
		"font-family:" + cssFontFamily(st),
		"font-size:" + b.px(st.size) + "px",
		"color:" + ParseColor(st.color).Hex(),
	}
	if st.bold {
		base = append(base, "font-weight:bold")
	}
	b.open(inner, "item text", strings.Join(base, ";"))
	for _, r := range runs {
		b.run(r)
	}
	b.sb.WriteString(`</div>`)
}

func (b *thumbnailBuilder) run(r Run) {
	text := html.EscapeString(r.Text)
	if r.Marks == nil {
		b.sb.WriteString(text)
		return
	}
	var css []string
	m := r.Marks
	if m.Size > 0 {
		css = append(css, "font-size:"+b.px(m.Size)+"px")
	}
	if m.Color != "" {
		css = append(css, "color:"+ParseColor(m.Color).Hex())
	}
	if m.Font != "" {
		css = append(css, "font-family:"+cssFontFamily(textStyle{family: ResolveFontFamily(m.Font), css: m.Font}))
	}
	if m.Bold {
		css = append(css, "font-weight:bold")
	}
	if m.Italic {
		css = append(css, "font-style:italic")
	}
	if m.BG != "" && !IsTransparent(m.BG) {
		css = append(css, "background:"+ParseColor(m.BG).Hex())
	}
	if len(css) == 0 {
		b.sb.WriteString(text)
		return
	}
	fmt.Fprintf(&b.sb, `<span style="%s">%s</span>`, html.EscapeString(strings.Join(css, ";")), text)
}

// cssFontFamily quotes the requested family and appends the generic family
// of the base font it maps to.
func cssFontFamily(st textStyle) string {
	generic := "sans-serif"
	switch st.family {
	case Times:
		generic = "serif"
	case Courier:
		generic = "monospace"
	}
	name := strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ';', '{', '}', '<', '>', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(st.css))
	if name == "" {
		return generic
	}
	return "'" + name + "'," + generic
}

// formatNum prints v with at most two decimals.
func formatNum(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
