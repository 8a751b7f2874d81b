package revista

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// Watermark geometry and tint.
const (
	watermarkCaption  = "VISTA PREVIA · UPGRADE A PRO"
	watermarkSize     = 34.0
	watermarkGray     = 0.7
	watermarkBand     = 40.0
	watermarkTint     = 0.03
	watermarkFallback = 0.97
	lineHeightFactor  = 1.2
	producerName      = "revista"
	defaultImageAlias = "img"
)

// Inline image prefixes accepted in assetRef.
var dataURIPrefixes = []string{
	"data:image/png;base64,",
	"data:image/jpeg;base64,",
	"data:image/jpg;base64,",
}

// Render paints doc into a PDF. Every page is A4 regardless of its contents.
// A bad item never fails the call: it is skipped and reported in
// RenderResult.Warnings. Only a structurally invalid document or a writer
// failure is fatal.
func (c *Converter) Render(ctx context.Context, doc *Document, opts RenderOptions) (res *RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: internal error: %v", ErrPDFOutput, r)
		}
	}()

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Quality.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	r := newPDFRenderer(doc, c.store, c.log, c.now())
	r.setInfo(opts.Title)

	for i := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageStart := time.Now()
		r.renderPage(i, &doc.Pages[i])
		if opts.Watermark {
			r.watermark(i)
		}
		c.log.Debug("page rendered", Int("page", i+1), Duration("elapsed", time.Since(pageStart)))
	}

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFOutput, err)
	}

	for _, w := range r.warnings {
		c.log.Warn("item skipped", Int("page", w.Page+1), String("item", w.ItemID), Err(w.Err))
	}
	c.log.Info("document rendered",
		Int("pages", len(doc.Pages)),
		Int("warnings", len(r.warnings)),
		String("quality", string(opts.Quality)),
		Duration("elapsed", time.Since(start)))

	return &RenderResult{PDF: buf.Bytes(), Pages: len(doc.Pages), Warnings: r.warnings}, nil
}

// pdfRenderer holds the state of one Render call.
type pdfRenderer struct {
	doc      *Document
	store    AssetStore
	log      Logger
	pdf      *fpdf.Fpdf
	images   map[string]registered
	warnings []Warning
}

// registered caches the outcome of loading one image reference.
type registered struct {
	name string
	err  error
}

func newPDFRenderer(doc *Document, store AssetStore, log Logger, now time.Time) *pdfRenderer {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: A4Width, Ht: A4Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)

	return &pdfRenderer{
		doc:    doc,
		store:  store,
		log:    log,
		pdf:    pdf,
		images: make(map[string]registered),
	}
}

func (r *pdfRenderer) setInfo(title string) {
	if title == "" {
		title = r.doc.MetaString(MetaTitle)
	}
	if title != "" {
		r.pdf.SetTitle(title, true)
	}
	r.pdf.SetCreator(producerName, true)
	r.pdf.SetProducer(producerName, true)
}

func (r *pdfRenderer) warn(page int, id string, err error) {
	r.warnings = append(r.warnings, Warning{Page: page, ItemID: id, Err: err})
}

// renderPage adds one A4 page and paints the visible layers bottom to top.
func (r *pdfRenderer) renderPage(index int, page *Page) {
	r.pdf.AddPageFormat("P", fpdf.SizeType{Wd: A4Width, Ht: A4Height})
	for _, layer := range page.Layers {
		if !layer.Visible {
			continue
		}
		for _, item := range layer.Items {
			r.renderItem(index, item)
		}
	}
}

// renderItem draws one item and converts any failure into a warning. The
// writer error state is cleared so later items still render.
func (r *pdfRenderer) renderItem(page int, item Item) {
	if item == nil {
		return
	}
	id := item.Base().ID

	defer func() {
		if rec := recover(); rec != nil {
			r.pdf.ClearError()
			r.warn(page, id, fmt.Errorf("%w: %v", ErrItemFailed, rec))
		}
	}()

	var err error
	switch it := item.(type) {
	case *Shape:
		err = r.drawShape(it)
	case *ImageFrame:
		err = r.drawImage(it.Rect, it.AssetRef)
	case *LockedLogoStamp:
		if it.AssetRef == "" || isTemplateToken(it.AssetRef) {
			return
		}
		err = r.drawImage(it.Rect, it.AssetRef)
	case *TextFrame:
		err = r.drawText(it)
	default:
		r.log.Debug("unknown item ignored", String("type", string(item.Type())), String("item", id))
		return
	}

	if err == nil && r.pdf.Err() {
		err = fmt.Errorf("%w: %v", ErrItemFailed, r.pdf.Error())
	}
	if err != nil {
		r.pdf.ClearError()
		r.warn(page, id, err)
	}
}

func (r *pdfRenderer) drawShape(s *Shape) error {
	if s.Rect.Empty() {
		return fmt.Errorf("%w: shape %gx%g", ErrGeometryInvalid, s.Rect.W, s.Rect.H)
	}
	fill := s.Fill
	if fill == "" {
		fill = DefaultShapeFill
	}
	cr, cg, cb := ParseColor(fill).Bytes()
	r.pdf.SetFillColor(cr, cg, cb)
	r.pdf.Rect(s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H, "F")
	return nil
}

// drawImage stretches the referenced image over rect.
func (r *pdfRenderer) drawImage(rect Rect, ref string) error {
	if rect.Empty() {
		return fmt.Errorf("%w: image %gx%g", ErrGeometryInvalid, rect.W, rect.H)
	}
	name, err := r.registerImage(ref)
	if err != nil {
		return err
	}
	r.pdf.ImageOptions(name, rect.X, rect.Y, rect.W, rect.H, false,
		fpdf.ImageOptions{AllowNegativePosition: true}, 0, "")
	return nil
}

// registerImage loads ref once per call and registers it with the writer.
func (r *pdfRenderer) registerImage(ref string) (string, error) {
	if reg, ok := r.images[ref]; ok {
		return reg.name, reg.err
	}

	name, err := r.loadAndRegister(ref)
	r.images[ref] = registered{name: name, err: err}
	return name, err
}

func (r *pdfRenderer) loadAndRegister(ref string) (string, error) {
	data, err := r.loadImage(ref)
	if err != nil {
		return "", err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %s: undecodable image: %v", ErrAssetUnresolved, shortRef(ref), err)
	}
	if format == "jpeg" {
		format = "jpg"
	}

	name := fmt.Sprintf("%s%d", defaultImageAlias, len(r.images))
	r.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: format}, bytes.NewReader(data))
	if r.pdf.Err() {
		err := r.pdf.Error()
		r.pdf.ClearError()
		return "", fmt.Errorf("%w: %s: %v", ErrAssetUnresolved, shortRef(ref), err)
	}
	return name, nil
}

// loadImage resolves a data URI or an asset id to bytes.
func (r *pdfRenderer) loadImage(ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrAssetUnresolved)
	}
	if isTemplateToken(ref) {
		return nil, fmt.Errorf("%w: unresolved placeholder %s", ErrAssetUnresolved, ref)
	}

	for _, prefix := range dataURIPrefixes {
		if payload, ok := strings.CutPrefix(ref, prefix); ok {
			data, err := decodeBase64(payload)
			if err != nil {
				return nil, fmt.Errorf("%w: inline image: %v", ErrAssetUnresolved, err)
			}
			return data, nil
		}
	}
	if strings.HasPrefix(ref, "data:") {
		return nil, fmt.Errorf("%w: unsupported data URI %s", ErrAssetUnresolved, shortRef(ref))
	}

	if r.store == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetUnresolved, ref, ErrNoAssetStore)
	}
	data, err := r.store.Resolve(AssetID(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetUnresolved, err)
	}
	return data, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// shortRef keeps data URIs out of warning text.
func shortRef(ref string) string {
	const maxLen = 48
	if len(ref) <= maxLen {
		return ref
	}
	return ref[:maxLen] + "..."
}

// drawText paints the frame background, then the joined run text clipped to
// the padded rectangle. Only frame-level style is applied.
func (r *pdfRenderer) drawText(f *TextFrame) error {
	if f.Rect.Empty() {
		return fmt.Errorf("%w: text frame %gx%g", ErrGeometryInvalid, f.Rect.W, f.Rect.H)
	}

	if !IsTransparent(f.BG) {
		cr, cg, cb := ParseColor(f.BG).Bytes()
		r.pdf.SetFillColor(cr, cg, cb)
		r.pdf.Rect(f.Rect.X, f.Rect.Y, f.Rect.W, f.Rect.H, "F")
	}

	text := f.Text.PlainText()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	inner, ok := Inset(f.Rect, framePadding(f))
	if !ok {
		return fmt.Errorf("%w: padding leaves no room in %gx%g", ErrGeometryInvalid, f.Rect.W, f.Rect.H)
	}

	st := resolveTextStyle(r.doc, f)
	r.writeBox(inner, text, st, "L")
	return nil
}

// writeBox wraps text inside rect with a core font.
func (r *pdfRenderer) writeBox(rect Rect, text string, st textStyle, align string) {
	style := ""
	if st.bold {
		style = "B"
	}
	r.pdf.SetFont(string(st.family), style, st.size)
	cr, cg, cb := ParseColor(st.color).Bytes()
	r.pdf.SetTextColor(cr, cg, cb)

	r.pdf.ClipRect(rect.X, rect.Y, rect.W, rect.H, false)
	r.pdf.SetXY(rect.X, rect.Y)
	r.pdf.MultiCell(rect.W, st.size*lineHeightFactor, toWinAnsi(text), "", align, false)
	r.pdf.ClipEnd()
}

// watermark overlays the preview caption and a light full-page tint. When
// the writer rejects transparency the tint degrades to a plain light fill
// behind a redrawn caption band.
func (r *pdfRenderer) watermark(page int) {
	band := Rect{X: 40, Y: A4Height/2 - watermarkBand, W: A4Width - 80, H: 2 * watermarkBand}
	gray := grayLevel(watermarkGray)
	caption := textStyle{
		family: Helvetica,
		size:   watermarkSize,
		color:  fmt.Sprintf("rgb(%d,%d,%d)", gray, gray, gray),
	}
	r.writeBox(band, watermarkCaption, caption, "C")

	r.pdf.SetAlpha(watermarkTint, "Normal")
	if r.pdf.Err() {
		r.pdf.ClearError()
		r.log.Debug("alpha unsupported, using gray tint", Int("page", page+1))
		tint := grayLevel(watermarkFallback)
		r.pdf.SetFillColor(tint, tint, tint)
		r.pdf.Rect(band.X, band.Y, band.W, band.H, "F")
		r.writeBox(band, watermarkCaption, caption, "C")
		return
	}
	r.pdf.SetFillColor(0, 0, 0)
	r.pdf.Rect(0, 0, A4Width, A4Height, "F")
	r.pdf.SetAlpha(1, "Normal")
	if r.pdf.Err() {
		err := r.pdf.Error()
		r.pdf.ClearError()
		r.warn(page, "", fmt.Errorf("%w: watermark: %v", ErrItemFailed, err))
	}
}

// grayLevel maps an intensity in [0,1] to an 8-bit channel value.
func grayLevel(v float64) int {
	return int(math.Round(max(0, min(1, v)) * 255))
}

// toWinAnsi converts text for the core fonts, which only cover Windows-1252.
// Unmappable runes become '?'. Tabs become spaces and CRLF becomes LF.
func toWinAnsi(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\t':
			b.WriteByte(' ')
			continue
		case '\n', '\r':
			b.WriteByte('\n')
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
