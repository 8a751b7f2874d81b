package revista

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/larabashadi/Revista-2/internal/extract"
	"github.com/larabashadi/Revista-2/internal/raster"
)

// Layer identities created by the importer.
const (
	bgLayerID        = "bg"
	bgLayerName      = "PDF Fondo"
	overlayLayerID   = "overlay"
	overlayLayerName = "Detectado"
	importedSection  = "Imported"
	sourcePDFName    = "source.pdf"
	importedFitMode  = "stretch"
	backgroundFit    = "cover"
)

// Import turns a PDF into an editable document. Every page gets a locked,
// visible background layer holding a raster of the page. Structure presets
// also fill a hidden "Detectado" layer with text frames and image frames.
//
// A page that cannot be rasterized or scanned is kept and reported as a
// warning. Only unreadable input, a missing store or a store failure is
// fatal.
func (c *Converter) Import(ctx context.Context, data []byte, opts ImportOptions) (res *ImportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if c.store == nil {
		return nil, ErrNoAssetStore
	}
	preset := opts.Preset.normalize()
	if preset == "" {
		preset = PresetSmart
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = DefaultImportMode
	}
	if err := checkPDF(data); err != nil {
		return nil, err
	}

	src, err := c.openSource(data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			c.log.Debug("closing source", Err(cerr))
		}
	}()

	n := src.NumPages()
	if n == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrParse)
	}
	limits := c.cfg.limits
	if n > limits.MaxPages {
		return nil, fmt.Errorf("%w: %d pages (max %d)", ErrTooLarge, n, limits.MaxPages)
	}

	start := time.Now()
	imp := &importer{
		store:  c.store,
		src:    src,
		limits: limits,
		preset: preset,
		scale:  limits.backgroundScale(preset, n),
	}

	doc := NewDocument()
	doc.SetMeta(MetaImportPreset, string(preset))
	doc.SetMeta(MetaImportMode, mode)

	if opts.StoreSource {
		id, err := c.store.Store(data, sourcePDFName)
		if err != nil {
			return nil, err
		}
		imp.assets = append(imp.assets, id)
		doc.SetMeta(MetaSourcePDFAssetID, string(id))
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageStart := time.Now()
		page, err := imp.page(i)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
		c.log.Debug("page imported", Int("page", i+1), Duration("elapsed", time.Since(pageStart)))
	}

	for _, w := range imp.warnings {
		c.log.Warn("element skipped", Int("page", w.Page+1), String("item", w.ItemID), Err(w.Err))
	}
	c.log.Info("document imported",
		Int("pages", n),
		String("preset", string(preset)),
		Int("assets", len(imp.assets)),
		Int("warnings", len(imp.warnings)),
		Duration("elapsed", time.Since(start)))

	return &ImportResult{Document: doc, Assets: imp.assets, Warnings: imp.warnings}, nil
}

// openSource opens data and maps any failure, panics included, to ErrParse.
func (c *Converter) openSource(data []byte) (src pageSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()
	src, err = c.open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return src, nil
}

// importer holds the state of one Import call.
type importer struct {
	store    AssetStore
	src      pageSource
	limits   Limits
	preset   Preset
	scale    float64
	assets   []AssetID
	warnings []Warning
}

func (imp *importer) warn(page int, id string, err error) {
	imp.warnings = append(imp.warnings, Warning{Page: page, ItemID: id, Err: err})
}

func (imp *importer) save(data []byte, name string) (AssetID, error) {
	id, err := imp.store.Store(data, name)
	if err != nil {
		return "", err
	}
	imp.assets = append(imp.assets, id)
	return id, nil
}

// page builds page i. The returned error is a store failure; everything else
// degrades to a warning.
func (imp *importer) page(i int) (Page, error) {
	bg := Layer{ID: bgLayerID, Name: bgLayerName, Visible: true, Locked: true, Items: []Item{}}
	overlay := Layer{ID: overlayLayerID, Name: overlayLayerName, Visible: false, Locked: false, Items: []Item{}}

	img, item, err := imp.background(i)
	if err != nil {
		return Page{}, err
	}
	if item != nil {
		bg.Items = append(bg.Items, item)
	}

	if !imp.preset.BackgroundOnly() {
		items, err := imp.structure(i, img)
		if err != nil {
			return Page{}, err
		}
		overlay.Items = append(overlay.Items, items...)
	}

	return Page{
		ID:          fmt.Sprintf("p-%d", i),
		SectionType: importedSection,
		Layers:      []Layer{bg, overlay},
	}, nil
}

// background rasterizes page i and stores it as the locked cover image.
func (imp *importer) background(i int) (img image.Image, item Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, item, err = nil, nil, nil
			imp.warn(i, "", fmt.Errorf("%w: rendering background: %v", ErrExtraction, r))
		}
	}()

	img, rerr := imp.src.Render(i, imp.scale)
	if rerr != nil {
		imp.warn(i, "", fmt.Errorf("%w: rendering background: %v", ErrExtraction, rerr))
		return nil, nil, nil
	}
	png, rerr := raster.EncodePNG(img)
	if rerr != nil {
		imp.warn(i, "", fmt.Errorf("%w: encoding background: %v", ErrExtraction, rerr))
		return img, nil, nil
	}
	id, err := imp.save(png, fmt.Sprintf("import_bg_p%d.png", i+1))
	if err != nil {
		return nil, nil, err
	}

	return img, &ImageFrame{
		ItemBase: ItemBase{
			ID:     fmt.Sprintf("bg-%d", i),
			Rect:   Rect{W: A4Width, H: A4Height},
			Locked: true,
			Role:   RolePDFBackground,
		},
		AssetRef: string(id),
		FitMode:  backgroundFit,
		Crop:     &Crop{W: 1, H: 1},
	}, nil
}

// structure extracts text frames and image frames from page i. bg is the
// background raster, reused for color sampling when present.
func (imp *importer) structure(i int, bg image.Image) (items []Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = nil
			imp.warn(i, "", fmt.Errorf("%w: %v", ErrExtraction, r))
		}
	}()

	srcW, srcH, perr := imp.src.PageSize(i)
	if perr != nil {
		imp.warn(i, "", fmt.Errorf("%w: page size: %v", ErrExtraction, perr))
		return nil, nil
	}
	blocks, placements, serr := imp.src.Scan(i)
	if serr != nil {
		imp.warn(i, "", fmt.Errorf("%w: content: %v", ErrExtraction, serr))
		return nil, nil
	}

	var sample *pageSample
	if bg != nil {
		sample = &pageSample{
			img:          raster.Downscale(bg, imp.limits.SampleScale/imp.scale),
			srcW:         srcW,
			srcH:         srcH,
			grid:         imp.limits.SampleGrid,
			maxDeviation: imp.limits.SampleMaxDeviation,
		}
	}

	boxes, _ := buildTextBoxes(blocks, srcW, srcH, sample)
	for n, box := range boxes {
		items = append(items, &TextFrame{
			ItemBase: ItemBase{
				ID:   fmt.Sprintf("t-%d-%d", i, n),
				Rect: box.rect,
				Role: RoleImportedText,
			},
			Text:     TextContent{Runs: box.runs},
			StyleRef: DefaultStyleName,
			Padding:  new(float64),
		})
	}

	images, err := imp.images(i, placements, srcW, srcH)
	if err != nil {
		return nil, err
	}
	return append(items, images...), nil
}

// images stores each distinct embedded image once and returns one frame per
// kept occurrence.
func (imp *importer) images(i int, placements []extract.Placement, srcW, srcH float64) ([]Item, error) {
	if len(placements) == 0 {
		return nil, nil
	}
	embedded, err := imp.src.Images(i)
	if err != nil {
		imp.warn(i, "", fmt.Errorf("%w: images: %v", ErrExtraction, err))
		return nil, nil
	}

	groups, missing := groupOccurrences(placements, embedded, srcW, srcH, occurrenceLimits{
		perImage: imp.limits.MaxOccurrencesPerImage,
		minSize:  imp.limits.MinImageSize,
		perPage:  imp.limits.MaxImagesPerPage,
	})
	for _, name := range missing {
		imp.warn(i, "", fmt.Errorf("%w: image %s unreadable", ErrExtraction, name))
	}

	var items []Item
	for _, g := range groups {
		data, name, err := normalizeImage(g.image)
		if err != nil {
			imp.warn(i, "", err)
			continue
		}
		id, err := imp.save(data, name)
		if err != nil {
			return nil, err
		}
		for k, r := range g.rects {
			items = append(items, &ImageFrame{
				ItemBase: ItemBase{
					ID:   fmt.Sprintf("img-%d-%d-%d", i, g.image.Ref, k),
					Rect: r,
					Role: RoleImportedImage,
				},
				AssetRef: string(id),
				FitMode:  importedFitMode,
			})
		}
	}
	return items, nil
}
