package revista

import (
	"context"
	"fmt"
	"time"
)

// Detect extracts editable text and images from one page of a source PDF
// without touching any document. Extracted images are stored as new assets.
// When the text layer is missing or mostly unprintable the text list is
// left empty and Meta.OCRNeeded is set.
func (c *Converter) Detect(ctx context.Context, data []byte, pageIndex int) (ov *Overlay, err error) {
	defer func() {
		if r := recover(); r != nil {
			ov = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if c.store == nil {
		return nil, ErrNoAssetStore
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
	if pageIndex < 0 || pageIndex >= n {
		return nil, fmt.Errorf("%w: %d (pages: %d)", ErrPageIndex, pageIndex, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	d := &detector{store: c.store, src: src, limits: c.cfg.limits, page: pageIndex}
	ov = &Overlay{
		Text:   []DetectedText{},
		Images: []DetectedImage{},
		Meta:   OverlayMeta{PageIndex: pageIndex, PageCount: n},
	}
	if err := d.run(ov); err != nil {
		return nil, err
	}
	ov.Warnings = d.warnings

	for _, w := range d.warnings {
		c.log.Warn("element skipped", Int("page", w.Page+1), String("item", w.ItemID), Err(w.Err))
	}
	c.log.Info("page detected",
		Int("page", pageIndex+1),
		Int("text", len(ov.Text)),
		Int("images", len(ov.Images)),
		Bool("ocr_needed", ov.Meta.OCRNeeded),
		Duration("elapsed", time.Since(start)))
	return ov, nil
}

// detector holds the state of one Detect call.
type detector struct {
	store    AssetStore
	src      pageSource
	limits   Limits
	page     int
	warnings []Warning
}

func (d *detector) warn(err error) {
	d.warnings = append(d.warnings, Warning{Page: d.page, Err: err})
}

// run fills ov. The returned error is a store failure.
func (d *detector) run(ov *Overlay) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = nil
			d.warn(fmt.Errorf("%w: %v", ErrExtraction, r))
		}
	}()

	srcW, srcH, perr := d.src.PageSize(d.page)
	if perr != nil {
		d.warn(fmt.Errorf("%w: page size: %v", ErrExtraction, perr))
		ov.Meta.OCRNeeded = true
		return nil
	}
	blocks, placements, serr := d.src.Scan(d.page)
	if serr != nil {
		d.warn(fmt.Errorf("%w: content: %v", ErrExtraction, serr))
		ov.Meta.OCRNeeded = true
		return nil
	}

	var sample *pageSample
	if img, rerr := d.src.Render(d.page, d.limits.SampleScale); rerr != nil {
		d.warn(fmt.Errorf("%w: sampling raster: %v", ErrExtraction, rerr))
	} else {
		sample = &pageSample{
			img:          img,
			srcW:         srcW,
			srcH:         srcH,
			grid:         d.limits.SampleGrid,
			maxDeviation: d.limits.SampleMaxDeviation,
		}
	}

	boxes, stats := buildTextBoxes(blocks, srcW, srcH, sample)
	ov.Meta.OCRNeeded = stats.ocrNeeded(d.limits)
	if !ov.Meta.OCRNeeded {
		for n, box := range boxes {
			ov.Text = append(ov.Text, DetectedText{
				ID:         fmt.Sprintf("dt-%d-%d", d.page, n),
				X:          box.rect.X,
				Y:          box.rect.Y,
				W:          box.rect.W,
				H:          box.rect.H,
				Text:       box.text,
				Confidence: box.confidence(),
				Runs:       box.runs,
				BG:         box.bg,
			})
		}
	}

	if len(placements) == 0 {
		return nil
	}
	embedded, ierr := d.src.Images(d.page)
	if ierr != nil {
		d.warn(fmt.Errorf("%w: images: %v", ErrExtraction, ierr))
		return nil
	}
	groups, missing := groupOccurrences(placements, embedded, srcW, srcH, occurrenceLimits{
		perImage: d.limits.DetectMaxOccurrencesPerImage,
		minSize:  d.limits.DetectMinImageSize,
		perPage:  d.limits.MaxImagesPerPage,
	})
	for _, name := range missing {
		d.warn(fmt.Errorf("%w: image %s unreadable", ErrExtraction, name))
	}

	for _, g := range groups {
		data, name, nerr := normalizeImage(g.image)
		if nerr != nil {
			d.warn(nerr)
			continue
		}
		id, err := d.store.Store(data, name)
		if err != nil {
			return err
		}
		for k, r := range g.rects {
			ov.Images = append(ov.Images, DetectedImage{
				ID:      fmt.Sprintf("di-%d-%d-%d", d.page, g.image.Ref, k),
				X:       r.X,
				Y:       r.Y,
				W:       r.W,
				H:       r.H,
				AssetID: id,
				XRef:    g.image.Ref,
			})
		}
	}
	return nil
}
