package revista

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Preset selects import depth.
type Preset string

// Import presets. Background, BG, BGOnly and Raster all mean background-only;
// Smart, Text and Pro all run structure extraction.
const (
	PresetBackground Preset = "background"
	PresetBG         Preset = "bg"
	PresetBGOnly     Preset = "bg_only"
	PresetRaster     Preset = "raster"
	PresetSmart      Preset = "smart"
	PresetText       Preset = "text"
	PresetPro        Preset = "pro"
)

// DefaultImportMode is recorded in meta when ImportOptions.Mode is empty.
const DefaultImportMode = "safe"

// BackgroundOnly reports whether p skips structure extraction.
func (p Preset) BackgroundOnly() bool {
	switch p.normalize() {
	case PresetBackground, PresetBG, PresetBGOnly, PresetRaster:
		return true
	}
	return false
}

// Validate checks that p is a known preset (case-insensitive).
func (p Preset) Validate() error {
	switch p.normalize() {
	case PresetBackground, PresetBG, PresetBGOnly, PresetRaster,
		PresetSmart, PresetText, PresetPro:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPreset, string(p))
}

func (p Preset) normalize() Preset {
	return Preset(strings.ToLower(strings.TrimSpace(string(p))))
}

// Quality records export intent. It does not change the output today.
type Quality string

// Export qualities.
const (
	QualityWeb   Quality = "web"
	QualityPrint Quality = "print"
)

// Validate checks that q is empty or a known quality.
func (q Quality) Validate() error {
	switch Quality(strings.ToLower(string(q))) {
	case "", QualityWeb, QualityPrint:
		return nil
	}
	return fmt.Errorf("%w: %q (must be web or print)", ErrInvalidQuality, string(q))
}

// Limits bounds the work a single import or detect call may do.
type Limits struct {
	RasterScale         float64 // background raster scale, pixels per point
	LargeDocRasterScale float64 // used when the page count exceeds LargeDocPages
	LargeDocPages       int
	SmartRasterScale    float64 // background raster scale for structure presets

	SampleScale        float64 // raster scale for background color sampling
	SampleGrid         int     // probes per edge of the ring sampled around a text block
	SampleMaxDeviation float64 // mean absolute deviation threshold, 0-255

	MaxOccurrencesPerImage       int
	DetectMaxOccurrencesPerImage int
	MinImageSize                 float64 // minimum frame side, A4 points
	DetectMinImageSize           float64
	MaxImagesPerPage             int

	OCRPrintableRatio float64
	OCRMinChars       int

	MaxPages int
}

// MaxRasterScale bounds every raster scale.
const MaxRasterScale = 8.0

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		RasterScale:         1.5,
		LargeDocRasterScale: 1.25,
		LargeDocPages:       24,
		SmartRasterScale:    2.0,

		SampleScale:        0.25,
		SampleGrid:         5,
		SampleMaxDeviation: 10,

		MaxOccurrencesPerImage:       20,
		DetectMaxOccurrencesPerImage: 10,
		MinImageSize:                 24,
		DetectMinImageSize:           20,
		MaxImagesPerPage:             200,

		OCRPrintableRatio: 0.55,
		OCRMinChars:       50,

		MaxPages: 500,
	}
}

// Validate rejects non-positive or out-of-range values.
func (l Limits) Validate() error {
	var errs []error
	scale := func(name string, v float64) {
		if !(v > 0) || v > MaxRasterScale {
			errs = append(errs, fmt.Errorf("%s: %g (must be in (0, %g])", name, v, MaxRasterScale))
		}
	}
	positive := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s: %d (must be positive)", name, v))
		}
	}

	scale("RasterScale", l.RasterScale)
	scale("LargeDocRasterScale", l.LargeDocRasterScale)
	scale("SmartRasterScale", l.SmartRasterScale)
	scale("SampleScale", l.SampleScale)
	positive("LargeDocPages", l.LargeDocPages)
	positive("SampleGrid", l.SampleGrid)
	positive("MaxOccurrencesPerImage", l.MaxOccurrencesPerImage)
	positive("DetectMaxOccurrencesPerImage", l.DetectMaxOccurrencesPerImage)
	positive("MaxImagesPerPage", l.MaxImagesPerPage)
	positive("OCRMinChars", l.OCRMinChars)
	positive("MaxPages", l.MaxPages)

	if !(l.SampleMaxDeviation > 0) || l.SampleMaxDeviation > 255 {
		errs = append(errs, fmt.Errorf("SampleMaxDeviation: %g (must be in (0, 255])", l.SampleMaxDeviation))
	}
	if !(l.MinImageSize > 0) || !(l.DetectMinImageSize > 0) {
		errs = append(errs, errors.New("MinImageSize and DetectMinImageSize must be positive"))
	}
	if !(l.OCRPrintableRatio > 0) || l.OCRPrintableRatio > 1 {
		errs = append(errs, fmt.Errorf("OCRPrintableRatio: %g (must be in (0, 1])", l.OCRPrintableRatio))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidLimits, errors.Join(errs...))
	}
	return nil
}

// backgroundScale picks the background raster scale for a document.
func (l Limits) backgroundScale(preset Preset, pages int) float64 {
	if !preset.BackgroundOnly() {
		return l.SmartRasterScale
	}
	if pages > l.LargeDocPages {
		return l.LargeDocRasterScale
	}
	return l.RasterScale
}

// Warning records one element that was skipped or degraded.
type Warning struct {
	Page   int    // 0-based page index, -1 when not page-specific
	ItemID string // item id, or "" for page-level problems
	Err    error  // wraps ErrAssetUnresolved, ErrGeometryInvalid or ErrExtraction
}

// Error implements error so warnings can be joined or logged directly.
func (w Warning) Error() string {
	var b strings.Builder
	if w.Page >= 0 {
		fmt.Fprintf(&b, "page %d", w.Page+1)
	}
	if w.ItemID != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "item %s", w.ItemID)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	if w.Err != nil {
		b.WriteString(w.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (w Warning) Unwrap() error { return w.Err }

// RenderOptions are per-call export parameters.
type RenderOptions struct {
	Quality   Quality
	Watermark bool // draw the preview caption and tint on every page
	// Title overrides meta.title in the PDF info dictionary.
	Title string
}

// RenderResult is the output of Render.
type RenderResult struct {
	PDF      []byte
	Pages    int
	Warnings []Warning
}

// ImportOptions are per-call import parameters.
type ImportOptions struct {
	Preset Preset // default PresetSmart
	Mode   string // recorded in meta, default "safe"
	// StoreSource also stores the source PDF and records its id in
	// meta.source_pdf_asset_id so Detect can run later.
	StoreSource bool
}

// ImportResult is the output of Import.
type ImportResult struct {
	Document *Document
	Assets   []AssetID // every asset created, in creation order
	Warnings []Warning
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout    time.Duration
	limits     Limits
	thumbWidth int
}

// Defaults for converter options.
const (
	defaultTimeout    = 30 * time.Second
	defaultThumbWidth = 420
)

// WithTimeout sets the thumbnail browser timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("revista: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLimits replaces the default limits. They are validated by NewConverter.
func WithLimits(l Limits) Option {
	return func(c *Converter) {
		c.cfg.limits = l
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAssetStore sets the store used to resolve and create assets.
func WithAssetStore(s AssetStore) Option {
	return func(c *Converter) {
		c.store = s
	}
}

// WithThumbnailWidth sets the preview width in pixels.
// Panics if px <= 0.
func WithThumbnailWidth(px int) Option {
	if px <= 0 {
		panic("revista: WithThumbnailWidth must be positive")
	}
	return func(c *Converter) {
		c.cfg.thumbWidth = px
	}
}
