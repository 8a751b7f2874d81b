package revista

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Detected is the per-page bucket filled by a detect pass. Editors offer
// its entries for the user to promote into real items.
type Detected struct {
	Text   []DetectedText  `json:"text"`
	Images []DetectedImage `json:"images"`
}

// DetectedText is one text block found on the source page, in A4 units.
type DetectedText struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Runs       []Run   `json:"runs"`
	BG         string  `json:"bg,omitempty"`
}

// DetectedImage is one occurrence of an embedded image, already stored.
type DetectedImage struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	AssetID AssetID `json:"asset_id"`
	XRef    int     `json:"xref"`
}

// OverlayMeta describes the detect pass.
type OverlayMeta struct {
	OCRNeeded bool `json:"ocrNeeded"`
	PageIndex int  `json:"pageIndex"`
	PageCount int  `json:"pageCount"`
}

// Overlay is the result of Detect.
type Overlay struct {
	Text     []DetectedText  `json:"text"`
	Images   []DetectedImage `json:"images"`
	Meta     OverlayMeta     `json:"meta"`
	Warnings []Warning       `json:"-"`
}

// Detected returns the bucket stored into a page.
func (o *Overlay) Detected() *Detected {
	d := &Detected{Text: o.Text, Images: o.Images}
	if d.Text == nil {
		d.Text = []DetectedText{}
	}
	if d.Images == nil {
		d.Images = []DetectedImage{}
	}
	return d
}

// MergeDetected replaces pages[pageIndex].detected with the overlay content.
// Nothing else in the document changes.
func MergeDetected(doc *Document, pageIndex int, ov *Overlay) error {
	if doc == nil || ov == nil {
		return fmt.Errorf("%w: nil document or overlay", ErrInvalidInput)
	}
	if pageIndex < 0 || pageIndex >= len(doc.Pages) {
		return fmt.Errorf("%w: %d (pages: %d)", ErrPageIndex, pageIndex, len(doc.Pages))
	}
	doc.Pages[pageIndex].Detected = ov.Detected()
	return nil
}

// MergeDetectedJSON patches pages[pageIndex].detected directly in encoded
// document JSON. Every other byte of the document is kept, so members the
// model does not know survive even across schema versions.
func MergeDetectedJSON(raw []byte, pageIndex int, ov *Overlay) ([]byte, error) {
	if ov == nil {
		return nil, fmt.Errorf("%w: nil overlay", ErrInvalidInput)
	}
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	pages := gjson.GetBytes(raw, "pages")
	if !pages.IsArray() {
		return nil, fmt.Errorf("%w: pages is not an array", ErrInvalidJSON)
	}
	n := int(gjson.GetBytes(raw, "pages.#").Int())
	if pageIndex < 0 || pageIndex >= n {
		return nil, fmt.Errorf("%w: %d (pages: %d)", ErrPageIndex, pageIndex, n)
	}

	bucket, err := marshalRaw(ov.Detected())
	if err != nil {
		return nil, fmt.Errorf("encoding overlay: %w", err)
	}
	out, err := sjson.SetRawBytes(raw, fmt.Sprintf("pages.%d.detected", pageIndex), bucket)
	if err != nil {
		return nil, fmt.Errorf("patching document: %w", err)
	}
	return pretty.Pretty(out), nil
}

// DetectFromStore runs Detect against the source PDF recorded in
// meta.source_pdf_asset_id.
func (c *Converter) DetectFromStore(ctx context.Context, doc *Document, pageIndex int) (*Overlay, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidInput)
	}
	id := doc.MetaString(MetaSourcePDFAssetID)
	if id == "" {
		return nil, ErrNoSourcePDF
	}
	if c.store == nil {
		return nil, ErrNoAssetStore
	}
	data, err := c.store.Resolve(AssetID(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSourcePDF, err)
	}
	return c.Detect(ctx, data, pageIndex)
}
