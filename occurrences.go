package revista

import (
	"fmt"

	"github.com/larabashadi/Revista-2/internal/extract"
	"github.com/larabashadi/Revista-2/internal/raster"
)

// imageGroup is one embedded image and the places it is drawn on a page.
type imageGroup struct {
	image extract.Image
	rects []Rect // A4 canvas units
}

// occurrenceLimits bounds grouping for one caller.
type occurrenceLimits struct {
	perImage int
	minSize  float64
	perPage  int
}

// groupOccurrences dedupes placements by object number, in drawing order.
// Placements are matched to images by their form-scoped resource key.
// Occurrences smaller than minSize on either side are dropped, each image
// keeps at most perImage rects and the page keeps at most perPage in total.
// Keys of placements whose image could not be read are returned once each
// in missing.
func groupOccurrences(placements []extract.Placement, images map[string]extract.Image, srcW, srcH float64, lim occurrenceLimits) (groups []imageGroup, missing []string) {
	index := make(map[int]int)
	reported := make(map[string]bool)
	total := 0

	for _, p := range placements {
		if total >= lim.perPage {
			break
		}
		key := p.Key()
		img, ok := images[key]
		if !ok {
			if !reported[key] {
				reported[key] = true
				missing = append(missing, key)
			}
			continue
		}

		rect := canvasRect(p.Rect, srcW, srcH)
		if rect.W < lim.minSize || rect.H < lim.minSize {
			continue
		}

		gi, seen := index[img.Ref]
		if !seen {
			gi = len(groups)
			index[img.Ref] = gi
			groups = append(groups, imageGroup{image: img})
		}
		if len(groups[gi].rects) >= lim.perImage {
			continue
		}
		groups[gi].rects = append(groups[gi].rects, rect)
		total++
	}

	kept := groups[:0]
	for _, g := range groups {
		if len(g.rects) > 0 {
			kept = append(kept, g)
		}
	}
	return kept, missing
}

// normalizeImage prepares an embedded image for storage and returns the
// asset name to store it under.
func normalizeImage(img extract.Image) ([]byte, string, error) {
	data, ext, err := raster.Normalize(img.Data, img.Format)
	if err != nil {
		return nil, "", fmt.Errorf("%w: image xref %d: %v", ErrExtraction, img.Ref, err)
	}
	return data, fmt.Sprintf("import_img_x%d.%s", img.Ref, ext), nil
}
