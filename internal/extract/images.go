package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrImages reports that the image objects of a document could not be read.
var ErrImages = errors.New("cannot extract images")

// Image is one embedded image object as stored in the file.
type Image struct {
	Ref        int    // object number; identical across pages for a shared image
	Name       string // resource name in the dict it was found in
	Format     string // encoded payload type: "jpg", "png", "tif", ...
	Width      int
	Height     int
	Components int
	ColorSpace string
	Data       []byte
}

type imageIndex struct {
	ctx *model.Context
	err error
}

// imageContext parses the document with pdfcpu once, on first use.
func (d *Document) imageContext() (*model.Context, error) {
	if d.images == nil {
		ctx, err := readContext(d.raw)
		d.images = &imageIndex{ctx: ctx, err: err}
	}
	return d.images.ctx, d.images.err
}

func readContext(raw []byte) (ctx *model.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("%w: %v", ErrImages, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err = api.ReadValidateAndOptimize(bytes.NewReader(raw), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImages, err)
	}
	return ctx, nil
}

// Images returns the image objects drawn on page i, keyed like
// Placement.Key: the resource name, scoped by enclosing form XObjects. The
// same object reached under several names appears under each, with one Ref.
// An image the reader cannot decode is left out.
func (d *Document) Images(i int) (images map[string]Image, err error) {
	if _, err := d.page(i); err != nil {
		return nil, err
	}
	ctx, err := d.imageContext()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			images = nil
			err = fmt.Errorf("%w: page %d: %v", ErrImages, i, r)
		}
	}()

	pageDict, _, inh, err := ctx.PageDict(i+1, false)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrImages, i, err)
	}
	res, err := pageResources(ctx, pageDict, inh)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrImages, i, err)
	}

	w := &imageWalker{ctx: ctx, out: map[string]Image{}, byRef: map[int]*Image{}}
	w.walk(res, "", 0)
	return w.out, nil
}

// pageResources returns the page's own resource dict or the inherited one.
func pageResources(ctx *model.Context, page types.Dict, inh *model.InheritedPageAttrs) (types.Dict, error) {
	if o, ok := page.Find("Resources"); ok {
		return ctx.DereferenceDict(o)
	}
	if inh != nil {
		return inh.Resources, nil
	}
	return nil, nil
}

// imageWalker follows XObject resources the way the content scanner
// descends into forms, so keys line up with placements.
type imageWalker struct {
	ctx   *model.Context
	out   map[string]Image
	byRef map[int]*Image // nil entry: object seen but unreadable
}

func (w *imageWalker) walk(res types.Dict, form string, depth int) {
	if res == nil {
		return
	}
	o, ok := res.Find("XObject")
	if !ok {
		return
	}
	xobjs, err := w.ctx.DereferenceDict(o)
	if err != nil {
		return
	}

	for name, entry := range xobjs {
		sd, _, err := w.ctx.DereferenceStreamDict(entry)
		if err != nil || sd == nil {
			continue
		}
		sub := sd.Subtype()
		if sub == nil {
			continue
		}
		switch *sub {
		case "Image":
			ref, ok := entry.(types.IndirectRef)
			if !ok {
				continue
			}
			if img := w.image(sd, name, ref.ObjectNumber.Value()); img != nil {
				cp := *img
				cp.Name = name
				w.out[scopedName(form, name)] = cp
			}
		case "Form":
			if depth >= maxFormDepth {
				continue
			}
			inner := res
			if r, ok := sd.Find("Resources"); ok {
				if d, err := w.ctx.DereferenceDict(r); err == nil && d != nil {
					inner = d
				}
			}
			w.walk(inner, scopedName(form, name), depth+1)
		}
	}
}

// image decodes object objNr once per page.
func (w *imageWalker) image(sd *types.StreamDict, name string, objNr int) *Image {
	if img, seen := w.byRef[objNr]; seen {
		return img
	}
	w.byRef[objNr] = nil

	found, err := pdfcpu.ExtractImage(w.ctx, sd, false, name, objNr, false)
	if err != nil || found == nil || found.Reader == nil {
		return nil
	}
	data, err := io.ReadAll(found)
	if err != nil || len(data) == 0 {
		return nil
	}
	img := &Image{
		Ref:        objNr,
		Format:     found.FileType,
		Width:      found.Width,
		Height:     found.Height,
		Components: found.Comp,
		ColorSpace: found.Cs,
		Data:       data,
	}
	w.byRef[objNr] = img
	return img
}
