package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"slices"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Sentinel errors for image conversion.
var (
	ErrEncode      = errors.New("cannot encode image")
	ErrDecode      = errors.New("cannot decode image")
	ErrUnsupported = errors.New("unsupported image format")
)

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Downscale resizes img by factor (0 < factor <= 1) with bilinear sampling.
// Factors outside that range return img unchanged.
func Downscale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor >= 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SampleAround probes grid points along each edge of the rectangle
// (x0,y0)-(x1,y1), given as fractions of the image size. Callers pass a
// rectangle slightly larger than the content whose backdrop they want, so
// the probes land beside the glyphs rather than on them. Points outside the
// image are skipped.
//
// The backdrop is the per-channel median of the probes. It is accepted when
// at least minInlierShare of the probes stay within maxDev (mean absolute
// channel distance, 0-255) of it, and the mean of those inliers is returned.
func SampleAround(img image.Image, x0, y0, x1, y1 float64, grid int, maxDev float64) (color.RGBA, bool) {
	b := img.Bounds()
	if grid < 1 || b.Empty() || x1 <= x0 || y1 <= y0 {
		return color.RGBA{}, false
	}

	samples := make([][3]float64, 0, 4*grid)
	probe := func(fx, fy float64) {
		if fx < 0 || fx >= 1 || fy < 0 || fy >= 1 {
			return
		}
		px := b.Min.X + clampInt(int(fx*float64(b.Dx())), 0, b.Dx()-1)
		py := b.Min.Y + clampInt(int(fy*float64(b.Dy())), 0, b.Dy()-1)
		c := color.RGBAModel.Convert(img.At(px, py)).(color.RGBA)
		samples = append(samples, [3]float64{float64(c.R), float64(c.G), float64(c.B)})
	}
	for g := 0; g < grid; g++ {
		t := (float64(g) + 0.5) / float64(grid)
		fx := x0 + (x1-x0)*t
		fy := y0 + (y1-y0)*t
		probe(fx, y0)
		probe(fx, y1)
		probe(x0, fy)
		probe(x1, fy)
	}
	if len(samples) < grid {
		return color.RGBA{}, false
	}

	med := medianColor(samples)
	var sum [3]float64
	inliers := 0
	for _, s := range samples {
		var dev float64
		for k := range s {
			dev += math.Abs(s[k] - med[k])
		}
		if dev/3 >= maxDev {
			continue
		}
		inliers++
		for k := range sum {
			sum[k] += s[k]
		}
	}
	if float64(inliers) < minInlierShare*float64(len(samples)) {
		return color.RGBA{}, false
	}

	return color.RGBA{
		R: uint8(math.Round(sum[0] / float64(inliers))),
		G: uint8(math.Round(sum[1] / float64(inliers))),
		B: uint8(math.Round(sum[2] / float64(inliers))),
		A: 255,
	}, true
}

// minInlierShare is the fraction of probes that must agree on a backdrop.
// One edge of four may run into neighbouring content.
const minInlierShare = 0.7

func medianColor(samples [][3]float64) [3]float64 {
	var med [3]float64
	ch := make([]float64, len(samples))
	for k := range med {
		for i, s := range samples {
			ch[i] = s[k]
		}
		slices.Sort(ch)
		n := len(ch)
		if n%2 == 1 {
			med[k] = ch[n/2]
		} else {
			med[k] = (ch[n/2-1] + ch[n/2]) / 2
		}
	}
	return med
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Normalize returns an embedded image payload in a form the PDF writer
// accepts (8-bit RGB or gray JPEG/PNG) and the extension to store it under.
// CMYK JPEGs, TIFFs and 16-bit PNGs are re-encoded as PNG.
func Normalize(data []byte, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: jpeg: %v", ErrDecode, err)
		}
		if cfg.ColorModel != color.CMYKModel {
			return data, "jpg", nil
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: jpeg: %v", ErrDecode, err)
		}
		return reencode(img)

	case "png":
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: png: %v", ErrDecode, err)
		}
		if !is16Bit(cfg.ColorModel) {
			return data, "png", nil
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: png: %v", ErrDecode, err)
		}
		return reencode(img)

	case "tif", "tiff":
		img, err := tiff.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: tiff: %v", ErrDecode, err)
		}
		return reencode(img)

	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
}

func is16Bit(m color.Model) bool {
	return m == color.RGBA64Model || m == color.NRGBA64Model || m == color.Gray16Model
}

// reencode converts any decoded image to 8-bit NRGBA and encodes it as PNG.
func reencode(img image.Image) ([]byte, string, error) {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	out, err := EncodePNG(dst)
	if err != nil {
		return nil, "", err
	}
	return out, "png", nil
}
