package revista

import "math"

// ScaleRect maps a rectangle from a source page of size srcW x srcH onto the
// A4 canvas. Axes scale independently; there is no rotation or aspect
// correction. A non-positive source dimension leaves that axis unscaled.
func ScaleRect(r Rect, srcW, srcH float64) Rect {
	sx, sy := 1.0, 1.0
	if srcW > 0 {
		sx = A4Width / srcW
	}
	if srcH > 0 {
		sy = A4Height / srcH
	}
	return Rect{X: r.X * sx, Y: r.Y * sy, W: r.W * sx, H: r.H * sy}
}

// Inset shrinks r by pad on every side, clamping pad to
// min(pad, (w-2)/2, (h-2)/2) so the result never inverts. The second result
// is false when the inset rectangle has no area.
func Inset(r Rect, pad float64) (Rect, bool) {
	if r.Empty() {
		return Rect{}, false
	}
	maxX := math.Max(0, (r.W-2)/2)
	maxY := math.Max(0, (r.H-2)/2)
	p := math.Max(0, math.Min(pad, math.Min(maxX, maxY)))

	out := Rect{X: r.X + p, Y: r.Y + p, W: r.W - 2*p, H: r.H - 2*p}
	return out, !out.Empty()
}

// round2 rounds to two decimals for stable JSON output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
