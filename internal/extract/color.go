package extract

import (
	"math"

	"github.com/ledongthuc/pdf"
)

// packRGB packs components in [0,1] into 0xRRGGBB.
func packRGB(r, g, b float64) uint32 {
	return uint32(channel(r))<<16 | uint32(channel(g))<<8 | uint32(channel(b))
}

func packGray(v float64) uint32 {
	return packRGB(v, v, v)
}

// packCMYK converts with the naive device formula; no ICC profile is applied.
func packCMYK(c, m, y, k float64) uint32 {
	return packRGB((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

func channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// colorFromOperands interprets sc/scn operands by component count. Pattern
// names and unsupported spaces keep the previous color.
func colorFromOperands(args []pdf.Value, prev uint32) uint32 {
	nums := make([]float64, 0, len(args))
	for _, a := range args {
		switch a.Kind() {
		case pdf.Integer, pdf.Real:
			nums = append(nums, a.Float64())
		}
	}
	switch len(nums) {
	case 1:
		return packGray(nums[0])
	case 3:
		return packRGB(nums[0], nums[1], nums[2])
	case 4:
		return packCMYK(nums[0], nums[1], nums[2], nums[3])
	default:
		return prev
	}
}
