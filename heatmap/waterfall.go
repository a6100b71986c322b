package heatmap

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/flowstat/flowstat/hist"
)

// RenderWaterfall rasterises a trace to a PNG: one pixel column per time
// slice, one pixel row per percentile ladder entry, coloured along a
// blue-to-red heat ramp by the cell's fraction of the trace's overall
// maximum value. No charting library in the retrieval pack covers 2-D
// histogram rasterisation, so this uses only image/image-color/image-png
// from the standard library (see DESIGN.md).
func RenderWaterfall(w io.Writer, t Trace) error {
	width := t.TotalSlices
	if width < 1 {
		width = 1
	}
	height := len(hist.DefaultPercentiles)
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	max := int64(0)
	for _, col := range t.Columns {
		for _, v := range col {
			if v > max {
				max = v
			}
		}
	}

	for x, col := range t.Columns {
		for y, v := range col {
			img.Set(x, height-1-y, heatColor(v, max))
		}
	}

	return png.Encode(w, img)
}

// heatColor maps v/max onto a blue (cold) - yellow - red (hot) ramp.
func heatColor(v, max int64) color.RGBA {
	if max <= 0 {
		return color.RGBA{0, 0, 64, 255}
	}
	frac := float64(v) / float64(max)
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}

	switch {
	case frac < 0.5:
		t := frac / 0.5
		return color.RGBA{
			R: uint8(t * 255),
			G: uint8(t * 255),
			B: uint8(255 - t*128),
			A: 255,
		}
	default:
		t := (frac - 0.5) / 0.5
		return color.RGBA{
			R: 255,
			G: uint8(255 - t*255),
			B: uint8(127 - t*127),
			A: 255,
		}
	}
}
