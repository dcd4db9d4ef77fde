package heatmap

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countNear counts pixels of col within r pixels of p.
func countNear(img *image.NRGBA, g Grid, p Point, r float64, col color.NRGBA) int {
	c := canvas{img: img, grid: g}
	cx, cy := c.toPixel(p)
	n := 0
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r && img.NRGBAAt(x, y) == col {
				n++
			}
		}
	}
	return n
}

func TestRenderLabelsSensorsWithTemperature(t *testing.T) {
	layout := twoRooms(false)
	opts := DefaultOptions()
	g, err := Compute(layout, nil, opts)
	require.NoError(t, err)

	img := Render(layout, g, nil, opts, DefaultScale)

	labelled := Point{1, 2}
	assert.Positive(t, countNear(img, g, labelled, DefaultScale/2, labelColor), "reading is printed")
	assert.Positive(t, countNear(img, g, labelled, DefaultScale*0.8, Jet(normalize(20, opts))), "disc is filled with its colour")

	unknown := Point{7, 2}
	assert.Zero(t, countNear(img, g, unknown, DefaultScale/2, labelColor))
}

func TestRenderLabelUsesLiveReading(t *testing.T) {
	layout := twoRooms(false)
	opts := DefaultOptions()
	live := map[string]float64{"b": 26}
	g, err := Compute(layout, live, opts)
	require.NoError(t, err)

	img := Render(layout, g, live, opts, DefaultScale)

	assert.Positive(t, countNear(img, g, Point{7, 2}, DefaultScale/2, labelColor))
	assert.Positive(t, countNear(img, g, Point{7, 2}, DefaultScale*0.8, Jet(normalize(26, opts))))
}
