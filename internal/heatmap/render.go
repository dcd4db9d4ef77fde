package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultScale is the number of pixels drawn per grid cell.
const DefaultScale = 20

var (
	wallColor       = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	doorFrameColor  = color.NRGBA{A: 0xff}
	doorClosedColor = color.NRGBA{R: 0xff, G: 0x45, B: 0x00, A: 0xff}
	doorOpenColor   = color.NRGBA{R: 0x32, G: 0xcd, B: 0x32, A: 0xff}
	sensorColor     = color.NRGBA{A: 0x80}
	labelColor      = color.NRGBA{A: 0xff}
)

type canvas struct {
	img   *image.NRGBA
	grid  Grid
	scale int
}

// Render draws the grid, walls, doors, sensors and objects of interest.
// Cells without a value stay transparent. A sensor with a temperature is
// filled with its colour and labelled with the reading; one without stays a
// dim marker.
func Render(layout Layout, g Grid, live map[string]float64, opts Options, scale int) *image.NRGBA {
	if scale <= 0 {
		scale = DefaultScale
	}
	w, h := len(g.Xs)*scale, len(g.Ys)*scale
	c := canvas{img: image.NewNRGBA(image.Rect(0, 0, w, h)), grid: g, scale: scale}

	for yi, row := range g.Values {
		for xi, v := range row {
			if math.IsNaN(v) {
				continue
			}
			col := Jet(normalize(v, opts))
			// Row 0 holds the smallest y, which belongs at the bottom of the image.
			py := (len(g.Ys) - 1 - yi) * scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					c.img.SetNRGBA(xi*scale+dx, py+dy, col)
				}
			}
		}
	}

	wall := float64(scale) / 2
	for _, room := range layout.Rooms {
		for i := range room.Corners {
			next := room.Corners[(i+1)%len(room.Corners)]
			c.line(room.Corners[i], next, wall, wallColor)
		}
	}
	for _, door := range layout.Doors {
		c.line(door.P1, door.P2, wall*1.4, doorFrameColor)
		if door.Closed {
			c.line(door.P1, door.P2, wall*0.8, doorClosedColor)
		} else {
			c.line(door.P1, door.P2, wall*0.8, doorOpenColor)
		}
	}
	for _, room := range layout.Rooms {
		for _, s := range room.Sensors {
			t, ok := temperatureOf(s, live)
			if !ok {
				c.disc(s.Position(), float64(scale), sensorColor)
				continue
			}
			c.disc(s.Position(), float64(scale), doorFrameColor)
			c.disc(s.Position(), float64(scale)*0.85, Jet(normalize(t, opts)))
			c.label(s.Position(), fmt.Sprintf("%.1fC", t), labelColor)
		}
	}
	for _, oof := range layout.OOFs {
		t, ok := temperatureOf(oof, live)
		if !ok {
			continue
		}
		c.disc(oof.Position(), float64(scale)*0.6, doorFrameColor)
		c.disc(oof.Position(), float64(scale)*0.5, Jet(normalize(t, opts)))
	}
	return c.img
}

// WritePNG renders the heatmap and writes it to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding png: %w", err)
	}
	return f.Close()
}

// Jet maps t in [0,1] onto the classic blue-cyan-yellow-red colormap.
func Jet(t float64) color.NRGBA {
	t = clamp01(t)
	channel := func(offset float64) uint8 {
		return uint8(math.Round(255 * clamp01(1.5-math.Abs(4*t-offset))))
	}
	return color.NRGBA{R: channel(3), G: channel(2), B: channel(1), A: 0xff}
}

func normalize(v float64, opts Options) float64 {
	if opts.TMax <= opts.TMin {
		return 0.5
	}
	return (v - opts.TMin) / (opts.TMax - opts.TMin)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (c canvas) toPixel(p Point) (float64, float64) {
	w := float64(c.img.Bounds().Dx() - 1)
	h := float64(c.img.Bounds().Dy() - 1)
	px := (p.X - c.grid.XMin) / (c.grid.XMax - c.grid.XMin) * w
	py := (c.grid.YMax - p.Y) / (c.grid.YMax - c.grid.YMin) * h
	return px, py
}

func (c canvas) line(a, b Point, width float64, col color.NRGBA) {
	ax, ay := c.toPixel(a)
	bx, by := c.toPixel(b)
	steps := int(math.Hypot(bx-ax, by-ay)*2) + 1
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		c.fillCircle(ax+(bx-ax)*f, ay+(by-ay)*f, width/2, col)
	}
}

func (c canvas) disc(p Point, radius float64, col color.NRGBA) {
	x, y := c.toPixel(p)
	c.fillCircle(x, y, radius, col)
}

// label writes text centred on p. The face is ASCII only.
func (c canvas) label(p Point, text string, col color.NRGBA) {
	x, y := c.toPixel(p)
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	d.Dot = fixed.Point26_6{
		X: fixed.I(int(math.Round(x))) - d.MeasureString(text)/2,
		Y: fixed.I(int(math.Round(y)) + (face.Ascent-face.Descent)/2),
	}
	d.DrawString(text)
}

func (c canvas) fillCircle(cx, cy, r float64, col color.NRGBA) {
	bounds := c.img.Bounds()
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			if !image.Pt(x, y).In(bounds) {
				continue
			}
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				c.blend(x, y, col)
			}
		}
	}
}

func (c canvas) blend(x, y int, col color.NRGBA) {
	if col.A == 0xff {
		c.img.SetNRGBA(x, y, col)
		return
	}
	dst := c.img.NRGBAAt(x, y)
	a := float64(col.A) / 255
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*a + float64(d)*(1-a)))
	}
	c.img.SetNRGBA(x, y, color.NRGBA{
		R: mix(col.R, dst.R),
		G: mix(col.G, dst.G),
		B: mix(col.B, dst.B),
		A: uint8(math.Max(float64(dst.A), float64(col.A))),
	})
}
