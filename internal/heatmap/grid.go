package heatmap

import (
	"fmt"
	"math"
)

// Options controls grid density and the colour scale.
type Options struct {
	Resolution int // grid points per metre
	TMin       float64
	TMax       float64
}

func DefaultOptions() Options {
	return Options{Resolution: 5, TMin: 18, TMax: 27}
}

// Grid is the interpolated temperature field. Values is indexed [y][x] and
// holds NaN where no sensor reaches the cell or the cell lies outside every room.
type Grid struct {
	XMin, XMax float64
	YMin, YMax float64
	Xs, Ys     []float64
	Values     [][]float64
}

// minDistance keeps a sensor standing exactly on a grid point from producing
// an infinite weight.
const minDistance = 1e-6

type placedSensor struct {
	pos   Point
	room  int
	temp  float64
	dists []float64 // walking distance to every waypoint of the floor graph
}

// Compute interpolates sensor temperatures over the floor. A sensor reaches a
// cell along the shortest path that bends only at room corners and open doors
// and never crosses a wall. Cells combine sensors with inverse-distance-squared
// weights.
func Compute(layout Layout, live map[string]float64, opts Options) (Grid, error) {
	if err := layout.Validate(); err != nil {
		return Grid{}, err
	}
	if opts.Resolution <= 0 {
		return Grid{}, fmt.Errorf("resolution must be > 0, got %d", opts.Resolution)
	}

	g := boundingGrid(layout, opts.Resolution)
	graph := newFloorGraph(layout)

	var sensors []placedSensor
	for ri, room := range layout.Rooms {
		for _, s := range room.Sensors {
			t, ok := temperatureOf(s, live)
			if !ok {
				continue
			}
			sensors = append(sensors, placedSensor{
				pos:   s.Position(),
				room:  ri,
				temp:  t,
				dists: graph.distances(ri, s.Position()),
			})
		}
	}

	g.Values = make([][]float64, len(g.Ys))
	for yi, y := range g.Ys {
		row := make([]float64, len(g.Xs))
		for xi, x := range g.Xs {
			row[xi] = cellValue(graph, sensors, Point{X: x, Y: y})
		}
		g.Values[yi] = row
	}
	return g, nil
}

func boundingGrid(layout Layout, resolution int) Grid {
	var xmin, xmax, ymin, ymax float64
	for _, room := range layout.Rooms {
		for _, c := range room.Corners {
			xmin = math.Min(xmin, c.X)
			xmax = math.Max(xmax, c.X)
			ymin = math.Min(ymin, c.Y)
			ymax = math.Max(ymax, c.Y)
		}
	}
	g := Grid{
		XMin: math.Floor(xmin),
		XMax: math.Ceil(xmax),
		YMin: math.Floor(ymin),
		YMax: math.Ceil(ymax),
	}
	g.Xs = linspace(g.XMin, g.XMax, int(float64(resolution)*(g.XMax-g.XMin)+0.5))
	g.Ys = linspace(g.YMin, g.YMax, int(float64(resolution)*(g.YMax-g.YMin)+0.5))
	return g
}

func linspace(start, stop float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func cellValue(graph *floorGraph, sensors []placedSensor, p Point) float64 {
	room := roomAt(graph.layout, p)
	if room < 0 {
		return math.NaN()
	}
	cell := graph.links(room, p)
	var wsum, tsum float64
	var n int
	var only float64
	for _, s := range sensors {
		d := graph.reach(s, room, cell, p)
		if math.IsInf(d, 1) {
			continue
		}
		d = math.Max(d, minDistance)
		w := 1 / (d * d)
		wsum += w
		tsum += w * s.temp
		only = s.temp
		n++
	}
	switch n {
	case 0:
		return math.NaN()
	case 1:
		return only
	default:
		return tsum / wsum
	}
}

func roomAt(layout Layout, p Point) int {
	for i, room := range layout.Rooms {
		if insidePolygon(room.Corners, p) {
			return i
		}
	}
	return -1
}

// insidePolygon is the even-odd ray casting test. Points on an edge count as
// inside so that walls shared by two rooms are covered.
func insidePolygon(poly []Point, p Point) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func onSegment(a, b, p Point) bool {
	const eps = 1e-9
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > eps {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
