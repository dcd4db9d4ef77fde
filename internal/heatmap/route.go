package heatmap

import (
	"math"
	"sort"
)

// waypoint is a place a path can bend at: a room corner or the middle of an
// open door. A door waypoint belongs to both rooms it connects.
type waypoint struct {
	pos   Point
	rooms []int
}

type edge struct {
	to     int
	weight float64
}

// link is a waypoint visible from a grid cell, with the straight distance to it.
type link struct {
	node int
	dist float64
}

// floorGraph is the visibility graph of a layout. Paths never cross walls:
// two points are joined only when the segment between them stays inside a
// common room.
type floorGraph struct {
	layout    Layout
	nodes     []waypoint
	byRoom    [][]int
	doorNodes []int // node index per door, -1 for closed doors
	edges     [][]edge
}

func newFloorGraph(layout Layout) *floorGraph {
	f := &floorGraph{
		layout:    layout,
		byRoom:    make([][]int, len(layout.Rooms)),
		doorNodes: make([]int, len(layout.Doors)),
	}
	index := make(map[string]int, len(layout.Rooms))
	for ri, room := range layout.Rooms {
		if _, ok := index[room.Name]; !ok {
			index[room.Name] = ri
		}
		for _, c := range room.Corners {
			f.add(c, ri)
		}
	}
	for di, door := range layout.Doors {
		f.doorNodes[di] = -1
		r1, ok1 := index[door.Room1]
		r2, ok2 := index[door.Room2]
		if door.Closed || !ok1 || !ok2 {
			continue
		}
		f.doorNodes[di] = f.add(door.Midpoint(), r1, r2)
	}

	f.edges = make([][]edge, len(f.nodes))
	for ri, members := range f.byRoom {
		poly := layout.Rooms[ri].Corners
		for i, a := range members {
			for _, b := range members[i+1:] {
				pa, pb := f.nodes[a].pos, f.nodes[b].pos
				if !visible(poly, pa, pb) {
					continue
				}
				w := distance(pa, pb)
				f.edges[a] = append(f.edges[a], edge{to: b, weight: w})
				f.edges[b] = append(f.edges[b], edge{to: a, weight: w})
			}
		}
	}
	return f
}

func (f *floorGraph) add(p Point, rooms ...int) int {
	id := len(f.nodes)
	f.nodes = append(f.nodes, waypoint{pos: p, rooms: rooms})
	for _, r := range rooms {
		f.byRoom[r] = append(f.byRoom[r], id)
	}
	return id
}

// distances runs Dijkstra from a point in room and returns the shortest
// walking distance to every waypoint, +Inf where none exists.
func (f *floorGraph) distances(room int, from Point) []float64 {
	n := len(f.nodes)
	dist := make([]float64, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	poly := f.layout.Rooms[room].Corners
	for _, id := range f.byRoom[room] {
		if visible(poly, from, f.nodes[id].pos) {
			dist[id] = distance(from, f.nodes[id].pos)
		}
	}
	for {
		cur := -1
		for i := range dist {
			if !done[i] && !math.IsInf(dist[i], 1) && (cur < 0 || dist[i] < dist[cur]) {
				cur = i
			}
		}
		if cur < 0 {
			return dist
		}
		done[cur] = true
		for _, e := range f.edges[cur] {
			if nd := dist[cur] + e.weight; nd < dist[e.to] {
				dist[e.to] = nd
			}
		}
	}
}

// links lists the waypoints of room that can see p.
func (f *floorGraph) links(room int, p Point) []link {
	poly := f.layout.Rooms[room].Corners
	var out []link
	for _, id := range f.byRoom[room] {
		if visible(poly, f.nodes[id].pos, p) {
			out = append(out, link{node: id, dist: distance(f.nodes[id].pos, p)})
		}
	}
	return out
}

// reach is the shortest distance from sensor s to the cell p in room, given
// the waypoints the cell sees. It is +Inf when the sensor cannot reach p.
func (f *floorGraph) reach(s placedSensor, room int, cell []link, p Point) float64 {
	best := math.Inf(1)
	if s.room == room && visible(f.layout.Rooms[room].Corners, s.pos, p) {
		best = distance(s.pos, p)
	}
	for _, l := range cell {
		if d := s.dists[l.node] + l.dist; d < best {
			best = d
		}
	}
	return best
}

// visible reports whether the segment a-b stays inside poly. Touching a wall
// or running along it is allowed; crossing one is not.
func visible(poly []Point, a, b Point) bool {
	n := len(poly)
	cuts := []float64{0, 1}
	for i := range poly {
		c, d := poly[i], poly[(i+1)%n]
		if crosses(a, b, c, d) {
			return false
		}
		if t, ok := along(a, b, c); ok {
			cuts = append(cuts, t)
		}
	}
	// Between two corners lying on the segment it is either fully inside or
	// fully outside, so one sample per piece decides.
	sort.Float64s(cuts)
	for i := 1; i < len(cuts); i++ {
		if cuts[i]-cuts[i-1] < 1e-12 {
			continue
		}
		t := (cuts[i] + cuts[i-1]) / 2
		mid := Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
		if !insidePolygon(poly, mid) {
			return false
		}
	}
	return true
}

// crosses reports a proper intersection: each segment has the end points of
// the other strictly on opposite sides.
func crosses(a, b, c, d Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

func orientation(a, b, c Point) int {
	const eps = 1e-12
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case v > eps:
		return 1
	case v < -eps:
		return -1
	default:
		return 0
	}
}

// along returns where p sits on the segment a-b as a fraction of its length.
func along(a, b, p Point) (float64, bool) {
	l2 := (b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y)
	if l2 == 0 || !onSegment(a, b, p) {
		return 0, false
	}
	return ((p.X-a.X)*(b.X-a.X) + (p.Y-a.Y)*(b.Y-a.Y)) / l2, true
}
