package heatmap

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"CapIot.dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// twoRooms is two 4x4 rooms side by side joined by a door on x=4.
func twoRooms(closed bool) Layout {
	return Layout{
		Rooms: []Room{
			{
				Name:    "west",
				Corners: []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}},
				Sensors: []Sensor{{X: 1, Y: 2, SensorID: "a", T0: ptr(20)}},
			},
			{
				Name:    "east",
				Corners: []Point{{4, 0}, {8, 0}, {8, 4}, {4, 4}},
				Sensors: []Sensor{{X: 7, Y: 2, SensorID: "b"}},
			},
		},
		Doors: []Door{{
			Name: "d1", Room1: "west", Room2: "east",
			P1: Point{4, 1.5}, P2: Point{4, 2.5}, Closed: closed,
		}},
	}
}

func valueAt(g Grid, x, y float64) float64 {
	nearest := func(axis []float64, v float64) int {
		best := 0
		for i := range axis {
			if math.Abs(axis[i]-v) < math.Abs(axis[best]-v) {
				best = i
			}
		}
		return best
	}
	return g.Values[nearest(g.Ys, y)][nearest(g.Xs, x)]
}

func TestComputeGridDimensions(t *testing.T) {
	g, err := Compute(twoRooms(false), nil, Options{Resolution: 5, TMin: 18, TMax: 27})
	require.NoError(t, err)

	assert.Len(t, g.Xs, 40)
	assert.Len(t, g.Ys, 20)
	assert.Equal(t, 0.0, g.XMin)
	assert.Equal(t, 8.0, g.XMax)
	assert.InDelta(t, 8.0, g.Xs[len(g.Xs)-1], 1e-9)
	require.Len(t, g.Values, 20)
	assert.Len(t, g.Values[0], 40)
}

func TestSingleSensorFillsReachableRooms(t *testing.T) {
	g, err := Compute(twoRooms(false), nil, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 20.0, valueAt(g, 2, 2), 1e-9)
	assert.InDelta(t, 20.0, valueAt(g, 7, 3), 1e-9, "open door lets the west sensor reach the east room")
}

func TestClosedDoorBlocksSensor(t *testing.T) {
	g, err := Compute(twoRooms(true), nil, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 20.0, valueAt(g, 2, 2), 1e-9)
	assert.True(t, math.IsNaN(valueAt(g, 7, 3)))
}

func TestLiveReadingOverridesT0AndWeightsByDistance(t *testing.T) {
	live := map[string]float64{"a": 20, "b": 26}
	g, err := Compute(twoRooms(false), live, DefaultOptions())
	require.NoError(t, err)

	near := valueAt(g, 1.2, 2)
	assert.Greater(t, near, 20.0)
	assert.Less(t, near, 20.5, "the nearby sensor dominates")

	mid := valueAt(g, 4.6, 2)
	assert.Greater(t, mid, 21.0)
	assert.Less(t, mid, 26.0)

	live["a"] = 24
	g, err = Compute(twoRooms(true), live, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 24.0, valueAt(g, 2, 2), 1e-9)
	assert.InDelta(t, 26.0, valueAt(g, 7, 3), 1e-9)
}

func TestCellsOutsideRoomsAreEmpty(t *testing.T) {
	layout := Layout{Rooms: []Room{{
		Name:    "only",
		Corners: []Point{{2, 2}, {4, 2}, {4, 4}, {2, 4}},
		Sensors: []Sensor{{X: 3, Y: 3, SensorID: "s", T0: ptr(21)}},
	}}}
	g, err := Compute(layout, nil, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, math.IsNaN(valueAt(g, 0, 0)))
	assert.InDelta(t, 21.0, valueAt(g, 3, 3), 1e-9)
}

func TestSensorsWithoutTemperatureAreSkipped(t *testing.T) {
	layout := twoRooms(false)
	layout.Rooms[0].Sensors[0].T0 = nil
	g, err := Compute(layout, nil, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(valueAt(g, 2, 2)))
}

func TestValidateLayout(t *testing.T) {
	assert.Error(t, Layout{}.Validate())

	bad := twoRooms(false)
	bad.Doors[0].Room2 = "attic"
	assert.ErrorContains(t, bad.Validate(), "door [d1] not connected")

	tri := twoRooms(false)
	tri.Rooms[0].Corners = tri.Rooms[0].Corners[:2]
	assert.ErrorContains(t, tri.Validate(), "room [west]")

	_, err := Compute(twoRooms(false), nil, Options{Resolution: 0})
	assert.Error(t, err)
}

func TestDoorDistancesChainThroughRooms(t *testing.T) {
	layout := twoRooms(false)
	layout.Rooms = append(layout.Rooms, Room{Name: "north", Corners: []Point{{4, 4}, {8, 4}, {8, 8}, {4, 8}}})
	layout.Doors = append(layout.Doors, Door{Name: "d2", Room1: "east", Room2: "north", P1: Point{5, 4}, P2: Point{7, 4}})

	graph := newFloorGraph(layout)
	dists := graph.distances(0, Point{1, 2})
	assert.InDelta(t, 3.0, dists[graph.doorNodes[0]], 1e-9)
	assert.InDelta(t, 3+math.Hypot(2, 2), dists[graph.doorNodes[1]], 1e-9)

	layout.Doors[0].Closed = true
	graph = newFloorGraph(layout)
	assert.Equal(t, -1, graph.doorNodes[0])
	dists = graph.distances(0, Point{1, 2})
	assert.True(t, math.IsInf(dists[graph.doorNodes[1]], 1))
}

func TestTemperaturesFromDevices(t *testing.T) {
	devices := []models.Device{
		{Name: "projects/p/devices/a", Reported: &models.Reported{Temperature: &models.TemperatureReading{Value: 22.5}}},
		{Name: "projects/p/devices/h", Reported: &models.Reported{Humidity: &models.HumidityReading{Temperature: 19}}},
		{Name: "projects/p/devices/c", Reported: &models.Reported{CO2: &models.CO2Reading{PPM: 500}}},
		{Name: "projects/p/devices/n"},
	}
	assert.Equal(t, map[string]float64{"a": 22.5, "h": 19}, Temperatures(devices))
}

func TestJetEndpoints(t *testing.T) {
	assert.Equal(t, uint8(0), Jet(0).R)
	assert.Equal(t, uint8(128), Jet(0).B)
	assert.Equal(t, uint8(255), Jet(0.5).G)
	assert.Equal(t, uint8(128), Jet(1).R)
	assert.Equal(t, uint8(0), Jet(1).B)
	assert.Equal(t, Jet(1), Jet(5), "values above the range clamp")
}

func TestGenerateWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "public", "temperature_heatmap.png")
	devices := []models.Device{{Name: "projects/p/devices/b", Reported: &models.Reported{Temperature: &models.TemperatureReading{Value: 25}}}}

	g, err := Generate(twoRooms(false), devices, DefaultOptions(), 4, out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, len(g.Xs)*4, img.Bounds().Dx())
	assert.Equal(t, len(g.Ys)*4, img.Bounds().Dy())
}
