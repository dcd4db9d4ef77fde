// Package heatmap renders a floor temperature heatmap from a room layout and
// runs the configured generator command on behalf of the dashboard.
package heatmap

import (
	"encoding/json"
	"fmt"
	"os"

	"CapIot.dashboard/internal/models"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sensor is a temperature source placed on the floor plan.
type Sensor struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	SensorID string   `json:"sensor_id"`
	T0       *float64 `json:"t0,omitempty"`
}

// Position returns the sensor location.
func (s Sensor) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

type Room struct {
	Name    string   `json:"name"`
	Corners []Point  `json:"corners"`
	Sensors []Sensor `json:"sensors"`
}

type Door struct {
	Name     string `json:"name"`
	Room1    string `json:"room1"`
	Room2    string `json:"room2"`
	P1       Point  `json:"p1"`
	P2       Point  `json:"p2"`
	SensorID string `json:"sensor_id"`
	Closed   bool   `json:"closed,omitempty"`
}

// Midpoint is where paths cross the door.
func (d Door) Midpoint() Point {
	return Point{X: (d.P1.X + d.P2.X) / 2, Y: (d.P1.Y + d.P2.Y) / 2}
}

// Connects reports whether the door opens into room.
func (d Door) Connects(room string) bool {
	return d.Room1 == room || d.Room2 == room
}

// Layout is the floor plan. OOFs are objects of interest drawn on top of the map.
type Layout struct {
	Rooms []Room   `json:"rooms"`
	Doors []Door   `json:"doors"`
	OOFs  []Sensor `json:"oofs"`
}

// LoadLayout reads and validates a JSON layout file.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout %q: %w", path, err)
	}
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("decoding layout %q: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Validate checks that rooms are polygons and doors join known rooms.
func (l Layout) Validate() error {
	if len(l.Rooms) == 0 {
		return fmt.Errorf("error in layout: no rooms")
	}
	names := make(map[string]bool, len(l.Rooms))
	for _, room := range l.Rooms {
		if len(room.Corners) < 3 {
			return fmt.Errorf("error in layout: room [%s] needs at least 3 corners", room.Name)
		}
		names[room.Name] = true
	}
	for _, door := range l.Doors {
		if !names[door.Room1] || !names[door.Room2] {
			return fmt.Errorf("error in layout: door [%s] not connected to [%s] and [%s]", door.Name, door.Room1, door.Room2)
		}
	}
	return nil
}

// Temperatures maps sensor IDs to live readings from the device list.
func Temperatures(devices []models.Device) map[string]float64 {
	temps := make(map[string]float64, len(devices))
	for _, d := range devices {
		if t, ok := d.Temperature(); ok {
			temps[d.ID()] = t
		}
	}
	return temps
}

// temperatureOf resolves a sensor's temperature: live reading first, then t0.
func temperatureOf(s Sensor, live map[string]float64) (float64, bool) {
	if t, ok := live[s.SensorID]; ok {
		return t, true
	}
	if s.T0 != nil {
		return *s.T0, true
	}
	return 0, false
}
