package models

import "time"

type OccupancyState string

const (
	OccupancyUnknown  OccupancyState = "unknown"
	OccupancyOccupied OccupancyState = "occupied"
	OccupancyFree     OccupancyState = "free"
)

// OccupancyCell is one desk position in a room grid. An empty DeviceID marks
// a position with no sensor.
type OccupancyCell struct {
	DeviceID string         `json:"deviceId,omitempty"`
	State    OccupancyState `json:"state"`
}

type OccupancyRoom struct {
	Name  string            `json:"name"`
	Cells [][]OccupancyCell `json:"cells"`
}

type OccupancyMap struct {
	Rooms     []OccupancyRoom `json:"rooms"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// SnapshotResponse is served to clients that read the poller state.
type SnapshotResponse struct {
	Ready     bool       `json:"ready"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
	Devices   []Device   `json:"devices"`
}

// HeatmapResponse reports the outcome of a heatmap regeneration.
type HeatmapResponse struct {
	Message  string `json:"message"`
	ExitCode int    `json:"exitCode"`
	Image    string `json:"image,omitempty"`
}
