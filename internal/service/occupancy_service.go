package service

import (
	"CapIot.dashboard/internal/models"
)

// RoomLayout places desk sensors on a fixed grid. Empty strings are positions
// without a sensor.
type RoomLayout struct {
	Name string
	Grid [][]string
}

// DefaultOccupancyLayout is the floor's two meeting rooms.
var DefaultOccupancyLayout = []RoomLayout{
	{
		Name: "Room A",
		Grid: [][]string{
			{"emuc0rgjmb3p1i9s4a11", "emuc0rgjmb3p1i9s4a12", "emuc0rgjmb3p1i9s4a13"},
			{"emuc0rgjmb3p1i9s4a21", "", "emuc0rgjmb3p1i9s4a23"},
		},
	},
	{
		Name: "Room B",
		Grid: [][]string{
			{"emuc0rgjmb3p1i9s4b11", "emuc0rgjmb3p1i9s4b12"},
			{"emuc0rgjmb3p1i9s4b21", "emuc0rgjmb3p1i9s4b22"},
		},
	},
}

// OccupancyService renders the occupancy grid, annotated from the latest
// snapshot when desk sensors report a state.
type OccupancyService struct {
	layout []RoomLayout
	source SnapshotSource
}

// NewOccupancyService creates a new OccupancyService. A nil layout falls back
// to DefaultOccupancyLayout.
func NewOccupancyService(layout []RoomLayout, source SnapshotSource) *OccupancyService {
	if layout == nil {
		layout = DefaultOccupancyLayout
	}
	return &OccupancyService{
		layout: layout,
		source: source,
	}
}

// Map builds the grid. Before the first successful poll every cell is unknown.
func (s *OccupancyService) Map() models.OccupancyMap {
	byID := map[string]models.Device{}
	var out models.OccupancyMap
	if s.source != nil {
		if devices, fetchedAt, ok := s.source.Snapshot(); ok {
			for _, d := range devices {
				byID[d.ID()] = d
			}
			out.UpdatedAt = &fetchedAt
		}
	}

	out.Rooms = make([]models.OccupancyRoom, 0, len(s.layout))
	for _, room := range s.layout {
		cells := make([][]models.OccupancyCell, len(room.Grid))
		for r, row := range room.Grid {
			cells[r] = make([]models.OccupancyCell, len(row))
			for c, id := range row {
				cells[r][c] = models.OccupancyCell{DeviceID: id, State: stateOf(byID, id)}
			}
		}
		out.Rooms = append(out.Rooms, models.OccupancyRoom{Name: room.Name, Cells: cells})
	}
	return out
}

func stateOf(byID map[string]models.Device, id string) models.OccupancyState {
	d, ok := byID[id]
	if id == "" || !ok || d.Reported == nil || d.Reported.DeskOccupancy == nil {
		return models.OccupancyUnknown
	}
	switch d.Reported.DeskOccupancy.State {
	case models.DeskOccupied:
		return models.OccupancyOccupied
	case models.DeskNotOccupied:
		return models.OccupancyFree
	default:
		return models.OccupancyUnknown
	}
}
