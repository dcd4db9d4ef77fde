// Package view turns device snapshots into what the dashboard shows.
package view

import (
	"fmt"

	"CapIot.dashboard/internal/models"
)

// Row is one labelled reading.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DeviceView is a device ready for display.
type DeviceView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Rows  []Row  `json:"rows"`
}

// DeviceLabel returns the friendly name, else the kit, else the device ID.
func DeviceLabel(d models.Device) string {
	switch {
	case d.Labels.Name != "":
		return d.Labels.Name
	case d.Labels.Kit != "":
		return d.Labels.Kit
	default:
		return d.ID()
	}
}

// FormatDevice builds the rows for every reading the device reports. Readings
// it does not report are left out.
func FormatDevice(d models.Device) DeviceView {
	v := DeviceView{
		ID:    d.ID(),
		Label: DeviceLabel(d),
		Type:  d.Type,
		Rows:  []Row{},
	}
	r := d.Reported
	if r == nil {
		return v
	}

	if r.Temperature != nil {
		v.Rows = append(v.Rows, Row{"Temperature", fmt.Sprintf("%.1f °C", r.Temperature.Value)})
	}
	if r.Humidity != nil {
		if r.Temperature == nil {
			v.Rows = append(v.Rows, Row{"Temperature", fmt.Sprintf("%.1f °C", r.Humidity.Temperature)})
		}
		v.Rows = append(v.Rows, Row{"Humidity", fmt.Sprintf("%.1f %%RH", r.Humidity.RelativeHumidity)})
	}
	if r.CO2 != nil {
		v.Rows = append(v.Rows, Row{"CO2", fmt.Sprintf("%d ppm", r.CO2.PPM)})
	}
	if r.Pressure != nil {
		v.Rows = append(v.Rows, Row{"Pressure", fmt.Sprintf("%.1f hPa", r.Pressure.Pascal/100)})
	}
	if r.DeskOccupancy != nil {
		v.Rows = append(v.Rows, Row{"Desk", r.DeskOccupancy.State})
	}
	if r.BatteryStatus != nil {
		v.Rows = append(v.Rows, Row{"Battery", fmt.Sprintf("%d %%", r.BatteryStatus.Percentage)})
	}
	if r.NetworkStatus != nil {
		v.Rows = append(v.Rows, Row{"Signal", fmt.Sprintf("%d %% (%d dBm)", r.NetworkStatus.SignalStrength, r.NetworkStatus.RSSI)})
	}
	return v
}

// FormatDevices formats a whole snapshot, keeping upstream order.
func FormatDevices(devices []models.Device) []DeviceView {
	out := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		out = append(out, FormatDevice(d))
	}
	return out
}
