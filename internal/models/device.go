package models

import (
	"strings"
	"time"
)

// DeviceList is the envelope returned by the upstream sensor API.
type DeviceList struct {
	Devices       []Device `json:"devices"`
	NextPageToken string   `json:"nextPageToken"` // Not followed, only one page is shown
}

// Device represents a single sensor unit as reported upstream.
type Device struct {
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	ProductNumber string    `json:"productNumber"`
	Labels        Labels    `json:"labels"`
	Reported      *Reported `json:"reported,omitempty"`
}

type Labels struct {
	Kit  string `json:"kit"`
	Name string `json:"name,omitempty"`
}

// Reported holds the latest readings. Every field is optional.
type Reported struct {
	NetworkStatus *NetworkStatus      `json:"networkStatus,omitempty"`
	BatteryStatus *BatteryStatus      `json:"batteryStatus,omitempty"`
	CO2           *CO2Reading         `json:"co2,omitempty"`
	Humidity      *HumidityReading    `json:"humidity,omitempty"`
	Pressure      *PressureReading    `json:"pressure,omitempty"`
	Temperature   *TemperatureReading `json:"temperature,omitempty"`
	DeskOccupancy *DeskOccupancy      `json:"deskOccupancy,omitempty"`
}

type NetworkStatus struct {
	SignalStrength   int              `json:"signalStrength"`
	RSSI             int              `json:"rssi"`
	UpdateTime       time.Time        `json:"updateTime"`
	TransmissionMode string           `json:"transmissionMode,omitempty"`
	CloudConnectors  []CloudConnector `json:"cloudConnectors,omitempty"`
}

type CloudConnector struct {
	ID             string `json:"id"`
	SignalStrength int    `json:"signalStrength"`
	RSSI           int    `json:"rssi"`
}

type BatteryStatus struct {
	Percentage int       `json:"percentage"`
	UpdateTime time.Time `json:"updateTime"`
}

type CO2Reading struct {
	PPM        int       `json:"ppm"`
	UpdateTime time.Time `json:"updateTime"`
}

type HumidityReading struct {
	Temperature      float64   `json:"temperature"`
	RelativeHumidity float64   `json:"relativeHumidity"`
	UpdateTime       time.Time `json:"updateTime"`
}

type PressureReading struct {
	Pascal     float64   `json:"pascal"`
	UpdateTime time.Time `json:"updateTime"`
}

type TemperatureReading struct {
	Value      float64             `json:"value"`
	UpdateTime time.Time           `json:"updateTime"`
	Samples    []TemperatureSample `json:"samples,omitempty"`
}

type TemperatureSample struct {
	Value      float64   `json:"value"`
	SampleTime time.Time `json:"sampleTime"`
}

// Desk occupancy states as reported upstream.
const (
	DeskOccupied    = "OCCUPIED"
	DeskNotOccupied = "NOT_OCCUPIED"
)

type DeskOccupancy struct {
	State      string    `json:"state"`
	UpdateTime time.Time `json:"updateTime"`
}

// ID returns the last path segment of the device resource name,
// e.g. "projects/p1/devices/abc" -> "abc".
func (d Device) ID() string {
	if i := strings.LastIndex(d.Name, "/"); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// Temperature returns the device temperature if it reports one, preferring a
// dedicated temperature reading over the humidity sensor's.
func (d Device) Temperature() (float64, bool) {
	if d.Reported == nil {
		return 0, false
	}
	if d.Reported.Temperature != nil {
		return d.Reported.Temperature.Value, true
	}
	if d.Reported.Humidity != nil {
		return d.Reported.Humidity.Temperature, true
	}
	return 0, false
}
