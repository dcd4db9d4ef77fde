package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDevices = `{
  "devices": [
    {
      "name": "projects/cn39e25vkss3h69meaqg/devices/bchonol7rihjtvdmd2vg",
      "type": "temperature",
      "productNumber": "102150",
      "labels": {"kit": "starter", "name": "Window"},
      "reported": {
        "networkStatus": {
          "signalStrength": 87,
          "rssi": -62,
          "updateTime": "2024-03-01T10:00:00Z",
          "cloudConnectors": [{"id": "ccon1", "signalStrength": 87, "rssi": -62}],
          "transmissionMode": "LOW_POWER_STANDARD_MODE"
        },
        "batteryStatus": {"percentage": 100, "updateTime": "2024-03-01T09:00:00Z"},
        "temperature": {
          "value": 21.55,
          "updateTime": "2024-03-01T10:00:00Z",
          "samples": [{"value": 21.55, "sampleTime": "2024-03-01T10:00:00Z"}]
        },
        "somethingNew": {"value": 1}
      }
    },
    {
      "name": "projects/cn39e25vkss3h69meaqg/devices/emupres01",
      "type": "pressure",
      "productNumber": "",
      "labels": {"kit": "lab"}
    }
  ],
  "nextPageToken": "abc"
}`

func TestDeviceListDecodesOptionalFields(t *testing.T) {
	var list DeviceList
	require.NoError(t, json.Unmarshal([]byte(sampleDevices), &list))

	require.Len(t, list.Devices, 2)
	assert.Equal(t, "abc", list.NextPageToken)

	first := list.Devices[0]
	assert.Equal(t, "bchonol7rihjtvdmd2vg", first.ID())
	assert.Equal(t, "Window", first.Labels.Name)
	require.NotNil(t, first.Reported)
	require.NotNil(t, first.Reported.Temperature)
	assert.InDelta(t, 21.55, first.Reported.Temperature.Value, 1e-9)
	assert.Len(t, first.Reported.Temperature.Samples, 1)
	assert.Nil(t, first.Reported.CO2)
	assert.Nil(t, first.Reported.DeskOccupancy)
	require.NotNil(t, first.Reported.NetworkStatus)
	assert.Equal(t, "ccon1", first.Reported.NetworkStatus.CloudConnectors[0].ID)

	second := list.Devices[1]
	assert.Nil(t, second.Reported)
	_, ok := second.Temperature()
	assert.False(t, ok)
}

func TestDeviceIDWithoutPath(t *testing.T) {
	assert.Equal(t, "plain", Device{Name: "plain"}.ID())
	assert.Equal(t, "", Device{}.ID())
}

func TestDeviceTemperatureFallsBackToHumidity(t *testing.T) {
	d := Device{Reported: &Reported{Humidity: &HumidityReading{Temperature: 19.5, RelativeHumidity: 40}}}
	v, ok := d.Temperature()
	require.True(t, ok)
	assert.InDelta(t, 19.5, v, 1e-9)

	d.Reported.Temperature = &TemperatureReading{Value: 22}
	v, ok = d.Temperature()
	require.True(t, ok)
	assert.InDelta(t, 22.0, v, 1e-9)
}
