package tui

import (
	"context"
	"time"

	"CapIot.dashboard/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

const fetchTimeout = 10 * time.Second

// DeviceFetcher loads the device list shown by the dashboard.
type DeviceFetcher interface {
	ListDevices(ctx context.Context) (models.DeviceList, error)
}

type tickMsg struct{}

type fetchCompleteMsg struct {
	seq     uint64
	devices []models.Device
	at      time.Time
	err     error
}

func scheduleTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func fetchDevicesCmd(fetcher DeviceFetcher, seq uint64, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		list, err := fetcher.ListDevices(ctx)
		if err != nil {
			return fetchCompleteMsg{seq: seq, err: err}
		}
		return fetchCompleteMsg{seq: seq, devices: list.Devices, at: now()}
	}
}
