// Package tui is the terminal version of the dashboard device list.
package tui

import (
	"fmt"
	"strings"
	"time"

	"CapIot.dashboard/internal/view"

	tea "github.com/charmbracelet/bubbletea"
)

// Config configures the terminal dashboard.
type Config struct {
	Fetcher      DeviceFetcher
	PollInterval time.Duration
	Source       string
	Now          func() time.Time
}

// App is the bubbletea model. Nothing is listed until the first fetch
// succeeds; every later success replaces the whole list.
type App struct {
	fetcher  DeviceFetcher
	interval time.Duration
	source   string
	now      func() time.Time

	issued  uint64
	applied uint64

	ready     bool
	devices   []view.DeviceView
	fetchedAt time.Time
	lastError string
	width     int
}

// NewApp creates the model.
func NewApp(cfg Config) *App {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &App{
		fetcher:  cfg.Fetcher,
		interval: interval,
		source:   cfg.Source,
		now:      now,
	}
}

func (m *App) Init() tea.Cmd {
	return tea.Batch(m.startFetch(), scheduleTick(m.interval))
}

// startFetch numbers the fetch so a slow reply cannot replace a newer list.
func (m *App) startFetch() tea.Cmd {
	m.issued++
	return fetchDevicesCmd(m.fetcher, m.issued, m.now)
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.startFetch(), scheduleTick(m.interval))
	case fetchCompleteMsg:
		if msg.err != nil {
			m.lastError = fmt.Sprintf("refresh failed: %v", msg.err)
			return m, nil
		}
		if msg.seq < m.applied {
			return m, nil
		}
		m.applied = msg.seq
		m.ready = true
		m.devices = view.FormatDevices(msg.devices)
		m.fetchedAt = msg.at
		m.lastError = ""
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.startFetch()
		}
	}
	return m, nil
}

func (m *App) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Floor dashboard"))
	if m.source != "" {
		b.WriteString(styleType.Render("  " + m.source))
	}
	b.WriteString("\n\n")

	if !m.ready {
		b.WriteString(styleDim.Render("Waiting for first reading…"))
		b.WriteString("\n")
	} else if len(m.devices) == 0 {
		b.WriteString(styleDim.Render("No devices reported."))
		b.WriteString("\n")
	}
	for _, d := range m.devices {
		b.WriteString(styleLabel.Render(d.Label))
		if d.Type != "" {
			b.WriteString(" " + styleType.Render(d.Type))
		}
		b.WriteString("\n")
		for _, row := range d.Rows {
			b.WriteString("  " + styleRowName.Render(row.Label) + styleValue.Render(row.Value) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *App) statusLine() string {
	if m.lastError != "" {
		return styleError.Render(m.lastError) + styleDim.Render("  r refresh · q quit")
	}
	status := "r refresh · q quit"
	if m.ready {
		status = fmt.Sprintf("%d devices · updated %s · %s", len(m.devices), m.fetchedAt.Format("15:04:05"), status)
	}
	return styleDim.Render(status)
}
