package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"CapIot.dashboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is everything the dashboard page renders.
type PageData struct {
	Ready        bool
	FetchedAt    time.Time
	Devices      []DeviceView
	Occupancy    models.OccupancyMap
	HeatmapURL   string
	PollInterval time.Duration
}

// Page renders the dashboard HTML.
type Page struct {
	tmpl *template.Template
}

// NewPage parses the embedded templates.
func NewPage() (*Page, error) {
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"millis": func(d time.Duration) int64 { return d.Milliseconds() },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

// Render writes the page for data to w.
func (p *Page) Render(w io.Writer, data PageData) error {
	if err := p.tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}
