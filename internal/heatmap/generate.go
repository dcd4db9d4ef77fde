package heatmap

import "CapIot.dashboard/internal/models"

// Generate interpolates the live device temperatures over layout and writes
// the rendered PNG to out.
func Generate(layout Layout, devices []models.Device, opts Options, scale int, out string) (Grid, error) {
	live := Temperatures(devices)
	g, err := Compute(layout, live, opts)
	if err != nil {
		return Grid{}, err
	}
	if err := WritePNG(out, Render(layout, g, live, opts, scale)); err != nil {
		return Grid{}, err
	}
	return g, nil
}
