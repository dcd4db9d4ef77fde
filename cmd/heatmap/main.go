package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CapIot.dashboard/internal/config"
	"CapIot.dashboard/internal/heatmap"
	"CapIot.dashboard/internal/logging"
	"CapIot.dashboard/internal/models"
	"CapIot.dashboard/internal/repository"
)

type options struct {
	layoutPath string
	outPath    string
	grid       heatmap.Options
	scale      int
	noFetch    bool
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	defaults := heatmap.DefaultOptions()
	opts := options{}

	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.layoutPath, "layout", "layout.json", "Path to the floor layout JSON")
	fs.StringVar(&opts.outPath, "out", "public/temperature_heatmap.png", "Where to write the PNG")
	fs.IntVar(&opts.grid.Resolution, "resolution", defaults.Resolution, "Grid points per metre")
	fs.Float64Var(&opts.grid.TMin, "tmin", defaults.TMin, "Temperature mapped to the coldest colour")
	fs.Float64Var(&opts.grid.TMax, "tmax", defaults.TMax, "Temperature mapped to the hottest colour")
	fs.IntVar(&opts.scale, "scale", heatmap.DefaultScale, "Pixels per grid point")
	fs.BoolVar(&opts.noFetch, "no-fetch", false, "Use the layout t0 values instead of live readings")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.grid.Resolution <= 0 {
		return options{}, fmt.Errorf("invalid -resolution %d: must be > 0", opts.grid.Resolution)
	}
	if opts.grid.TMax <= opts.grid.TMin {
		return options{}, fmt.Errorf("invalid temperature range [%g, %g]", opts.grid.TMin, opts.grid.TMax)
	}
	if opts.scale <= 0 {
		return options{}, fmt.Errorf("invalid -scale %d: must be > 0", opts.scale)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger, err := logging.New(stderr, opts.logLevel, "heatmap")
	if err != nil {
		return err
	}

	layout, err := heatmap.LoadLayout(opts.layoutPath)
	if err != nil {
		return err
	}

	var devices []models.Device
	if !opts.noFetch {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		repo := repository.NewSensorAPIRepository(cfg.SensorAPIURL, cfg.SensorAPIKey, cfg.SensorAPISecret, cfg.UpstreamTimeout)
		list, err := repo.ListDevices(ctx)
		if err != nil {
			return err
		}
		devices = list.Devices
		logger.Info("Fetched live readings", "devices", len(devices))
	}

	if _, err := heatmap.Generate(layout, devices, opts.grid, opts.scale, opts.outPath); err != nil {
		return err
	}
	logger.Info("Heatmap written", "path", opts.outPath)
	return nil
}
