package service

import (
	"context"
	"fmt"
	"sync"

	"CapIot.dashboard/internal/heatmap"
	"CapIot.dashboard/internal/logging"
	"github.com/charmbracelet/log"
)

// HeatmapRunner runs the external image generator.
type HeatmapRunner interface {
	Run(ctx context.Context) (heatmap.Result, error)
}

// HeatmapService regenerates the static heatmap image on request. Runs are
// serialised so two requests never write the image at the same time.
type HeatmapService struct {
	runner    HeatmapRunner
	imageURL  string
	logger    *log.Logger
	runningMu sync.Mutex
}

// NewHeatmapService creates a new HeatmapService. imageURL is where clients
// fetch the generated image.
func NewHeatmapService(runner HeatmapRunner, imageURL string, logger *log.Logger) *HeatmapService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HeatmapService{
		runner:   runner,
		imageURL: imageURL,
		logger:   logger,
	}
}

// ImageURL returns the public path of the generated image.
func (s *HeatmapService) ImageURL() string {
	return s.imageURL
}

// Regenerate runs the generator once and reports its exit code.
func (s *HeatmapService) Regenerate(ctx context.Context) (heatmap.Result, error) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	res, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("Heatmap generation failed", "exitCode", res.ExitCode, "err", err)
		return res, fmt.Errorf("error generating heatmap: %w", err)
	}
	s.logger.Info("Heatmap regenerated", "duration", res.Duration)
	return res, nil
}
