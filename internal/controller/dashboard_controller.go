package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CapIot.dashboard/internal/heatmap"
	"CapIot.dashboard/internal/logging"
	"CapIot.dashboard/internal/models"
	"CapIot.dashboard/internal/repository"
	"CapIot.dashboard/internal/service"
	"CapIot.dashboard/internal/utils"
	"CapIot.dashboard/internal/view"
	"github.com/charmbracelet/log"
)

// DashboardController handles the dashboard HTTP endpoints.
type DashboardController struct {
	proxy        *service.ProxyService
	snapshots    service.SnapshotSource
	occupancy    *service.OccupancyService
	heatmap      *service.HeatmapService
	page         *view.Page
	pollInterval time.Duration
	logger       *log.Logger
}

// Deps groups what the controller serves from.
type Deps struct {
	Proxy        *service.ProxyService
	Snapshots    service.SnapshotSource
	Occupancy    *service.OccupancyService
	Heatmap      *service.HeatmapService
	Page         *view.Page
	PollInterval time.Duration
	Logger       *log.Logger
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(deps Deps) *DashboardController {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &DashboardController{
		proxy:        deps.Proxy,
		snapshots:    deps.Snapshots,
		occupancy:    deps.Occupancy,
		heatmap:      deps.Heatmap,
		page:         deps.Page,
		pollInterval: deps.PollInterval,
		logger:       logger,
	}
}

// HandleIndex renders the dashboard page from the latest snapshot.
func (c *DashboardController) HandleIndex(w http.ResponseWriter, r *http.Request) {
	devices, fetchedAt, ready := c.snapshots.Snapshot()
	data := view.PageData{
		Ready:        ready,
		FetchedAt:    fetchedAt,
		Devices:      view.FormatDevices(devices),
		Occupancy:    c.occupancy.Map(),
		HeatmapURL:   c.heatmap.ImageURL(),
		PollInterval: c.pollInterval,
	}

	var buf bytes.Buffer
	if err := c.page.Render(&buf, data); err != nil {
		c.logger.Error("Failed to render dashboard", "err", err)
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInternalServerError, err.Error(), nil, http.StatusInternalServerError))
		return
	}
	utils.RespondRaw(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// HandleDevices proxies the upstream device list. A successful upstream
// response is forwarded unmodified; any failure is answered with a 500.
func (c *DashboardController) HandleDevices(w http.ResponseWriter, r *http.Request) {
	raw, err := c.proxy.Devices(r.Context())
	if err != nil {
		c.logger.Error("Device proxy failed", "err", err)

		code := models.ErrorCodeUpstreamUnavailable
		var details any
		var statusErr *repository.UpstreamStatusError
		if errors.As(err, &statusErr) {
			code = models.ErrorCodeUpstreamFailed
			details = map[string]int{"upstreamStatus": statusErr.StatusCode}
		}
		utils.RespondWithError(w, models.NewAPIError(code, err.Error(), details, http.StatusInternalServerError))
		return
	}
	utils.RespondRaw(w, raw.StatusCode, raw.ContentType, raw.Body)
}

// HandleSnapshot returns the poller's current snapshot.
func (c *DashboardController) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	devices, fetchedAt, ready := c.snapshots.Snapshot()
	resp := models.SnapshotResponse{Ready: ready, Devices: devices}
	if ready {
		resp.FetchedAt = &fetchedAt
	}
	if resp.Devices == nil {
		resp.Devices = []models.Device{}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// HandleOccupancy returns the occupancy grid.
func (c *DashboardController) HandleOccupancy(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.occupancy.Map())
}

// HandleHeatmap regenerates the heatmap image and reports the exit code.
func (c *DashboardController) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	res, err := c.heatmap.Regenerate(r.Context())
	if err != nil {
		details := models.HeatmapResponse{ExitCode: res.ExitCode}
		var exitErr *heatmap.ExitError
		if errors.As(err, &exitErr) {
			details.Message = exitErr.Stderr
		}
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeHeatmapFailed, err.Error(), details, http.StatusInternalServerError))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.HeatmapResponse{
		Message:  fmt.Sprintf("Heatmap generated in %s", res.Duration.Round(time.Millisecond)),
		ExitCode: res.ExitCode,
		Image:    c.heatmap.ImageURL(),
	})
}

// HandleHealth answers liveness probes.
func (c *DashboardController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
