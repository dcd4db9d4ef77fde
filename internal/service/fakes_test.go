package service

import (
	"context"
	"sync"
	"time"

	"CapIot.dashboard/internal/heatmap"
	"CapIot.dashboard/internal/models"
	"CapIot.dashboard/internal/repository"
)

var fixedTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeRepo struct {
	raw    repository.RawResponse
	rawErr error
	list   func(ctx context.Context) (models.DeviceList, error)
}

func (f *fakeRepo) FetchRaw(ctx context.Context) (repository.RawResponse, error) {
	return f.raw, f.rawErr
}

func (f *fakeRepo) ListDevices(ctx context.Context) (models.DeviceList, error) {
	return f.list(ctx)
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls [][]models.Device
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, devices []models.Device) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, devices)
	return p.err
}

func (p *recordingPublisher) last() []models.Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	return p.calls[len(p.calls)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type staticSource struct {
	devices []models.Device
	ok      bool
}

func (s staticSource) Snapshot() ([]models.Device, time.Time, bool) {
	return s.devices, fixedTime, s.ok
}

type fakeRunner struct {
	res heatmap.Result
	err error
	n   int
}

func (f *fakeRunner) Run(ctx context.Context) (heatmap.Result, error) {
	f.n++
	return f.res, f.err
}

func device(id string) models.Device {
	return models.Device{Name: "projects/p/devices/" + id, Labels: models.Labels{Kit: "kit"}}
}
