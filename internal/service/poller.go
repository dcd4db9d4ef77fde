package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"CapIot.dashboard/internal/logging"
	"CapIot.dashboard/internal/models"
	"CapIot.dashboard/internal/repository"
	"github.com/charmbracelet/log"
)

// ErrStaleSnapshot is returned by PollOnce when a newer poll already landed.
var ErrStaleSnapshot = errors.New("poll result superseded by a newer poll")

// SnapshotPublisher receives every snapshot that replaces the current one.
type SnapshotPublisher interface {
	Publish(ctx context.Context, devices []models.Device) error
}

// SnapshotSource exposes the latest device list.
type SnapshotSource interface {
	Snapshot() ([]models.Device, time.Time, bool)
}

// Poller periodically fetches the device list and replaces the in-memory
// snapshot with it. Polls may overlap; each one is numbered when it starts and
// a result older than the applied one is dropped.
type Poller struct {
	repo      repository.Repository
	interval  time.Duration
	publisher SnapshotPublisher
	logger    *log.Logger
	now       func() time.Time

	issued atomic.Uint64

	// publishMu orders publishes so a superseded snapshot is never sent last.
	publishMu sync.Mutex

	mu        sync.RWMutex
	applied   uint64
	devices   []models.Device
	fetchedAt time.Time
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPublisher forwards each fresh snapshot to pub.
func WithPublisher(pub SnapshotPublisher) PollerOption {
	return func(p *Poller) {
		p.publisher = pub
	}
}

// WithLogger sets the poller logger.
func WithLogger(logger *log.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		p.now = now
	}
}

// NewPoller creates a Poller fetching every interval.
func NewPoller(repo repository.Repository, interval time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{
		repo:     repo,
		interval: interval,
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls immediately and then on every tick until ctx is cancelled.
// A slow poll does not delay the next tick.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	poll := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.PollOnce(ctx)
		}()
	}

	p.logger.Info("Starting sensor poller", "interval", p.interval)
	poll()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Sensor poller shutting down")
			return
		case <-ticker.C:
			poll()
		}
	}
}

// PollOnce fetches the device list once. On failure the current snapshot is
// left as it is.
func (p *Poller) PollOnce(ctx context.Context) error {
	id := p.issued.Add(1)

	list, err := p.repo.ListDevices(ctx)
	if err != nil {
		p.logger.Error("Error polling sensor API", "poll", id, "err", err)
		return err
	}

	if !p.apply(id, list.Devices) {
		p.logger.Debug("Dropping stale poll result", "poll", id)
		return ErrStaleSnapshot
	}
	p.logger.Debug("Snapshot replaced", "poll", id, "devices", len(list.Devices))

	p.publish(ctx, id, list.Devices)
	return nil
}

// publish forwards the snapshot of poll id unless a newer poll has been
// applied in the meantime.
func (p *Poller) publish(ctx context.Context, id uint64, devices []models.Device) {
	if p.publisher == nil {
		return
	}
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.RLock()
	current := p.applied
	p.mu.RUnlock()
	if id != current {
		p.logger.Debug("Skipping publish of superseded snapshot", "poll", id, "applied", current)
		return
	}
	if err := p.publisher.Publish(ctx, devices); err != nil {
		p.logger.Warn("Error publishing snapshot", "err", err)
	}
}

func (p *Poller) apply(id uint64, devices []models.Device) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id < p.applied {
		return false
	}
	if devices == nil {
		devices = []models.Device{}
	}
	p.applied = id
	p.devices = devices
	p.fetchedAt = p.now()
	return true
}

// Snapshot returns a copy of the latest device list, when it was fetched and
// whether any poll has succeeded yet.
func (p *Poller) Snapshot() ([]models.Device, time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.applied == 0 {
		return nil, time.Time{}, false
	}
	out := make([]models.Device, len(p.devices))
	copy(out, p.devices)
	return out, p.fetchedAt, true
}
