// Package monitor runs the device poll loop.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/scrobble"
)

// Source is the device side the monitor polls.
type Source interface {
	// Discover sweeps the network for devices.
	Discover(ctx context.Context) ([]core.Device, error)

	// Snapshot fetches one device's current playback observation.
	Snapshot(ctx context.Context, device core.Device) (core.Snapshot, error)
}

// Config holds the poll loop intervals.
type Config struct {
	Interval       time.Duration // time between ticks
	Rediscovery    time.Duration // time between device sweeps
	RequestTimeout time.Duration // cap on one device's snapshot fetch
}

// Monitor drives the scrobbler: it keeps the device list fresh, fetches
// snapshots every tick, and hands them to the engine sequentially.
type Monitor struct {
	source Source
	engine *scrobble.Engine
	cfg    Config
	log    *zap.Logger

	events chan Event
	done   chan struct{}

	devices []core.Device
	failing map[string]bool
}

// New creates a monitor. Non-positive intervals fall back to the
// defaults of 1s ticks, 10s rediscovery, and 5s fetch timeouts.
func New(source Source, engine *scrobble.Engine, cfg Config, log *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Rediscovery <= 0 {
		cfg.Rediscovery = 10 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	return &Monitor{
		source:  source,
		engine:  engine,
		cfg:     cfg,
		log:     log,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		failing: make(map[string]bool),
	}
}

// Events returns the monitor's event stream. Events are dropped when
// nobody drains the channel.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Stop ends Run from another goroutine.
func (m *Monitor) Stop() {
	close(m.done)
}

// Run polls until the context is cancelled or Stop is called. Pending
// state is flushed on the way out.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	rediscover := time.NewTicker(m.cfg.Rediscovery)
	defer rediscover.Stop()
	defer close(m.events)
	defer m.engine.Flush()

	// Discovery runs off the loop goroutine so a slow SSDP sweep never
	// stalls ticks. The flag keeps a lagging sweep from piling up more.
	found := make(chan []core.Device, 1)
	discovering := false
	startSweep := func() {
		if discovering {
			return
		}
		discovering = true
		go func() {
			devices, err := m.source.Discover(ctx)
			if err != nil && ctx.Err() == nil {
				m.log.Warn("discovery sweep failed", zap.Error(err))
			}
			found <- devices
		}()
	}

	m.log.Info("poll loop started",
		zap.Duration("interval", m.cfg.Interval),
		zap.Duration("rediscovery", m.cfg.Rediscovery))
	startSweep()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return nil
		case devices := <-found:
			discovering = false
			m.applyDevices(devices)
		case <-rediscover.C:
			startSweep()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick fetches every known device once and applies decisions in order.
func (m *Monitor) tick(ctx context.Context) {
	for _, device := range m.devices {
		if ctx.Err() != nil {
			return
		}

		snap, err := m.fetch(ctx, device)
		if err != nil {
			m.noteFetchError(device, err)
			m.emit(Event{Type: EventFetchError, Time: time.Now(), Device: device, Err: err})
			continue
		}
		delete(m.failing, device.Addr())

		out := m.engine.Evaluate(ctx, device, snap)
		m.emit(Event{Type: EventSnapshot, Time: time.Now(), Device: device, Snapshot: snap, Outcome: out})
	}

	m.engine.Flush()
}

func (m *Monitor) fetch(ctx context.Context, device core.Device) (core.Snapshot, error) {
	fctx, cancel := context.WithTimeout(ctx, m.cfg.RequestTimeout)
	defer cancel()
	return m.source.Snapshot(fctx, device)
}

// noteFetchError logs the first failure of a device at warn and the
// repeats at debug, so an unplugged speaker does not flood the log at
// one line per tick.
func (m *Monitor) noteFetchError(device core.Device, err error) {
	if m.failing[device.Addr()] {
		m.log.Debug("device still unreachable",
			zap.String("device", device.DisplayName()), zap.Error(err))
		return
	}
	m.failing[device.Addr()] = true
	m.log.Warn("device fetch failed, skipping",
		zap.String("device", device.DisplayName()), zap.Error(err))
}

// applyDevices replaces the device list with a sweep result and logs
// the diff. Appearing or disappearing devices are logged only; their
// tracking records live in the engine and survive short absences.
func (m *Monitor) applyDevices(devices []core.Device) {
	known := make(map[string]core.Device, len(m.devices))
	for _, d := range m.devices {
		known[d.Addr()] = d
	}

	next := make(map[string]core.Device, len(devices))
	for _, d := range devices {
		next[d.Addr()] = d
		if _, ok := known[d.Addr()]; !ok {
			m.log.Info("speaker found",
				zap.String("device", d.DisplayName()),
				zap.String("addr", d.Addr()))
		}
	}
	for addr, d := range known {
		if _, ok := next[addr]; !ok {
			m.log.Info("speaker lost",
				zap.String("device", d.DisplayName()),
				zap.String("addr", addr))
			delete(m.failing, addr)
		}
	}

	if len(devices) == 0 && len(m.devices) > 0 {
		m.log.Warn("no speakers found on the network")
	}

	m.devices = devices
	m.emit(Event{Type: EventDevices, Time: time.Now(), Devices: devices})
}

// emit delivers an event without ever blocking the loop.
func (m *Monitor) emit(e Event) {
	select {
	case m.events <- e:
	default:
	}
}
