// Package scrobble decides when an observed play has earned a report.
package scrobble

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/store"
)

const (
	// absoluteFloorSeconds reports any play after this much listening,
	// no matter how long the track is.
	absoluteFloorSeconds = 240

	// repeatCooldown is the minimum gap between two reports of the same
	// identity, across all devices. Grouped speakers playing the same
	// audio de-duplicate through it.
	repeatCooldown = 30 * time.Minute
)

// tracking is the per-device record of the identity being accumulated.
type tracking struct {
	identity      core.Identity
	startedAt     time.Time
	startPosition int
}

// Engine applies the scrobbling rules to device snapshots. It owns the
// per-device tracking records and the global last-reported memory, and
// is the only writer of either. Not safe for concurrent use; the poll
// loop owns it.
type Engine struct {
	store     *store.Store
	reporter  Reporter
	log       *zap.Logger
	threshold int // percent of track duration, [0,100]

	now func() time.Time

	tracking     map[string]*tracking
	lastReported map[string]store.ReportRecord
	current      map[string]store.PlayingRecord
	currentDirty bool
}

// NewEngine creates an engine backed by the given store and reporter.
// Prior last-reported memory is loaded from the store, so cooldowns
// survive restarts; per-device tracking always starts fresh.
func NewEngine(st *store.Store, rep Reporter, thresholdPercent int, log *zap.Logger) *Engine {
	return &Engine{
		store:        st,
		reporter:     rep,
		log:          log,
		threshold:    thresholdPercent,
		now:          time.Now,
		tracking:     make(map[string]*tracking),
		lastReported: st.LoadLastReported(),
		current:      st.LoadCurrentlyPlaying(),
	}
}

// Evaluate folds one snapshot into the device's tracking state and
// reports the play once it qualifies.
func (e *Engine) Evaluate(ctx context.Context, device core.Device, snap core.Snapshot) Outcome {
	if !snap.HasIdentity() {
		return Outcome{Verdict: VerdictIgnored}
	}

	addr := device.Addr()
	id := snap.Identity()
	now := e.now()

	rec := e.tracking[addr]
	if rec == nil || rec.identity != id {
		rec = &tracking{identity: id, startedAt: now, startPosition: snap.Position}
		e.tracking[addr] = rec
		e.updateCurrent(device, snap, now)
		e.Flush()
		e.log.Info("tracking new play",
			zap.String("device", device.DisplayName()),
			zap.String("track", id.String()))
		if snap.State == core.StatePlaying {
			e.announce(ctx, device, snap)
		}
		return Outcome{Verdict: VerdictStarted, Identity: id, Target: e.target(snap.Duration)}
	}

	e.updateCurrent(device, snap, now)

	elapsed := snap.Position - rec.startPosition
	out := Outcome{
		Verdict:  VerdictTracking,
		Identity: id,
		Elapsed:  max(elapsed, 0),
		Target:   e.target(snap.Duration),
	}

	if snap.State != core.StatePlaying {
		return out
	}
	if !e.qualifies(elapsed, snap.Duration) {
		return out
	}

	if last, ok := e.lastReported[id.Key()]; ok && now.Sub(last.ReportedAt) < repeatCooldown {
		out.Verdict = VerdictSuppressed
		return out
	}

	sub := Submission{
		Artist:    snap.Artist,
		Title:     snap.Title,
		Album:     snap.Album,
		Duration:  snap.Duration,
		Timestamp: now,
	}
	if err := e.reporter.Report(ctx, sub); err != nil {
		e.log.Warn("scrobble failed",
			zap.String("device", device.DisplayName()),
			zap.String("track", id.String()),
			zap.Error(err))
		out.Verdict = VerdictFailed
		out.Err = err
		return out
	}

	e.lastReported[id.Key()] = store.ReportRecord{
		Artist:     snap.Artist,
		Title:      snap.Title,
		Album:      snap.Album,
		ReportedAt: now,
	}
	e.store.SaveLastReported(e.lastReported)

	// Re-arm so the same play can qualify again after the cooldown.
	rec.startedAt = now
	rec.startPosition = snap.Position
	e.updateCurrent(device, snap, now)

	e.log.Info("scrobbled",
		zap.String("device", device.DisplayName()),
		zap.String("track", id.String()),
		zap.Int("elapsed", out.Elapsed))
	out.Verdict = VerdictScrobbled
	return out
}

// Flush writes the currently-playing mirror when it changed since the
// last flush. The poll loop calls this at the end of each tick and on
// shutdown.
func (e *Engine) Flush() {
	if !e.currentDirty {
		return
	}
	e.store.SaveCurrentlyPlaying(e.current)
	e.currentDirty = false
}

// qualifies applies the report rule: positive listening time reaching
// the absolute floor or the configured share of a known duration.
func (e *Engine) qualifies(elapsed, duration int) bool {
	if duration <= 0 || elapsed < 0 {
		return false
	}
	if elapsed >= absoluteFloorSeconds {
		return true
	}
	return elapsed >= duration*e.threshold/100
}

// target returns the seconds of listening needed to scrobble, or 0
// when the duration is unknown and no target exists.
func (e *Engine) target(duration int) int {
	if duration <= 0 {
		return 0
	}
	t := duration * e.threshold / 100
	if t > absoluteFloorSeconds {
		t = absoluteFloorSeconds
	}
	return t
}

func (e *Engine) updateCurrent(device core.Device, snap core.Snapshot, now time.Time) {
	rec := e.tracking[device.Addr()]
	e.current[device.Addr()] = store.PlayingRecord{
		Device:        device.DisplayName(),
		Artist:        snap.Artist,
		Title:         snap.Title,
		Album:         snap.Album,
		State:         snap.State,
		Duration:      snap.Duration,
		Position:      snap.Position,
		StartPosition: rec.startPosition,
		StartedAt:     rec.startedAt,
		UpdatedAt:     now,
	}
	e.currentDirty = true
}

// announce sends a best-effort now-playing update.
func (e *Engine) announce(ctx context.Context, device core.Device, snap core.Snapshot) {
	sub := Submission{
		Artist:    snap.Artist,
		Title:     snap.Title,
		Album:     snap.Album,
		Duration:  snap.Duration,
		Timestamp: e.now(),
	}
	if err := e.reporter.NowPlaying(ctx, sub); err != nil {
		e.log.Debug("now playing update failed",
			zap.String("device", device.DisplayName()),
			zap.Error(err))
	}
}
