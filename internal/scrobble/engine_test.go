package scrobble

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/store"
)

var (
	livingRoom = core.Device{IP: "192.168.1.45", Port: 1400, Name: "Living Room"}
	kitchen    = core.Device{IP: "192.168.1.46", Port: 1400, Name: "Kitchen"}
)

type fakeReporter struct {
	attempts   int
	reports    []Submission
	nowPlaying []Submission
	err        error
}

func (f *fakeReporter) Report(_ context.Context, sub Submission) error {
	f.attempts++
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, sub)
	return nil
}

func (f *fakeReporter) NowPlaying(_ context.Context, sub Submission) error {
	f.nowPlaying = append(f.nowPlaying, sub)
	return nil
}

func playing(artist, title string, duration, position int) core.Snapshot {
	return core.Snapshot{
		Artist:   artist,
		Title:    title,
		Album:    "Test Album",
		Duration: duration,
		Position: position,
		State:    core.StatePlaying,
	}
}

func paused(artist, title string, duration, position int) core.Snapshot {
	s := playing(artist, title, duration, position)
	s.State = core.StatePaused
	return s
}

// newTestEngine returns an engine with a controllable clock.
func newTestEngine(t *testing.T, threshold int) (*Engine, *fakeReporter, func(time.Duration)) {
	t.Helper()

	rep := &fakeReporter{}
	st := store.New(t.TempDir(), zap.NewNop())
	e := NewEngine(st, rep, threshold, zap.NewNop())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	advance := func(d time.Duration) { now = now.Add(d) }
	return e, rep, advance
}

func TestNewPlayAnchorsAndAnnounces(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	out := e.Evaluate(ctx, livingRoom, playing("Radiohead", "Karma Police", 300, 12))
	if out.Verdict != VerdictStarted {
		t.Fatalf("Verdict = %v, want %v", out.Verdict, VerdictStarted)
	}
	if out.Target != 75 {
		t.Errorf("Target = %d, want 75", out.Target)
	}
	if len(rep.reports) != 0 {
		t.Errorf("reports = %d, want 0", len(rep.reports))
	}
	if len(rep.nowPlaying) != 1 {
		t.Errorf("now playing updates = %d, want 1", len(rep.nowPlaying))
	}

	// The currently-playing mirror persists immediately on a new play.
	current := e.store.LoadCurrentlyPlaying()
	if _, ok := current[livingRoom.Addr()]; !ok {
		t.Error("currently playing record not persisted on new play")
	}

	// A device that starts paused is anchored without an announcement.
	out = e.Evaluate(ctx, kitchen, paused("Radiohead", "Karma Police", 300, 0))
	if out.Verdict != VerdictStarted {
		t.Errorf("Verdict = %v, want %v", out.Verdict, VerdictStarted)
	}
	if len(rep.nowPlaying) != 1 {
		t.Errorf("now playing updates = %d, want still 1", len(rep.nowPlaying))
	}
}

func TestScrobblesAtThresholdPercent(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Radiohead", "Karma Police", 300, 0))

	for _, pos := range []int{30, 60, 74} {
		out := e.Evaluate(ctx, livingRoom, playing("Radiohead", "Karma Police", 300, pos))
		if out.Verdict != VerdictTracking {
			t.Fatalf("at position %d: Verdict = %v, want %v", pos, out.Verdict, VerdictTracking)
		}
	}

	out := e.Evaluate(ctx, livingRoom, playing("Radiohead", "Karma Police", 300, 75))
	if out.Verdict != VerdictScrobbled {
		t.Fatalf("at position 75: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
	if len(rep.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(rep.reports))
	}

	sub := rep.reports[0]
	if sub.Artist != "Radiohead" || sub.Title != "Karma Police" {
		t.Errorf("submission = %q by %q, want Karma Police by Radiohead", sub.Title, sub.Artist)
	}
	if sub.Album != "Test Album" {
		t.Errorf("Album = %q, want %q", sub.Album, "Test Album")
	}
	if sub.Duration != 300 {
		t.Errorf("Duration = %d, want 300", sub.Duration)
	}
}

func TestAbsoluteFloor(t *testing.T) {
	// 50% of 600s would be 300s; the 240s floor wins.
	e, rep, _ := newTestEngine(t, 50)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Underworld", "Born Slippy", 600, 0))

	out := e.Evaluate(ctx, livingRoom, playing("Underworld", "Born Slippy", 600, 239))
	if out.Verdict != VerdictTracking {
		t.Fatalf("at position 239: Verdict = %v, want %v", out.Verdict, VerdictTracking)
	}
	if out.Target != 240 {
		t.Errorf("Target = %d, want 240", out.Target)
	}

	out = e.Evaluate(ctx, livingRoom, playing("Underworld", "Born Slippy", 600, 240))
	if out.Verdict != VerdictScrobbled {
		t.Fatalf("at position 240: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
	if len(rep.reports) != 1 {
		t.Errorf("reports = %d, want 1", len(rep.reports))
	}
}

func TestZeroDurationNeverScrobbles(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("WFMU", "Live Stream", 0, 0))

	for _, pos := range []int{100, 400, 1000, 5000} {
		out := e.Evaluate(ctx, livingRoom, playing("WFMU", "Live Stream", 0, pos))
		if out.Verdict != VerdictTracking {
			t.Errorf("at position %d: Verdict = %v, want %v", pos, out.Verdict, VerdictTracking)
		}
		if out.Target != 0 {
			t.Errorf("at position %d: Target = %d, want 0", pos, out.Target)
		}
	}
	if len(rep.reports) != 0 {
		t.Errorf("reports = %d, want 0", len(rep.reports))
	}
}

func TestPausedNeverScrobbles(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Portishead", "Glory Box", 300, 0))

	// Paused beyond the threshold position still does not report.
	out := e.Evaluate(ctx, livingRoom, paused("Portishead", "Glory Box", 300, 100))
	if out.Verdict != VerdictTracking {
		t.Fatalf("paused: Verdict = %v, want %v", out.Verdict, VerdictTracking)
	}
	if len(rep.reports) != 0 {
		t.Fatalf("reports while paused = %d, want 0", len(rep.reports))
	}

	// Resuming play makes the accumulated time count.
	out = e.Evaluate(ctx, livingRoom, playing("Portishead", "Glory Box", 300, 100))
	if out.Verdict != VerdictScrobbled {
		t.Errorf("resumed: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
}

func TestTrackChangeResetsAnchor(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Artist", "One", 300, 10))
	e.Evaluate(ctx, livingRoom, playing("Artist", "One", 300, 50))

	// Skipping to the next track mid-album: new anchor, no report.
	out := e.Evaluate(ctx, livingRoom, playing("Artist", "Two", 300, 200))
	if out.Verdict != VerdictStarted {
		t.Fatalf("track change: Verdict = %v, want %v", out.Verdict, VerdictStarted)
	}
	if len(rep.reports) != 0 {
		t.Fatalf("reports after track change = %d, want 0", len(rep.reports))
	}

	// Elapsed counts from the change point, not from position zero.
	out = e.Evaluate(ctx, livingRoom, playing("Artist", "Two", 300, 205))
	if out.Elapsed != 5 {
		t.Errorf("Elapsed = %d, want 5", out.Elapsed)
	}
	if out.Verdict != VerdictTracking {
		t.Errorf("Verdict = %v, want %v", out.Verdict, VerdictTracking)
	}

	out = e.Evaluate(ctx, livingRoom, playing("Artist", "Two", 300, 275))
	if out.Verdict != VerdictScrobbled {
		t.Errorf("at +75s: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
}

func TestBackwardSeekTreatedAsZero(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Can", "Halleluhwah", 300, 200))

	// Seeking backward puts the position behind the anchor.
	out := e.Evaluate(ctx, livingRoom, playing("Can", "Halleluhwah", 300, 100))
	if out.Verdict != VerdictTracking {
		t.Fatalf("backward seek: Verdict = %v, want %v", out.Verdict, VerdictTracking)
	}
	if out.Elapsed != 0 {
		t.Errorf("Elapsed = %d, want 0 after backward seek", out.Elapsed)
	}

	out = e.Evaluate(ctx, livingRoom, playing("Can", "Halleluhwah", 300, 150))
	if out.Elapsed != 0 {
		t.Errorf("Elapsed = %d, want 0 while behind the anchor", out.Elapsed)
	}
	if len(rep.reports) != 0 {
		t.Fatalf("reports = %d, want 0", len(rep.reports))
	}

	// Forward progress past the anchor accumulates normally again.
	out = e.Evaluate(ctx, livingRoom, playing("Can", "Halleluhwah", 300, 275))
	if out.Verdict != VerdictScrobbled {
		t.Errorf("at anchor+75: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
}

func TestRepeatCooldown(t *testing.T) {
	e, rep, advance := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Neu!", "Hallogallo", 300, 0))
	out := e.Evaluate(ctx, livingRoom, playing("Neu!", "Hallogallo", 300, 75))
	if out.Verdict != VerdictScrobbled {
		t.Fatalf("first pass: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}

	// The anchor re-armed at 75; another 75 seconds qualifies again but
	// falls inside the cooldown.
	advance(5 * time.Minute)
	out = e.Evaluate(ctx, livingRoom, playing("Neu!", "Hallogallo", 300, 150))
	if out.Verdict != VerdictSuppressed {
		t.Fatalf("within cooldown: Verdict = %v, want %v", out.Verdict, VerdictSuppressed)
	}
	if len(rep.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(rep.reports))
	}

	advance(31 * time.Minute)
	out = e.Evaluate(ctx, livingRoom, playing("Neu!", "Hallogallo", 300, 150))
	if out.Verdict != VerdictScrobbled {
		t.Errorf("after cooldown: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
	if len(rep.reports) != 2 {
		t.Errorf("reports = %d, want 2", len(rep.reports))
	}
}

func TestCooldownAppliesAcrossDevices(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Neu!", "Hallogallo", 300, 0))
	e.Evaluate(ctx, livingRoom, playing("Neu!", "Hallogallo", 300, 75))

	// A grouped speaker mirrors the same audio; it must not double-report.
	e.Evaluate(ctx, kitchen, playing("Neu!", "Hallogallo", 300, 0))
	out := e.Evaluate(ctx, kitchen, playing("Neu!", "Hallogallo", 300, 75))
	if out.Verdict != VerdictSuppressed {
		t.Errorf("second device: Verdict = %v, want %v", out.Verdict, VerdictSuppressed)
	}
	if len(rep.reports) != 1 {
		t.Errorf("reports = %d, want 1", len(rep.reports))
	}
}

func TestFailedReportRetriesNextCycle(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	rep.err = errors.New("provider down")

	e.Evaluate(ctx, livingRoom, playing("Low", "Especially Me", 300, 0))
	out := e.Evaluate(ctx, livingRoom, playing("Low", "Especially Me", 300, 75))
	if out.Verdict != VerdictFailed {
		t.Fatalf("Verdict = %v, want %v", out.Verdict, VerdictFailed)
	}
	if out.Err == nil {
		t.Error("Err = nil, want the report error")
	}
	if got := e.store.LoadLastReported(); len(got) != 0 {
		t.Errorf("last reported after failure = %v, want empty", got)
	}

	// Next cycle retries and succeeds.
	rep.err = nil
	out = e.Evaluate(ctx, livingRoom, playing("Low", "Especially Me", 300, 76))
	if out.Verdict != VerdictScrobbled {
		t.Errorf("retry: Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}
	if rep.attempts != 2 {
		t.Errorf("attempts = %d, want 2", rep.attempts)
	}
}

func TestCooldownSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir, zap.NewNop())
	rep := &fakeReporter{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	e := NewEngine(st, rep, 25, zap.NewNop())
	e.now = func() time.Time { return now }
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Suicide", "Dream Baby Dream", 300, 0))
	out := e.Evaluate(ctx, livingRoom, playing("Suicide", "Dream Baby Dream", 300, 75))
	if out.Verdict != VerdictScrobbled {
		t.Fatalf("Verdict = %v, want %v", out.Verdict, VerdictScrobbled)
	}

	// A restarted engine reloads the last-reported memory from disk.
	e2 := NewEngine(st, rep, 25, zap.NewNop())
	e2.now = func() time.Time { return now.Add(10 * time.Minute) }

	e2.Evaluate(ctx, livingRoom, playing("Suicide", "Dream Baby Dream", 300, 0))
	out = e2.Evaluate(ctx, livingRoom, playing("Suicide", "Dream Baby Dream", 300, 75))
	if out.Verdict != VerdictSuppressed {
		t.Errorf("after restart: Verdict = %v, want %v", out.Verdict, VerdictSuppressed)
	}
	if len(rep.reports) != 1 {
		t.Errorf("reports = %d, want 1", len(rep.reports))
	}
}

func TestEmptyIdentityIgnored(t *testing.T) {
	e, rep, _ := newTestEngine(t, 25)
	ctx := context.Background()

	out := e.Evaluate(ctx, livingRoom, core.Snapshot{
		Title:    "Some TV Input",
		Duration: 0,
		State:    core.StatePlaying,
	})
	if out.Verdict != VerdictIgnored {
		t.Errorf("no artist: Verdict = %v, want %v", out.Verdict, VerdictIgnored)
	}
	if len(rep.nowPlaying) != 0 {
		t.Errorf("now playing updates = %d, want 0", len(rep.nowPlaying))
	}

	// A later real track still anchors normally.
	out = e.Evaluate(ctx, livingRoom, playing("Tortoise", "Djed", 1260, 4))
	if out.Verdict != VerdictStarted {
		t.Errorf("Verdict = %v, want %v", out.Verdict, VerdictStarted)
	}
}

func TestFlushWritesCurrentMirror(t *testing.T) {
	e, _, _ := newTestEngine(t, 25)
	ctx := context.Background()

	e.Evaluate(ctx, livingRoom, playing("Broadcast", "Come On Let's Go", 197, 8))
	e.Evaluate(ctx, livingRoom, playing("Broadcast", "Come On Let's Go", 197, 20))
	e.Flush()

	current := e.store.LoadCurrentlyPlaying()
	rec, ok := current[livingRoom.Addr()]
	if !ok {
		t.Fatalf("no record for %s in %v", livingRoom.Addr(), current)
	}
	if rec.Device != "Living Room" {
		t.Errorf("Device = %q, want %q", rec.Device, "Living Room")
	}
	if rec.Position != 20 {
		t.Errorf("Position = %d, want 20", rec.Position)
	}
	if rec.StartPosition != 8 {
		t.Errorf("StartPosition = %d, want 8", rec.StartPosition)
	}
	if rec.State != core.StatePlaying {
		t.Errorf("State = %q, want %q", rec.State, core.StatePlaying)
	}

	// Flushing with nothing new is a no-op.
	e.Flush()
}
