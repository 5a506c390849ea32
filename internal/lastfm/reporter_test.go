package lastfm

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/scrobble"
)

func TestScrobbleParams(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sub := scrobble.Submission{
		Artist:    "Radiohead",
		Title:     "Karma Police",
		Album:     "OK Computer",
		Duration:  264,
		Timestamp: ts,
	}

	p := scrobbleParams(sub)
	if p["artist"] != "Radiohead" {
		t.Errorf("artist = %v, want Radiohead", p["artist"])
	}
	if p["track"] != "Karma Police" {
		t.Errorf("track = %v, want Karma Police", p["track"])
	}
	if p["timestamp"] != ts.Unix() {
		t.Errorf("timestamp = %v, want %d", p["timestamp"], ts.Unix())
	}
	if p["album"] != "OK Computer" {
		t.Errorf("album = %v, want OK Computer", p["album"])
	}
	if p["duration"] != 264 {
		t.Errorf("duration = %v, want 264", p["duration"])
	}
}

func TestScrobbleParamsOmitsEmptyFields(t *testing.T) {
	p := scrobbleParams(scrobble.Submission{
		Artist:    "WFMU",
		Title:     "Live",
		Timestamp: time.Now(),
	})

	if _, ok := p["album"]; ok {
		t.Error("album present for empty album")
	}
	if _, ok := p["duration"]; ok {
		t.Error("duration present for unknown duration")
	}
}

func TestNowPlayingParams(t *testing.T) {
	p := nowPlayingParams(scrobble.Submission{
		Artist:   "Broadcast",
		Title:    "Tender Buttons",
		Album:    "Tender Buttons",
		Duration: 194,
	})

	if _, ok := p["timestamp"]; ok {
		t.Error("timestamp present in now playing params")
	}
	if p["artist"] != "Broadcast" {
		t.Errorf("artist = %v, want Broadcast", p["artist"])
	}
	if p["duration"] != 194 {
		t.Errorf("duration = %v, want 194", p["duration"])
	}
}

func TestCallBoundsSlowCalls(t *testing.T) {
	r := New(Config{Timeout: 25 * time.Millisecond}, zap.NewNop())

	err := r.call(context.Background(), func() error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("call error = %v, want deadline exceeded", err)
	}
}

func TestCallReturnsFnError(t *testing.T) {
	r := New(Config{Timeout: time.Second}, zap.NewNop())

	want := errors.New("provider error")
	err := r.call(context.Background(), func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("call error = %v, want %v", err, want)
	}
}

func TestCallHonorsCancelledContext(t *testing.T) {
	r := New(Config{Timeout: time.Second}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.call(ctx, func() error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("call error = %v, want canceled", err)
	}
}
