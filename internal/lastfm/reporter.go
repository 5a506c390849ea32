// Package lastfm delivers scrobbles to the Last.fm API.
package lastfm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/scrobble"
)

// Config carries Last.fm account credentials and the per-call timeout.
type Config struct {
	Username  string
	Password  string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Reporter implements scrobble.Reporter using a Last.fm mobile session
// (username and password). Login happens lazily on the first call and is
// re-attempted on later calls if it failed; an established session is
// reused forever, since Last.fm session keys do not expire.
type Reporter struct {
	api *lastfm.Api
	cfg Config
	log *zap.Logger

	mu     sync.Mutex
	authed bool
}

// New creates a reporter. It performs no network I/O.
func New(cfg Config, log *zap.Logger) *Reporter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Reporter{
		api: lastfm.New(cfg.APIKey, cfg.APISecret),
		cfg: cfg,
		log: log,
	}
}

// Connect logs in eagerly so credential problems surface at startup
// instead of at the first scrobble.
func (r *Reporter) Connect(ctx context.Context) error {
	return r.ensureSession(ctx)
}

// Report submits one play.
func (r *Reporter) Report(ctx context.Context, sub scrobble.Submission) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	err := r.call(ctx, func() error {
		_, err := r.api.Track.Scrobble(scrobbleParams(sub))
		return err
	})
	if err != nil {
		return fmt.Errorf("scrobble %q: %w", sub.Title, err)
	}
	return nil
}

// NowPlaying updates the listener's now-playing status.
func (r *Reporter) NowPlaying(ctx context.Context, sub scrobble.Submission) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	err := r.call(ctx, func() error {
		_, err := r.api.Track.UpdateNowPlaying(nowPlayingParams(sub))
		return err
	})
	if err != nil {
		return fmt.Errorf("update now playing %q: %w", sub.Title, err)
	}
	return nil
}

func (r *Reporter) ensureSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.authed {
		return nil
	}

	err := r.call(ctx, func() error {
		return r.api.Login(r.cfg.Username, r.cfg.Password)
	})
	if err != nil {
		return fmt.Errorf("last.fm login: %w", err)
	}

	r.authed = true
	r.log.Info("authenticated with last.fm", zap.String("user", r.cfg.Username))
	return nil
}

// call runs fn under the configured timeout. The lastfm library has no
// context support, so a hung call is abandoned rather than interrupted.
func (r *Reporter) call(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func scrobbleParams(sub scrobble.Submission) lastfm.P {
	p := lastfm.P{
		"artist":    sub.Artist,
		"track":     sub.Title,
		"timestamp": sub.Timestamp.Unix(),
	}
	if sub.Album != "" {
		p["album"] = sub.Album
	}
	if sub.Duration > 0 {
		p["duration"] = sub.Duration
	}
	return p
}

func nowPlayingParams(sub scrobble.Submission) lastfm.P {
	p := lastfm.P{
		"artist": sub.Artist,
		"track":  sub.Title,
	}
	if sub.Album != "" {
		p["album"] = sub.Album
	}
	if sub.Duration > 0 {
		p["duration"] = sub.Duration
	}
	return p
}

var _ scrobble.Reporter = (*Reporter)(nil)
