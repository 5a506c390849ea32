package scrobble

import (
	"context"
	"time"
)

// Submission is one track report handed to a Reporter.
type Submission struct {
	Artist    string
	Title     string
	Album     string
	Duration  int // seconds; 0 when unknown
	Timestamp time.Time
}

// Reporter delivers submissions to a scrobbling provider. Implementations
// make one attempt per call and bound it with the context; the engine
// owns all retry-on-a-later-cycle behavior.
type Reporter interface {
	// Report submits a finished-enough play.
	Report(ctx context.Context, sub Submission) error

	// NowPlaying announces the track a device just started. Best-effort;
	// failures never affect scrobbling decisions.
	NowPlaying(ctx context.Context, sub Submission) error
}
