package scrobble

import "github.com/scrobbled/scrobbled/internal/core"

// Verdict classifies what the engine did with one snapshot.
type Verdict int

const (
	// VerdictIgnored means the snapshot carried no usable identity.
	VerdictIgnored Verdict = iota
	// VerdictStarted means a new identity was anchored on the device.
	VerdictStarted
	// VerdictTracking means the play is accumulating toward the threshold.
	VerdictTracking
	// VerdictScrobbled means the play was reported successfully.
	VerdictScrobbled
	// VerdictSuppressed means the play qualified but fell inside the
	// repeat cooldown.
	VerdictSuppressed
	// VerdictFailed means the report attempt errored.
	VerdictFailed
)

// String returns the verdict as a log-friendly word.
func (v Verdict) String() string {
	switch v {
	case VerdictIgnored:
		return "ignored"
	case VerdictStarted:
		return "started"
	case VerdictTracking:
		return "tracking"
	case VerdictScrobbled:
		return "scrobbled"
	case VerdictSuppressed:
		return "suppressed"
	case VerdictFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome describes the engine's decision for one snapshot.
type Outcome struct {
	Verdict  Verdict
	Identity core.Identity
	Elapsed  int // seconds credited toward the threshold (never negative)
	Target   int // seconds required to scrobble; 0 when duration is unknown
	Err      error
}
