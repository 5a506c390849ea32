package monitor

import (
	"time"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/scrobble"
)

// EventType classifies monitor events.
type EventType int

const (
	// EventSnapshot reports one device's snapshot and the engine's
	// decision about it.
	EventSnapshot EventType = iota
	// EventDevices reports a refreshed device list.
	EventDevices
	// EventFetchError reports a device that failed this tick.
	EventFetchError
)

// Event is one observation from the poll loop. The stream exists for
// display layers; decisions never depend on who is listening.
type Event struct {
	Type     EventType
	Time     time.Time
	Device   core.Device
	Snapshot core.Snapshot    // EventSnapshot
	Outcome  scrobble.Outcome // EventSnapshot
	Devices  []core.Device    // EventDevices
	Err      error            // EventFetchError
}
