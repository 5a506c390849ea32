package tail

import (
	"time"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/monitor"
	"github.com/scrobbled/scrobbled/internal/scrobble"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventNowPlaying EventType = iota
	EventScrobbled
	EventScrobbleFailed
	EventRepeatSkipped
	EventPaused
	EventResumed
	EventSpeakerFound
	EventSpeakerLost
	EventSpeakerUnreachable
)

// Event represents one line-worthy observation.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Device    string
	Artist    string
	Title     string
	Album     string
	Err       error
}

// observation is what Translate remembers about a device between polls.
type observation struct {
	identity core.Identity
	state    core.PlayState
	verdict  scrobble.Verdict
	failing  bool
}

// Translator derives semantic events from the raw poll stream. Repeated
// verdicts for the same track collapse into a single event.
type Translator struct {
	devices map[string]string // addr -> display name
	last    map[string]observation
}

// NewTranslator creates an empty translator.
func NewTranslator() *Translator {
	return &Translator{
		devices: make(map[string]string),
		last:    make(map[string]observation),
	}
}

// Translate folds one poll event and returns the events worth printing.
func (t *Translator) Translate(ev monitor.Event) []Event {
	switch ev.Type {
	case monitor.EventDevices:
		return t.translateDevices(ev)
	case monitor.EventFetchError:
		return t.translateFetchError(ev)
	case monitor.EventSnapshot:
		return t.translateSnapshot(ev)
	}
	return nil
}

func (t *Translator) translateDevices(ev monitor.Event) []Event {
	var out []Event

	next := make(map[string]string, len(ev.Devices))
	for _, d := range ev.Devices {
		next[d.Addr()] = d.DisplayName()
		if _, known := t.devices[d.Addr()]; !known {
			out = append(out, Event{
				Type:      EventSpeakerFound,
				Timestamp: ev.Time,
				Device:    d.DisplayName(),
			})
		}
	}
	for addr, name := range t.devices {
		if _, still := next[addr]; !still {
			out = append(out, Event{
				Type:      EventSpeakerLost,
				Timestamp: ev.Time,
				Device:    name,
			})
			delete(t.last, addr)
		}
	}

	t.devices = next
	return out
}

func (t *Translator) translateFetchError(ev monitor.Event) []Event {
	addr := ev.Device.Addr()
	obs := t.last[addr]
	if obs.failing {
		return nil
	}
	obs.failing = true
	t.last[addr] = obs

	return []Event{{
		Type:      EventSpeakerUnreachable,
		Timestamp: ev.Time,
		Device:    ev.Device.DisplayName(),
		Err:       ev.Err,
	}}
}

func (t *Translator) translateSnapshot(ev monitor.Event) []Event {
	addr := ev.Device.Addr()
	prev := t.last[addr]
	snap := ev.Snapshot
	out := ev.Outcome

	var events []Event
	add := func(typ EventType, err error) {
		events = append(events, Event{
			Type:      typ,
			Timestamp: ev.Time,
			Device:    ev.Device.DisplayName(),
			Artist:    snap.Artist,
			Title:     snap.Title,
			Album:     snap.Album,
			Err:       err,
		})
	}

	switch out.Verdict {
	case scrobble.VerdictStarted:
		add(EventNowPlaying, nil)
	case scrobble.VerdictScrobbled:
		add(EventScrobbled, nil)
	case scrobble.VerdictFailed:
		if prev.verdict != scrobble.VerdictFailed || prev.identity != out.Identity {
			add(EventScrobbleFailed, out.Err)
		}
	case scrobble.VerdictSuppressed:
		if prev.verdict != scrobble.VerdictSuppressed || prev.identity != out.Identity {
			add(EventRepeatSkipped, nil)
		}
	}

	// Pause and resume only make sense while the track stays the same.
	if out.Verdict != scrobble.VerdictStarted && prev.identity == out.Identity && snap.HasIdentity() {
		if prev.state == core.StatePlaying && snap.State == core.StatePaused {
			add(EventPaused, nil)
		}
		if prev.state == core.StatePaused && snap.State == core.StatePlaying {
			add(EventResumed, nil)
		}
	}

	t.last[addr] = observation{
		identity: out.Identity,
		state:    snap.State,
		verdict:  out.Verdict,
	}
	return events
}
