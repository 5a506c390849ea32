package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Artist:    e.Artist,
		Title:     e.Title,
		Album:     e.Album,
		Device:    e.Device,
	}
	if e.Err != nil {
		data.Error = e.Err.Error()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Artist    string
	Title     string
	Album     string
	Device    string
	Error     string
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	track := fmt.Sprintf("%s - %s", e.Artist, e.Title)

	switch e.Type {
	case EventNowPlaying:
		return fmt.Sprintf("Now playing: %s [%s]", track, e.Device)

	case EventScrobbled:
		return fmt.Sprintf("Scrobbled: %s", track)

	case EventScrobbleFailed:
		if e.Err != nil {
			return fmt.Sprintf("Scrobble failed: %s (%v)", track, e.Err)
		}
		return fmt.Sprintf("Scrobble failed: %s", track)

	case EventRepeatSkipped:
		return fmt.Sprintf("Skipped repeat: %s", track)

	case EventPaused:
		return fmt.Sprintf("Paused: %s [%s]", track, e.Device)

	case EventResumed:
		return fmt.Sprintf("Resumed: %s [%s]", track, e.Device)

	case EventSpeakerFound:
		return fmt.Sprintf("Speaker found: %s", e.Device)

	case EventSpeakerLost:
		return fmt.Sprintf("Speaker lost: %s", e.Device)

	case EventSpeakerUnreachable:
		if e.Err != nil {
			return fmt.Sprintf("Speaker unreachable: %s (%v)", e.Device, e.Err)
		}
		return fmt.Sprintf("Speaker unreachable: %s", e.Device)

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventNowPlaying:
		return "🎵"
	case EventScrobbled:
		return "✅"
	case EventScrobbleFailed:
		return "❌"
	case EventRepeatSkipped:
		return "🔁"
	case EventPaused:
		return "⏸️"
	case EventResumed:
		return "▶️"
	case EventSpeakerFound:
		return "🔊"
	case EventSpeakerLost:
		return "🔇"
	case EventSpeakerUnreachable:
		return "⚠️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventNowPlaying:
		return "now_playing"
	case EventScrobbled:
		return "scrobbled"
	case EventScrobbleFailed:
		return "scrobble_failed"
	case EventRepeatSkipped:
		return "repeat_skipped"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventSpeakerFound:
		return "speaker_found"
	case EventSpeakerLost:
		return "speaker_lost"
	case EventSpeakerUnreachable:
		return "speaker_unreachable"
	default:
		return "unknown"
	}
}
