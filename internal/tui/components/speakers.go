package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/scrobble"
	"github.com/scrobbled/scrobbled/internal/tui/styles"
)

// SpeakerStatus is everything the dashboard knows about one speaker.
type SpeakerStatus struct {
	Device   core.Device
	Snapshot core.Snapshot
	Outcome  scrobble.Outcome
	Seen     bool // at least one successful poll
	Err      error
	Updated  time.Time
}

// Speakers displays every discovered speaker with its playback and
// scrobble progress.
type Speakers struct {
	offset int
}

// NewSpeakers creates a new Speakers component
func NewSpeakers() *Speakers {
	return &Speakers{offset: 0}
}

// ScrollDown scrolls the speaker list down
func (s *Speakers) ScrollDown() {
	s.offset++
}

// ScrollUp scrolls the speaker list up
func (s *Speakers) ScrollUp() {
	if s.offset > 0 {
		s.offset--
	}
}

// Render renders the speakers panel
func (s *Speakers) Render(statuses []*SpeakerStatus, width, height int, focused bool, searching string) string {
	title := styles.PanelTitle("Speakers", focused)

	var content string
	if len(statuses) == 0 {
		if searching != "" {
			content = styles.Muted.Render(searching + " Searching for Sonos speakers...")
		} else {
			content = styles.Muted.Render("No speakers found")
		}
	} else {
		content = s.renderSpeakers(statuses, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

// Each speaker occupies a fixed block of four lines, the last being a
// separator.
const speakerBlockLines = 4

func (s *Speakers) renderSpeakers(statuses []*SpeakerStatus, width, maxLines int) string {
	visible := maxLines / speakerBlockLines
	if visible < 1 {
		visible = 1
	}
	if s.offset > len(statuses)-visible {
		s.offset = len(statuses) - visible
	}
	if s.offset < 0 {
		s.offset = 0
	}

	end := s.offset + visible
	if end > len(statuses) {
		end = len(statuses)
	}

	lines := make([]string, 0, maxLines)
	for i := s.offset; i < end; i++ {
		lines = append(lines, s.renderSpeaker(statuses[i], width)...)
	}

	if end < len(statuses) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(statuses)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s *Speakers) renderSpeaker(st *SpeakerStatus, width int) []string {
	name := styles.Title.Render(st.Device.DisplayName())
	header := fmt.Sprintf("%s %s  %s", stateIcon(st), name, statusTag(st))

	if st.Err != nil {
		return []string{
			header,
			"  " + styles.Muted.Render(st.Err.Error()),
			"",
			"",
		}
	}

	snap := st.Snapshot
	if !snap.HasIdentity() {
		return []string{
			header,
			"  " + styles.Muted.Render("Nothing playing"),
			"",
			"",
		}
	}

	track := fmt.Sprintf("%s — %s", truncate(snap.Artist, width/3), truncate(snap.Title, width/2))
	trackLine := "  " + track
	if snap.Album != "" {
		trackLine += "  " + styles.Dim.Render(truncate(snap.Album, width/4))
	}

	return []string{
		header,
		trackLine,
		"  " + s.renderProgress(st, width-4),
		"",
	}
}

func (s *Speakers) renderProgress(st *SpeakerStatus, width int) string {
	snap := st.Snapshot

	current := formatClock(snap.Position)
	if snap.Duration <= 0 {
		return fmt.Sprintf("%s %s", current, styles.Dim.Render("(length unknown)"))
	}

	total := formatClock(snap.Duration)
	barWidth := width - len(current) - len(total) - 2
	if barWidth < 10 {
		barWidth = 10
	}

	markerPct := 0.0
	if st.Outcome.Target > 0 {
		markerPct = float64(st.Outcome.Target) / float64(snap.Duration) * 100
	}

	bar := styles.ScrobbleBar(snap.ProgressPercent(), markerPct, barWidth)
	return fmt.Sprintf("%s %s %s", current, bar, total)
}

func stateIcon(st *SpeakerStatus) string {
	if st.Err != nil {
		return styles.Failed.Render("✗")
	}
	switch st.Snapshot.State {
	case core.StatePlaying:
		return styles.Playing.Render("▶")
	case core.StatePaused:
		return styles.Paused.Render("⏸")
	default:
		return styles.Dim.Render("■")
	}
}

func statusTag(st *SpeakerStatus) string {
	if st.Err != nil {
		return styles.Failed.Render("unreachable")
	}

	switch st.Outcome.Verdict {
	case scrobble.VerdictScrobbled:
		return styles.Scrobbled.Render("scrobbled ✓")
	case scrobble.VerdictSuppressed:
		return styles.Paused.Render("repeat window")
	case scrobble.VerdictFailed:
		return styles.Failed.Render("report failed")
	case scrobble.VerdictStarted, scrobble.VerdictTracking:
		if st.Snapshot.State != core.StatePlaying {
			return styles.Dim.Render("paused")
		}
		if st.Outcome.Target <= 0 {
			return styles.Dim.Render("not scrobblable")
		}
		remaining := st.Outcome.Target - st.Outcome.Elapsed
		if remaining < 0 {
			remaining = 0
		}
		return styles.Dim.Render("scrobble in " + formatClock(remaining))
	default:
		return styles.Dim.Render("idle")
	}
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
