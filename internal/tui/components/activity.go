package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/scrobbled/scrobbled/internal/tui/styles"
)

// ActivityKind classifies an activity feed entry.
type ActivityKind int

const (
	ActivityInfo ActivityKind = iota
	ActivityScrobble
	ActivityError
)

// ActivityEntry is one line in the activity feed.
type ActivityEntry struct {
	Time time.Time
	Kind ActivityKind
	Text string
}

// Activity displays recent scrobbles, speaker changes and failures,
// newest first.
type Activity struct {
	offset int
}

// NewActivity creates a new Activity component
func NewActivity() *Activity {
	return &Activity{offset: 0}
}

// ScrollDown scrolls the feed down
func (a *Activity) ScrollDown() {
	a.offset++
}

// ScrollUp scrolls the feed up
func (a *Activity) ScrollUp() {
	if a.offset > 0 {
		a.offset--
	}
}

// Render renders the activity panel
func (a *Activity) Render(entries []ActivityEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("Activity", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("Nothing yet")
	} else {
		content = a.renderEntries(entries, width-4, height-4)
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

func (a *Activity) renderEntries(entries []ActivityEntry, width, maxLines int) string {
	if maxLines < 1 {
		maxLines = 1
	}
	if a.offset > len(entries)-maxLines {
		a.offset = len(entries) - maxLines
	}
	if a.offset < 0 {
		a.offset = 0
	}

	end := a.offset + maxLines
	if end > len(entries) {
		end = len(entries)
	}

	lines := make([]string, 0, maxLines)

	// Fixed overhead: icon (1) + " " (1) + padding for right-aligned time
	const overhead = 3

	for _, entry := range entries[a.offset:end] {
		timeAgo := formatTimeAgo(entry.Time)

		available := width - overhead - len(timeAgo)
		text := truncate(entry.Text, available)

		padding := width - overhead + 1 - len(text) - len(timeAgo)
		if padding < 1 {
			padding = 1
		}

		line := fmt.Sprintf("%s %s%s%s",
			activityIcon(entry.Kind),
			text,
			styles.Repeat(" ", padding),
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func activityIcon(kind ActivityKind) string {
	switch kind {
	case ActivityScrobble:
		return styles.Scrobbled.Render("✓")
	case ActivityError:
		return styles.Failed.Render("✗")
	default:
		return styles.Dim.Render("·")
	}
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
