package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/monitor"
	"github.com/scrobbled/scrobbled/internal/scrobble"
	"github.com/scrobbled/scrobbled/internal/tui/components"
	"github.com/scrobbled/scrobbled/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelSpeakers Panel = iota
	PanelActivity
)

const maxActivityEntries = 50

// Model is the watch dashboard model. It renders the event stream from the
// poll loop and never talks to speakers or Last.fm itself.
type Model struct {
	events <-chan monitor.Event

	width        int
	height       int
	focusedPanel Panel

	// State
	speakers  []core.Device
	status    map[string]*components.SpeakerStatus
	activity  []components.ActivityEntry
	scrobbles int

	// Components
	speakersView *components.Speakers
	activityView *components.Activity
	spin         spinner.Model

	// Overlays
	showHelp bool

	// Error handling
	lastError   error
	errorExpiry time.Time

	// Quit flag
	quitting bool
}

// NewModel creates a new dashboard model reading from events.
func NewModel(events <-chan monitor.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return Model{
		events:       events,
		focusedPanel: PanelSpeakers,
		status:       make(map[string]*components.SpeakerStatus),
		activity:     make([]components.ActivityEntry, 0),
		speakersView: components.NewSpeakers(),
		activityView: components.NewActivity(),
		spin:         sp,
	}
}

// Messages
type eventMsg monitor.Event
type eventsClosedMsg struct{}

// waitForEvent relays the next poll loop event into the bubbletea loop.
func waitForEvent(events <-chan monitor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		waitForEvent(m.events),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(monitor.Event(msg))
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		// The poll loop shut down; there is nothing left to watch.
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 2
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 1) % 2
		return m, nil

	case "j", "down":
		if m.focusedPanel == PanelSpeakers {
			m.speakersView.ScrollDown()
		} else {
			m.activityView.ScrollDown()
		}
		return m, nil

	case "k", "up":
		if m.focusedPanel == PanelSpeakers {
			m.speakersView.ScrollUp()
		} else {
			m.activityView.ScrollUp()
		}
		return m, nil
	}

	return m, nil
}

// apply folds one poll loop event into the model.
func (m *Model) apply(ev monitor.Event) {
	if time.Now().After(m.errorExpiry) {
		m.lastError = nil
	}

	switch ev.Type {
	case monitor.EventSnapshot:
		st := m.statusFor(ev.Device)
		prev := st.Outcome
		st.Snapshot = ev.Snapshot
		st.Outcome = ev.Outcome
		st.Seen = true
		st.Err = nil
		st.Updated = ev.Time
		m.recordOutcome(ev.Device, prev, ev.Outcome)

	case monitor.EventDevices:
		m.applySpeakers(ev.Devices)

	case monitor.EventFetchError:
		st := m.statusFor(ev.Device)
		newlyFailing := st.Err == nil
		st.Err = ev.Err
		st.Updated = ev.Time
		if newlyFailing {
			m.addActivity(components.ActivityError,
				fmt.Sprintf("%s unreachable", ev.Device.DisplayName()), ev.Time)
		}
	}
}

// applySpeakers replaces the speaker list and notes arrivals and departures.
func (m *Model) applySpeakers(devices []core.Device) {
	known := make(map[string]bool, len(m.speakers))
	for _, d := range m.speakers {
		known[d.Addr()] = true
	}
	next := make(map[string]bool, len(devices))
	for _, d := range devices {
		next[d.Addr()] = true
		if !known[d.Addr()] {
			m.addActivity(components.ActivityInfo,
				fmt.Sprintf("Found %s", d.DisplayName()), time.Now())
		}
	}
	for _, d := range m.speakers {
		if !next[d.Addr()] {
			m.addActivity(components.ActivityInfo,
				fmt.Sprintf("Lost %s", d.DisplayName()), time.Now())
			delete(m.status, d.Addr())
		}
	}

	m.speakers = devices
}

func (m *Model) statusFor(device core.Device) *components.SpeakerStatus {
	st, ok := m.status[device.Addr()]
	if !ok {
		st = &components.SpeakerStatus{Device: device}
		m.status[device.Addr()] = st
	}
	st.Device = device
	return st
}

// recordOutcome turns decision transitions into activity entries. Repeated
// verdicts for the same track stay silent.
func (m *Model) recordOutcome(device core.Device, prev, out scrobble.Outcome) {
	name := device.DisplayName()

	switch out.Verdict {
	case scrobble.VerdictStarted:
		m.addActivity(components.ActivityInfo,
			fmt.Sprintf("%s: %s", name, out.Identity), time.Now())

	case scrobble.VerdictScrobbled:
		m.scrobbles++
		m.addActivity(components.ActivityScrobble,
			fmt.Sprintf("%s (%s)", out.Identity, name), time.Now())

	case scrobble.VerdictFailed:
		if prev.Verdict != scrobble.VerdictFailed || prev.Identity != out.Identity {
			m.addActivity(components.ActivityError,
				fmt.Sprintf("Report failed: %s", out.Identity), time.Now())
		}
		m.lastError = out.Err
		m.errorExpiry = time.Now().Add(5 * time.Second)

	case scrobble.VerdictSuppressed:
		if prev.Verdict != scrobble.VerdictSuppressed || prev.Identity != out.Identity {
			m.addActivity(components.ActivityInfo,
				fmt.Sprintf("Skipped repeat: %s", out.Identity), time.Now())
		}
	}
}

func (m *Model) addActivity(kind components.ActivityKind, text string, at time.Time) {
	entry := components.ActivityEntry{Time: at, Kind: kind, Text: text}

	// Add to front, keep a bounded feed
	m.activity = append([]components.ActivityEntry{entry}, m.activity...)
	if len(m.activity) > maxActivityEntries {
		m.activity = m.activity[:maxActivityEntries]
	}
}

// ordered returns speaker statuses in discovery order.
func (m Model) ordered() []*components.SpeakerStatus {
	out := make([]*components.SpeakerStatus, 0, len(m.speakers))
	for _, d := range m.speakers {
		if st, ok := m.status[d.Addr()]; ok {
			out = append(out, st)
		} else {
			out = append(out, &components.SpeakerStatus{Device: d})
		}
	}
	return out
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Main layout: speakers on top, activity below, status bar at the bottom.
	topHeight := m.height * 55 / 100
	bottomHeight := m.height - topHeight - 1

	searching := ""
	if len(m.speakers) == 0 {
		searching = m.spin.View()
	}

	speakersView := m.speakersView.Render(m.ordered(), m.width-2, topHeight-2, m.focusedPanel == PanelSpeakers, searching)
	activityView := m.activityView.Render(m.activity, m.width-2, bottomHeight-2, m.focusedPanel == PanelActivity)

	main := lipgloss.JoinVertical(lipgloss.Left, speakersView, activityView)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  tab:switch panel  j/k:scroll")

	if m.lastError != nil {
		status = styles.Paused.Render("Error: " + m.lastError.Error())
	}

	count := styles.Muted.Render(fmt.Sprintf("%d scrobbled", m.scrobbles))
	gap := m.width - lipgloss.Width(status) - lipgloss.Width(count) - 2
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status + styles.Repeat(" ", gap) + count)
}

func (m Model) renderHelp() string {
	title := "scrobbled - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  Tab          Switch panel
  j/↓          Scroll down
  k/↑          Scroll up

  Speakers show the playing track and a progress bar; the amber tick
  marks the point where the track will be scrobbled.

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the watch dashboard and blocks until it exits.
func Run(events <-chan monitor.Event) error {
	model := NewModel(events)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
