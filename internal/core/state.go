package core

// PlayState classifies a device's transport state.
type PlayState string

const (
	StatePlaying PlayState = "PLAYING"
	StatePaused  PlayState = "PAUSED"
	StateStopped PlayState = "STOPPED"
	StateOther   PlayState = "OTHER"
)

// ParseTransportState maps a raw AVTransport state string to a PlayState.
// Sonos reports PAUSED_PLAYBACK for paused and TRANSITIONING between tracks.
func ParseTransportState(raw string) PlayState {
	switch raw {
	case "PLAYING":
		return StatePlaying
	case "PAUSED_PLAYBACK":
		return StatePaused
	case "STOPPED":
		return StateStopped
	default:
		return StateOther
	}
}
