package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrobbled/scrobbled/internal/core"
	"github.com/scrobbled/scrobbled/internal/errors"
	"github.com/scrobbled/scrobbled/internal/sonos"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what every speaker is playing",
	Long:  `Discovers the Sonos speakers on the network and shows their current playback.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type speakerStatus struct {
	Speaker  string `json:"speaker"`
	IP       string `json:"ip"`
	State    string `json:"state"`
	Artist   string `json:"artist,omitempty"`
	Title    string `json:"title,omitempty"`
	Album    string `json:"album,omitempty"`
	Position int    `json:"position_seconds,omitempty"`
	Duration int    `json:"duration_seconds,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(),
		cfg.Sonos.DiscoveryTimeout()+cfg.Sonos.RequestTimeout())
	defer cancel()

	system := sonos.NewSystem(cfg.Sonos.DiscoveryTimeout(), cfg.Sonos.RequestTimeout())

	devices, err := system.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	if len(devices) == 0 {
		return errors.WithSuggestion(errors.ErrNoDevices,
			"Make sure your Sonos speakers are powered on and on the same network")
	}

	var result errors.PartialResult[[]speakerStatus]
	for _, device := range devices {
		snap, err := system.Snapshot(ctx, device)
		if err != nil {
			result.AddError(fmt.Errorf("%s: %w", device.DisplayName(), err))
			continue
		}
		result.Data = append(result.Data, speakerStatus{
			Speaker:  device.DisplayName(),
			IP:       device.IP,
			State:    string(snap.State),
			Artist:   snap.Artist,
			Title:    snap.Title,
			Album:    snap.Album,
			Position: snap.Position,
			Duration: snap.Duration,
		})
	}

	if JSONOutput() {
		if err := json.NewEncoder(os.Stdout).Encode(result.Data); err != nil {
			return err
		}
	} else {
		printStatusTable(result.Data)
	}

	if result.HasErrors() {
		fmt.Fprintln(os.Stderr, result.ErrorSummary())
	}
	return nil
}

func printStatusTable(statuses []speakerStatus) {
	table := NewTable("SPEAKER", "STATE", "TRACK", "POSITION")
	for _, s := range statuses {
		track := ""
		if s.Artist != "" || s.Title != "" {
			track = TruncateString(fmt.Sprintf("%s - %s", s.Artist, s.Title), 60)
		}
		position := ""
		if s.Duration > 0 {
			position = fmt.Sprintf("%s / %s", FormatDuration(s.Position), FormatDuration(s.Duration))
		} else if s.State == string(core.StatePlaying) {
			position = FormatDuration(s.Position)
		}
		table.Row(s.Speaker, stateLabel(s.State), track, position)
	}
	table.Flush()
}

func stateLabel(state string) string {
	switch core.PlayState(state) {
	case core.StatePlaying:
		return "playing"
	case core.StatePaused:
		return "paused"
	case core.StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}
