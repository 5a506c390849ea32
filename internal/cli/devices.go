package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrobbled/scrobbled/internal/errors"
	"github.com/scrobbled/scrobbled/internal/sonos"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List Sonos speakers on the network",
	Long:  `Sends an SSDP search and lists every Sonos speaker that answers.`,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(),
		cfg.Sonos.DiscoveryTimeout()+cfg.Sonos.RequestTimeout())
	defer cancel()

	system := sonos.NewSystem(cfg.Sonos.DiscoveryTimeout(), cfg.Sonos.RequestTimeout())

	devices, err := system.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(devices) == 0 {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode([]interface{}{})
		}
		return errors.WithSuggestion(errors.ErrNoDevices,
			"Make sure your Sonos speakers are powered on and on the same network")
	}

	if JSONOutput() {
		type deviceOut struct {
			Name string `json:"name"`
			IP   string `json:"ip"`
			Port int    `json:"port"`
			UUID string `json:"uuid"`
		}
		out := make([]deviceOut, 0, len(devices))
		for _, d := range devices {
			out = append(out, deviceOut{Name: d.DisplayName(), IP: d.IP, Port: d.Port, UUID: d.UUID})
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	table := NewTable("NAME", "IP", "PORT")
	if Verbose() {
		table = NewTable("NAME", "IP", "PORT", "UUID")
	}
	for _, d := range devices {
		if Verbose() {
			table.Row(d.DisplayName(), d.IP, fmt.Sprintf("%d", d.Port), d.UUID)
		} else {
			table.Row(d.DisplayName(), d.IP, fmt.Sprintf("%d", d.Port))
		}
	}
	table.Flush()

	return nil
}
