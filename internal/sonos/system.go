package sonos

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scrobbled/scrobbled/internal/core"
)

// System combines discovery and per-device state fetching behind the
// two operations the poll loop needs.
type System struct {
	discovery *Discovery
	client    *Client
}

// NewSystem creates a System with the given discovery sweep and SOAP
// request timeouts.
func NewSystem(discoveryTimeout, requestTimeout time.Duration) *System {
	return &System{
		discovery: NewDiscovery(discoveryTimeout),
		client:    NewClient(requestTimeout),
	}
}

// Discover sweeps the network and enriches each result with its zone
// name. A device that will not answer GetZoneAttributes is still
// returned; it just keeps an empty name.
func (s *System) Discover(ctx context.Context) ([]core.Device, error) {
	devices, err := s.discovery.Discover(ctx)
	if err != nil && len(devices) == 0 {
		return nil, err
	}

	for i := range devices {
		name, err := s.client.GetZoneName(ctx, devices[i])
		if err != nil {
			continue
		}
		devices[i].Name = name
	}
	return devices, nil
}

// Snapshot fetches transport and position state in parallel and
// normalizes them into a single observation.
func (s *System) Snapshot(ctx context.Context, device core.Device) (core.Snapshot, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		transport *TransportInfo
		position  *PositionInfo
		firstErr  error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		t, err := s.client.GetTransportInfo(ctx, device)
		mu.Lock()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("get transport info: %w", err)
		}
		transport = t
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		p, err := s.client.GetPositionInfo(ctx, device)
		mu.Lock()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("get position info: %w", err)
		}
		position = p
		mu.Unlock()
	}()

	wg.Wait()
	if firstErr != nil {
		return core.Snapshot{}, firstErr
	}

	meta := parseTrackMetadata(position.TrackMetaData)
	return core.Snapshot{
		Artist:   meta.Artist,
		Title:    meta.Title,
		Album:    meta.Album,
		Duration: ParseClock(position.TrackDuration),
		Position: ParseClock(position.RelTime),
		State:    core.ParseTransportState(transport.CurrentTransportState),
	}, nil
}
