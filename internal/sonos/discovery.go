package sonos

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scrobbled/scrobbled/internal/core"
)

const (
	ssdpAddr    = "239.255.255.250:1900"
	sonosURN    = "urn:schemas-upnp-org:device:ZonePlayer:1"
	defaultPort = 1400
)

var mSearchRequest = []byte(
	"M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 2\r\n" +
		"ST: " + sonosURN + "\r\n" +
		"\r\n",
)

// Discovery finds Sonos devices on the local network via SSDP.
type Discovery struct {
	timeout time.Duration
}

// NewDiscovery creates a Discovery with the given sweep timeout.
func NewDiscovery(timeout time.Duration) *Discovery {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Discovery{timeout: timeout}
}

// Discover sends an M-SEARCH and collects responses until the sweep
// timeout or context cancellation. Devices are de-duplicated by UUID.
func (d *Discovery) Discover(ctx context.Context) ([]core.Device, error) {
	addr, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve ssdp addr: %w", err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(d.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetReadDeadline(deadline)

	if _, err := conn.WriteToUDP(mSearchRequest, addr); err != nil {
		return nil, fmt.Errorf("send m-search: %w", err)
	}

	var devices []core.Device
	seen := make(map[string]bool)
	buf := make([]byte, 2048)

	for {
		select {
		case <-ctx.Done():
			return devices, ctx.Err()
		default:
		}

		n, remoteAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				break // sweep complete
			}
			continue
		}

		device, ok := parseSSDPResponse(buf[:n], remoteAddr)
		if !ok || seen[device.UUID] {
			continue
		}
		seen[device.UUID] = true

		device.LastSeen = time.Now()
		devices = append(devices, device)
	}

	return devices, nil
}

// parseSSDPResponse extracts a device from one SSDP response datagram.
func parseSSDPResponse(data []byte, addr *net.UDPAddr) (core.Device, bool) {
	resp, err := http.ReadResponse(bufio.NewReader(strings.NewReader(string(data))), nil)
	if err != nil {
		return core.Device{}, false
	}
	defer resp.Body.Close()

	if resp.Header.Get("ST") != sonosURN {
		return core.Device{}, false
	}

	uuid := extractUUID(resp.Header.Get("USN"))
	if uuid == "" {
		return core.Device{}, false
	}

	location := resp.Header.Get("Location")
	return core.Device{
		IP:       addr.IP.String(),
		Port:     locationPort(location),
		UUID:     uuid,
		Location: location,
	}, true
}

// extractUUID pulls the device UUID out of a USN header of the form
// uuid:RINCON_xxx::urn:schemas-upnp-org:device:ZonePlayer:1.
func extractUUID(usn string) string {
	if !strings.HasPrefix(usn, "uuid:") {
		return ""
	}
	id, _, _ := strings.Cut(strings.TrimPrefix(usn, "uuid:"), "::")
	return id
}

// locationPort returns the port of the device description URL, falling
// back to the standard Sonos port.
func locationPort(location string) int {
	u, err := url.Parse(location)
	if err != nil {
		return defaultPort
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	return defaultPort
}
