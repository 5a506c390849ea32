package core

import "time"

// Device is a Sonos speaker found on the local network.
type Device struct {
	IP       string    `json:"ip"`
	Port     int       `json:"port"`
	UUID     string    `json:"uuid"`
	Name     string    `json:"name"` // zone (room) name, when known
	Location string    `json:"location"`
	LastSeen time.Time `json:"last_seen"`
}

// Addr returns the device's network address, used as its tracking key.
// Sonos speakers keep a stable LAN address far more reliably than a
// stable room name.
func (d Device) Addr() string {
	return d.IP
}

// DisplayName returns the room name when known, the address otherwise.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.IP
}
