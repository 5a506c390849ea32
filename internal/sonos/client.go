package sonos

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/scrobbled/scrobbled/internal/core"
)

// Client provides read-only access to Sonos playback state. A scrobbler
// observes; it never controls the transport.
type Client struct {
	soap *SOAPClient
}

// NewClient creates a Sonos client with the given SOAP timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{soap: NewSOAPClient(timeout)}
}

// TransportInfo contains the playback transport state.
type TransportInfo struct {
	CurrentTransportState  string
	CurrentTransportStatus string
	CurrentSpeed           string
}

// GetTransportInfo retrieves the current transport state of a device.
func (c *Client) GetTransportInfo(ctx context.Context, device core.Device) (*TransportInfo, error) {
	args := map[string]string{"InstanceID": "0"}
	resp, err := c.soap.Call(ctx, device.IP, device.Port, avTransportEndpoint, avTransportService, "GetTransportInfo", args)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Body struct {
			Response TransportInfo `xml:"GetTransportInfoResponse"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &envelope.Body.Response, nil
}

// PositionInfo contains current track and position information.
type PositionInfo struct {
	Track         int    `xml:"Track"`
	TrackDuration string `xml:"TrackDuration"`
	TrackMetaData string `xml:"TrackMetaData"`
	TrackURI      string `xml:"TrackURI"`
	RelTime       string `xml:"RelTime"`
	AbsTime       string `xml:"AbsTime"`
}

// GetPositionInfo retrieves the current track position of a device.
func (c *Client) GetPositionInfo(ctx context.Context, device core.Device) (*PositionInfo, error) {
	args := map[string]string{"InstanceID": "0"}
	resp, err := c.soap.Call(ctx, device.IP, device.Port, avTransportEndpoint, avTransportService, "GetPositionInfo", args)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Body struct {
			Response PositionInfo `xml:"GetPositionInfoResponse"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &envelope.Body.Response, nil
}

// GetZoneName retrieves the room name a device is assigned to.
func (c *Client) GetZoneName(ctx context.Context, device core.Device) (string, error) {
	resp, err := c.soap.Call(ctx, device.IP, device.Port, devicePropertiesEndpoint, devicePropertiesService, "GetZoneAttributes", nil)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Body struct {
			Response struct {
				CurrentZoneName string `xml:"CurrentZoneName"`
			} `xml:"GetZoneAttributesResponse"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(resp, &envelope); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	return envelope.Body.Response.CurrentZoneName, nil
}
