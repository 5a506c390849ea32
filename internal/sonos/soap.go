package sonos

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	avTransportEndpoint      = "/MediaRenderer/AVTransport/Control"
	devicePropertiesEndpoint = "/DeviceProperties/Control"

	avTransportService      = "urn:schemas-upnp-org:service:AVTransport:1"
	devicePropertiesService = "urn:upnp-org:serviceId:DeviceProperties"
)

// SOAPClient makes UPnP SOAP requests to Sonos devices.
type SOAPClient struct {
	httpClient *http.Client
}

// NewSOAPClient creates a SOAP client with the given per-request timeout.
func NewSOAPClient(timeout time.Duration) *SOAPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SOAPClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Call invokes a SOAP action on a device and returns the raw response body.
func (c *SOAPClient) Call(ctx context.Context, host string, port int, endpoint, service, action string, args map[string]string) ([]byte, error) {
	url := fmt.Sprintf("http://%s:%d%s", host, port, endpoint)
	body := buildSOAPBody(service, action, args)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", fmt.Sprintf("\"%s#%s\"", service, action))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("soap request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("soap error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// buildSOAPBody constructs the SOAP envelope for one action call.
func buildSOAPBody(service, action string, args map[string]string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body>`)
	fmt.Fprintf(&buf, `<u:%s xmlns:u="%s">`, action, service)

	for k, v := range args {
		fmt.Fprintf(&buf, "<%s>%s</%s>", k, xmlEscape(v), k)
	}

	fmt.Fprintf(&buf, `</u:%s>`, action)
	buf.WriteString(`</s:Body>`)
	buf.WriteString(`</s:Envelope>`)

	return buf.Bytes()
}

// xmlEscape escapes special XML characters.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
