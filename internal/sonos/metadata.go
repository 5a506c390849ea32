package sonos

import (
	"encoding/xml"
	"html"
	"regexp"
	"strings"
)

// didlLite is the DIDL-Lite metadata document Sonos embeds in
// GetPositionInfo responses.
type didlLite struct {
	XMLName xml.Name   `xml:"urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/ DIDL-Lite"`
	Items   []didlItem `xml:"urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/ item"`
}

type didlItem struct {
	// Dublin Core namespace elements
	Title   string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	// UPnP namespace elements
	Album string `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ album"`
	Class string `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ class"`
}

// trackMeta is the subset of track metadata a scrobble submission needs.
// The artist string is kept exactly as the device reports it; track
// identity depends on it byte for byte.
type trackMeta struct {
	Title  string
	Artist string
	Album  string
}

// parseTrackMetadata extracts track fields from DIDL-Lite metadata.
// Returns a zero trackMeta when the document is empty or carries no title.
func parseTrackMetadata(metadata string) trackMeta {
	if metadata == "" || metadata == "NOT_IMPLEMENTED" {
		return trackMeta{}
	}

	metadata = html.UnescapeString(metadata)

	// Namespace-aware parsing first
	var didl didlLite
	if err := xml.Unmarshal([]byte(metadata), &didl); err == nil && len(didl.Items) > 0 {
		item := didl.Items[0]
		if item.Title != "" {
			return trackMeta{
				Title:  item.Title,
				Artist: item.Creator,
				Album:  item.Album,
			}
		}
	}

	// Fallback: extract elements by local name (handles any namespace prefix)
	title := extractXMLElement(metadata, "title")
	if title == "" {
		return trackMeta{}
	}

	return trackMeta{
		Title:  title,
		Artist: extractXMLElement(metadata, "creator"),
		Album:  extractXMLElement(metadata, "album"),
	}
}

// extractXMLElement extracts content from an XML element, ignoring
// namespace prefixes.
func extractXMLElement(doc, localName string) string {
	re := regexp.MustCompile(`<(?:\w+:)?` + localName + `[^>]*>([^<]*)</(?:\w+:)?` + localName + `>`)
	matches := re.FindStringSubmatch(doc)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}
