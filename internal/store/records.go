package store

import (
	"encoding/json"
	"time"

	"github.com/scrobbled/scrobbled/internal/core"
)

// ReportRecord is the value stored in the last_reported namespace,
// keyed by "artist-title".
type ReportRecord struct {
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	Album      string    `json:"album,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// UnmarshalJSON accepts both the record object form and the bare
// ISO-8601 string values written by earlier deployments.
func (r *ReportRecord) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.ReportedAt = parseTimestamp(s)
		return nil
	}

	type plain ReportRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ReportRecord(p)
	return nil
}

// parseTimestamp parses RFC 3339 timestamps and the zone-less isoformat
// variant. Unparseable input yields the zero time, which reads as
// "longer ago than any cooldown".
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// PlayingRecord is the value stored in the currently_playing namespace,
// keyed by device address. It mirrors the in-memory tracking record plus
// the latest observed snapshot; advisory only.
type PlayingRecord struct {
	Device        string         `json:"device"`
	Artist        string         `json:"artist"`
	Title         string         `json:"title"`
	Album         string         `json:"album,omitempty"`
	State         core.PlayState `json:"state"`
	Duration      int            `json:"duration"`
	Position      int            `json:"position"`
	StartPosition int            `json:"start_position"`
	StartedAt     time.Time      `json:"started_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
