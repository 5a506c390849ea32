package core

// Identity is the exact (artist, title) pair used to recognize a track
// across polls. Matching is exact string equality; no normalization.
type Identity struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Key returns the persistence key for this identity.
func (id Identity) Key() string {
	return id.Artist + "-" + id.Title
}

// String returns a display form of the identity.
func (id Identity) String() string {
	return id.Artist + " - " + id.Title
}

// IsZero reports whether both fields are empty.
func (id Identity) IsZero() bool {
	return id.Artist == "" && id.Title == ""
}

// Snapshot is a single observation of one device's playback.
type Snapshot struct {
	Artist   string    `json:"artist"`
	Title    string    `json:"title"`
	Album    string    `json:"album"`
	Duration int       `json:"duration"` // seconds; 0 means unknown
	Position int       `json:"position"` // seconds into the track
	State    PlayState `json:"state"`
}

// Identity returns the track identity of the snapshot.
func (s Snapshot) Identity() Identity {
	return Identity{Artist: s.Artist, Title: s.Title}
}

// HasIdentity returns true when both artist and title are present.
// Radio and TV streams often report one or both as empty.
func (s Snapshot) HasIdentity() bool {
	return s.Artist != "" && s.Title != ""
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s Snapshot) ProgressPercent() float64 {
	if s.Duration == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}
