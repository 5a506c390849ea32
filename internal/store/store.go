// Package store persists scrobbler state as flat JSON files. Both
// namespaces are advisory caches of in-memory state: loads of missing
// or corrupt files yield empty maps, and saves are best-effort and
// never propagate errors to the caller.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	lastReportedFile     = "last_reported.json"
	currentlyPlayingFile = "currently_playing.json"
)

// Store reads and writes the state directory.
type Store struct {
	dir string
	log *zap.Logger
}

// New creates a store rooted at dir.
func New(dir string, log *zap.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Dir returns the state directory path.
func (s *Store) Dir() string {
	return s.dir
}

// LoadLastReported returns the identity key → report record map.
func (s *Store) LoadLastReported() map[string]ReportRecord {
	return loadJSON[ReportRecord](s, lastReportedFile)
}

// SaveLastReported writes the identity key → report record map.
func (s *Store) SaveLastReported(m map[string]ReportRecord) {
	saveJSON(s, lastReportedFile, m)
}

// LoadCurrentlyPlaying returns the device address → playing record map.
func (s *Store) LoadCurrentlyPlaying() map[string]PlayingRecord {
	return loadJSON[PlayingRecord](s, currentlyPlayingFile)
}

// SaveCurrentlyPlaying writes the device address → playing record map.
func (s *Store) SaveCurrentlyPlaying(m map[string]PlayingRecord) {
	saveJSON(s, currentlyPlayingFile, m)
}

func loadJSON[T any](s *Store, name string) map[string]T {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("state file unreadable, starting empty",
				zap.String("file", name), zap.Error(err))
		}
		return map[string]T{}
	}

	var m map[string]T
	if err := json.Unmarshal(data, &m); err != nil {
		s.log.Warn("state file corrupt, starting empty",
			zap.String("file", name), zap.Error(err))
		return map[string]T{}
	}
	if m == nil {
		m = map[string]T{}
	}
	return m
}

// saveJSON writes through a temp file and renames it into place, so a
// failed write never destroys the previous contents.
func saveJSON[T any](s *Store, name string, m map[string]T) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.log.Warn("create state dir", zap.String("dir", s.dir), zap.Error(err))
		return
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		s.log.Warn("marshal state", zap.String("file", name), zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		s.log.Warn("create temp state file", zap.String("file", name), zap.Error(err))
		return
	}

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		s.log.Warn("write state file", zap.String("file", name),
			zap.NamedError("write", werr), zap.NamedError("close", cerr))
		return
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		s.log.Warn("replace state file", zap.String("file", name), zap.Error(err))
	}
}
