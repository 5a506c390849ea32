package scrobble

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Logbook is a Reporter that appends submissions to a local JSON Lines
// file instead of delivering them anywhere. It backs log-only mode,
// where no provider credentials exist.
type Logbook struct {
	path string
	log  *zap.Logger
}

// NewLogbook creates a logbook writing to path.
func NewLogbook(path string, log *zap.Logger) *Logbook {
	return &Logbook{path: path, log: log}
}

// Path returns the logbook file path.
func (l *Logbook) Path() string {
	return l.path
}

type logbookEntry struct {
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	Album      string    `json:"album,omitempty"`
	Duration   int       `json:"duration,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// Report appends one line per submission.
func (l *Logbook) Report(_ context.Context, sub Submission) error {
	entry := logbookEntry{
		Artist:     sub.Artist,
		Title:      sub.Title,
		Album:      sub.Album,
		Duration:   sub.Duration,
		ReportedAt: sub.Timestamp,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("create logbook dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open logbook: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	l.log.Info("logged scrobble locally",
		zap.String("artist", sub.Artist),
		zap.String("title", sub.Title))
	return nil
}

// NowPlaying is a no-op for the logbook.
func (l *Logbook) NowPlaying(context.Context, Submission) error {
	return nil
}
