// Package playlist manages the ordered track collection, the sequencing
// policy (sequential/shuffle/repeat) and the M3U playlist format.
package playlist

import (
	"path/filepath"
	"strings"
	"time"
)

// Track represents a single audio file.
type Track struct {
	Path     string
	Artist   string
	Duration time.Duration
	Size     int64

	title string // display title, may be overridden by playlist metadata
}

// TrackFromPath creates a Track by parsing the filename.
// Supports "Artist - Title" format, otherwise uses the filename as title.
func TrackFromPath(path string) *Track {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.SplitN(name, " - ", 2)
	if len(parts) == 2 {
		return &Track{Path: path, Artist: strings.TrimSpace(parts[0]), title: strings.TrimSpace(parts[1])}
	}
	return &Track{Path: path, title: name}
}

// Title returns the display title.
func (t *Track) Title() string { return t.title }

// SetTitle overrides the display title, e.g. from an EXTINF directive.
// Empty titles are ignored.
func (t *Track) SetTitle(title string) {
	if title != "" {
		t.title = title
	}
}

// DisplayName returns a formatted display string for the track.
func (t *Track) DisplayName() string {
	if t.Artist != "" && !strings.Contains(t.title, " - ") {
		return t.Artist + " - " + t.title
	}
	return t.title
}
