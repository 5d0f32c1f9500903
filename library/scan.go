// Package library finds playable files on disk and extracts their metadata.
package library

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/samber/lo"

	"goamp/player"
	"goamp/playlist"
)

// Scan walks dir recursively and returns the playable tracks found, sorted
// by path. Unreadable entries are skipped.
func Scan(dir string) ([]*playlist.Track, error) {
	var tracks []*playlist.Track
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				// The root itself is unreadable.
				return err
			}
			slog.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !player.Supported(path) {
			return nil
		}
		tracks = append(tracks, FromFile(path))
		return nil
	})
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Path < tracks[j].Path })
	return tracks, err
}

// FromFile builds a Track for path, preferring embedded tags over filename
// parsing. Tag failures fall back to the filename silently.
func FromFile(path string) *playlist.Track {
	t := playlist.TrackFromPath(path)
	if fi, err := os.Stat(path); err == nil {
		t.Size = fi.Size()
	}
	f, err := os.Open(path)
	if err != nil {
		return t
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil {
		return t
	}
	t.SetTitle(strings.TrimSpace(m.Title()))
	if a := strings.TrimSpace(m.Artist()); a != "" {
		t.Artist = a
	}
	return t
}

// TracksFromPaths resolves paths to tracks, dropping unsupported or missing
// files.
func TracksFromPaths(paths []string) []*playlist.Track {
	return lo.FilterMap(paths, func(p string, _ int) (*playlist.Track, bool) {
		if !player.Supported(p) {
			return nil, false
		}
		if _, err := os.Stat(p); err != nil {
			return nil, false
		}
		return FromFile(p), true
	})
}
