package playlist

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ParseM3U reads an M3U/M3U8 playlist file and returns the tracks it
// references, in order. Relative entries are resolved against the playlist's
// directory, file:// URIs are percent-decoded, and entries whose file does
// not exist are skipped. Files that are not valid UTF-8 are decoded as
// Windows-1252.
func ParseM3U(path string) ([]*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err == nil {
			data = decoded
		}
	}

	dir := filepath.Dir(path)
	var tracks []*Track
	var pendingTitle string
	var pendingDur time.Duration

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimRight(sc.Text(), "\r"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if info, ok := strings.CutPrefix(line, "#EXTINF:"); ok {
				pendingDur, pendingTitle = parseExtInf(info)
			}
			// All other # lines are directives or comments.
			continue
		}

		resolved, err := resolveEntry(line, dir)
		if err != nil {
			slog.Warn("skipping malformed playlist entry", "entry", line, "error", err)
			pendingTitle, pendingDur = "", 0
			continue
		}
		if _, err := os.Stat(resolved); err != nil {
			slog.Warn("skipping missing playlist entry", "path", resolved)
			pendingTitle, pendingDur = "", 0
			continue
		}

		t := TrackFromPath(resolved)
		t.SetTitle(pendingTitle)
		t.Duration = pendingDur
		tracks = append(tracks, t)
		pendingTitle, pendingDur = "", 0
	}
	if err := sc.Err(); err != nil {
		return tracks, fmt.Errorf("scan playlist: %w", err)
	}
	return tracks, nil
}

// parseExtInf parses the "<duration>,<title>" payload of an EXTINF
// directive. Either part may be missing or malformed; whatever parses is
// used.
func parseExtInf(info string) (time.Duration, string) {
	durStr, title, ok := strings.Cut(info, ",")
	if !ok {
		durStr = info
	}
	var dur time.Duration
	if secs, err := strconv.ParseFloat(strings.TrimSpace(durStr), 64); err == nil && secs > 0 {
		dur = time.Duration(secs * float64(time.Second))
	}
	return dur, strings.TrimSpace(title)
}

// resolveEntry turns a playlist entry into an absolute filesystem path.
func resolveEntry(entry, dir string) (string, error) {
	if strings.HasPrefix(entry, "file://") {
		u, err := url.Parse(entry)
		if err != nil {
			return "", fmt.Errorf("parse uri: %w", err)
		}
		if u.Path == "" {
			return "", fmt.Errorf("uri has no path: %s", entry)
		}
		return filepath.FromSlash(u.Path), nil
	}
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry), nil
	}
	return filepath.Clean(filepath.Join(dir, entry)), nil
}

// WriteM3U serializes tracks as an extended M3U playlist: #EXTM3U header,
// one #EXTINF line and one absolute path per track, UTF-8. The file is
// written atomically via a temp file in the target directory.
func WriteM3U(path string, tracks []*Track) error {
	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")
	for _, t := range tracks {
		abs, err := filepath.Abs(t.Path)
		if err != nil {
			abs = t.Path
		}
		fmt.Fprintf(&buf, "#EXTINF:%d,%s\n%s\n", int(t.Duration.Seconds()), t.DisplayName(), abs)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".m3u-*")
	if err != nil {
		return fmt.Errorf("create temp playlist: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write playlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close playlist: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace playlist: %w", err)
	}
	return nil
}
