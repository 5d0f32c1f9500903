package library

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanFindsSupportedFilesRecursively(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp3"))
	touch(t, filepath.Join(dir, "sub", "a.flac"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "cover.jpg"))

	tracks, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Scan found %d tracks, want 2", len(tracks))
	}
	// Results come back sorted by path.
	if got := tracks[0].Path; got != filepath.Join(dir, "b.mp3") {
		t.Errorf("tracks[0].Path = %q", got)
	}
	if got := tracks[1].Path; got != filepath.Join(dir, "sub", "a.flac") {
		t.Errorf("tracks[1].Path = %q", got)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("Scan of a missing directory returned no error")
	}
}

func TestTracksFromPathsFiltersUnplayable(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "song.mp3"))
	touch(t, filepath.Join(dir, "readme.txt"))

	tracks := TracksFromPaths([]string{
		filepath.Join(dir, "song.mp3"),
		filepath.Join(dir, "readme.txt"),
		filepath.Join(dir, "missing.mp3"),
	})
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	if got := tracks[0].Path; got != filepath.Join(dir, "song.mp3") {
		t.Errorf("tracks[0].Path = %q", got)
	}
}

func TestFromFileFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Artist - Song Name.mp3")
	touch(t, path)

	tr := FromFile(path)
	if got := tr.Title(); got != "Song Name" {
		t.Errorf("Title() = %q, want %q", got, "Song Name")
	}
	if got := tr.Artist; got != "Artist" {
		t.Errorf("Artist = %q, want %q", got, "Artist")
	}
}
