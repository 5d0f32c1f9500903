// Package engine is the application context: it owns one player and one
// playlist, serializes every command onto a single coordination goroutine,
// drives auto-advance from completion events and publishes state snapshots.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"goamp/library"
	"goamp/player"
	"goamp/playlist"
	"goamp/spectrum"
)

// tickInterval drives position/spectrum publishing and completion handling.
const tickInterval = 100 * time.Millisecond

// restartThreshold: Previous restarts the current track instead of going
// back when playback is at least this far in.
const restartThreshold = 3 * time.Second

// Playback abstracts the audio player so sequencing logic can be exercised
// against a fake engine in tests.
type Playback interface {
	Load(*playlist.Track) error
	Play()
	Pause()
	Stop()
	Seek(time.Duration) error
	SeekBy(time.Duration) error
	SetVolume(float64)
	Volume() float64
	SetEQBand(int, float64)
	EQBands() [player.NumEQBands]float64
	State() player.State
	Position() time.Duration
	Duration() time.Duration
	SourceInfo() player.Info
	Done() <-chan player.Event
	Stale(player.Event) bool
	Close()
}

// Options configures optional engine behavior.
type Options struct {
	// Notify shows a desktop notification on track change.
	Notify bool
	// Access guards file operations; defaults to NopAccess.
	Access Access
}

// Engine coordinates the player and the playlist. All mutation happens on
// the goroutine running run(); public methods post commands to it and
// return immediately.
type Engine struct {
	pb       Playback
	list     *playlist.Playlist
	analyzer *spectrum.Analyzer
	access   Access
	notify   bool
	watcher  *library.Watcher

	cmds chan func()
	quit chan struct{}
	wg   sync.WaitGroup

	subMu sync.Mutex
	subs  []chan State

	// Coordination-goroutine state.
	advance  bool // auto-advance on completion; cleared by Stop
	loadBusy bool // a load is in flight; further loads are rejected
	err      error
}

// New creates an Engine around the given playback backend and playlist.
func New(pb Playback, list *playlist.Playlist, analyzer *spectrum.Analyzer, opts Options) *Engine {
	if opts.Access == nil {
		opts.Access = NopAccess{}
	}
	e := &Engine{
		pb:       pb,
		list:     list,
		analyzer: analyzer,
		access:   opts.Access,
		notify:   opts.Notify,
		cmds:     make(chan func(), 16),
		quit:     make(chan struct{}),
	}
	w, err := library.NewWatcher(
		func(path string) { e.AddFiles([]string{path}) },
		func(path string) { e.RemoveByPath(path) },
	)
	if err != nil {
		slog.Warn("folder watching disabled", "error", err)
	} else {
		e.watcher = w
	}
	return e
}

// Start launches the coordination goroutine.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.run()
}

// Close stops the coordination goroutine and releases the player.
func (e *Engine) Close() {
	close(e.quit)
	e.wg.Wait()
	if e.watcher != nil {
		e.watcher.Close()
	}
	e.pb.Close()
}

func (e *Engine) run() {
	defer e.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case fn := <-e.cmds:
			fn()
		case ev := <-e.pb.Done():
			e.onCompletion(ev)
		case <-ticker.C:
			e.publish()
		case <-e.quit:
			return
		}
	}
}

// do serializes fn onto the coordination goroutine.
func (e *Engine) do(fn func()) {
	select {
	case e.cmds <- fn:
	case <-e.quit:
	}
}

// onCompletion handles a track-finished event from the render goroutine.
func (e *Engine) onCompletion(ev player.Event) {
	if e.pb.Stale(ev) {
		slog.Debug("ignoring stale completion", "epoch", ev.Epoch)
		return
	}
	if !e.advance {
		return
	}
	if e.list.AtEnd() && !e.list.Repeat() {
		e.pb.Stop()
		e.publish()
		return
	}
	if t, ok := e.list.Next(); ok {
		e.loadTrack(t)
	} else {
		e.pb.Stop()
		e.publish()
	}
}

// loadTrack starts an asynchronous load of t. A load already in flight
// rejects the request rather than queueing it.
func (e *Engine) loadTrack(t *playlist.Track) {
	if e.loadBusy {
		slog.Debug("load rejected, another load in flight", "path", t.Path)
		return
	}
	e.loadBusy = true
	e.advance = true
	release := e.access.Ensure(t.Path)
	go func() {
		err := e.pb.Load(t)
		e.do(func() {
			e.loadBusy = false
			release()
			if err != nil {
				e.err = err
				slog.Error("load failed", "path", t.Path, "error", err)
				return
			}
			e.err = nil
			if e.notify {
				go func() { _ = beeep.Notify("goamp", t.DisplayName(), "") }()
			}
			e.publish()
		})
	}()
}

// Play starts playback: resumes when paused/stopped, otherwise loads the
// current (or first) playlist track.
func (e *Engine) Play() {
	e.do(func() {
		e.advance = true
		if e.pb.State() != player.Empty {
			e.pb.Play()
			return
		}
		t, _ := e.list.Current()
		if t == nil {
			if e.list.Len() == 0 {
				return
			}
			e.list.SetCurrent(0)
			t, _ = e.list.Current()
		}
		e.loadTrack(t)
	})
}

// Pause toggles between paused and playing.
func (e *Engine) Pause() {
	e.do(func() { e.pb.Pause() })
}

// Stop halts playback and suppresses auto-advance until the next play/load.
func (e *Engine) Stop() {
	e.do(func() {
		e.advance = false
		e.pb.Stop()
	})
}

// Next skips to the next track per the sequencing policy; at the end of the
// playlist without repeat it stops instead.
func (e *Engine) Next() {
	e.do(func() {
		if t, ok := e.list.Next(); ok {
			e.loadTrack(t)
		} else {
			e.advance = false
			e.pb.Stop()
		}
	})
}

// Previous goes back one track, or restarts the current one when more than
// a few seconds in.
func (e *Engine) Previous() {
	e.do(func() {
		if e.pb.State() != player.Empty && e.pb.Position() > restartThreshold {
			if err := e.pb.Seek(0); err != nil {
				slog.Error("restart failed", "error", err)
			}
			return
		}
		if t, ok := e.list.Previous(); ok {
			e.loadTrack(t)
		}
	})
}

// PlayIndex makes track i current and plays it.
func (e *Engine) PlayIndex(i int) {
	e.do(func() {
		if e.list.SetCurrent(i) {
			t, _ := e.list.Current()
			e.loadTrack(t)
		}
	})
}

// Seek moves playback to the given position.
func (e *Engine) Seek(t time.Duration) {
	e.do(func() {
		if err := e.pb.Seek(t); err != nil {
			slog.Error("seek failed", "error", err)
		}
	})
}

// SeekBy moves playback relative to the current position.
func (e *Engine) SeekBy(d time.Duration) {
	e.do(func() {
		if err := e.pb.SeekBy(d); err != nil {
			slog.Error("seek failed", "error", err)
		}
	})
}

// SetVolume sets the output volume in [0, 1].
func (e *Engine) SetVolume(v float64) {
	e.do(func() { e.pb.SetVolume(v) })
}

// AdjustVolume changes the volume by delta, clamped in the player.
func (e *Engine) AdjustVolume(delta float64) {
	e.do(func() { e.pb.SetVolume(e.pb.Volume() + delta) })
}

// SetEQBand sets one equalizer band's gain in dB.
func (e *Engine) SetEQBand(band int, dB float64) {
	e.do(func() { e.pb.SetEQBand(band, dB) })
}

// ToggleShuffle flips shuffle mode.
func (e *Engine) ToggleShuffle() {
	e.do(func() { e.list.ToggleShuffle() })
}

// ToggleRepeat flips repeat mode.
func (e *Engine) ToggleRepeat() {
	e.do(func() { e.list.ToggleRepeat() })
}

// AddTracks appends tracks; if the playlist was empty, playback starts at
// the first added track.
func (e *Engine) AddTracks(tracks ...*playlist.Track) {
	if len(tracks) == 0 {
		return
	}
	e.do(func() { e.addTracks(tracks) })
}

func (e *Engine) addTracks(tracks []*playlist.Track) {
	wasEmpty := e.list.Add(tracks...)
	if wasEmpty && e.list.Len() > 0 {
		e.list.SetCurrent(0)
		t, _ := e.list.Current()
		e.loadTrack(t)
	}
}

// AddFiles resolves paths to playable tracks on a background goroutine and
// appends them.
func (e *Engine) AddFiles(paths []string) {
	go func() {
		tracks := library.TracksFromPaths(paths)
		if len(tracks) == 0 {
			return
		}
		e.do(func() { e.addTracks(tracks) })
	}()
}

// AddFolder scans dir recursively on a background goroutine, appends the
// tracks found and keeps watching the folder for changes.
func (e *Engine) AddFolder(dir string) {
	release := e.access.Ensure(dir)
	go func() {
		defer release()
		tracks, err := library.Scan(dir)
		if err != nil {
			slog.Error("folder scan failed", "dir", dir, "error", err)
		}
		e.do(func() {
			if len(tracks) > 0 {
				e.addTracks(tracks)
			}
			if e.watcher != nil {
				if err := e.watcher.Add(dir); err != nil {
					slog.Warn("cannot watch folder", "dir", dir, "error", err)
				}
			}
		})
	}()
}

// RemoveTrack removes the track at index i. Removing the playing track
// loads the new current track; emptying the playlist stops playback.
func (e *Engine) RemoveTrack(i int) {
	e.do(func() {
		wasCurrent := i == e.list.Index()
		wasActive := e.pb.State() == player.Playing || e.pb.State() == player.Paused
		if !e.list.Remove(i) {
			return
		}
		if e.list.Len() == 0 {
			e.advance = false
			e.pb.Stop()
			return
		}
		if wasCurrent && wasActive {
			t, _ := e.list.Current()
			e.loadTrack(t)
		}
	})
}

// RemoveByPath removes all playlist entries referencing path. Used by the
// folder watcher when files vanish.
func (e *Engine) RemoveByPath(path string) {
	e.do(func() {
		for i := e.list.Len() - 1; i >= 0; i-- {
			if e.list.Track(i).Path == path {
				wasCurrent := i == e.list.Index()
				e.list.Remove(i)
				if wasCurrent {
					e.advance = false
					e.pb.Stop()
				}
			}
		}
	})
}

// ImportPlaylist loads an M3U file on a background goroutine. With replace
// set, the current collection is replaced and playback starts at the first
// entry; otherwise the entries are appended.
func (e *Engine) ImportPlaylist(path string, replace bool) {
	release := e.access.Ensure(path)
	go func() {
		defer release()
		tracks, err := playlist.ParseM3U(path)
		if err != nil {
			slog.Error("playlist import failed", "path", path, "error", err)
			e.do(func() { e.err = err })
			return
		}
		e.do(func() {
			if replace {
				e.advance = false
				e.pb.Stop()
				e.list.Clear()
			}
			if len(tracks) == 0 {
				return
			}
			// addTracks auto-plays when the collection was empty, which
			// covers both the replace and first-append cases.
			e.addTracks(tracks)
		})
	}()
}

// ExportPlaylist writes the current collection to an M3U file.
func (e *Engine) ExportPlaylist(path string) {
	e.do(func() {
		tracks := make([]*playlist.Track, len(e.list.Tracks()))
		copy(tracks, e.list.Tracks())
		release := e.access.Ensure(path)
		go func() {
			defer release()
			if err := playlist.WriteM3U(path, tracks); err != nil {
				slog.Error("playlist export failed", "path", path, "error", err)
				e.do(func() { e.err = err })
			}
		}()
	})
}
