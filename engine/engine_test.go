package engine

import (
	"sync"
	"testing"
	"time"

	"goamp/player"
	"goamp/playlist"
	"goamp/spectrum"
)

// fakePlayback records calls instead of touching an audio device. Stop
// deliberately keeps the epoch unchanged so the auto-advance flag can be
// tested separately from stale-event filtering.
type fakePlayback struct {
	mu        sync.Mutex
	state     player.State
	loads     []*playlist.Track
	epoch     uint64
	pos       time.Duration
	volume    float64
	eq        [player.NumEQBands]float64
	loadDelay time.Duration
	done      chan player.Event
}

func newFake() *fakePlayback {
	return &fakePlayback{done: make(chan player.Event, 4), volume: 1}
}

func (f *fakePlayback) Load(t *playlist.Track) error {
	if f.loadDelay > 0 {
		time.Sleep(f.loadDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, t)
	f.epoch++
	f.state = player.Playing
	f.pos = 0
	return nil
}

func (f *fakePlayback) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != player.Empty {
		f.state = player.Playing
	}
}

func (f *fakePlayback) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case player.Playing:
		f.state = player.Paused
	case player.Paused:
		f.state = player.Playing
	}
}

func (f *fakePlayback) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != player.Empty {
		f.state = player.Stopped
		f.pos = 0
	}
}

func (f *fakePlayback) Seek(t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = t
	return nil
}

func (f *fakePlayback) SeekBy(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = max(0, f.pos+d)
	return nil
}

func (f *fakePlayback) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = max(0, min(1, v))
}

func (f *fakePlayback) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakePlayback) SetEQBand(band int, dB float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if band >= 0 && band < player.NumEQBands {
		f.eq[band] = dB
	}
}

func (f *fakePlayback) EQBands() [player.NumEQBands]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eq
}

func (f *fakePlayback) State() player.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakePlayback) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakePlayback) Duration() time.Duration   { return 3 * time.Minute }
func (f *fakePlayback) SourceInfo() player.Info   { return player.Info{} }
func (f *fakePlayback) Done() <-chan player.Event { return f.done }
func (f *fakePlayback) Close()                    {}

func (f *fakePlayback) Stale(ev player.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ev.Epoch != f.epoch
}

// finish emits a genuine completion event for the current epoch.
func (f *fakePlayback) finish() {
	f.mu.Lock()
	ev := player.Event{Epoch: f.epoch}
	f.mu.Unlock()
	f.done <- ev
}

func (f *fakePlayback) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func (f *fakePlayback) lastLoad() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return ""
	}
	return f.loads[len(f.loads)-1].Path
}

func newTestEngine(t *testing.T, f *fakePlayback) *Engine {
	t.Helper()
	e := New(f, playlist.New(), spectrum.New(44100), Options{})
	e.Start()
	t.Cleanup(e.Close)
	return e
}

// onLoop runs fn on the coordination goroutine and returns its result.
func onLoop[T any](e *Engine, fn func() T) T {
	ch := make(chan T, 1)
	e.do(func() { ch <- fn() })
	return <-ch
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func trk(name string) *playlist.Track {
	return playlist.TrackFromPath("/music/" + name + ".mp3")
}

func TestAddTracksAutoplaysFirstTrack(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })
	if got := f.lastLoad(); got != "/music/a.mp3" {
		t.Errorf("auto-played %q, want the first track", got)
	}
	if idx := onLoop(e, func() int { return e.list.Index() }); idx != 0 {
		t.Errorf("playlist index = %d, want 0", idx)
	}
}

func TestAutoAdvanceOnCompletion(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })

	f.finish()
	waitFor(t, "auto-advance to the next track", func() bool { return f.loadCount() == 2 })
	if got := f.lastLoad(); got != "/music/b.mp3" {
		t.Errorf("advanced to %q, want /music/b.mp3", got)
	}
}

func TestCompletionAtEndStopsPlayback(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("only"))
	waitFor(t, "track to load", func() bool { return f.loadCount() == 1 })

	f.finish()
	waitFor(t, "playback to stop at end of playlist", func() bool {
		return f.State() == player.Stopped
	})
	time.Sleep(50 * time.Millisecond)
	if got := f.loadCount(); got != 1 {
		t.Errorf("loads = %d after end-of-playlist completion, want 1", got)
	}
	if idx := onLoop(e, func() int { return e.list.Index() }); idx != 0 {
		t.Errorf("playlist index = %d, want to stay at the last track", idx)
	}
}

func TestStaleCompletionIgnored(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })

	// An event from a torn-down render chain carries an old epoch.
	f.done <- player.Event{Epoch: 0}
	time.Sleep(100 * time.Millisecond)
	if got := f.loadCount(); got != 1 {
		t.Errorf("stale completion triggered a load: loads = %d, want 1", got)
	}
	if got := f.State(); got != player.Playing {
		t.Errorf("state = %v after stale completion, want Playing", got)
	}
}

func TestStopSuppressesAutoAdvance(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })

	e.Stop()
	waitFor(t, "playback to stop", func() bool { return f.State() == player.Stopped })

	f.finish()
	time.Sleep(100 * time.Millisecond)
	if got := f.loadCount(); got != 1 {
		t.Errorf("completion after Stop advanced the playlist: loads = %d, want 1", got)
	}
}

func TestConcurrentLoadRejected(t *testing.T) {
	f := newFake()
	f.loadDelay = 100 * time.Millisecond
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	e.PlayIndex(1) // arrives while the first load is still in flight

	time.Sleep(300 * time.Millisecond)
	if got := f.loadCount(); got != 1 {
		t.Errorf("loads = %d, want the second load rejected while busy", got)
	}
}

func TestNextAtEndWithoutRepeatStops(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })

	e.Next()
	waitFor(t, "second track to load", func() bool { return f.loadCount() == 2 })

	e.Next()
	waitFor(t, "playback to stop at end", func() bool { return f.State() == player.Stopped })
	if got := f.loadCount(); got != 2 {
		t.Errorf("loads = %d after Next at end, want 2", got)
	}
}

func TestRemoveLastTrackStopsPlayback(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("only"))
	waitFor(t, "track to load", func() bool { return f.loadCount() == 1 })

	e.RemoveTrack(0)
	waitFor(t, "playback to stop", func() bool { return f.State() == player.Stopped })
	if idx := onLoop(e, func() int { return e.list.Index() }); idx != -1 {
		t.Errorf("playlist index = %d after emptying, want -1", idx)
	}
}

func TestPreviousRestartsDeepIntoTrack(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })
	f.Seek(10 * time.Second)

	e.Previous()
	waitFor(t, "seek back to the start", func() bool { return f.Position() == 0 })
	if got := f.loadCount(); got != 1 {
		t.Errorf("Previous deep into a track reloaded instead of restarting: loads = %d", got)
	}
}

func TestSeekByIsRelative(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"))
	waitFor(t, "track to load", func() bool { return f.loadCount() == 1 })

	e.SeekBy(2 * time.Second)
	waitFor(t, "seek forward", func() bool { return f.Position() == 2*time.Second })

	e.SeekBy(3 * time.Second)
	waitFor(t, "second relative seek", func() bool { return f.Position() == 5*time.Second })

	e.SeekBy(-10 * time.Second)
	waitFor(t, "clamp at track start", func() bool { return f.Position() == 0 })
}

func TestRepeatWrapsCompletionToFirstTrack(t *testing.T) {
	f := newFake()
	e := newTestEngine(t, f)

	e.AddTracks(trk("a"), trk("b"))
	e.ToggleRepeat()
	waitFor(t, "first track to load", func() bool { return f.loadCount() == 1 })

	e.Next()
	waitFor(t, "second track to load", func() bool { return f.loadCount() == 2 })

	f.finish()
	waitFor(t, "wrap to the first track", func() bool {
		return f.loadCount() == 3 && f.lastLoad() == "/music/a.mp3"
	})
}
