// Package player owns the audio render chain and the playback state
// machine: load/play/pause/stop/seek, volume and EQ control, and
// epoch-tagged completion events.
package player

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"goamp/playlist"
	"goamp/spectrum"
)

var (
	// ErrBusy is returned when a load is issued while another is in flight.
	ErrBusy = errors.New("load already in progress")
	// ErrNoTrack is returned by operations that need a loaded track.
	ErrNoTrack = errors.New("no track loaded")
	// ErrUnsupported is returned for files with an unrecognized format.
	ErrUnsupported = errors.New("unsupported audio format")
)

// State is the player's session state.
type State int

const (
	Empty State = iota
	Stopped
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Empty"
	}
}

// Event is posted from the render goroutine when scheduled audio exhausts.
// The epoch identifies the render chain generation it belongs to; events
// from torn-down chains are stale and must be ignored.
type Event struct {
	Epoch uint64
}

// Info describes the loaded source's container properties.
type Info struct {
	SampleRate int
	Channels   int
	Bitrate    int // kbit/s, estimated from file size and duration
}

// Player is the audio engine managing the playback chain:
//
//	[Decode] -> [Clock] -> [Resample] -> [10x Biquad EQ] -> [Volume] -> [Tap] -> [Ctrl] -> [Speaker]
//
// All methods are safe for concurrent use. Load blocks on file I/O and is
// expected to run off the coordination goroutine.
type Player struct {
	sr       beep.SampleRate
	analyzer *spectrum.Analyzer
	done     chan Event

	epoch   atomic.Uint64 // render chain generation
	seeking atomic.Bool   // suppresses completion events during a seek
	loading atomic.Bool   // rejects concurrent loads

	mu       sync.Mutex
	state    State
	track    *playlist.Track
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	duration time.Duration
	bitrate  int
	clock    *Clock
	tap      *Tap
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	volume   float64 // 0..1
	eqBands  [NumEQBands]float64
}

// New creates a Player targeting the given output sample rate. Open must be
// called before playback starts.
func New(sr beep.SampleRate, analyzer *spectrum.Analyzer) *Player {
	return &Player{
		sr:       sr,
		analyzer: analyzer,
		volume:   1.0,
		done:     make(chan Event, 4),
	}
}

// Open initializes the output device.
func (p *Player) Open() error {
	if err := speaker.Init(p.sr, p.sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	return nil
}

// Done returns the completion event channel. Consumers must check Stale
// before acting on an event.
func (p *Player) Done() <-chan Event { return p.done }

// Stale reports whether ev belongs to a render chain that has since been
// torn down or rescheduled.
func (p *Player) Stale(ev Event) bool { return ev.Epoch != p.epoch.Load() }

// Supported reports whether the file extension is a playable format.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac", ".wav", ".ogg", ".oga":
		return true
	}
	return false
}

func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// Load tears down the current render chain, opens the track and starts
// playback from frame 0. A failed open leaves the player Empty. A second
// Load while one is in flight returns ErrBusy.
func (p *Player) Load(t *playlist.Track) error {
	if !p.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.loading.Store(false)

	// Invalidate in-flight completions before touching the chain, so a
	// drain racing the teardown is identifiably stale.
	p.epoch.Add(1)
	speaker.Clear()

	p.mu.Lock()
	p.teardownLocked()
	p.mu.Unlock()

	f, err := os.Open(t.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.Path, err)
	}
	streamer, format, err := decode(t.Path, f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", t.Path, err)
	}

	p.mu.Lock()
	p.file = f
	p.streamer = streamer
	p.format = format
	p.track = t
	p.duration = format.SampleRate.D(streamer.Len())
	// Duration and bitrate stay in player-owned fields: the Track may be
	// read concurrently by playlist export.
	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}
	if secs := p.duration.Seconds(); secs > 0 && size > 0 {
		p.bitrate = int(float64(size*8) / secs / 1000)
	}

	p.clock = newClock(streamer, format.SampleRate)
	var s beep.Streamer = p.clock
	if format.SampleRate != p.sr {
		s = beep.Resample(4, format.SampleRate, p.sr, s)
	}
	for i := range NumEQBands {
		s = newBiquad(s, EQFreqs[i], 1.4, &p.eqBands[i], float64(p.sr))
	}
	p.vol = &effects.Volume{Streamer: s, Base: 10, Volume: volumeExp(p.volume), Silent: p.volume <= 0}
	p.tap = NewTap(p.vol, p.analyzer)
	p.ctrl = &beep.Ctrl{Streamer: p.tap}
	p.state = Playing
	ctrl := p.ctrl
	ep := p.epoch.Add(1)
	p.mu.Unlock()

	p.schedule(ctrl, ep)
	return nil
}

// schedule hands the chain to the speaker with a completion callback tagged
// with this scheduling's epoch.
func (p *Player) schedule(ctrl *beep.Ctrl, ep uint64) {
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { p.complete(ep) })))
}

// complete posts a completion event for epoch ep. It runs on the render
// goroutine and must not block: the event is dropped when a seek is in
// flight or the channel is full.
func (p *Player) complete(ep uint64) {
	if p.seeking.Load() {
		return
	}
	select {
	case p.done <- Event{Epoch: ep}:
	default:
	}
}

// Play starts or resumes playback. No-op when already playing or empty.
func (p *Player) Play() {
	p.mu.Lock()
	switch p.state {
	case Paused:
		ctrl := p.ctrl
		p.state = Playing
		p.mu.Unlock()
		speaker.Lock()
		ctrl.Paused = false
		speaker.Unlock()
	case Stopped:
		// The chain was cleared from the speaker; reschedule it from the
		// current decoded position under a fresh epoch.
		ctrl := p.ctrl
		ep := p.epoch.Add(1)
		p.state = Playing
		p.mu.Unlock()
		speaker.Lock()
		ctrl.Paused = false
		speaker.Unlock()
		p.schedule(ctrl, ep)
	default:
		p.mu.Unlock()
	}
}

// Pause suspends playback, preserving the elapsed position. Calling Pause
// while already paused resumes playback: the pause control is a toggle.
func (p *Player) Pause() {
	p.mu.Lock()
	switch p.state {
	case Playing:
		ctrl := p.ctrl
		p.state = Paused
		p.mu.Unlock()
		speaker.Lock()
		ctrl.Paused = true
		speaker.Unlock()
	case Paused:
		p.mu.Unlock()
		p.Play()
	default:
		p.mu.Unlock()
	}
}

// Stop halts output immediately and resets the elapsed position to zero.
// The track stays loaded; Play restarts it from the beginning.
func (p *Player) Stop() {
	p.epoch.Add(1)
	speaker.Clear()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Empty {
		return
	}
	if p.streamer != nil {
		if err := p.streamer.Seek(0); err == nil && p.clock != nil {
			p.clock.Set(0)
		}
	}
	if p.ctrl != nil {
		p.ctrl.Paused = false
	}
	p.state = Stopped
}

// Seek moves playback to position t without changing the playing/paused
// state. The seek guard suppresses completion events for the whole window,
// so a source draining mid-seek cannot trigger a false auto-advance.
func (p *Player) Seek(t time.Duration) error {
	p.seeking.Store(true)
	defer p.seeking.Store(false)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return ErrNoTrack
	}
	if t < 0 {
		t = 0
	}
	n := p.format.SampleRate.N(t)
	if n >= p.streamer.Len() {
		n = p.streamer.Len() - 1
	}
	speaker.Lock()
	err := p.streamer.Seek(n)
	if err == nil {
		// Rebase only on success so the reported position never drifts
		// from the actual decode position.
		p.clock.Set(p.format.SampleRate.D(n))
	}
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// SeekBy moves playback by the given delta relative to the current position.
func (p *Player) SeekBy(d time.Duration) error {
	return p.Seek(p.Position() + d)
}

// volumeExp maps the 0..1 volume to the exponent of a base-10 gain,
// a square-law curve that tracks perceived loudness.
func volumeExp(v float64) float64 {
	if v <= 0 {
		return -4
	}
	return 2 * math.Log10(v)
}

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	v = max(0, min(1, v))
	p.mu.Lock()
	p.volume = v
	vol := p.vol
	p.mu.Unlock()
	if vol != nil {
		speaker.Lock()
		vol.Volume = volumeExp(v)
		vol.Silent = v <= 0
		speaker.Unlock()
	}
}

// Volume returns the current volume in [0, 1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetEQBand sets a single EQ band's gain in dB, clamped to ±12. Out-of-range
// band indices are ignored. The write happens under the speaker lock, which
// serializes it with the filter's Stream calls.
func (p *Player) SetEQBand(band int, dB float64) {
	if band < 0 || band >= NumEQBands {
		return
	}
	speaker.Lock()
	p.eqBands[band] = max(min(dB, maxEQGain), -maxEQGain)
	speaker.Unlock()
}

// EQBands returns a copy of all EQ band gains.
func (p *Player) EQBands() [NumEQBands]float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return p.eqBands
}

// State returns the current session state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Track returns the loaded track, nil when empty.
func (p *Player) Track() *playlist.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Position returns the elapsed playback time.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clock == nil {
		return 0
	}
	return p.clock.Position()
}

// Duration returns the total duration of the loaded track.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// SourceInfo returns container properties of the loaded track.
func (p *Player) SourceInfo() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Info{
		SampleRate: int(p.format.SampleRate),
		Channels:   p.format.NumChannels,
		Bitrate:    p.bitrate,
	}
}

// Close stops playback and releases the loaded source.
func (p *Player) Close() {
	p.epoch.Add(1)
	speaker.Clear()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
}

// teardownLocked detaches and releases the render chain so no stale state
// leaks into the next load. Volume and EQ settings survive.
func (p *Player) teardownLocked() {
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.ctrl = nil
	p.vol = nil
	p.tap = nil
	p.clock = nil
	p.track = nil
	p.duration = 0
	p.bitrate = 0
	p.state = Empty
}
