package engine

import (
	"time"

	"goamp/player"
	"goamp/playlist"
	"goamp/spectrum"
)

// State is the engine's published snapshot, emitted at the coordination
// tick rate (~10 Hz). All fields are value copies safe to read from any
// goroutine.
type State struct {
	Playing  bool
	Paused   bool
	Position time.Duration
	Duration time.Duration

	Track *playlist.Track
	Index int
	// Tracks is a copy of the playlist in order.
	Tracks []*playlist.Track

	Spectrum spectrum.Bands
	Shuffle  bool
	Repeat   bool
	Volume   float64
	EQ       [player.NumEQBands]float64
	Source   player.Info

	// Err is the last surfaced error, cleared by the next successful load.
	Err error
}

// Subscribe returns a channel receiving state snapshots. The channel holds
// one snapshot; when the consumer lags, older snapshots are replaced rather
// than queued.
func (e *Engine) Subscribe() <-chan State {
	ch := make(chan State, 1)
	e.subMu.Lock()
	e.subs = append(e.subs, ch)
	e.subMu.Unlock()
	return ch
}

// publish builds a snapshot and fans it out. Runs on the coordination
// goroutine only.
func (e *Engine) publish() {
	s := e.pb.State()
	cur, idx := e.list.Current()

	tracks := make([]*playlist.Track, len(e.list.Tracks()))
	copy(tracks, e.list.Tracks())

	st := State{
		Playing:  s == player.Playing,
		Paused:   s == player.Paused,
		Position: e.pb.Position(),
		Duration: e.pb.Duration(),
		Track:    cur,
		Index:    idx,
		Tracks:   tracks,
		Spectrum: e.analyzer.Tick(s == player.Playing),
		Shuffle:  e.list.Shuffled(),
		Repeat:   e.list.Repeat(),
		Volume:   e.pb.Volume(),
		EQ:       e.pb.EQBands(),
		Source:   e.pb.SourceInfo(),
		Err:      e.err,
	}

	e.subMu.Lock()
	for _, ch := range e.subs {
		select {
		case ch <- st:
		default:
			// Replace the stale snapshot the consumer hasn't read yet.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
	e.subMu.Unlock()
}
