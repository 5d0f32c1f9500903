package playlist

import "math/rand"

// Playlist manages an ordered list of tracks with shuffle and repeat support.
// Shuffle and repeat are independent flags and may be active at the same time.
//
// A Playlist is not safe for concurrent use; all mutation is expected to
// happen on the engine's coordination goroutine.
type Playlist struct {
	tracks []*Track
	index  int // current track index, -1 when no current track

	shuffle bool
	repeat  bool

	order  []int // shuffle permutation of track indices, current track first
	cursor int   // position within order, independent from index
}

// New creates an empty Playlist.
func New() *Playlist {
	return &Playlist{index: -1}
}

// Add appends tracks to the playlist and reports whether the playlist was
// empty before the call.
func (p *Playlist) Add(tracks ...*Track) bool {
	wasEmpty := len(p.tracks) == 0
	p.tracks = append(p.tracks, tracks...)
	if p.shuffle {
		p.regenerate()
	}
	return wasEmpty
}

// Remove deletes the track at index i, adjusting the current index so it
// stays within [-1, Len()-1]. Returns false if i is out of bounds.
func (p *Playlist) Remove(i int) bool {
	if i < 0 || i >= len(p.tracks) {
		return false
	}
	p.tracks = append(p.tracks[:i], p.tracks[i+1:]...)
	switch {
	case len(p.tracks) == 0:
		p.index = -1
	case i < p.index:
		p.index--
	case i == p.index && p.index > len(p.tracks)-1:
		p.index = len(p.tracks) - 1
	}
	if p.shuffle {
		p.regenerate()
	}
	return true
}

// Clear removes all tracks and resets the current index.
func (p *Playlist) Clear() {
	p.tracks = p.tracks[:0]
	p.order = p.order[:0]
	p.index = -1
	p.cursor = 0
}

// Len returns the number of tracks.
func (p *Playlist) Len() int { return len(p.tracks) }

// Tracks returns the underlying track slice in playlist order.
func (p *Playlist) Tracks() []*Track { return p.tracks }

// Track returns the track at index i, or nil if out of bounds.
func (p *Playlist) Track(i int) *Track {
	if i < 0 || i >= len(p.tracks) {
		return nil
	}
	return p.tracks[i]
}

// Index returns the current track index, -1 if none.
func (p *Playlist) Index() int { return p.index }

// Current returns the current track and its index, or (nil, -1).
func (p *Playlist) Current() (*Track, int) {
	if p.index < 0 || p.index >= len(p.tracks) {
		return nil, -1
	}
	return p.tracks[p.index], p.index
}

// SetCurrent makes i the current track. When shuffle is active the
// permutation is regenerated with i placed first, so advancing continues
// from the newly selected track.
func (p *Playlist) SetCurrent(i int) bool {
	if i < 0 || i >= len(p.tracks) {
		return false
	}
	p.index = i
	if p.shuffle {
		p.regenerate()
	}
	return true
}

// Next advances to the next track. Returns (nil, false) at the end of the
// playlist with repeat off, leaving the index at the last valid position.
func (p *Playlist) Next() (*Track, bool) {
	if len(p.tracks) == 0 {
		return nil, false
	}
	if p.index < 0 {
		p.SetCurrent(0)
		return p.tracks[0], true
	}
	if p.shuffle {
		if p.cursor+1 < len(p.order) {
			p.cursor++
			p.index = p.order[p.cursor]
			return p.tracks[p.index], true
		}
		if !p.repeat {
			return nil, false
		}
		// Fresh permutation keeps the current track first; resume just
		// past it so it is not played twice in a row, except when it is
		// the only track.
		p.regenerate()
		if len(p.order) > 1 {
			p.cursor = 1
		}
		p.index = p.order[p.cursor]
		return p.tracks[p.index], true
	}
	if p.index+1 < len(p.tracks) {
		p.index++
		return p.tracks[p.index], true
	}
	if !p.repeat {
		return nil, false
	}
	p.index = 0
	return p.tracks[0], true
}

// Previous moves to the previous track. On underflow it wraps to the last
// track when repeat is on, otherwise it clamps at the first track and
// returns it again (restart semantics).
func (p *Playlist) Previous() (*Track, bool) {
	if len(p.tracks) == 0 {
		return nil, false
	}
	if p.index < 0 {
		p.SetCurrent(0)
		return p.tracks[0], true
	}
	if p.shuffle {
		switch {
		case p.cursor > 0:
			p.cursor--
		case p.repeat:
			p.cursor = len(p.order) - 1
		}
		p.index = p.order[p.cursor]
		return p.tracks[p.index], true
	}
	switch {
	case p.index > 0:
		p.index--
	case p.repeat:
		p.index = len(p.tracks) - 1
	}
	return p.tracks[p.index], true
}

// AtEnd reports whether the current position is the last valid position,
// i.e. a natural completion would end the playlist unless repeat is on.
func (p *Playlist) AtEnd() bool {
	if len(p.tracks) == 0 {
		return true
	}
	if p.shuffle {
		return p.cursor >= len(p.order)-1
	}
	return p.index >= len(p.tracks)-1
}

// SetShuffle enables or disables shuffle mode, regenerating the permutation
// with the current track first when turning it on.
func (p *Playlist) SetShuffle(on bool) {
	if p.shuffle == on {
		return
	}
	p.shuffle = on
	if on {
		p.regenerate()
	}
}

// ToggleShuffle flips shuffle mode.
func (p *Playlist) ToggleShuffle() { p.SetShuffle(!p.shuffle) }

// Shuffled returns whether shuffle is enabled.
func (p *Playlist) Shuffled() bool { return p.shuffle }

// SetRepeat enables or disables repeat mode.
func (p *Playlist) SetRepeat(on bool) { p.repeat = on }

// ToggleRepeat flips repeat mode.
func (p *Playlist) ToggleRepeat() { p.repeat = !p.repeat }

// Repeat returns whether repeat is enabled.
func (p *Playlist) Repeat() bool { return p.repeat }

// Order exposes the shuffle permutation for inspection.
func (p *Playlist) Order() []int { return p.order }

// regenerate rebuilds the shuffle permutation with a Fisher-Yates shuffle,
// placing the current track at position 0 so resuming shuffle never skips
// the active track.
func (p *Playlist) regenerate() {
	n := len(p.tracks)
	p.order = p.order[:0]
	p.cursor = 0
	if n == 0 {
		return
	}
	cur := p.index
	if cur < 0 {
		cur = 0
	}
	others := make([]int, 0, n-1)
	for i := range n {
		if i != cur {
			others = append(others, i)
		}
	}
	for i := len(others) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		others[i], others[j] = others[j], others[i]
	}
	p.order = append(p.order, cur)
	p.order = append(p.order, others...)
}
