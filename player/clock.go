package player

import (
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

// Clock derives the current playback position from the frames the render
// chain has pulled through it plus a seek-offset baseline. It sits directly
// after the decoder, so it counts frames at the source sample rate.
//
// Position is safe to read from any goroutine; the counters are only
// written from the render goroutine and from seek/stop under the speaker
// lock.
type Clock struct {
	s      beep.Streamer
	sr     beep.SampleRate
	frames atomic.Int64 // frames streamed since the last Set
	offset atomic.Int64 // baseline in frames, set on seek
}

func newClock(s beep.Streamer, sr beep.SampleRate) *Clock {
	return &Clock{s: s, sr: sr}
}

// Stream passes audio through while counting rendered frames.
func (c *Clock) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.s.Stream(samples)
	c.frames.Add(int64(n))
	return n, ok
}

// Err returns the underlying streamer's error.
func (c *Clock) Err() error { return c.s.Err() }

// Position returns the elapsed time: seek offset plus rendered frames.
func (c *Clock) Position() time.Duration {
	return c.sr.D(int(c.offset.Load() + c.frames.Load()))
}

// Set rebases the clock to position t, used after a seek.
func (c *Clock) Set(t time.Duration) {
	c.offset.Store(int64(c.sr.N(t)))
	c.frames.Store(0)
}
