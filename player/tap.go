package player

import (
	"goamp/spectrum"

	"github.com/gopxl/beep/v2"
)

// Tap is a non-destructive read point on the render chain: it passes audio
// through unchanged while handing a copy of the first channel to the
// spectrum analyzer. It runs on the render goroutine and never blocks;
// the analyzer's own rate limiting keeps the work bounded.
type Tap struct {
	s        beep.Streamer
	analyzer *spectrum.Analyzer
	scratch  []float64
}

// NewTap wraps a streamer, feeding the given analyzer.
func NewTap(s beep.Streamer, analyzer *spectrum.Analyzer) *Tap {
	return &Tap{s: s, analyzer: analyzer}
}

// Stream passes audio through while copying the first channel out for
// analysis.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	if t.analyzer != nil && n > 0 {
		if cap(t.scratch) < n {
			t.scratch = make([]float64, n)
		}
		t.scratch = t.scratch[:n]
		for i := range n {
			t.scratch[i] = samples[i][0]
		}
		t.analyzer.Process(t.scratch)
	}
	return n, ok
}

// Err returns the underlying streamer's error.
func (t *Tap) Err() error { return t.s.Err() }
