package player

import (
	"math"
	"testing"
)

// tone streams a fixed-frequency sine on both channels.
type tone struct {
	freq, rate float64
	n          int
}

func (s *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := 0.5 * math.Sin(2*math.Pi*s.freq*float64(s.n)/s.rate)
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (s *tone) Err() error { return nil }

func TestBiquadFlatGainIsBypass(t *testing.T) {
	gain := 0.0
	src := &tone{freq: 1000, rate: 44100}
	ref := &tone{freq: 1000, rate: 44100}
	b := newBiquad(src, 1000, 1.4, &gain, 44100)

	got := make([][2]float64, 512)
	want := make([][2]float64, 512)
	b.Stream(got)
	ref.Stream(want)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("sample %d altered at flat gain: %v != %v", i, got[i], want[i])
		}
	}
}

func TestBiquadBoostRaisesCenterFrequency(t *testing.T) {
	gain := 6.0
	src := &tone{freq: 1000, rate: 44100}
	b := newBiquad(src, 1000, 1.4, &gain, 44100)

	buf := make([][2]float64, 8192)
	b.Stream(buf)

	// After the filter settles, a +6 dB peak at the tone's frequency must
	// raise its amplitude clearly above the 0.5 input level.
	var peak float64
	for _, s := range buf[4096:] {
		peak = max(peak, math.Abs(s[0]))
	}
	if peak < 0.6 {
		t.Errorf("peak = %v after +6 dB boost at center, want > 0.6", peak)
	}
	for _, s := range buf {
		if math.IsNaN(s[0]) || math.IsInf(s[0], 0) {
			t.Fatal("filter produced a non-finite sample")
		}
	}
}

func TestBiquadCutLowersCenterFrequency(t *testing.T) {
	gain := -12.0
	src := &tone{freq: 1000, rate: 44100}
	b := newBiquad(src, 1000, 1.4, &gain, 44100)

	buf := make([][2]float64, 8192)
	b.Stream(buf)

	var peak float64
	for _, s := range buf[4096:] {
		peak = max(peak, math.Abs(s[0]))
	}
	if peak > 0.4 {
		t.Errorf("peak = %v after -12 dB cut at center, want < 0.4", peak)
	}
}
