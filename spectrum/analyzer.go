// Package spectrum turns raw PCM blocks into a smoothed 15-band
// visualization feed.
package spectrum

import (
	"math"
	"sync"
	"time"

	"github.com/madelynnblue/go-dsp/fft"
)

const (
	// NumBands is the number of logarithmically spaced frequency bands.
	NumBands = 15

	fftSize = 256
	minFreq = 50.0 // lower edge of the analyzed range, Hz

	// Only every Nth delivered block is analyzed, with an additional
	// elapsed-time gate, to cap CPU spent on the audio goroutine.
	processEvery = 2
	minInterval  = 33 * time.Millisecond

	// Weight of the previous value in both smoothing stages.
	smoothing = 0.15
)

// Bands is one spectrum snapshot: non-negative display magnitudes.
type Bands [NumBands]float64

// Analyzer windows PCM blocks, runs a 256-point FFT, bins the magnitude
// spectrum into 15 logarithmic bands and double-smooths the result.
//
// Process is called from the audio render goroutine; Tick and Snapshot from
// the coordination goroutine. The two sides only meet in a short critical
// section around the staging buffer.
type Analyzer struct {
	window [fftSize]float64
	buf    []float64
	loBin  [NumBands]int
	hiBin  [NumBands]int

	calls int
	last  time.Time

	mu        sync.Mutex
	staging   Bands
	published Bands
}

// New creates an Analyzer for the given sample rate.
func New(sampleRate float64) *Analyzer {
	a := &Analyzer{buf: make([]float64, fftSize)}
	for i := range fftSize {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	// Band i covers [50*(nyq/50)^(i/15), 50*(nyq/50)^((i+1)/15)] Hz,
	// mapped linearly onto the 128-bin half spectrum. Every band spans at
	// least one bin.
	nyquist := sampleRate / 2
	half := fftSize / 2
	ratio := nyquist / minFreq
	for i := range NumBands {
		f0 := minFreq * math.Pow(ratio, float64(i)/NumBands)
		f1 := minFreq * math.Pow(ratio, float64(i+1)/NumBands)
		lo := int(f0 / nyquist * float64(half))
		hi := int(f1 / nyquist * float64(half))
		if lo < 1 {
			lo = 1
		}
		if hi <= lo {
			hi = lo + 1
		}
		if hi > half {
			hi = half
		}
		a.loBin[i] = lo
		a.hiBin[i] = hi
	}
	return a
}

// Process analyzes one block of mono PCM samples. Blocks shorter than the
// transform size are skipped. Safe to call at the audio callback rate: most
// calls return after the rate-limit checks without doing any work.
func (a *Analyzer) Process(block []float64) {
	if len(block) < fftSize {
		return
	}
	a.calls++
	if a.calls%processEvery != 0 {
		return
	}
	now := time.Now()
	if now.Sub(a.last) < minInterval {
		return
	}
	a.last = now

	for i := range fftSize {
		a.buf[i] = block[i] * a.window[i]
	}
	spec := fft.FFTReal(a.buf)

	var raw Bands
	for b := range NumBands {
		var sum float64
		for i := a.loBin[b]; i < a.hiBin[b]; i++ {
			re := real(spec[i])
			im := imag(spec[i])
			sum += re*re + im*im
		}
		rms := math.Sqrt(sum / float64(a.hiBin[b]-a.loBin[b]))
		raw[b] = math.Log10(1+rms) * 0.5
	}

	a.mu.Lock()
	for b := range NumBands {
		a.staging[b] = a.staging[b]*smoothing + raw[b]*(1-smoothing)
	}
	a.mu.Unlock()
}

// Tick merges the staging buffer into the published snapshot and returns it.
// When active is false the snapshot decays to all-zero instead of holding
// stale values.
func (a *Analyzer) Tick(active bool) Bands {
	a.mu.Lock()
	defer a.mu.Unlock()
	for b := range NumBands {
		if !active {
			a.staging[b] *= smoothing
			if a.staging[b] < 1e-4 {
				a.staging[b] = 0
			}
		}
		a.published[b] = a.published[b]*smoothing + a.staging[b]*(1-smoothing)
		if !active && a.published[b] < 1e-4 {
			a.published[b] = 0
		}
	}
	return a.published
}
