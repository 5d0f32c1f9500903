package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"goamp/spectrum"
)

const barWidth = 3 // character width of each spectrum bar

// Unicode block elements for bar height (9 levels including space)
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Pre-built styles for spectrum bar colors to avoid per-frame allocation.
var (
	specLowStyle  = lipgloss.NewStyle().Foreground(spectrumLow)
	specMidStyle  = lipgloss.NewStyle().Foreground(spectrumMid)
	specHighStyle = lipgloss.NewStyle().Foreground(spectrumHigh)
)

// renderSpectrumBars converts the engine's 15-band snapshot into a colored
// bar string of the given width. The analysis itself happens on the audio
// side; this only maps published magnitudes to block glyphs.
func renderSpectrumBars(bands spectrum.Bands, availWidth int) string {
	n := len(bands)
	bw := barWidth
	if availWidth > 0 {
		bw = (availWidth - (n - 1)) / n
		if bw < 1 {
			bw = 1
		}
	}

	var sb strings.Builder
	for i, v := range bands {
		level := max(0, min(1, v))
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))
		block := barBlocks[idx]

		var style lipgloss.Style
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		default:
			style = specLowStyle
		}

		sb.WriteString(style.Render(strings.Repeat(block, bw)))
		if i < n-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
