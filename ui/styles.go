package ui

import "github.com/charmbracelet/lipgloss"

// The palette sticks to the 16 ANSI slots so the player inherits the
// user's terminal theme instead of forcing truecolor values.
var (
	colorBorder  = lipgloss.ANSIColor(8)
	colorText    = lipgloss.ANSIColor(7)
	colorDim     = lipgloss.ANSIColor(8)
	colorTitle   = lipgloss.ANSIColor(14) // bright cyan
	colorAccent  = lipgloss.ANSIColor(13) // bright magenta
	colorPlaying = lipgloss.ANSIColor(10) // bright green
	colorSeekBar = lipgloss.ANSIColor(14) // bright cyan
	colorVolume  = lipgloss.ANSIColor(6)  // cyan

	// Classic analyzer gradient, quiet to loud.
	spectrumLow  = lipgloss.ANSIColor(10)
	spectrumMid  = lipgloss.ANSIColor(11)
	spectrumHigh = lipgloss.ANSIColor(9)
)

// Frame chrome.
var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(66)

	// Mini mode drops the padding and lets the frame track the terminal.
	miniFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// Text styles, roughly top to bottom of the rendered frame.
var (
	titleStyle  = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	trackStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	timeStyle   = lipgloss.NewStyle().Foreground(colorText)
	statusStyle = lipgloss.NewStyle().Foreground(colorPlaying).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)

	eqActiveStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	eqInactiveStyle = lipgloss.NewStyle().Foreground(colorDim)

	playlistActiveStyle   = lipgloss.NewStyle().Foreground(colorPlaying).Bold(true)
	playlistItemStyle     = lipgloss.NewStyle().Foreground(colorText)
	playlistSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	helpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(9))
)
