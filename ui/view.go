package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth        = 60 // usable inner width (66 frame - 2 border - 4 padding)
	miniPanelMinW     = 28 // minimum usable inner width for mini mode
	miniFrameOverhead = 4  // border (2) + padding (2×1) for mini frame
)

// Pre-built styles for elements created per-render to avoid repeated allocation.
var (
	seekFillStyle = lipgloss.NewStyle().Foreground(colorSeekBar)
	seekDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	volBarStyle   = lipgloss.NewStyle().Foreground(colorVolume)
	activeToggle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)

// pw returns the usable inner panel width for the current mode.
func (m Model) pw() int {
	if m.mini {
		w := m.width - miniFrameOverhead
		if w < miniPanelMinW {
			w = miniPanelMinW
		}
		return w
	}
	return panelWidth
}

// miniFrameW returns the outer frame width for mini mode.
func (m Model) miniFrameW() int {
	w := m.width
	if w < miniPanelMinW+miniFrameOverhead {
		w = miniPanelMinW + miniFrameOverhead
	}
	return w
}

// View renders the full TUI frame from the last engine snapshot.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	if m.mini {
		sections = []string{
			m.renderTitle(),
			m.renderTrackInfo(),
			m.renderTimeStatus(),
			m.renderSpectrum(),
			m.renderSeekBar(),
			m.renderVolume(),
			m.renderPlaylistHeader(),
			m.renderPlaylist(),
			m.renderHelp(),
		}
	} else {
		sections = []string{
			m.renderTitle(),
			m.renderTrackInfo(),
			m.renderTimeStatus(),
			"",
			m.renderSpectrum(),
			m.renderSeekBar(),
			"",
			m.renderVolume(),
			m.renderEQ(),
			"",
			m.renderPlaylistHeader(),
			m.renderPlaylist(),
			"",
			m.renderHelp(),
		}
	}

	if m.st.Err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.st.Err)))
	}

	content := strings.Join(sections, "\n")
	if m.mini {
		return miniFrameStyle.Width(m.miniFrameW()).Render(content)
	}
	return frameStyle.Render(content)
}

func (m Model) renderTitle() string {
	return titleStyle.Render("G O A M P")
}

func (m Model) renderTrackInfo() string {
	name := "No track loaded"
	if m.st.Track != nil {
		name = m.st.Track.DisplayName()
		if src := m.st.Source; src.Bitrate > 0 && !m.mini {
			name = fmt.Sprintf("%s  %dkbps %dHz", name, src.Bitrate, src.SampleRate)
		}
	}

	pw := m.pw()
	prefix := "♫ "
	maxW := pw - len([]rune(prefix))
	runes := []rune(name)

	if len(runes) <= maxW {
		return trackStyle.Render(prefix + name)
	}

	// Cyclic scrolling for long titles
	sep := []rune("  ♫  ")
	padded := append(runes, sep...)
	total := len(padded)
	off := m.titleOff % total

	display := make([]rune, maxW)
	for i := range maxW {
		display[i] = padded[(off+i)%total]
	}
	return trackStyle.Render(prefix + string(display))
}

func (m Model) renderTimeStatus() string {
	pos := m.st.Position
	dur := m.st.Duration

	timeStr := fmt.Sprintf("%02d:%02d / %02d:%02d",
		int(pos.Minutes()), int(pos.Seconds())%60,
		int(dur.Minutes()), int(dur.Seconds())%60)

	var status string
	switch {
	case m.st.Paused:
		status = statusStyle.Render("⏸ Paused")
	case m.st.Playing:
		status = statusStyle.Render("▶ Playing")
	default:
		status = dimStyle.Render("■ Stopped")
	}

	left := timeStyle.Render(timeStr)
	gap := m.pw() - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderSpectrum() string {
	return renderSpectrumBars(m.st.Spectrum, m.pw())
}

func (m Model) renderSeekBar() string {
	var progress float64
	if m.st.Duration > 0 {
		progress = float64(m.st.Position) / float64(m.st.Duration)
	}
	progress = max(0, min(1, progress))

	pw := m.pw()
	filled := int(progress * float64(pw-1))

	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekFillStyle.Render("●") +
		seekDimStyle.Render(strings.Repeat("━", max(0, pw-filled-1)))
}

func (m Model) renderVolume() string {
	frac := max(0, min(1, m.st.Volume))

	if m.mini {
		// "V " (2) + bar + " 100%" (5) = 7 overhead
		barW := m.pw() - 7
		if barW < 4 {
			barW = 4
		}
		filled := int(frac * float64(barW))
		bar := volBarStyle.Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("░", barW-filled))
		return labelStyle.Render("V ") + bar + dimStyle.Render(fmt.Sprintf(" %3.0f%%", frac*100))
	}

	barW := 22
	filled := int(frac * float64(barW))
	bar := volBarStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barW-filled))
	return labelStyle.Render("VOL ") + bar + dimStyle.Render(fmt.Sprintf(" %3.0f%%", frac*100))
}

func (m Model) renderEQ() string {
	labels := [10]string{"70", "180", "320", "600", "1k", "3k", "6k", "12k", "14k", "16k"}

	parts := make([]string, len(labels))
	for i, label := range labels {
		style := eqInactiveStyle
		if m.focus == focusEQ && i == m.eqCursor {
			style = eqActiveStyle
			label = fmt.Sprintf("%+.0f", m.st.EQ[i])
		}
		parts[i] = style.Render(label)
	}

	return labelStyle.Render("EQ  ") + strings.Join(parts, " ")
}

func (m Model) renderPlaylistHeader() string {
	var shuffle string
	if m.st.Shuffle {
		shuffle = activeToggle.Render("[S]")
	} else {
		shuffle = dimStyle.Render("[S]")
	}

	var repeat string
	if m.st.Repeat {
		repeat = activeToggle.Render("[R]")
	} else {
		repeat = dimStyle.Render("[R]")
	}

	if m.mini {
		return dimStyle.Render("─ Playlist ─ ") + shuffle + " " + repeat
	}
	return dimStyle.Render("── Playlist ── ") + shuffle + " " + repeat + " " + dimStyle.Render("──")
}

func (m Model) renderPlaylist() string {
	tracks := m.st.Tracks
	if len(tracks) == 0 {
		return dimStyle.Render("  No tracks loaded")
	}

	visible := min(m.plVisible, len(tracks))

	scroll := m.plScroll
	if scroll+visible > len(tracks) {
		scroll = len(tracks) - visible
	}
	scroll = max(0, scroll)

	lines := make([]string, 0, visible)
	for i := scroll; i < scroll+visible && i < len(tracks); i++ {
		prefix := "  "
		style := playlistItemStyle

		if i == m.st.Index && (m.st.Playing || m.st.Paused) {
			prefix = "▶ "
			style = playlistActiveStyle
		}

		if m.focus == focusPlaylist && i == m.plCursor {
			style = playlistSelectedStyle
		}

		name := tracks[i].DisplayName()
		maxW := m.pw() - 6
		nameRunes := []rune(name)
		if len(nameRunes) > maxW {
			name = string(nameRunes[:maxW-1]) + "…"
		}

		lines = append(lines, style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, name)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	if m.mini {
		return helpStyle.Render("[Spc]Play [<>]Trk [Q]Quit")
	}
	return helpStyle.Render("[Spc]Play [<>]Trk [←→]Seek [+-]Vol [S]huf [R]ep [Tab]Focus [Q]uit")
}
