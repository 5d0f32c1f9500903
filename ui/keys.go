package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
	eqStep     = 1.0 // dB per key press
)

// handleKey maps a key press onto engine commands.
func (m *Model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true

	case " ":
		if m.st.Playing || m.st.Paused {
			m.eng.Pause()
		} else {
			m.eng.Play()
		}

	case "x":
		m.eng.Stop()

	case "n", ">":
		m.eng.Next()

	case "p", "<":
		m.eng.Previous()

	case "left":
		m.eng.SeekBy(-seekStep)

	case "right":
		m.eng.SeekBy(seekStep)

	case "+", "=":
		m.eng.AdjustVolume(volumeStep)

	case "-":
		m.eng.AdjustVolume(-volumeStep)

	case "s":
		m.eng.ToggleShuffle()

	case "r":
		m.eng.ToggleRepeat()

	case "e":
		m.eng.ExportPlaylist("goamp.m3u")

	case "m":
		m.mini = !m.mini

	case "tab":
		if m.focus == focusPlaylist {
			m.focus = focusEQ
		} else {
			m.focus = focusPlaylist
		}

	case "up":
		switch m.focus {
		case focusPlaylist:
			if m.plCursor > 0 {
				m.plCursor--
				m.adjustScroll()
			}
		case focusEQ:
			m.eng.SetEQBand(m.eqCursor, m.st.EQ[m.eqCursor]+eqStep)
		}

	case "down":
		switch m.focus {
		case focusPlaylist:
			if m.plCursor < len(m.st.Tracks)-1 {
				m.plCursor++
				m.adjustScroll()
			}
		case focusEQ:
			m.eng.SetEQBand(m.eqCursor, m.st.EQ[m.eqCursor]-eqStep)
		}

	case "[":
		if m.focus == focusEQ && m.eqCursor > 0 {
			m.eqCursor--
		}

	case "]":
		if m.focus == focusEQ && m.eqCursor < len(m.st.EQ)-1 {
			m.eqCursor++
		}

	case "enter":
		if m.focus == focusPlaylist {
			m.eng.PlayIndex(m.plCursor)
		}

	case "d", "delete":
		if m.focus == focusPlaylist {
			m.eng.RemoveTrack(m.plCursor)
			if m.plCursor >= len(m.st.Tracks)-1 {
				m.plCursor = max(0, len(m.st.Tracks)-2)
			}
		}
	}
}
