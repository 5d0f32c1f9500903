// Package ui implements the Bubbletea TUI for the goamp music player.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"goamp/engine"
)

type focusArea int

const (
	focusPlaylist focusArea = iota
	focusEQ
)

// stateMsg carries one engine snapshot into the Bubbletea loop.
type stateMsg engine.State

// Model is the Bubbletea model. It holds no playback state of its own:
// everything rendered comes from the engine's last published snapshot, and
// every key press turns into an engine command.
type Model struct {
	eng    *engine.Engine
	states <-chan engine.State
	st     engine.State

	focus     focusArea
	eqCursor  int // selected EQ band (0-9)
	plCursor  int // selected playlist item
	plScroll  int // scroll offset for playlist view
	plVisible int // max visible playlist items
	titleOff  int // scroll offset for long track titles
	mini      bool
	quitting  bool
	width     int
	height    int
}

// NewModel creates a Model subscribed to the given engine.
func NewModel(eng *engine.Engine) Model {
	return Model{
		eng:       eng,
		states:    eng.Subscribe(),
		plVisible: 5,
	}
}

// waitForState blocks until the engine publishes the next snapshot.
func waitForState(ch <-chan engine.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

// Init subscribes to engine state and requests the terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.states), tea.WindowSize())
}

// Update handles messages: key presses, engine snapshots, window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case stateMsg:
		prev := m.st.Index
		m.st = engine.State(msg)
		if m.st.Index != prev {
			m.plCursor = max(0, m.st.Index)
			m.adjustScroll()
			m.titleOff = 0
		}
		m.titleOff++
		return m, waitForState(m.states)
	}

	return m, nil
}

// adjustScroll ensures plCursor is visible in the playlist view.
func (m *Model) adjustScroll() {
	if m.plCursor < m.plScroll {
		m.plScroll = m.plCursor
	}
	if m.plCursor >= m.plScroll+m.plVisible {
		m.plScroll = m.plCursor - m.plVisible + 1
	}
}
