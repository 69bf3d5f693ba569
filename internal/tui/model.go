// Package tui is the terminal shell around a reminder.Store.
//
// The model keeps no reminder state of its own: every key press becomes a
// Store call and the view renders a fresh Snapshot. Timer-driven expiry
// reaches the screen through the store's change feed.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/reminders/internal/reminder"
)

const (
	inputPlaceholder = "Enter a new reminder"
	inputCharLimit   = 200
	inputWidth       = 40
)

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// eventsMsg carries events drained from the store feed.
type eventsMsg []reminder.Event

// feedClosedMsg is sent once the store has been closed.
type feedClosedMsg struct{}

// Model is the bubbletea model for the reminder list.
type Model struct {
	store *reminder.Store
	feed  *reminder.Feed

	input textinput.Model
	keys  keyMap
	help  help.Model

	focus  focusArea
	cursor int
	snap   reminder.Snapshot

	width    int
	quitting bool
}

// New creates a model bound to store and subscribes to its events.
func New(store *reminder.Store) Model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = inputCharLimit
	ti.Width = inputWidth
	ti.SetValue(store.Input())
	ti.Focus()

	return Model{
		store: store,
		feed:  store.Subscribe(),
		input: ti,
		keys:  defaultKeyMap(),
		help:  help.New(),
		focus: focusInput,
		snap:  store.Snapshot(),
	}
}

// Init starts the cursor blink and the feed watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvents(m.feed))
}

// waitForEvents blocks until the feed signals, then drains it.
func waitForEvents(feed *reminder.Feed) tea.Cmd {
	return func() tea.Msg {
		<-feed.Wait()
		events := feed.Drain()
		if len(events) == 0 && feed.Closed() {
			return feedClosedMsg{}
		}
		return eventsMsg(events)
	}
}

// Update handles key presses and feed events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case eventsMsg:
		m.refresh()
		return m, waitForEvents(m.feed)

	case feedClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		return m.switchFocus()
	}

	if m.focus == focusInput {
		if key.Matches(msg, m.keys.Add) {
			m.store.SetInput(m.input.Value())
			if _, ok := m.store.Submit(); ok {
				m.input.Reset()
			}
			m.refresh()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.store.SetInput(m.input.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Active)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if r, ok := m.selected(); ok {
			m.store.ToggleComplete(r.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		// Completed reminders are not offered for deletion; they leave
		// through auto-expire.
		if r, ok := m.selected(); ok && !r.Completed {
			m.store.Delete(r.ID)
		}
	}

	m.refresh()
	return m, nil
}

func (m Model) switchFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return m, nil
	}
	m.focus = focusInput
	return m, m.input.Focus()
}

func (m Model) selected() (reminder.Reminder, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Active) {
		return reminder.Reminder{}, false
	}
	return m.snap.Active[m.cursor], true
}

// refresh reloads the snapshot and keeps the cursor on a live row.
func (m *Model) refresh() {
	m.snap = m.store.Snapshot()
	if m.cursor >= len(m.snap.Active) {
		m.cursor = len(m.snap.Active) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
