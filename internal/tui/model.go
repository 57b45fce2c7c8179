// Package tui renders Raygun's live timeline as a Bubble Tea program: a
// scrollable list of incoming events above a detail pane for the current
// selection, polling the timeline store on a fixed tick the way the
// original's crossterm event loop polled on tick_rate.
package tui

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yetidevworks/raygun/internal/timeline"
	"github.com/yetidevworks/raygun/internal/viewmodel"
)

// Panel is which pane currently has keyboard focus.
type Panel int

const (
	PanelTimeline Panel = iota
	PanelDetail
)

const tickRate = 250 * time.Millisecond

// Model is the root Bubble Tea model.
type Model struct {
	store     *timeline.Store
	assembler *viewmodel.Assembler

	width  int
	height int

	focus    Panel
	layout   LayoutPreset
	keys     KeyMap
	help     help.Model
	showHelp bool
	showRaw  bool

	view viewmodel.AppViewModel
}

// New builds a Model that reads its timeline from store.
func New(store *timeline.Store) *Model {
	h := help.New()
	h.ShowAll = false
	return &Model{
		store:     store,
		assembler: viewmodel.NewAssembler(),
		focus:     PanelTimeline,
		layout:    DetailFocus,
		keys:      DefaultKeyMap(),
		help:      h,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the refresh loop.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(tick(), tea.SetWindowTitle("Raygun"))
}

func (m *Model) refresh() {
	m.view = m.assembler.Build(m.store.Snapshot(), time.Now())
}

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.RawOverlay):
		m.showRaw = !m.showRaw
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PanelTimeline {
			m.focus = PanelDetail
		} else {
			m.focus = PanelTimeline
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleLayout):
		m.layout = m.layout.next()
		return m, nil

	case key.Matches(msg, m.keys.ClearTimeline):
		m.store.ClearTimeline()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ColorFilter):
		m.cycleColorFilter()
		m.refresh()
		return m, nil
	}

	if m.focus == PanelTimeline {
		return m.handleTimelineKey(msg)
	}
	return m.handleDetailKey(msg)
}

func (m *Model) handleTimelineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.assembler.MoveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.assembler.MoveSelection(1)
	case key.Matches(msg, m.keys.Home):
		m.assembler.MoveSelection(-len(m.view.Timeline))
	case key.Matches(msg, m.keys.End):
		m.assembler.MoveSelection(len(m.view.Timeline))
	case key.Matches(msg, m.keys.PageUp):
		m.assembler.MoveSelection(-10)
	case key.Matches(msg, m.keys.PageDown):
		m.assembler.MoveSelection(10)
	}
	m.refresh()
	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.assembler.MoveDetailCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.assembler.MoveDetailCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.assembler.ScrollDetailTo(max(0, m.view.DetailScroll-10))
	case key.Matches(msg, m.keys.PageDown):
		m.assembler.ScrollDetailTo(m.view.DetailScroll + 10)
	case key.Matches(msg, m.keys.Home):
		m.assembler.ScrollDetailTo(0)
	case key.Matches(msg, m.keys.Expand):
		if m.view.DetailState != nil {
			m.assembler.Expand(m.view.DetailState.Cursor)
		}
	case key.Matches(msg, m.keys.Collapse):
		if m.view.DetailState != nil {
			m.assembler.Collapse(m.view.DetailState.Cursor)
		}
	case key.Matches(msg, m.keys.ToggleNode):
		if m.view.DetailState != nil {
			m.assembler.ToggleCollapse(m.view.DetailState.Cursor)
		}
	}
	m.refresh()
	return m, nil
}

// cycleColorFilter advances through available colors and back to "no
// filter", per spec.md §8's invariant 8.
func (m *Model) cycleColorFilter() {
	colors := m.view.AvailableColors
	if len(colors) == 0 {
		m.assembler.SetColorFilter("")
		return
	}
	current := m.assembler.ColorFilter()
	if current == "" {
		m.assembler.SetColorFilter(colors[0])
		return
	}
	for i, c := range colors {
		if c == current {
			if i+1 < len(colors) {
				m.assembler.SetColorFilter(colors[i+1])
			} else {
				m.assembler.SetColorFilter("")
			}
			return
		}
	}
	m.assembler.SetColorFilter("")
}

func rawPayloadJSON(event timeline.Event) string {
	b, err := json.MarshalIndent(event.Request, "", "  ")
	if err != nil {
		return "failed to render raw payload"
	}
	return string(b)
}
