package tui

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yetidevworks/raygun/internal/protocol"
	"github.com/yetidevworks/raygun/internal/timeline"
)

func seedStore(t *testing.T, store *timeline.Store, bodies ...string) {
	t.Helper()
	for _, body := range bodies {
		var req protocol.Request
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}
		store.RecordRequest(req)
	}
}

const logBody = `{"uuid":"u1","payloads":[{"type":"log","content":{"values":["hello"]}}]}`
const colorLogBody = `{"uuid":"u2","payloads":[{"type":"log","content":{"values":["world"]}},{"type":"color","content":{"color":"green"}}]}`

func newTestModel(t *testing.T, bodies ...string) *Model {
	t.Helper()
	store := timeline.New(timeline.DefaultRetention)
	seedStore(t, store, bodies...)
	m := New(store)
	m.Init()
	m.width, m.height = 80, 24
	return m
}

func TestModelTabTogglesFocus(t *testing.T) {
	m := newTestModel(t, logBody)
	if m.focus != PanelTimeline {
		t.Fatalf("expected initial focus PanelTimeline, got %v", m.focus)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != PanelDetail {
		t.Errorf("expected focus PanelDetail after Tab, got %v", m.focus)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != PanelTimeline {
		t.Errorf("expected focus PanelTimeline after second Tab, got %v", m.focus)
	}
}

func TestModelHelpToggle(t *testing.T) {
	m := newTestModel(t, logBody)
	if m.showHelp {
		t.Fatal("help should be hidden by default")
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !m.showHelp {
		t.Error("expected help shown after '?'")
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if m.showHelp {
		t.Error("expected help hidden after second '?'")
	}
}

func TestModelCycleLayout(t *testing.T) {
	m := newTestModel(t, logBody)
	if m.layout != DetailFocus {
		t.Fatalf("expected starting layout DetailFocus, got %v", m.layout)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.layout != TimelineFocus {
		t.Errorf("expected TimelineFocus after one cycle, got %v", m.layout)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.layout != Balanced {
		t.Errorf("expected Balanced after two cycles, got %v", m.layout)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.layout != DetailFocus {
		t.Errorf("expected back to DetailFocus after three cycles, got %v", m.layout)
	}
}

func TestModelClearTimeline(t *testing.T) {
	m := newTestModel(t, logBody, colorLogBody)
	if m.view.TotalEvents == 0 {
		t.Fatal("expected seeded events")
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlK})
	if m.view.TotalEvents != 0 {
		t.Errorf("expected 0 events after clear, got %d", m.view.TotalEvents)
	}
}

func TestModelQuitReturnsTeaQuit(t *testing.T) {
	m := newTestModel(t, logBody)
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a non-nil command")
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", msg)
	}
}

func TestModelTimelineNavigation(t *testing.T) {
	m := newTestModel(t, logBody, colorLogBody)
	if m.focus != PanelTimeline {
		t.Fatal("expected focus to start on timeline")
	}
	start := m.view.Selected
	m.handleTimelineKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.view.Selected == start {
		t.Error("expected selection to move on Down")
	}
	m.handleTimelineKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.view.Selected != start {
		t.Errorf("expected selection back to %d, got %d", start, m.view.Selected)
	}
}

func TestModelColorFilterCyclesThroughEachColorOnceThenClears(t *testing.T) {
	greenBody := `{"uuid":"g1","payloads":[{"type":"log","content":{"values":["g"]}},{"type":"color","content":{"color":"green"}}]}`
	redBody := `{"uuid":"r1","payloads":[{"type":"log","content":{"values":["r"]}},{"type":"color","content":{"color":"red"}}]}`
	m := newTestModel(t, greenBody, redBody)

	seen := map[string]bool{}
	if m.assembler.ColorFilter() != "" {
		t.Fatal("expected no filter initially")
	}
	for i := 0; i < len(m.view.AvailableColors); i++ {
		m.cycleColorFilter()
		m.refresh()
		filter := m.assembler.ColorFilter()
		if filter == "" {
			t.Fatalf("filter cleared early after %d cycles", i+1)
		}
		if seen[filter] {
			t.Fatalf("color %q visited twice before returning to no-filter", filter)
		}
		seen[filter] = true
	}
	// One more cycle should return to "no filter".
	m.cycleColorFilter()
	m.refresh()
	if m.assembler.ColorFilter() != "" {
		t.Errorf("expected filter to clear after visiting every color, got %q", m.assembler.ColorFilter())
	}
	if len(seen) != len(m.view.AvailableColors) {
		t.Errorf("expected every available color visited exactly once, saw %d of %d", len(seen), len(m.view.AvailableColors))
	}
}

func TestModelWindowSizeMsgUpdatesDimensions(t *testing.T) {
	m := newTestModel(t, logBody)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model := updated.(*Model)
	if model.width != 120 || model.height != 40 {
		t.Errorf("expected width=120 height=40, got width=%d height=%d", model.width, model.height)
	}
}

func TestModelViewDoesNotPanic(t *testing.T) {
	m := newTestModel(t, logBody, colorLogBody)
	if view := m.View(); view == "" {
		t.Error("View() returned empty string")
	}
	m.showHelp = true
	if view := m.View(); view == "" {
		t.Error("View() with help overlay returned empty string")
	}
	m.showHelp = false
	m.showRaw = true
	if view := m.View(); view == "" {
		t.Error("View() with raw overlay returned empty string")
	}
}

const nestedLogBody = `{"uuid":"n1","payloads":[{"type":"log","content":{"values":["ignored"],"meta":[{"clipboard_data":"array:2 [\n  0 => \"a\"\n  1 => \"b\"\n]"}]}}]}`

func TestModelCollapseForcesClosedRegardlessOfCurrentState(t *testing.T) {
	m := newTestModel(t, nestedLogBody)
	if m.view.DetailState == nil {
		t.Fatal("expected a detail state for the selected event")
	}
	if m.view.DetailState.Collapsed[0] {
		t.Fatal("expected node 0 to start expanded")
	}

	m.handleDetailKey(tea.KeyMsg{Type: tea.KeyLeft})
	if !m.view.DetailState.Collapsed[0] {
		t.Fatal("expected Collapse to close an expanded node")
	}

	// Collapsing an already-collapsed node must stay collapsed, not toggle
	// back open.
	m.handleDetailKey(tea.KeyMsg{Type: tea.KeyLeft})
	if !m.view.DetailState.Collapsed[0] {
		t.Error("expected Collapse on an already-collapsed node to stay collapsed")
	}
}

func TestModelExpandForcesOpenRegardlessOfCurrentState(t *testing.T) {
	m := newTestModel(t, nestedLogBody)
	m.assembler.Collapse(0)
	m.refresh()
	if !m.view.DetailState.Collapsed[0] {
		t.Fatal("expected node 0 to start collapsed")
	}

	m.handleDetailKey(tea.KeyMsg{Type: tea.KeyRight})
	if m.view.DetailState.Collapsed[0] {
		t.Fatal("expected Expand to open a collapsed node")
	}

	// Expanding an already-expanded node must stay expanded, not toggle
	// back closed.
	m.handleDetailKey(tea.KeyMsg{Type: tea.KeyRight})
	if m.view.DetailState.Collapsed[0] {
		t.Error("expected Expand on an already-expanded node to stay expanded")
	}
}

func TestModelToggleNodeFlipsEitherDirection(t *testing.T) {
	m := newTestModel(t, nestedLogBody)
	if m.view.DetailState.Collapsed[0] {
		t.Fatal("expected node 0 to start expanded")
	}

	m.handleDetailKey(tea.KeyMsg{Type: tea.KeySpace})
	if !m.view.DetailState.Collapsed[0] {
		t.Error("expected ToggleNode to close an expanded node")
	}

	m.handleDetailKey(tea.KeyMsg{Type: tea.KeySpace})
	if m.view.DetailState.Collapsed[0] {
		t.Error("expected ToggleNode to reopen a collapsed node")
	}
}

func TestWindowAroundKeepsCursorInBounds(t *testing.T) {
	rows := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	got := windowAround(rows, 8, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	// Centered on index 8 with room for 3 rows: indices 7..9.
	if got[len(got)-1] != "j" {
		t.Errorf("expected window to end near index 8, got %v", got)
	}

	full := windowAround(rows, 2, 50)
	if len(full) != len(rows) {
		t.Errorf("expected no truncation when limit exceeds length, got %d rows", len(full))
	}
}
