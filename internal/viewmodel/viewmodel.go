// Package viewmodel assembles the read-only AppViewModel the renderer draws
// each frame: a reverse-ordered, color-filtered timeline, the selected
// event's DetailView, and its persistent per-event collapse/cursor state.
package viewmodel

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yetidevworks/raygun/internal/detail"
	"github.com/yetidevworks/raygun/internal/summarize"
	"github.com/yetidevworks/raygun/internal/timeline"
)

// TimelineViewLimit bounds how many of the most recent events a frame
// considers, independent of the store's own retention cap.
const TimelineViewLimit = 200

// DetailState is one event's persistent cursor/scroll/collapse state in the
// detail pane, keyed by event id across frames.
type DetailState struct {
	Scroll    int
	Cursor    int
	Collapsed map[int]bool
}

func newDetailState() *DetailState {
	return &DetailState{Collapsed: make(map[int]bool)}
}

// AppViewModel is the immutable snapshot the renderer consumes for one
// frame.
type AppViewModel struct {
	TotalEvents     int
	Timeline        []summarize.TimelineEntry
	Selected        int
	HasSelection    bool
	Detail          *detail.DetailView
	DetailScroll    int
	DetailState     *DetailState
	AvailableColors []string
	ColorFilter     string
}

// Assembler owns the cursor/selection/filter/detail-state that persists
// across frames; Build is called once per render with a fresh store
// snapshot.
type Assembler struct {
	selected       int
	hasSelection   bool
	colorFilter    string
	detailScroll   int
	detailStates   map[uuid.UUID]*DetailState
	currentEventID uuid.UUID
	hasCurrentID   bool
}

// NewAssembler creates an Assembler with no selection and no active color
// filter, matching the bootstrap defaults.
func NewAssembler() *Assembler {
	return &Assembler{detailStates: make(map[uuid.UUID]*DetailState)}
}

// SetColorFilter sets the active color filter; Build clears it again if the
// color no longer appears in the current window.
func (a *Assembler) SetColorFilter(color string) {
	a.colorFilter = color
}

// ColorFilter reports the currently active color filter, or "" if none.
func (a *Assembler) ColorFilter() string {
	return a.colorFilter
}

// MoveSelection shifts the selected index by delta, clamped on the next
// Build call.
func (a *Assembler) MoveSelection(delta int) {
	a.selected += delta
}

// ScrollDetailTo sets the selected event's detail scroll position directly
// (e.g. page up/down), clamped on the next Build call. A no-op if nothing
// is selected.
func (a *Assembler) ScrollDetailTo(scroll int) {
	if !a.hasCurrentID {
		return
	}
	state := a.detailStateFor(a.currentEventID)
	state.Scroll = scroll
}

// ToggleCollapse flips whether lineIndex is collapsed in the currently
// selected event's detail state. A no-op if nothing is selected.
func (a *Assembler) ToggleCollapse(lineIndex int) {
	if !a.hasCurrentID {
		return
	}
	state := a.detailStateFor(a.currentEventID)
	state.Collapsed[lineIndex] = !state.Collapsed[lineIndex]
}

// Expand force-opens lineIndex in the currently selected event's detail
// state, regardless of its current state. A no-op if nothing is selected.
func (a *Assembler) Expand(lineIndex int) {
	if !a.hasCurrentID {
		return
	}
	state := a.detailStateFor(a.currentEventID)
	state.Collapsed[lineIndex] = false
}

// Collapse force-closes lineIndex in the currently selected event's detail
// state, regardless of its current state. A no-op if nothing is selected.
func (a *Assembler) Collapse(lineIndex int) {
	if !a.hasCurrentID {
		return
	}
	state := a.detailStateFor(a.currentEventID)
	state.Collapsed[lineIndex] = true
}

// MoveDetailCursor shifts the selected event's detail cursor by delta,
// clamped on the next Build call.
func (a *Assembler) MoveDetailCursor(delta int) {
	if !a.hasCurrentID {
		return
	}
	state := a.detailStateFor(a.currentEventID)
	state.Cursor += delta
}

// Build runs the full per-frame assembly described in spec.md §4.6:
// snapshot already taken by the caller, reverse/truncate to
// TimelineViewLimit, recompute available colors and drop a stale filter,
// apply the filter, clamp selection, summarize visible events, and — for
// the selection, if any — build its DetailView and clamp its persistent
// detail state.
func (a *Assembler) Build(snapshot []timeline.Event, now time.Time) AppViewModel {
	windowed := reverseTruncate(snapshot, TimelineViewLimit)

	available := availableColors(windowed)
	if a.colorFilter != "" && !containsString(available, a.colorFilter) {
		a.colorFilter = ""
	}

	visible := windowed
	if a.colorFilter != "" {
		visible = filterByColor(windowed, a.colorFilter)
	}

	previousSelection, hadSelection := a.selected, a.hasSelection
	a.clampSelection(len(visible))
	if a.hasSelection != hadSelection || a.selected != previousSelection {
		a.detailScroll = 0
	}

	entries := make([]summarize.TimelineEntry, len(visible))
	for i, event := range visible {
		entries[i] = summarize.Summarize(event, now)
	}

	a.gcDetailStates(windowed)
	a.hasCurrentID = false

	view := AppViewModel{
		TotalEvents:     len(snapshot),
		Timeline:        entries,
		Selected:        a.selected,
		HasSelection:    a.hasSelection,
		AvailableColors: available,
		ColorFilter:     a.colorFilter,
	}

	if !a.hasSelection {
		a.detailScroll = 0
		return view
	}

	event := visible[a.selected]
	payload, ok := summarize.EffectivePayload(event.Request)
	if !ok {
		a.detailScroll = 0
		return view
	}

	built := detail.Build(payload, event.ReceivedAt, now)
	view.Detail = &built

	a.currentEventID = event.ID
	a.hasCurrentID = true

	state := a.detailStateFor(event.ID)
	clampDetailState(state, detail.VisibleIndices(built.Lines, state.Collapsed))
	a.detailScroll = state.Scroll

	view.DetailScroll = a.detailScroll
	view.DetailState = &DetailState{
		Scroll:    state.Scroll,
		Cursor:    state.Cursor,
		Collapsed: copyCollapsed(state.Collapsed),
	}

	return view
}

func (a *Assembler) clampSelection(n int) {
	if n == 0 {
		a.selected = 0
		a.hasSelection = false
		return
	}
	a.hasSelection = true
	if a.selected < 0 {
		a.selected = 0
	}
	if max := n - 1; a.selected > max {
		a.selected = max
	}
}

func (a *Assembler) detailStateFor(id uuid.UUID) *DetailState {
	state, ok := a.detailStates[id]
	if !ok {
		state = newDetailState()
		a.detailStates[id] = state
	}
	return state
}

func clampDetailState(state *DetailState, visible []int) {
	if len(visible) == 0 {
		state.Scroll = 0
		state.Cursor = 0
		return
	}
	max := len(visible) - 1
	if state.Scroll > max {
		state.Scroll = max
	}
	if state.Cursor > max {
		state.Cursor = max
	}
}

// gcDetailStates drops any detail state whose event is no longer in the
// current 200-event window, per spec.md §9's discipline: rebuild from the
// windowed (pre-color-filter) set each frame rather than letting the map
// grow unbounded.
func (a *Assembler) gcDetailStates(windowed []timeline.Event) {
	live := make(map[uuid.UUID]bool, len(windowed))
	for _, event := range windowed {
		live[event.ID] = true
	}
	for id := range a.detailStates {
		if !live[id] {
			delete(a.detailStates, id)
		}
	}
}

func reverseTruncate(events []timeline.Event, limit int) []timeline.Event {
	out := make([]timeline.Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func availableColors(events []timeline.Event) []string {
	set := make(map[string]bool)
	for _, e := range events {
		if e.Color != "" {
			set[e.Color] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func filterByColor(events []timeline.Event, color string) []timeline.Event {
	out := make([]timeline.Event, 0, len(events))
	for _, e := range events {
		if e.Color == color {
			out = append(out, e)
		}
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func copyCollapsed(src map[int]bool) map[int]bool {
	out := make(map[int]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
