package viewmodel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yetidevworks/raygun/internal/protocol"
	"github.com/yetidevworks/raygun/internal/timeline"
)

func mustPayload(t *testing.T, raw string) protocol.Payload {
	t.Helper()
	var p protocol.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func logEvent(t *testing.T, color string, values ...string) timeline.Event {
	t.Helper()
	vals, err := json.Marshal(values)
	require.NoError(t, err)
	raw := `{"type":"log","content":{"values":` + string(vals) + `}}`
	return timeline.Event{
		ID:         uuid.New(),
		ReceivedAt: time.Now(),
		Request:    protocol.Request{Payloads: []protocol.Payload{mustPayload(t, raw)}},
		Color:      color,
	}
}

func TestBuildReversesOrder(t *testing.T) {
	a := NewAssembler()
	e1 := logEvent(t, "", "first")
	e2 := logEvent(t, "", "second")

	view := a.Build([]timeline.Event{e1, e2}, time.Now())
	require.Len(t, view.Timeline, 2)
	assert.Equal(t, "second", view.Timeline[0].Summary)
	assert.Equal(t, "first", view.Timeline[1].Summary)
}

func TestBuildTruncatesToViewLimit(t *testing.T) {
	a := NewAssembler()
	events := make([]timeline.Event, TimelineViewLimit+10)
	for i := range events {
		events[i] = logEvent(t, "", "x")
	}

	view := a.Build(events, time.Now())
	assert.Len(t, view.Timeline, TimelineViewLimit)
	assert.Equal(t, len(events), view.TotalEvents)
}

func TestBuildDefaultsSelectionToFirstVisible(t *testing.T) {
	a := NewAssembler()
	events := []timeline.Event{logEvent(t, "", "a"), logEvent(t, "", "b")}

	view := a.Build(events, time.Now())
	require.True(t, view.HasSelection)
	assert.Equal(t, 0, view.Selected)
	require.NotNil(t, view.Detail)
}

func TestBuildNoSelectionWhenEmpty(t *testing.T) {
	a := NewAssembler()
	view := a.Build(nil, time.Now())
	assert.False(t, view.HasSelection)
	assert.Nil(t, view.Detail)
	assert.Empty(t, view.Timeline)
}

func TestBuildClampsSelectionAfterShrink(t *testing.T) {
	a := NewAssembler()
	events := []timeline.Event{logEvent(t, "", "a"), logEvent(t, "", "b"), logEvent(t, "", "c")}
	a.Build(events, time.Now())
	a.MoveSelection(2)

	view := a.Build(events[:1], time.Now())
	assert.Equal(t, 0, view.Selected)
}

func TestAvailableColorsSortedAndDistinct(t *testing.T) {
	a := NewAssembler()
	events := []timeline.Event{logEvent(t, "blue", "a"), logEvent(t, "red", "b"), logEvent(t, "blue", "c")}

	view := a.Build(events, time.Now())
	assert.Equal(t, []string{"blue", "red"}, view.AvailableColors)
}

func TestColorFilterRetainsOnlyMatching(t *testing.T) {
	a := NewAssembler()
	a.SetColorFilter("red")
	events := []timeline.Event{logEvent(t, "blue", "a"), logEvent(t, "red", "b")}

	view := a.Build(events, time.Now())
	require.Len(t, view.Timeline, 1)
	assert.Equal(t, "b", view.Timeline[0].Summary)
}

func TestColorFilterDroppedWhenNoLongerPresent(t *testing.T) {
	a := NewAssembler()
	a.SetColorFilter("green")
	events := []timeline.Event{logEvent(t, "blue", "a")}

	view := a.Build(events, time.Now())
	assert.Equal(t, "", view.ColorFilter)
	assert.Len(t, view.Timeline, 1)
}

func TestDetailScrollPersistsForSameEventButNotNewSelection(t *testing.T) {
	a := NewAssembler()
	// Seven detail lines per event, so a scroll of 5 survives Build's clamp
	// to the last visible line.
	events := []timeline.Event{
		logEvent(t, "", "a", "1", "2", "3", "4", "5", "6"),
		logEvent(t, "", "b", "1", "2", "3", "4", "5", "6"),
	}
	a.Build(events, time.Now())
	a.ScrollDetailTo(5)

	// Re-selecting the same event recalls its saved scroll position.
	view := a.Build(events, time.Now())
	assert.Equal(t, 5, view.DetailScroll)

	// Moving to a different event starts that event's own (fresh) scroll.
	a.MoveSelection(1)
	view = a.Build(events, time.Now())
	assert.Equal(t, 0, view.DetailScroll)
}

func TestDetailStatePersistsAcrossFrames(t *testing.T) {
	a := NewAssembler()
	events := []timeline.Event{logEvent(t, "", "a")}
	a.Build(events, time.Now())
	a.ToggleCollapse(0)

	view := a.Build(events, time.Now())
	require.NotNil(t, view.DetailState)
	assert.True(t, view.DetailState.Collapsed[0])
}

func TestDetailStateGCedWhenEventLeavesWindow(t *testing.T) {
	a := NewAssembler()
	kept := logEvent(t, "", "kept")
	dropped := logEvent(t, "", "dropped")
	a.Build([]timeline.Event{dropped, kept}, time.Now())
	a.MoveSelection(1)
	a.Build([]timeline.Event{dropped, kept}, time.Now())
	a.ToggleCollapse(0) // toggles whichever event is currently selected (dropped, index 1 after reverse)

	// dropped leaves the window entirely.
	a.Build([]timeline.Event{kept}, time.Now())
	assert.Len(t, a.detailStates, 1)
	_, stillTracked := a.detailStates[dropped.ID]
	assert.False(t, stillTracked)
}
