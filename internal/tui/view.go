package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yetidevworks/raygun/internal/dump"
	"github.com/yetidevworks/raygun/internal/summarize"
)

// titleCaser renders a timeline row's kind label ("log", "exception") in
// title case for display, without touching the lowercase value summarize
// actually classifies on.
var titleCaser = cases.Title(language.English)

// View renders the current frame.
func (m *Model) View() string {
	if m.width < 20 || m.height < 6 {
		return "terminal too small"
	}

	header := titleStyle.Render(fmt.Sprintf("Raygun — %d events (layout: %s)", m.view.TotalEvents, m.layout))
	if m.view.ColorFilter != "" {
		header += "  " + footerStyle.Render("filter: "+m.view.ColorFilter)
	}

	footer := m.renderFooter()

	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.help.View(m.keys), footer)
	}

	if m.showRaw {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderRawOverlay(), footer)
	}

	reserved := lipgloss.Height(header) + lipgloss.Height(footer)
	available := m.height - reserved
	if available < 4 {
		available = 4
	}
	timelineHeight := available * m.layout.ratio() / 100
	if timelineHeight < 2 {
		timelineHeight = 2
	}
	detailHeight := available - timelineHeight
	if detailHeight < 2 {
		detailHeight = 2
	}

	timeline := m.renderTimeline(timelineHeight)
	detail := m.renderDetail(detailHeight)

	return lipgloss.JoinVertical(lipgloss.Left, header, timeline, detail, footer)
}

func (m *Model) renderTimeline(height int) string {
	title := paneTitleStyle.Render("Timeline")
	if m.focus == PanelTimeline {
		title = selectedRowStyle.Render(" Timeline ")
	}

	if len(m.view.Timeline) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("waiting for payloads..."))
	}

	var rows []string
	for i, entry := range m.view.Timeline {
		rows = append(rows, m.renderTimelineRow(entry, i == m.view.Selected))
	}

	rows = windowAround(rows, m.view.Selected, height-1)
	body := strings.Join(rows, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m *Model) renderTimelineRow(entry summarize.TimelineEntry, selected bool) string {
	label := entry.KindLabel
	if entry.Label != "" {
		label = entry.Label
	}
	row := fmt.Sprintf("%s %s %-10s %s", colorDot(entry.Color), ageStyle.Render(entry.Age), kindStyle.Render(titleCaser.String(label)), entry.Summary)
	if selected {
		return selectedRowStyle.Render(row)
	}
	return normalRowStyle.Render(row)
}

func (m *Model) renderDetail(height int) string {
	title := paneTitleStyle.Render("Detail")
	if m.focus == PanelDetail {
		title = selectedRowStyle.Render(" Detail ")
	}

	if !m.view.HasSelection || m.view.Detail == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("no event selected"))
	}

	header := kindStyle.Render(m.view.Detail.Header)
	collapsed := map[int]bool{}
	cursor := -1
	if m.view.DetailState != nil {
		collapsed = m.view.DetailState.Collapsed
		cursor = m.view.DetailState.Cursor
	}

	var lines []string
	for i, line := range m.view.Detail.Lines {
		lines = append(lines, renderDetailLine(line, i, i == cursor, collapsed[i]))
	}
	lines = windowAround(lines, m.view.DetailScroll, height-2)

	parts := []string{title, header}
	parts = append(parts, lines...)
	if m.view.Detail.Footer != "" {
		parts = append(parts, footerStyle.Render(m.view.Detail.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderDetailLine(line dump.Line, index int, atCursor, collapsed bool) string {
	indent := strings.Repeat("  ", line.Indent)
	marker := " "
	if collapsed {
		marker = "+"
	}
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(marker)
	b.WriteString(" ")
	for _, seg := range line.Segments {
		b.WriteString(segmentStyle(seg.Style).Render(seg.Text))
	}
	rendered := b.String()
	if atCursor {
		return selectedRowStyle.Render(rendered)
	}
	return rendered
}

func (m *Model) renderRawOverlay() string {
	if !m.view.HasSelection || m.view.Selected >= len(m.view.Timeline) {
		return overlayStyle.Render("no event selected")
	}
	selectedID := m.view.Timeline[m.view.Selected].ID
	for _, event := range m.store.Snapshot() {
		if event.ID == selectedID {
			return overlayStyle.Render(rawPayloadJSON(event))
		}
	}
	return overlayStyle.Render("event no longer in the timeline")
}

func (m *Model) renderFooter() string {
	return helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// windowAround slices rows to at most limit entries, keeping index roughly
// centered so the cursor never scrolls off screen.
func windowAround(rows []string, index, limit int) []string {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	start := index - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > len(rows) {
		start = len(rows) - limit
	}
	return rows[start : start+limit]
}
