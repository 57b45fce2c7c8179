package tui

// LayoutPreset selects the timeline/detail pane height split.
type LayoutPreset int

const (
	TimelineFocus LayoutPreset = iota
	Balanced
	DetailFocus
)

// ratio returns the timeline pane's share of the available height, out of
// 100; the detail pane gets the remainder.
func (p LayoutPreset) ratio() int {
	switch p {
	case TimelineFocus:
		return 65
	case Balanced:
		return 50
	default: // DetailFocus
		return 33
	}
}

// next cycles timeline-focus -> balanced -> detail-focus -> timeline-focus.
func (p LayoutPreset) next() LayoutPreset {
	switch p {
	case TimelineFocus:
		return Balanced
	case Balanced:
		return DetailFocus
	default:
		return TimelineFocus
	}
}

func (p LayoutPreset) String() string {
	switch p {
	case TimelineFocus:
		return "timeline"
	case Balanced:
		return "balanced"
	default:
		return "detail"
	}
}
