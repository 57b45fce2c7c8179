package detail

import "github.com/yetidevworks/raygun/internal/dump"

// HasChildren computes, for each line, whether a scan forward encounters an
// immediate child (indent == this line's indent + 1) before a sibling or
// shallower line per spec.md §4.4's visibility model.
func HasChildren(lines []dump.Line) []bool {
	out := make([]bool, len(lines))
	for i, l := range lines {
		base := l.Indent
		for j := i + 1; j < len(lines); j++ {
			if lines[j].Indent <= base {
				break
			}
			if lines[j].Indent == base+1 {
				out[i] = true
				break
			}
		}
	}
	return out
}

// VisibleIndices computes the visible subset of line indices given a
// collapsed-set C, per spec.md §4.4: lines under a collapsed node (with
// children) are hidden until a sibling-or-shallower line reappears.
func VisibleIndices(lines []dump.Line, collapsed map[int]bool) []int {
	children := HasChildren(lines)

	var visible []int
	hiding := false
	hideAt := 0
	for i, l := range lines {
		if hiding {
			if l.Indent > hideAt {
				continue
			}
			hiding = false
		}

		visible = append(visible, i)

		if collapsed[i] && children[i] {
			hideAt = l.Indent
			hiding = true
		}
	}
	return visible
}
