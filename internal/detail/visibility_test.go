package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yetidevworks/raygun/internal/dump"
)

func line(indent int, text string) dump.Line {
	return dump.PlainLine(indent, text)
}

func TestHasChildrenDetectsImmediateChild(t *testing.T) {
	lines := []dump.Line{
		line(0, "root"),
		line(1, "child"),
		line(0, "sibling"),
	}
	got := HasChildren(lines)
	assert.Equal(t, []bool{true, false, false}, got)
}

func TestHasChildrenIgnoresGrandchildrenWithoutImmediateChild(t *testing.T) {
	// A line whose only descendants skip a level shouldn't happen in
	// well-formed output, but the scan must still terminate and report
	// false rather than panic.
	lines := []dump.Line{
		line(0, "root"),
		line(2, "deep"),
	}
	got := HasChildren(lines)
	assert.Equal(t, []bool{false, false}, got)
}

func TestVisibleIndicesAllVisibleWithEmptyCollapse(t *testing.T) {
	lines := []dump.Line{
		line(0, "root"),
		line(1, "child"),
		line(0, "sibling"),
	}
	got := VisibleIndices(lines, nil)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestVisibleIndicesHidesCollapsedSubtree(t *testing.T) {
	lines := []dump.Line{
		line(0, "root"),
		line(1, "child-a"),
		line(2, "grandchild"),
		line(1, "child-b"),
		line(0, "sibling"),
	}
	collapsed := map[int]bool{0: true}
	got := VisibleIndices(lines, collapsed)
	// root's children (indices 1-3) are all hidden; root itself and the
	// following sibling at indent 0 remain visible.
	assert.Equal(t, []int{0, 4}, got)
}

func TestVisibleIndicesNoopWhenLineHasNoChildren(t *testing.T) {
	lines := []dump.Line{
		line(0, "leaf-a"),
		line(0, "leaf-b"),
	}
	collapsed := map[int]bool{0: true}
	got := VisibleIndices(lines, collapsed)
	assert.Equal(t, []int{0, 1}, got)
}

func TestVisibleIndicesOnlyHidesDescendantsNotAncestors(t *testing.T) {
	lines := []dump.Line{
		line(0, "a"),
		line(1, "a.1"),
		line(0, "b"),
		line(1, "b.1"),
	}
	collapsed := map[int]bool{2: true}
	got := VisibleIndices(lines, collapsed)
	assert.Equal(t, []int{0, 1, 2}, got)
}
