package dump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTMLDetectsTags(t *testing.T) {
	assert.True(t, looksLikeHTML(`<img src="x.png">`))
	assert.False(t, looksLikeHTML("plain text, no angle brackets"))
	assert.False(t, looksLikeHTML("a < b"))
}

func TestPrettyPrintHTMLIndentsNestedTags(t *testing.T) {
	raw := "<div><p>hello</p></div>"
	lines := PrettyPrintHTML(raw)
	require.NotEmpty(t, lines)

	var divIndent, pIndent, textIndent int
	for _, l := range lines {
		text := l.Text()
		switch {
		case text == "<div>":
			divIndent = l.Indent
		case text == "<p>":
			pIndent = l.Indent
		case text == "hello":
			textIndent = l.Indent
		}
	}
	assert.Greater(t, pIndent, divIndent)
	assert.Equal(t, pIndent, textIndent)
}

func TestPrettyPrintHTMLSelfClosingTagDoesNotIncreaseDepth(t *testing.T) {
	raw := `<div><br/><span>after</span></div>`
	lines := PrettyPrintHTML(raw)
	require.NotEmpty(t, lines)

	var brIndent, spanIndent int
	var sawBR, sawSpan bool
	for _, l := range lines {
		text := l.Text()
		if strings.Contains(text, "br") {
			brIndent = l.Indent
			sawBR = true
		}
		if strings.Contains(text, "span") && strings.HasPrefix(text, "<") {
			spanIndent = l.Indent
			sawSpan = true
		}
	}
	require.True(t, sawBR)
	require.True(t, sawSpan)
	assert.Equal(t, brIndent, spanIndent)
}

func TestPrettyPrintHTMLNeverPanicsOnMalformedInput(t *testing.T) {
	assert.NotPanics(t, func() {
		PrettyPrintHTML("<div><p>unclosed")
	})
}
