package dump

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// looksLikeHTML is a cheap heuristic for the "custom" dispatch rule in
// spec.md §4.4: content is treated as HTML if it contains a tag-shaped
// substring, without requiring it to be well-formed.
// LooksLikeHTML is the exported form of looksLikeHTML, used by
// internal/detail's custom-payload dispatch.
func LooksLikeHTML(s string) bool {
	return looksLikeHTML(s)
}

func looksLikeHTML(s string) bool {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return false
	}
	gt := strings.IndexByte(s[open:], '>')
	return gt > 0
}

// PrettyPrintHTML implements spec.md §4.4's HTML pretty-printer: split at
// >…< boundaries, re-indent by tag open/close, classify each line's tags as
// Type segments and text as String segments. Self-closing tags,
// declarations (<!...>) and processing instructions (<?...>) never
// increase depth. Input is sanitized defensively first, since unlike the
// var-dumper and table paths this one may receive arbitrary untrusted HTML
// rather than output of a known dumper.
func PrettyPrintHTML(raw string) []Line {
	safe := bluemonday.UGCPolicy().Sanitize(raw)

	tok := html.NewTokenizer(strings.NewReader(safe))
	var out []Line
	indent := 0

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return out
		case html.DoctypeToken, html.CommentToken:
			raw := strings.TrimSpace(string(tok.Raw()))
			if raw != "" {
				out = append(out, Line{Indent: indent, Segments: []Segment{{Text: raw, Style: TypeTag}}})
			}
		case html.SelfClosingTagToken:
			line := strings.TrimSpace(string(tok.Raw()))
			out = append(out, Line{Indent: indent, Segments: []Segment{{Text: line, Style: TypeTag}}})
		case html.StartTagToken:
			line := strings.TrimSpace(string(tok.Raw()))
			out = append(out, Line{Indent: indent, Segments: []Segment{{Text: line, Style: TypeTag}}})
			indent++
		case html.EndTagToken:
			indent--
			if indent < 0 {
				indent = 0
			}
			line := strings.TrimSpace(string(tok.Raw()))
			out = append(out, Line{Indent: indent, Segments: []Segment{{Text: line, Style: TypeTag}}})
		case html.TextToken:
			text := strings.TrimSpace(string(tok.Text()))
			if text == "" {
				continue
			}
			out = append(out, Line{Indent: indent, Segments: []Segment{{Text: text, Style: String}}})
		}
	}
}
