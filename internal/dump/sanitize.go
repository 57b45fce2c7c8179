package dump

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	scriptBlock       = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock        = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	brTag             = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// sanitizeVarDumper implements SPEC_FULL.md §4.3a step 1: drop an unclosed
// trailing <script> block, strip complete script/style blocks, turn <br>
// into newlines, strip all remaining tags, decode entities, drop carriage
// returns, and normalize non-breaking spaces to plain spaces.
func sanitizeVarDumper(raw string) string {
	if loc := findUnclosedScript(raw); loc >= 0 {
		raw = raw[:loc]
	}
	raw = scriptBlock.ReplaceAllString(raw, "")
	raw = styleBlock.ReplaceAllString(raw, "")
	raw = brTag.ReplaceAllString(raw, "\n")
	raw = stripTagsDecodeEntities(raw)
	raw = strings.ReplaceAll(raw, "\r", "")
	raw = strings.ReplaceAll(raw, " ", " ")
	return raw
}

// findUnclosedScript returns the byte offset of a "<script" that has no
// matching closing tag anywhere after it, or -1 if none is found.
func findUnclosedScript(raw string) int {
	lower := strings.ToLower(raw)
	idx := strings.Index(lower, "<script")
	if idx < 0 {
		return -1
	}
	if strings.Contains(lower[idx:], "</script") {
		return -1
	}
	return idx
}

// stripTagsDecodeEntities removes every remaining HTML tag and decodes
// entities in the surviving text, using the x/net/html tokenizer so text
// content is returned already entity-decoded rather than needing a second
// unescape pass.
func stripTagsDecodeEntities(fragment string) string {
	tok := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tok.Text())
		}
	}
}
