package dump

import (
	"strings"
	"unicode"

	netHTML "golang.org/x/net/html"
)

// Clip truncates s to at most n Unicode scalar values, appending an
// ellipsis when truncated. clip(clip(s, n), n) == clip(s, n).
func Clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(runes[:n-1]) + "…"
}

// Flatten HTML-entity-decodes s, then collapses runs of whitespace to a
// single space and trims the ends. flatten(flatten(s)) == flatten(s).
func Flatten(s string) string {
	decoded := netHTML.UnescapeString(s)
	var b strings.Builder
	lastWasSpace := false
	for _, r := range decoded {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// StripTags removes any HTML tags from s, decoding entities in the
// surviving text, for contexts (log value previews, table cells already
// parsed) that need plain text from a possibly-HTML string.
func StripTags(s string) string {
	return stripTagsDecodeEntities(s)
}
