package dump

import (
	"regexp"
	"strings"
)

// ParseVarDumper implements SPEC_FULL.md §4.3a in full: sanitize the raw
// HTML fragment, then walk the resulting lines tracking an indent level
// from bracket/brace structure, classifying each emitted line's tokens.
func ParseVarDumper(raw string) []Line {
	clean := sanitizeVarDumper(raw)
	rawLines := strings.Split(clean, "\n")

	var out []Line
	indent := 0
	for _, rl := range rawLines {
		line := strings.TrimSpace(rl)
		if line == "" {
			continue
		}

		if line == "(" {
			indent++
			continue
		}
		if line == ")" || line == ")," {
			indent--
			if indent < 0 {
				indent = 0
			}
			continue
		}
		if startsWithClosingBracket(line) {
			indent--
			if indent < 0 {
				indent = 0
			}
		}

		out = append(out, Line{Indent: indent, Segments: classify(line)})

		if opensBlock(line) {
			indent++
		}
	}
	return out
}

func startsWithClosingBracket(line string) bool {
	for _, prefix := range []string{"]", "}", "],", "},"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

var objectHeadPattern = regexp.MustCompile(`^(?:stdClass#\d+|[A-Za-z_\\][A-Za-z0-9_\\]*(?:<[^>]*>)?\s*\{#\d+)\s*(?:▼|▶)?$`)

func opensBlock(line string) bool {
	trimmed := strings.TrimSuffix(line, ",")
	switch trimmed {
	case "[", "{":
		return true
	}
	for _, suffix := range []string{"[", "{", "=> [", "=> {", "=> array(", "=> array:"} {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	// "=> array:2 [" style heads: strip a trailing digit run after "array:"
	// before re-checking, since the digit count varies per array.
	if m := arrayCountTail.FindStringIndex(trimmed); m != nil {
		return true
	}
	return objectHeadPattern.MatchString(trimmed)
}

var arrayCountTail = regexp.MustCompile(`=> array:\d+ \[$`)

// classify scans line left-to-right, emitting styled segments per
// SPEC_FULL.md §4.3a step 3.
func classify(line string) []Segment {
	var segs []Segment
	rest := line
	atLineStart := true

	flushPlain := func(text string) {
		if text == "" {
			return
		}
		if n := len(segs); n > 0 && segs[n-1].Style == Plain {
			segs[n-1].Text += text
			return
		}
		segs = append(segs, Segment{Text: text, Style: Plain})
	}

	for len(rest) > 0 {
		if atLineStart {
			if m := keyPattern.FindString(rest); m != "" {
				segs = append(segs, Segment{Text: m, Style: Key})
				rest = rest[len(m):]
				atLineStart = false
				continue
			}
			atLineStart = false
		}

		if m := typePattern.FindString(rest); m != "" {
			segs = append(segs, Segment{Text: m, Style: TypeTag})
			rest = rest[len(m):]
			continue
		}
		if m := stringPattern.FindString(rest); m != "" {
			segs = append(segs, Segment{Text: m, Style: String})
			rest = rest[len(m):]
			continue
		}
		if m := boolPattern.FindString(rest); m != "" {
			segs = append(segs, Segment{Text: m, Style: Boolean})
			rest = rest[len(m):]
			continue
		}
		if m := nullPattern.FindString(rest); m != "" {
			segs = append(segs, Segment{Text: m, Style: Null})
			rest = rest[len(m):]
			continue
		}
		if m := numberPattern.FindString(rest); m != "" {
			segs = append(segs, Segment{Text: m, Style: Number})
			rest = rest[len(m):]
			continue
		}

		flushPlain(rest[:1])
		rest = rest[1:]
	}
	return segs
}

var (
	keyPattern    = regexp.MustCompile(`^(?:\+?"(?:[^"\\]|\\.)*"|\+?'(?:[^'\\]|\\.)*'|[-+][A-Za-z_][A-Za-z0-9_]*:)`)
	typePattern   = regexp.MustCompile(`^(?:stdClass#\d+|array:\d+|object\([^)]*\)|[A-Za-z_][A-Za-z0-9_\\]*(?:<[^>]*>)?\s\{#\d+)`)
	stringPattern = regexp.MustCompile(`^(?:"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')`)
	boolPattern   = regexp.MustCompile(`^\b(?:true|false)\b`)
	nullPattern   = regexp.MustCompile(`^\bnull\b`)
	numberPattern = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?\b`)
)
