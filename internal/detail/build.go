// Package detail builds the per-payload detail pane: a header, footer, and
// a flat list of indented, styled lines, dispatched by payload kind.
package detail

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yetidevworks/raygun/internal/dump"
	"github.com/yetidevworks/raygun/internal/protocol"
)

// DetailView is the rendered representation of one payload (or a synthetic
// merged log payload) ready for the TUI's detail pane.
type DetailView struct {
	Header string
	Footer string
	Lines  []dump.Line
}

// Build produces a DetailView for p, received at receivedAt, rendered at
// now (elapsed = now - receivedAt drives the header's age suffix).
func Build(p protocol.Payload, receivedAt, now time.Time) DetailView {
	elapsed := now.Sub(receivedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return DetailView{
		Header: fmt.Sprintf("%s • %ds", kindLabel(p), int(elapsed.Seconds())),
		Footer: footerFor(p.Origin),
		Lines:  bodyFor(p),
	}
}

func footerFor(o *protocol.Origin) string {
	if o == nil || o.File == "" {
		return ""
	}
	if o.LineNumber == 0 {
		return o.File
	}
	return fmt.Sprintf("%s:%d", o.File, o.LineNumber)
}

func kindLabel(p protocol.Payload) string {
	if p.Kind == protocol.KindCustom {
		return customLabel(p)
	}
	if !p.Kind.IsKnown() {
		return "unknown"
	}
	return string(p.Kind)
}

var imgSrcPattern = regexp.MustCompile(`<img[^>]*\ssrc=["']([^"']*)["']`)

func customLabel(p protocol.Payload) string {
	content := p.ContentString("content")
	label := p.ContentString("label")

	if imgSrcPattern.MatchString(content) || strings.EqualFold(label, "image") {
		return "image"
	}
	if dump.LooksLikeHTML(content) || strings.EqualFold(label, "html") {
		return "html"
	}
	if label != "" {
		return label
	}
	return "custom"
}

// CustomLabel is the exported form of customLabel, reused by
// internal/summarize to recompute a timeline entry's kind label the same
// way the detail header does.
func CustomLabel(p protocol.Payload) string {
	return customLabel(p)
}

// ImageSrc extracts the URL from an <img src="..."> fragment, reused by
// internal/summarize's custom(image) summary line.
func ImageSrc(content string) (string, bool) {
	m := imgSrcPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var builders = map[protocol.PayloadKind]func(protocol.Payload) []dump.Line{
	protocol.KindLog:         renderLog,
	protocol.KindText:        renderText,
	protocol.KindTable:       renderTable,
	protocol.KindCustom:      renderCustom,
	protocol.KindLabel:       renderLabel,
	protocol.KindTrace:       renderTrace,
	protocol.KindException:   renderException,
	protocol.KindMeasure:     renderMeasure,
	protocol.KindCaller:      renderCaller,
	protocol.KindDecodedJSON: renderJSON,
	protocol.KindJSONString:  renderJSON,
}

// bodyFor dispatches on kind with an explicit fallback arm, per spec.md
// §9's exhaustive-matching guidance.
func bodyFor(p protocol.Payload) []dump.Line {
	if fn, ok := builders[p.Kind]; ok {
		return fn(p)
	}
	return fallbackLines(p)
}

func renderLog(p protocol.Payload) []dump.Line {
	if clip, ok := p.ContentMetaClipboardData(); ok && clip != "" {
		return dump.ParseVarDumper(clip)
	}

	values := p.ContentStrings("values")
	if len(values) == 0 {
		return fallbackLines(p)
	}

	var lines []dump.Line
	if label := p.ContentString("label"); label != "" {
		lines = append(lines, dump.PlainLine(0, "Label: "+label))
		lines = append(lines, dump.PlainLine(0, ""))
	}
	for _, v := range values {
		lines = append(lines, dump.PlainLine(0, "- "+previewValue(v)))
	}
	return lines
}

// previewValue renders one log/table value: strings are HTML-cleaned,
// everything else is JSON-stringified.
func previewValue(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return dump.StripTags(s)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func renderText(p protocol.Payload) []dump.Line {
	content := p.ContentString("content")
	if content == "" {
		return fallbackLines(p)
	}
	var lines []dump.Line
	for _, l := range strings.Split(content, "\n") {
		lines = append(lines, dump.PlainLine(0, l))
	}
	return lines
}

var phpInfoPriorityKeys = []string{
	"PHP version", "PHP ini file", "Memory limit", "Max post size",
	"Max file upload size", "Extensions",
}

func renderTable(p protocol.Payload) []dump.Line {
	values := p.ContentStrings("values")
	if len(values) == 0 {
		if obj := p.ContentObject(); obj != nil {
			if lines, ok := renderKVObject(obj); ok {
				return lines
			}
		}
		return []dump.Line{dump.PlainLine(0, "(empty table)")}
	}

	for _, raw := range values {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if grid, ok := dump.ExtractTable(s); ok {
				return gridLines(grid)
			}
		}
	}

	var lines []dump.Line
	handled := false
	for _, raw := range values {
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) == nil {
			handled = true
			kvLines, _ := renderKVObject(obj)
			lines = append(lines, kvLines...)
			continue
		}
		var arr []json.RawMessage
		if json.Unmarshal(raw, &arr) == nil {
			handled = true
			for _, item := range arr {
				lines = append(lines, dump.PlainLine(0, previewValue(item)))
			}
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			handled = true
			if key, val, ok := strings.Cut(s, "=>"); ok {
				lines = append(lines, dump.PlainLine(0, strings.TrimSpace(key)+" => "+strings.TrimSpace(val)))
			} else {
				lines = append(lines, dump.PlainLine(0, s))
			}
		}
	}
	if !handled {
		return []dump.Line{dump.PlainLine(0, "(empty table)")}
	}
	return lines
}

func gridLines(grid string) []dump.Line {
	var lines []dump.Line
	for _, l := range strings.Split(strings.TrimRight(grid, "\n"), "\n") {
		lines = append(lines, dump.PlainLine(0, l))
	}
	return lines
}

// renderKVObject renders an object as ordered key/value lines, with
// phpinfo-style keys placed first per spec.md §4.4's table rule.
func renderKVObject(obj map[string]json.RawMessage) ([]dump.Line, bool) {
	if len(obj) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	priority := make(map[string]int, len(phpInfoPriorityKeys))
	for i, k := range phpInfoPriorityKeys {
		priority[k] = i
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, iok := priority[keys[i]]
		pj, jok := priority[keys[j]]
		if iok && jok {
			return pi < pj
		}
		if iok != jok {
			return iok
		}
		return false
	})

	lines := make([]dump.Line, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, dump.PlainLine(0, k+": "+previewValue(obj[k])))
	}
	return lines, true
}

func renderCustom(p protocol.Payload) []dump.Line {
	content := p.ContentString("content")
	label := p.ContentString("label")

	if strings.Contains(content, "sf-dump") {
		return dump.ParseVarDumper(content)
	}
	if strings.EqualFold(label, "count") {
		return []dump.Line{dump.PlainLine(0, content)}
	}
	if m := imgSrcPattern.FindStringSubmatch(content); m != nil {
		return []dump.Line{dump.PlainLine(0, m[1])}
	}
	if dump.LooksLikeHTML(content) {
		return dump.PrettyPrintHTML(content)
	}
	return fallbackLines(p)
}

func renderLabel(p protocol.Payload) []dump.Line {
	return []dump.Line{dump.PlainLine(0, p.ContentString("label"))}
}

func renderTrace(p protocol.Payload) []dump.Line {
	var lines []dump.Line
	if label := p.ContentString("label"); label != "" {
		lines = append(lines, dump.PlainLine(0, label+":"))
	}
	return append(lines, frameLines(p.ContentFrames(), 0)...)
}

func renderCaller(p protocol.Payload) []dump.Line {
	var lines []dump.Line
	if label := p.ContentString("label"); label != "" {
		lines = append(lines, dump.PlainLine(0, label+":"))
	}
	if f, ok := p.ContentFrame(); ok {
		lines = append(lines, frameLines([]protocol.Frame{f}, 0)...)
	}
	return lines
}

// frameLines renders each frame as "#N Class::method [vendor]?" followed by
// an indented file:line, both offset by base.
func frameLines(frames []protocol.Frame, base int) []dump.Line {
	var lines []dump.Line
	for i, f := range frames {
		header := fmt.Sprintf("#%d %s", i+1, f.Label())
		if f.VendorFrame {
			header += " [vendor]"
		}
		lines = append(lines, dump.PlainLine(base, header))
		if loc := f.Location(); loc != "" {
			lines = append(lines, dump.PlainLine(base+1, loc))
		}
	}
	return lines
}

var exceptionKnownKeys = map[string]bool{
	"class": true, "message": true, "frames": true, "meta": true,
}

func renderException(p protocol.Payload) []dump.Line {
	lines := []dump.Line{
		dump.PlainLine(0, "Exception: "+p.ContentString("class")),
		dump.PlainLine(0, "message: "+p.ContentString("message")),
	}

	frames := p.ContentFrames()
	if len(frames) > 0 {
		if loc := frames[0].Location(); loc != "" {
			lines = append(lines, dump.PlainLine(0, "location: "+loc))
		}
		lines = append(lines, dump.PlainLine(0, fmt.Sprintf("stack trace (%d frames)", len(frames))))
		lines = append(lines, frameLines(frames, 2)...)
	}

	obj := p.ContentObject()
	if meta, ok := obj["meta"]; ok {
		lines = append(lines, objectKVLines(meta)...)
	}

	var extraKeys []string
	for k := range obj {
		if !exceptionKnownKeys[k] {
			extraKeys = append(extraKeys, k)
		}
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		lines = append(lines, dump.PlainLine(0, k+": "+previewValue(obj[k])))
	}

	return lines
}

func objectKVLines(raw json.RawMessage) []dump.Line {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	lines, _ := renderKVObject(obj)
	return lines
}

func renderMeasure(p protocol.Payload) []dump.Line {
	lines := []dump.Line{dump.PlainLine(0, "name: "+p.ContentString("name"))}

	if v, ok := p.ContentFloat("total_time"); ok {
		lines = append(lines, dump.PlainLine(0, fmt.Sprintf("total_time: %.3f ms", v)))
	}
	if v, ok := p.ContentFloat("time_since_last_call"); ok {
		lines = append(lines, dump.PlainLine(0, fmt.Sprintf("time_since_last_call: %.3f ms", v)))
	}
	if v, ok := p.ContentFloat("max_memory_usage_during_total_time"); ok {
		lines = append(lines, dump.PlainLine(0, "max_memory_usage_during_total_time: "+formatBytes(v)))
	}
	if v, ok := p.ContentFloat("max_memory_usage_since_last_call"); ok {
		lines = append(lines, dump.PlainLine(0, "max_memory_usage_since_last_call: "+formatBytes(v)))
	}
	if b, ok := p.ContentBool("is_new_timer"); ok {
		yn := "no"
		if b {
			yn = "yes"
		}
		lines = append(lines, dump.PlainLine(0, "is_new_timer: "+yn))
	}
	return lines
}

// formatBytes renders n at the largest 1024-boundary unit with 2 decimals,
// matching spec.md §4.4's measure-payload memory formatting.
func formatBytes(n float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", n, units[i])
}

func renderJSON(p protocol.Payload) []dump.Line {
	raw, ok := p.ContentObject()["content"]
	if !ok || len(raw) == 0 {
		return fallbackLines(p)
	}
	return prettyJSONLines(raw)
}

func fallbackLines(p protocol.Payload) []dump.Line {
	raw := p.ContentRaw()
	if len(raw) == 0 {
		return nil
	}
	return prettyJSONLines(raw)
}

// prettyJSONLines pretty-prints raw JSON one source line per dump.Line,
// falling back to the raw bytes verbatim if raw isn't valid JSON — the
// "every parser is total" guarantee spec.md §7 requires.
func prettyJSONLines(raw json.RawMessage) []dump.Line {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return []dump.Line{dump.PlainLine(0, string(raw))}
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return []dump.Line{dump.PlainLine(0, string(raw))}
	}
	var lines []dump.Line
	for _, l := range strings.Split(string(pretty), "\n") {
		lines = append(lines, dump.PlainLine(0, l))
	}
	return lines
}
