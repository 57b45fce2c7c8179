// Package protocol defines the wire shapes Raygun receives from ray clients:
// requests, payloads, and the closed set of recognized payload kinds.
package protocol

import (
	"encoding/json"
	"sort"
)

// PayloadKind identifies the semantic type of a Payload. It is a named
// string rather than an int enum so that unknown kinds round-trip through
// their original wire value instead of collapsing into a sentinel.
type PayloadKind string

// Recognized payload kinds. Aliases on the wire (e.g. "boolean") normalize
// to the same constant during unmarshaling; see UnmarshalJSON.
const (
	KindLog         PayloadKind = "log"
	KindCustom      PayloadKind = "custom"
	KindCreateLock  PayloadKind = "create_lock"
	KindClearAll    PayloadKind = "clear_all"
	KindHide        PayloadKind = "hide"
	KindShowApp     PayloadKind = "show_app"
	KindShowBrowser PayloadKind = "show_browser"
	KindNotify      PayloadKind = "notify"
	KindSeparator   PayloadKind = "separator"
	KindException   PayloadKind = "exception"
	KindTable       PayloadKind = "table"
	KindText        PayloadKind = "text"
	KindImage       PayloadKind = "image"
	KindJSONString  PayloadKind = "json_string"
	KindDecodedJSON PayloadKind = "decoded_json"
	KindBoolean     PayloadKind = "boolean"
	KindSize        PayloadKind = "size"
	KindColor       PayloadKind = "color"
	KindLabel       PayloadKind = "label"
	KindTrace       PayloadKind = "trace"
	KindCaller      PayloadKind = "caller"
	KindMeasure     PayloadKind = "measure"
	KindPhpInfo     PayloadKind = "php_info"
	KindNewScreen   PayloadKind = "new_screen"
	KindRemove      PayloadKind = "remove"
	KindHideApp     PayloadKind = "hide_app"
	KindBan         PayloadKind = "ban"
	KindCharles     PayloadKind = "charles"
)

// kindAliases maps alternate wire spellings onto the canonical constant.
var kindAliases = map[string]PayloadKind{
	"custom_boolean": KindBoolean,
	"boolean":        KindBoolean,
	"phpinfo":        KindPhpInfo,
	"php_info":       KindPhpInfo,
}

// recognizedKinds is the closed set used by IsKnown and by the displayable
// classification in internal/timeline.
var recognizedKinds = map[PayloadKind]bool{
	KindLog: true, KindCustom: true, KindCreateLock: true, KindClearAll: true,
	KindHide: true, KindShowApp: true, KindShowBrowser: true, KindNotify: true,
	KindSeparator: true, KindException: true, KindTable: true, KindText: true,
	KindImage: true, KindJSONString: true, KindDecodedJSON: true, KindBoolean: true,
	KindSize: true, KindColor: true, KindLabel: true, KindTrace: true,
	KindCaller: true, KindMeasure: true, KindPhpInfo: true, KindNewScreen: true,
	KindRemove: true, KindHideApp: true, KindBan: true, KindCharles: true,
}

// IsKnown reports whether k is one of the recognized kinds above.
func (k PayloadKind) IsKnown() bool {
	return recognizedKinds[k]
}

// String returns the wire representation of the kind.
func (k PayloadKind) String() string {
	return string(k)
}

// Origin describes where a payload was emitted from in the source process.
type Origin struct {
	File       string `json:"file,omitempty"`
	LineNumber int    `json:"line_number,omitempty"`
	Hostname   string `json:"hostname,omitempty"`
}

// Frame is a single call-stack entry attached to trace/caller/exception
// payloads.
type Frame struct {
	Class        string `json:"class,omitempty"`
	Method       string `json:"method,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	LineNumber   int    `json:"line_number,omitempty"`
	VendorFrame  bool   `json:"vendor_frame,omitempty"`
}

// Label returns the "Class::method" heading used by trace/caller/exception
// stack rendering, falling back gracefully when either part is absent.
func (f Frame) Label() string {
	switch {
	case f.Class != "" && f.Method != "":
		return f.Class + "::" + f.Method
	case f.Method != "":
		return f.Method
	case f.Class != "":
		return f.Class
	default:
		return "{closure}"
	}
}

// Location renders "file:line", or just "file" if no line number is known,
// or "" if there's no file at all.
func (f Frame) Location() string {
	return locationString(f.FileName, f.LineNumber)
}

func locationString(file string, line int) string {
	if file == "" {
		return ""
	}
	if line == 0 {
		return file
	}
	return file + ":" + itoa(line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Payload is one typed, structured record inside a Request. content is
// opaque, heterogeneous JSON whose shape depends on Kind; ContentObject and
// ContentString give uniform access without a giant per-kind struct set.
type Payload struct {
	Kind    PayloadKind     `json:"-"`
	content json.RawMessage `json:"-"`
	Origin  *Origin         `json:"origin,omitempty"`
}

type payloadWire struct {
	Kind    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
	Origin  *Origin         `json:"origin,omitempty"`
}

// UnmarshalJSON decodes the wire shape, normalizing alternate kind
// spellings through kindAliases.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var wire payloadWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	kind := PayloadKind(wire.Kind)
	if alias, ok := kindAliases[wire.Kind]; ok {
		kind = alias
	}
	p.Kind = kind
	p.content = wire.Content
	p.Origin = wire.Origin
	return nil
}

// MarshalJSON round-trips a Payload back to wire shape (used by the debug
// sink's pretty-printed dump, not by the HTTP ingress).
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadWire{Kind: string(p.Kind), Content: p.content, Origin: p.Origin})
}

// ContentObject returns the content as a JSON object, or nil if the content
// is absent or not an object.
func (p Payload) ContentObject() map[string]json.RawMessage {
	if len(p.content) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(p.content, &m); err != nil {
		return nil
	}
	return m
}

// ContentString returns the string value of key within the content object,
// or "" if absent or not a string.
func (p Payload) ContentString(key string) string {
	obj := p.ContentObject()
	if obj == nil {
		return ""
	}
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ContentStrings returns the elements of the array at key as undecoded
// JSON values, covering the several "values"-array content shapes
// (log.values, table.values). It returns nil if key is absent or not an
// array.
func (p Payload) ContentStrings(key string) []json.RawMessage {
	obj := p.ContentObject()
	if obj == nil {
		return nil
	}
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil
	}
	return arr
}

// ContentFrames decodes the content object's "frames" array, used by
// trace/exception payloads.
func (p Payload) ContentFrames() []Frame {
	obj := p.ContentObject()
	if obj == nil {
		return nil
	}
	raw, ok := obj["frames"]
	if !ok {
		return nil
	}
	var frames []Frame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return nil
	}
	return frames
}

// ContentFrame decodes the content object's single "frame" value, used by
// caller payloads.
func (p Payload) ContentFrame() (Frame, bool) {
	obj := p.ContentObject()
	if obj == nil {
		return Frame{}, false
	}
	raw, ok := obj["frame"]
	if !ok {
		return Frame{}, false
	}
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, false
	}
	return f, true
}

// ContentRaw exposes the raw content bytes, used by the JSON-fallback
// pretty-printer.
func (p Payload) ContentRaw() json.RawMessage {
	return p.content
}

// ContentFloat returns the numeric value of key within the content object,
// used by measure payloads' timing/memory fields.
func (p Payload) ContentFloat(key string) (float64, bool) {
	obj := p.ContentObject()
	if obj == nil {
		return 0, false
	}
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// ContentBool returns the boolean value of key within the content object.
func (p Payload) ContentBool(key string) (bool, bool) {
	obj := p.ContentObject()
	if obj == nil {
		return false, false
	}
	raw, ok := obj[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// ContentMetaClipboardData returns content.meta[0].clipboard_data, the
// var-dumper fragment a log payload's clipboard copy button carries.
func (p Payload) ContentMetaClipboardData() (string, bool) {
	obj := p.ContentObject()
	if obj == nil {
		return "", false
	}
	raw, ok := obj["meta"]
	if !ok {
		return "", false
	}
	var meta []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &meta); err != nil || len(meta) == 0 {
		return "", false
	}
	clip, ok := meta[0]["clipboard_data"]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(clip, &s); err != nil {
		return "", false
	}
	return s, true
}

// Request is the unit of HTTP acceptance: a UUID, zero-or-more payloads,
// and request-level metadata (hostname, project_name, screen hints).
type Request struct {
	UUID     string                     `json:"uuid"`
	Payloads []Payload                  `json:"payloads,omitempty"`
	Meta     map[string]json.RawMessage `json:"meta,omitempty"`
}

// MetaString returns the string value of a top-level meta key, or "" if
// absent or not a string.
func (r Request) MetaString(key string) string {
	raw, ok := r.Meta[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// SortedMetaKeys returns the request's meta keys in deterministic order,
// used by the raw-payload overlay.
func (r Request) SortedMetaKeys() []string {
	keys := make([]string, 0, len(r.Meta))
	for k := range r.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
