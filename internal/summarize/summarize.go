// Package summarize reduces a timeline.Event into the one-line TimelineEntry
// shown in the timeline list: a kind label, a clipped summary, and a
// human-relative age.
package summarize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yetidevworks/raygun/internal/detail"
	"github.com/yetidevworks/raygun/internal/dump"
	"github.com/yetidevworks/raygun/internal/protocol"
	"github.com/yetidevworks/raygun/internal/timeline"
)

// TimelineEntry is one row in the rendered timeline list.
type TimelineEntry struct {
	ID        uuid.UUID
	KindLabel string
	Summary   string
	Age       string
	Color     string
	Label     string
}

// controlKinds mirrors the glossary's control-payload set: payloads whose
// effect is on the store's state rather than on the rendered timeline.
var controlKinds = map[protocol.PayloadKind]bool{
	protocol.KindClearAll:   true,
	protocol.KindRemove:     true,
	protocol.KindHide:       true,
	protocol.KindCreateLock: true,
	protocol.KindColor:      true,
	protocol.KindLabel:      true,
}

// Summarize builds the TimelineEntry for event as of now.
func Summarize(event timeline.Event, now time.Time) TimelineEntry {
	elapsed := now.Sub(event.ReceivedAt)

	entry := TimelineEntry{
		ID:    event.ID,
		Age:   formatAge(elapsed),
		Color: event.Color,
		Label: event.Label,
	}
	if isDefaultLabel(entry.Label) {
		entry.Label = ""
	}

	payload, ok := effectivePayload(event.Request)
	if !ok {
		entry.KindLabel = "empty"
		entry.Summary = "Request without payloads"
	} else {
		entry.KindLabel = kindLabel(payload)
		entry.Summary = payloadSummary(payload)
	}

	if event.Screen != "" {
		entry.Summary = event.Screen + " | " + entry.Summary
	}

	return entry
}

// EffectivePayload returns the payload that should drive both a timeline
// entry and a detail view for req: the synthetic merged log payload when it
// carries more than one log payload, else the first non-control payload.
func EffectivePayload(req protocol.Request) (protocol.Payload, bool) {
	return effectivePayload(req)
}

func effectivePayload(req protocol.Request) (protocol.Payload, bool) {
	if merged, ok := MergedPayload(req); ok {
		return merged, true
	}
	for _, p := range req.Payloads {
		if !controlKinds[p.Kind] {
			return p, true
		}
	}
	return protocol.Payload{}, false
}

func kindLabel(p protocol.Payload) string {
	if p.Kind == protocol.KindCustom {
		label := detail.CustomLabel(p)
		if label == "custom" {
			return "json"
		}
		return label
	}
	return string(p.Kind)
}

func isDefaultLabel(label string) bool {
	return strings.EqualFold(label, "html")
}

// MergedPayload synthesizes a single log payload from a request carrying
// more than one log payload: values arrays are concatenated in order, and
// the first non-empty, non-default label, the first meta array, and the
// first origin encountered are preserved. It reports false when the
// request has fewer than two log payloads, since no merge is needed.
func MergedPayload(req protocol.Request) (protocol.Payload, bool) {
	var logs []protocol.Payload
	for _, p := range req.Payloads {
		if p.Kind == protocol.KindLog {
			logs = append(logs, p)
		}
	}
	if len(logs) < 2 {
		return protocol.Payload{}, false
	}

	var values []json.RawMessage
	var label string
	var meta json.RawMessage
	var origin *protocol.Origin

	for _, p := range logs {
		values = append(values, p.ContentStrings("values")...)
		if label == "" {
			if l := p.ContentString("label"); l != "" && !isDefaultLabel(l) {
				label = l
			}
		}
		if meta == nil {
			if obj := p.ContentObject(); obj != nil {
				if m, ok := obj["meta"]; ok {
					meta = m
				}
			}
		}
		if origin == nil && p.Origin != nil {
			origin = p.Origin
		}
	}

	content := make(map[string]json.RawMessage, 3)
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return protocol.Payload{}, false
	}
	content["values"] = valuesJSON
	if label != "" {
		if labelJSON, err := json.Marshal(label); err == nil {
			content["label"] = labelJSON
		}
	}
	if meta != nil {
		content["meta"] = meta
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return protocol.Payload{}, false
	}

	raw, err := json.Marshal(struct {
		Kind    string           `json:"type"`
		Content json.RawMessage  `json:"content"`
		Origin  *protocol.Origin `json:"origin,omitempty"`
	}{Kind: string(protocol.KindLog), Content: contentJSON, Origin: origin})
	if err != nil {
		return protocol.Payload{}, false
	}

	var merged protocol.Payload
	if err := json.Unmarshal(raw, &merged); err != nil {
		return protocol.Payload{}, false
	}
	return merged, true
}

func payloadSummary(p protocol.Payload) string {
	switch p.Kind {
	case protocol.KindLog:
		if s, ok := summarizeLog(p); ok {
			return s
		}
		return "log payload"
	case protocol.KindCustom, protocol.KindBoolean:
		return summarizeCustom(p)
	case protocol.KindText:
		return summarizeText(p)
	case protocol.KindException:
		return summarizeException(p)
	case protocol.KindMeasure:
		return summarizeMeasure(p)
	case protocol.KindNewScreen:
		return summarizeNewScreen(p)
	default:
		return summarizeOther(p)
	}
}

func summarizeLog(p protocol.Payload) (string, bool) {
	if clip, ok := p.ContentMetaClipboardData(); ok {
		if flattened := dump.Flatten(clip); flattened != "" {
			return dump.Clip(flattened, 80), true
		}
	}

	values := p.ContentStrings("values")
	if len(values) == 0 {
		return "", false
	}
	previews := make([]string, 0, len(values))
	for _, v := range values {
		previews = append(previews, previewRaw(v))
	}
	return dump.Clip(strings.Join(previews, " | "), 80), true
}

func summarizeCustom(p protocol.Payload) string {
	switch kind := detail.CustomLabel(p); kind {
	case "image":
		if src, ok := detail.ImageSrc(p.ContentString("content")); ok {
			return "image: " + src
		}
		return "image"
	case "html":
		return dump.Clip(dump.StripTags(p.ContentString("content")), 80)
	case "custom":
		return "json payload"
	default:
		return dump.Clip(kind+": "+contentPreview(p), 80)
	}
}

func contentPreview(p protocol.Payload) string {
	obj := p.ContentObject()
	if obj == nil {
		return "custom payload"
	}
	raw, ok := obj["content"]
	if !ok {
		return "custom payload"
	}
	return previewRaw(raw)
}

func summarizeText(p protocol.Payload) string {
	if content := p.ContentString("content"); content != "" {
		return dump.Clip(content, 80)
	}
	return "text"
}

func summarizeException(p protocol.Payload) string {
	obj := p.ContentObject()
	if obj == nil {
		return "exception"
	}
	raw, ok := obj["message"]
	if !ok {
		return "exception"
	}
	return previewRaw(raw)
}

func summarizeMeasure(p protocol.Payload) string {
	obj := p.ContentObject()
	if obj == nil {
		return "measure"
	}
	raw, ok := obj["name"]
	if !ok {
		return "measure"
	}
	return "measure " + previewRaw(raw)
}

func summarizeNewScreen(p protocol.Payload) string {
	if name := p.ContentString("name"); name != "" {
		return fmt.Sprintf("new screen `%s`", name)
	}
	return "new screen"
}

func summarizeOther(p protocol.Payload) string {
	switch p.Kind {
	case protocol.KindCreateLock:
		name := p.ContentString("name")
		if name == "" {
			name = "unknown"
		}
		return fmt.Sprintf("create lock `%s`", name)
	case protocol.KindClearAll:
		return "clear all"
	case protocol.KindHide:
		return "hide payload"
	case protocol.KindShowApp:
		return "show app"
	case protocol.KindShowBrowser:
		return "show browser"
	case protocol.KindNotify:
		if text := p.ContentString("text"); text != "" {
			return dump.Clip(text, 80)
		}
		return "notification"
	case protocol.KindSeparator:
		return "separator"
	case protocol.KindTable:
		return "table"
	case protocol.KindImage:
		return "image"
	case protocol.KindJSONString:
		return "json string"
	case protocol.KindDecodedJSON:
		if raw := p.ContentRaw(); len(raw) > 0 {
			return dump.Clip(dump.Flatten(string(raw)), 80)
		}
		return "json"
	case protocol.KindSize:
		if v := p.ContentString("size"); v != "" {
			return "size " + v
		}
		return "size"
	case protocol.KindColor:
		if v := p.ContentString("color"); v != "" {
			return "color " + v
		}
		return "color"
	case protocol.KindTrace:
		return "stack trace"
	case protocol.KindCaller:
		return "caller"
	case protocol.KindPhpInfo:
		return "phpinfo"
	case protocol.KindRemove:
		return "remove"
	case protocol.KindHideApp:
		return "hide app"
	case protocol.KindBan:
		return "ban"
	case protocol.KindCharles:
		return "charles"
	case protocol.KindLabel:
		return "label"
	default:
		if p.Kind.IsKnown() {
			return string(p.Kind)
		}
		return string(p.Kind) + " payload"
	}
}

func previewRaw(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return dump.Clip(dump.Flatten(string(raw)), 80)
	}
	switch val := v.(type) {
	case string:
		return dump.Clip(dump.Flatten(val), 80)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case nil:
		return "null"
	default:
		return dump.Clip(dump.Flatten(string(raw)), 80)
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatAge(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	secs := int64(elapsed.Seconds())
	switch {
	case secs < 1:
		return "<1s ago"
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %02ds ago", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %02dm ago", secs/3600, (secs%3600)/60)
	}
}
