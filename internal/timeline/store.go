// Package timeline implements the bounded event ledger: the single-writer
// state fold over incoming requests (record/control-payload handling,
// retention, the screen cursor, and the lock registry).
package timeline

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yetidevworks/raygun/internal/protocol"
)

// DefaultRetention is the ledger's default cap on stored events.
const DefaultRetention = 1024

// Event is one ledger entry synthesized from an accepted request.
type Event struct {
	ID         uuid.UUID
	ReceivedAt time.Time
	Request    protocol.Request
	Screen     string
	Color      string
	Label      string
}

// LockRecord is a registered create_lock's expected hostname/project.
type LockRecord struct {
	Hostname    string
	ProjectName string
}

// Store is the single-writer timeline ledger: a bounded FIFO of Events plus
// a lock registry and current-screen cursor, protected by one reader/writer
// lock per spec.md §4.1's atomicity requirement (the whole fold runs under
// one critical section; no finer-grained locking).
type Store struct {
	mu            sync.RWMutex
	retention     int
	timeline      []Event
	locks         map[string]LockRecord
	currentScreen string
	now           func() time.Time
}

// New creates a Store with the given retention cap.
func New(retention int) *Store {
	return &Store{
		retention: retention,
		locks:     make(map[string]LockRecord),
		now:       time.Now,
	}
}

// NewDefault creates a Store with DefaultRetention.
func NewDefault() *Store {
	return New(DefaultRetention)
}

type outcome int

const (
	outcomeRecord outcome = iota
	outcomeSkip
)

// displayableKinds is the set of payload kinds that cause a request to
// yield a visible timeline event, per spec.md §4.1 step 2.
var displayableKinds = map[protocol.PayloadKind]bool{
	protocol.KindLog:         true,
	protocol.KindCustom:      true,
	protocol.KindText:        true,
	protocol.KindNotify:      true,
	protocol.KindException:   true,
	protocol.KindTrace:       true,
	protocol.KindTable:       true,
	protocol.KindImage:       true,
	protocol.KindJSONString:  true,
	protocol.KindDecodedJSON: true,
	protocol.KindSeparator:   true,
	protocol.KindMeasure:     true,
	protocol.KindPhpInfo:     true,
	protocol.KindSize:        true,
	protocol.KindCaller:      true,
	protocol.KindShowBrowser: true,
	protocol.KindShowApp:     true,
	protocol.KindHideApp:     true,
	protocol.KindBan:         true,
	protocol.KindCharles:     true,
	protocol.KindNewScreen:   true,
}

// RecordRequest is the ledger's single mutation entry point: it runs the
// full state fold over req's payloads under the write lock and returns the
// resulting event, or (nil, false) if the request was purely state-
// affecting (control payloads only, or a tail color/label mutation).
func (s *Store) RecordRequest(req protocol.Request) (*Event, bool) {
	event := &Event{
		ID:         uuid.New(),
		ReceivedAt: s.now(),
		Request:    req,
		Screen:     extractScreenFromMeta(req.Meta),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.applyPayloads(event)

	if out == outcomeRecord {
		// TODO: the merge fires whenever a trace/caller follows any
		// solitary log event, even an unrelated one — spec.md §9 flags
		// this as a candidate for a time-window guard; none is applied
		// here, matching the source's observed (if surprising) behavior.
		s.mergeLogIntoContext(event)
	}

	if out == outcomeSkip {
		return nil, false
	}

	s.timeline = append(s.timeline, *event)
	if len(s.timeline) > s.retention {
		s.timeline = s.timeline[1:]
	}

	return event, true
}

func (s *Store) applyPayloads(event *Event) outcome {
	displayable := false
	out := outcomeRecord

	var pendingColor, pendingLabel string
	var havePendingColor, havePendingLabel bool

	for _, payload := range event.Request.Payloads {
		switch payload.Kind {
		case protocol.KindCreateLock:
			if name := payload.ContentString("name"); name != "" {
				s.locks[name] = LockRecord{
					Hostname:    event.Request.MetaString("hostname"),
					ProjectName: event.Request.MetaString("project_name"),
				}
			}
		case protocol.KindClearAll:
			s.timeline = nil
			s.locks = make(map[string]LockRecord)
			s.currentScreen = ""
			out = outcomeSkip
		case protocol.KindRemove:
			if name := payload.ContentString("name"); name != "" {
				delete(s.locks, name)
			}
			s.popTail()
			out = outcomeSkip
		case protocol.KindHide:
			s.popTail()
			out = outcomeSkip
		case protocol.KindNewScreen:
			if name := payload.ContentString("name"); name != "" {
				sanitized := sanitizeScreenName(name)
				s.currentScreen = sanitized
				event.Screen = sanitized
			}
			displayable = true
		case protocol.KindColor:
			if c := payload.ContentString("color"); c != "" {
				event.Color = c
				pendingColor = c
				havePendingColor = true
			}
		case protocol.KindLabel:
			if l := payload.ContentString("label"); l != "" {
				event.Label = l
				pendingLabel = l
				havePendingLabel = true
			}
		}

		if displayableKinds[payload.Kind] {
			displayable = true
		}
	}

	if !displayable {
		if havePendingColor && len(s.timeline) > 0 {
			s.timeline[len(s.timeline)-1].Color = pendingColor
		}
		if havePendingLabel && len(s.timeline) > 0 {
			s.timeline[len(s.timeline)-1].Label = pendingLabel
		}
		out = outcomeSkip
	}

	if event.Screen == "" {
		event.Screen = s.currentScreen
	}

	return out
}

func (s *Store) popTail() {
	if len(s.timeline) > 0 {
		s.timeline = s.timeline[:len(s.timeline)-1]
	}
}

// mergeLogIntoContext fuses a solitary preceding log event into a following
// trace/caller request, per spec.md §4.1's log-merge rule.
func (s *Store) mergeLogIntoContext(event *Event) {
	hasTraceOrCaller := false
	for _, p := range event.Request.Payloads {
		if p.Kind == protocol.KindTrace || p.Kind == protocol.KindCaller {
			hasTraceOrCaller = true
			break
		}
	}
	if !hasTraceOrCaller || len(s.timeline) == 0 {
		return
	}

	tail := s.timeline[len(s.timeline)-1]
	message, ok := extractSingleLogMessage(tail)
	if !ok {
		return
	}

	s.popTail()
	if event.Label == "" {
		event.Label = message
	}
}

func extractSingleLogMessage(event Event) (string, bool) {
	if len(event.Request.Payloads) != 1 {
		return "", false
	}
	payload := event.Request.Payloads[0]
	if payload.Kind != protocol.KindLog {
		return "", false
	}

	if clip, ok := payload.ContentMetaClipboardData(); ok {
		if trimmed := strings.TrimSpace(clip); trimmed != "" {
			return trimmed, true
		}
	}

	for _, raw := range payload.ContentStrings("values") {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

var screenMetaKeys = []string{"screen", "screen_name", "screenName"}

func extractScreenFromMeta(meta map[string]json.RawMessage) string {
	for _, key := range screenMetaKeys {
		raw, ok := meta[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func sanitizeScreenName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "Screen"
	}
	return name
}

// Snapshot returns a copy of the current timeline in arrival order.
func (s *Store) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.timeline))
	copy(out, s.timeline)
	return out
}

// Len reports the current timeline length.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timeline)
}

// LockExists reports whether name is registered and, when hostname/project
// are non-empty, that they match the registered values.
func (s *Store) LockExists(name, hostname, project string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.locks[name]
	if !ok {
		return false
	}
	if hostname != "" && record.Hostname != hostname {
		return false
	}
	if project != "" && record.ProjectName != project {
		return false
	}
	return true
}

// ClearLock removes a single named lock.
func (s *Store) ClearLock(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, name)
}

// ClearTimeline empties the timeline and resets the screen cursor without
// going through a request. Unlike clear_all, it leaves the lock registry
// untouched.
func (s *Store) ClearTimeline() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = nil
	s.currentScreen = ""
}
