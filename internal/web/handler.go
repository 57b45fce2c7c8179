// Package web exposes the three HTTP routes a ray client talks to: payload
// ingestion, lock lookup, and the availability probe.
package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yetidevworks/raygun/internal/ingest"
	"github.com/yetidevworks/raygun/internal/protocol"
	"github.com/yetidevworks/raygun/internal/timeline"
)

// LockLookup answers whether a named lock is active, optionally scoped by
// hostname/project.
type LockLookup interface {
	LockExists(name, hostname, project string) bool
}

// Ingester records an incoming request onto the timeline and forwards it to
// the debug sink, if any.
type Ingester interface {
	Ingest(req protocol.Request) (*timeline.Event, bool)
}

// Handler routes the three endpoints a ray client speaks to.
type Handler struct {
	ingester *ingest.Coordinator
	locks    LockLookup
	log      zerolog.Logger
}

// NewHandler builds a Handler bound to the given coordinator and lock
// lookup (normally the same *timeline.Store the coordinator wraps).
func NewHandler(ingester *ingest.Coordinator, locks LockLookup, log zerolog.Logger) *Handler {
	return &Handler{ingester: ingester, locks: locks, log: log}
}

// ServeHTTP dispatches on method and path, matching the teacher's manual
// TrimPrefix-based routing rather than pulling in a mux.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/":
		h.handleIngest(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/locks/"):
		h.handleLockLookup(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/_availability_check":
		// The ray client probes this path expecting a 404; it's the
		// signature a reachable Raygun server returns.
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

type ingestResponse struct {
	Recorded bool       `json:"recorded"`
	EventID  *uuid.UUID `json:"event_id,omitempty"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("rejecting malformed ingest body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	event, recorded := h.ingester.Ingest(req)

	resp := ingestResponse{Recorded: recorded}
	if recorded && event != nil {
		resp.EventID = &event.ID
	}

	writeJSON(w, http.StatusAccepted, resp)
}

type lockResponse struct {
	Active        bool `json:"active"`
	StopExecution bool `json:"stop_execution"`
}

func (h *Handler) handleLockLookup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/locks/")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	active := h.locks.LockExists(name, query.Get("hostname"), query.Get("project_name"))

	// stop_execution is always false in the upstream protocol; see
	// SPEC_FULL.md's open-questions note.
	writeJSON(w, http.StatusOK, lockResponse{Active: active, StopExecution: false})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
