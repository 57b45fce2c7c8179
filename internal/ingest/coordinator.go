// Package ingest is the single entry point between the HTTP collaborator
// and the timeline ledger: it records each accepted request and, best
// effort, forwards a copy to an optional debug sink.
package ingest

import (
	"github.com/yetidevworks/raygun/internal/protocol"
	"github.com/yetidevworks/raygun/internal/timeline"
)

// Coordinator wraps a timeline.Store with an optional debug sink, per
// spec.md §4.2: record first, forward second, and never let the sink's
// health affect the recording outcome.
type Coordinator struct {
	store *timeline.Store
	sink  *DebugSink
}

// New creates a Coordinator over store. sink may be nil, meaning debug
// dumping is disabled.
func New(store *timeline.Store, sink *DebugSink) *Coordinator {
	return &Coordinator{store: store, sink: sink}
}

// Ingest records req against the timeline and, on success, forwards it to
// the debug sink without blocking on sink I/O.
func (c *Coordinator) Ingest(req protocol.Request) (*timeline.Event, bool) {
	event, recorded := c.store.RecordRequest(req)
	if recorded && c.sink != nil {
		c.sink.Forward(req)
	}
	return event, recorded
}
