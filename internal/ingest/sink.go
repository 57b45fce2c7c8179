package ingest

import (
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/yetidevworks/raygun/internal/protocol"
)

// sinkQueueDepth bounds the debug sink's buffered channel. Once full,
// Forward drops the request rather than blocking the caller, per
// spec.md §4.2's fire-and-forget contract.
const sinkQueueDepth = 256

// DebugSink appends accepted requests to a file in a human-readable form,
// for offline inspection of what a client actually sent. It never blocks
// ingestion: a full queue drops the copy, and any I/O failure disables the
// sink permanently rather than surfacing to the caller.
type DebugSink struct {
	queue   chan protocol.Request
	done    chan struct{}
	log     zerolog.Logger
	enabled atomic.Bool
}

// NewDebugSink opens path for append (creating it if needed) behind an
// advisory flock, following the teacher's eventbus non-blocking-publish
// idiom generalized to a single consumer. If the lock or the open fails —
// most commonly another raygun process already holding path — the sink
// starts disabled: Forward becomes a no-op and the warning is logged once.
func NewDebugSink(path string, log zerolog.Logger) *DebugSink {
	s := &DebugSink{
		queue: make(chan protocol.Request, sinkQueueDepth),
		done:  make(chan struct{}),
		log:   log,
	}
	s.enabled.Store(true)

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		s.log.Warn().Err(err).Str("path", path).Msg("debug dump: another process holds the lock, disabling")
		s.enabled.Store(false)
		close(s.done)
		return s
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("debug dump: failed to open file, disabling")
		s.enabled.Store(false)
		_ = lock.Unlock()
		close(s.done)
		return s
	}

	go s.run(f, lock)
	return s
}

// Forward enqueues req for the background writer. It never blocks: a full
// queue or a disabled sink silently drops req.
func (s *DebugSink) Forward(req protocol.Request) {
	if !s.enabled.Load() {
		return
	}
	select {
	case s.queue <- req:
	default:
		// queue full; the dump copy is best-effort and the timeline must
		// never wait on it.
	}
}

// Close stops accepting new requests and waits for the writer to drain and
// exit.
func (s *DebugSink) Close() {
	close(s.queue)
	<-s.done
}

func (s *DebugSink) run(f *os.File, lock *flock.Flock) {
	defer close(s.done)
	defer lock.Unlock()
	defer f.Close()

	for req := range s.queue {
		if !s.enabled.Load() {
			continue
		}
		if err := writeRequest(f, req); err != nil {
			s.log.Warn().Err(err).Msg("debug dump: write failed, disabling")
			s.enabled.Store(false)
		}
	}
}

func writeRequest(f *os.File, req protocol.Request) error {
	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = f.Write(b)
	return err
}
