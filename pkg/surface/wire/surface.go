package wire

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"

	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/surface"
)

// Surface is an in-memory surface whose mutations are streamed to
// clients.
type Surface struct {
	*surface.Memory
	hub     *Hub
	logger  *slog.Logger
	merge   bool
	origins []string

	// dispatch delivers client events. Defaults to Memory.Dispatch.
	dmu      sync.RWMutex
	dispatch func(surface.Event)

	// mu serializes flushes and client attachment.
	mu       sync.Mutex
	seq      uint64
	snapshot []byte
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMergeFrames makes Flush send JSON merge patches of the snapshot
// instead of op lists.
func WithMergeFrames() Option {
	return func(s *Surface) { s.merge = true }
}

// WithAllowedOrigins accepts websocket connections from the given
// origins, such as "https://example.com", in addition to same-host ones.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Surface) { s.origins = append(s.origins, origins...) }
}

// WithDispatcher routes client events through fn, for example to run
// them on an application loop.
func WithDispatcher(fn func(surface.Event)) Option {
	return func(s *Surface) { s.dispatch = fn }
}

// NewSurface creates a Surface with its own Hub.
func NewSurface(opts ...Option) *Surface {
	s := &Surface{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.Memory = surface.NewMemory(surface.WithLogger(s.logger))
	if s.dispatch == nil {
		s.dispatch = func(e surface.Event) { s.Memory.Dispatch(e) }
	}
	s.hub = newHub(s)
	return s
}

// Hub returns the client hub.
func (s *Surface) Hub() *Hub {
	return s.hub
}

// Flush sends the mutations recorded since the previous flush to every
// client. It returns the frame, or false when nothing changed.
func (s *Surface) Flush() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, n := s.SnapshotAt()
	f, ok := s.pendingLocked(snap, n)
	if ok {
		s.hub.broadcast(f)
	}
	return f, ok
}

// pendingLocked builds the frame for the first n recorded ops and drops
// them from the log. snap is the tree as of op n.
func (s *Surface) pendingLocked(snap *surface.SnapshotNode, n int) (Frame, bool) {
	if n == 0 {
		return Frame{}, false
	}
	ops := s.OpsSince(0)
	if len(ops) > n {
		ops = ops[:n]
	}
	s.DropOps(n)
	s.seq++

	if s.merge {
		next, err := json.Marshal(snap)
		if err == nil {
			var delta []byte
			if delta, err = jsonpatch.CreateMergePatch(s.lastSnapshot(), next); err == nil {
				s.snapshot = next
				return Frame{Type: FrameMerge, Seq: s.seq, Merge: delta}, true
			}
		}
		s.logger.Warn("wire: merge frame failed, sending ops", "error", err)
	}
	return Frame{Type: FrameOps, Seq: s.seq, Ops: ops}, true
}

func (s *Surface) lastSnapshot() []byte {
	if s.snapshot == nil {
		return []byte("{}")
	}
	return s.snapshot
}

// Frame returns a snapshot frame of the current tree.
func (s *Surface) Frame() Frame {
	snap, _ := s.SnapshotAt()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{Type: FrameSnapshot, Seq: s.seq, Snapshot: snap}
}

// attach flushes pending mutations to the current clients, then adds c
// and sends it a snapshot. Later flushes carry only newer mutations.
func (s *Surface) attach(c *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, n := s.SnapshotAt()
	if f, ok := s.pendingLocked(snap, n); ok {
		s.hub.broadcast(f)
	}
	if s.merge && s.snapshot == nil {
		if data, err := json.Marshal(snap); err == nil {
			s.snapshot = data
		}
	}
	s.hub.add(c)
	return s.hub.send(c, Frame{Type: FrameSnapshot, Seq: s.seq, Snapshot: snap})
}

// receive handles a frame sent by a client.
func (s *Surface) receive(f Frame) error {
	if f.Type != FrameEvent || f.Event == nil {
		return luxerr.New(luxerr.CodeWireFrame).WithDetail(fmt.Sprintf("frame type %q", f.Type))
	}
	s.dmu.RLock()
	dispatch := s.dispatch
	s.dmu.RUnlock()
	dispatch(*f.Event)
	return nil
}

// SetDispatcher replaces the function client events are delivered to.
// A nil fn restores direct delivery to the listeners.
func (s *Surface) SetDispatcher(fn func(surface.Event)) {
	if fn == nil {
		fn = func(e surface.Event) { s.Memory.Dispatch(e) }
	}
	s.dmu.Lock()
	s.dispatch = fn
	s.dmu.Unlock()
}
