package advisor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type activeStream struct {
	id     string
	cancel context.CancelFunc
}

// StreamRegistry enforces at most one in-flight advisory stream per session:
// beginning a stream cancels the session's previous one first.
type StreamRegistry struct {
	mu     sync.Mutex
	active map[string]activeStream
}

// NewStreamRegistry creates an empty registry.
func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{active: make(map[string]activeStream)}
}

// Begin registers a new stream for the session and returns its context plus
// a release func. Any stream already running for the session is cancelled
// before the new one is registered. Callers must invoke release when the
// stream ends, whatever the outcome.
func (r *StreamRegistry) Begin(ctx context.Context, sessionID string) (context.Context, func()) {
	sctx, cancel := context.WithCancel(ctx)
	id := uuid.New().String()

	r.mu.Lock()
	if prev, ok := r.active[sessionID]; ok {
		prev.cancel()
	}
	r.active[sessionID] = activeStream{id: id, cancel: cancel}
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		// Only remove the entry if it is still ours; a newer stream may have
		// replaced it already.
		if cur, ok := r.active[sessionID]; ok && cur.id == id {
			delete(r.active, sessionID)
		}
		r.mu.Unlock()
		cancel()
	}
	return sctx, release
}

// Active reports the number of in-flight streams.
func (r *StreamRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
