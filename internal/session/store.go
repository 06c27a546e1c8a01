package session

import (
	"context"
	"sync"

	"github.com/ignite/ads-advisor/internal/advisor"
)

// Default bounds for stored conversations.
const (
	DefaultMaxTurns = 20
)

// Store persists per-session advisory conversation history. History returns
// the most recent n turns in chronological order; n <= 0 means all retained
// turns.
type Store interface {
	Append(ctx context.Context, sessionID string, msg advisor.Message) error
	History(ctx context.Context, sessionID string, n int) ([]advisor.Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is the in-process Store used in tests and single-node dev
// setups where Redis is not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]advisor.Message
	maxTurns int
}

// NewMemoryStore creates an in-memory store retaining at most maxTurns turns
// per session (0 selects the default).
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MemoryStore{
		sessions: make(map[string][]advisor.Message),
		maxTurns: maxTurns,
	}
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, msg advisor.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], msg)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.sessions[sessionID] = turns
	return nil
}

func (s *MemoryStore) History(ctx context.Context, sessionID string, n int) ([]advisor.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]advisor.Message, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
