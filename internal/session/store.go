package session

import (
	"sync"

	"ssu-rag/internal/domain"
)

// History is the append-only ordered log of turns for one session. It is
// owned by the Store, which is its only mutator.
type History struct {
	mu       sync.Mutex
	turns    []domain.Turn
	maxTurns int
}

func (h *History) append(turns ...domain.Turn) {
	h.turns = append(h.turns, turns...)
	if h.maxTurns > 0 && len(h.turns) > h.maxTurns {
		// Drop the oldest turns; copy so the retained slice does not pin
		// the old backing array.
		trimmed := make([]domain.Turn, h.maxTurns)
		copy(trimmed, h.turns[len(h.turns)-h.maxTurns:])
		h.turns = trimmed
	}
}

// Snapshot returns a copy of the turns in chronological order.
func (h *History) Snapshot() []domain.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Store maps session ids to their histories. Histories are created lazily on
// first reference and live for the process lifetime. Operations on one
// session are serialized behind the history's mutex, so concurrent requests
// can never tear an exchange; a request that starts before another commits
// may still condense against the older snapshot, which is accepted behavior.
type Store struct {
	mu        sync.RWMutex
	histories map[string]*History
	maxTurns  int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTurns caps the number of turns retained per session; the oldest
// turns are dropped when the cap is exceeded. Zero means unbounded.
func WithMaxTurns(n int) Option {
	return func(s *Store) { s.maxTurns = n }
}

// NewStore creates an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{histories: make(map[string]*History)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the history for sessionID, creating an empty one if
// absent.
func (s *Store) GetOrCreate(sessionID string) *History {
	s.mu.RLock()
	h, ok := s.histories[sessionID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.histories[sessionID]; ok {
		return h
	}
	h = &History{maxTurns: s.maxTurns}
	s.histories[sessionID] = h
	return h
}

// Seed appends a batch of externally supplied turns. Entries with
// empty/whitespace-only content are dropped and unrecognized roles are
// ignored. Seeding does not deduplicate against existing content; callers
// must seed only unseen turns. Returns the number of turns stored.
func (s *Store) Seed(sessionID string, turns []domain.Turn) int {
	accepted := make([]domain.Turn, 0, len(turns))
	for _, t := range turns {
		if turn, ok := domain.NewTurn(t.Role, t.Content); ok {
			accepted = append(accepted, turn)
		}
	}
	if len(accepted) == 0 {
		return 0
	}

	h := s.GetOrCreate(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.append(accepted...)
	return len(accepted)
}

// Append adds a single turn to the session's history. Turns with invalid
// roles or empty content are dropped.
func (s *Store) Append(sessionID string, role domain.Role, content string) bool {
	turn, ok := domain.NewTurn(role, content)
	if !ok {
		return false
	}
	h := s.GetOrCreate(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.append(turn)
	return true
}

// AppendExchange commits a user query and the assistant's answer as one
// atomic pair, so interleaved requests on the same session can never split
// an exchange.
func (s *Store) AppendExchange(sessionID, query, answer string) {
	userTurn, okU := domain.NewTurn(domain.RoleUser, query)
	assistantTurn, okA := domain.NewTurn(domain.RoleAssistant, answer)

	h := s.GetOrCreate(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	if okU {
		h.append(userTurn)
	}
	if okA {
		h.append(assistantTurn)
	}
}

// Snapshot returns a copy of the session's turns. A session that was never
// referenced yields an empty slice without creating a history.
func (s *Store) Snapshot(sessionID string) []domain.Turn {
	s.mu.RLock()
	h, ok := s.histories[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return h.Snapshot()
}

// Len returns the number of sessions currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories)
}
