package services

import (
	"sync"
	"time"

	"github.com/desertthunder/igsync/internal/shared"
)

// DefaultStateTTL bounds how long an issued state token stays consumable.
const DefaultStateTTL = 10 * time.Minute

type stateEntry struct {
	userID   string
	issuedAt time.Time
}

// StateStore holds short-lived, single-use CSRF state tokens mapping an
// opaque state value to the local user who initiated the link.
type StateStore struct {
	mu     sync.Mutex
	states map[string]stateEntry
	ttl    time.Duration
	now    func() time.Time
}

// NewStateStore creates a StateStore. A non-positive ttl falls back to
// [DefaultStateTTL].
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{
		states: make(map[string]stateEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates an unguessable, globally unique state token and records it
// against userID. Expired entries are swept opportunistically on each issue
// so an abandoned flow cannot grow the map without bound.
func (s *StateStore) Issue(userID string) string {
	state := shared.GenerateID()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.states {
		if now.Sub(e.issuedAt) > s.ttl {
			delete(s.states, k)
		}
	}

	s.states[state] = stateEntry{userID: userID, issuedAt: now}
	return state
}

// Consume atomically removes the state token and returns the user it was
// issued to. Absent or expired tokens fail with [shared.ErrInvalidState];
// the remove-and-return is a single step under the lock, so concurrent
// delivery of the same state yields exactly one winner.
func (s *StateStore) Consume(state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[state]
	if !ok {
		return "", shared.ErrInvalidState
	}
	delete(s.states, state)

	if s.now().Sub(entry.issuedAt) > s.ttl {
		return "", shared.ErrInvalidState
	}

	return entry.userID, nil
}

// Len reports the number of live entries, for observability and tests.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
