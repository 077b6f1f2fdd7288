package session

import (
	"sync"
	"time"

	"intakebot/pkg/logx"
	"intakebot/pkg/proto"
)

// Store is the session store contract the flow engine depends on. Mutate is
// the only way to read-modify-write a session; implementations must hold a
// per-user lock for the duration of fn and never across external I/O (the
// engine performs sink and LLM calls only after Mutate returns).
type Store interface {
	// Get returns a copy of the user's session, or nil when none is active.
	Get(userID string) *Session

	// Create starts a fresh session at the entry step, discarding any prior
	// session for the user. Re-entry always restarts the flow.
	Create(userID string, entry proto.Step) *Session

	// Mutate runs fn against the user's live session under the per-user
	// lock. fn receives nil when no session is active; returning false
	// from fn discards the session (used for cancel and finalize).
	Mutate(userID string, fn func(s *Session) (keep bool))

	// Clear removes the user's session, if any.
	Clear(userID string)

	// Len returns the number of active sessions.
	Len() int
}

// MemoryStore is an in-memory Store with per-user locking and an optional
// idle TTL sweep to bound memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
	ttl     time.Duration // 0 disables expiry
	logger  *logx.Logger
}

type storeEntry struct {
	mu   sync.Mutex
	sess *Session
}

// NewMemoryStore creates a memory-backed session store. A non-zero idleTTL
// makes Sweep (and the sweeper loop) drop sessions idle for longer than the
// TTL; zero keeps sessions until finalized or cancelled.
func NewMemoryStore(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*storeEntry),
		ttl:     idleTTL,
		logger:  logx.NewLogger("session"),
	}
}

// entry returns the user's lock entry, creating it when create is set.
func (m *MemoryStore) entry(userID string, create bool) *storeEntry {
	m.mu.RLock()
	e, ok := m.entries[userID]
	m.mu.RUnlock()
	if ok || !create {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.entries[userID]; ok {
		return e
	}
	e = &storeEntry{}
	m.entries[userID] = e
	return e
}

// Get returns a copy of the user's session, or nil when none is active.
func (m *MemoryStore) Get(userID string) *Session {
	e := m.entry(userID, false)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone()
}

// Create starts a fresh session, overwriting any prior one for the user.
func (m *MemoryStore) Create(userID string, entry proto.Step) *Session {
	e := m.entry(userID, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess = newSession(userID, entry)
	m.logger.Debug("session created for %s at %s", userID, entry)
	return e.sess.Clone()
}

// Mutate runs fn under the user's lock. See Store.Mutate.
func (m *MemoryStore) Mutate(userID string, fn func(s *Session) bool) {
	e := m.entry(userID, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fn(e.sess) {
		e.sess = nil
	}
}

// Clear removes the user's session, if any.
func (m *MemoryStore) Clear(userID string) {
	e := m.entry(userID, false)
	if e == nil {
		return
	}
	e.mu.Lock()
	e.sess = nil
	e.mu.Unlock()
}

// Len returns the number of active sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.entries {
		e.mu.Lock()
		if e.sess != nil {
			count++
		}
		e.mu.Unlock()
	}
	return count
}

// Sweep drops sessions idle for longer than the configured TTL and removes
// empty lock entries. Returns the number of sessions expired.
func (m *MemoryStore) Sweep() int {
	cutoff := time.Time{}
	if m.ttl > 0 {
		cutoff = time.Now().UTC().Add(-m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for userID, e := range m.entries {
		e.mu.Lock()
		if e.sess == nil {
			delete(m.entries, userID)
		} else if !cutoff.IsZero() && e.sess.UpdatedAt.Before(cutoff) {
			e.sess = nil
			delete(m.entries, userID)
			expired++
		}
		e.mu.Unlock()
	}

	if expired > 0 {
		m.logger.Info("expired %d idle session(s)", expired)
	}
	return expired
}

// RunSweeper sweeps on the given interval until stop is closed. Intended to
// run in its own goroutine.
func (m *MemoryStore) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-stop:
			return
		}
	}
}
