// ABOUTME: In-memory latest-wins store for session credentials reported by mod clients
// ABOUTME: One entry per client identity, replaced wholesale on every report

package state

import (
	"sync"
	"time"
)

// SessionEntry is the most recently reported session credential for a client.
type SessionEntry struct {
	ClientID    string
	AccessToken string
	CapturedAt  time.Time
}

// Sessions holds the latest session credential per client identity. Writes
// fully replace any prior entry; last write wins under concurrency. Entries
// live until process restart — validity is governed by the upstream
// credential's own expiry, not by this store.
type Sessions struct {
	mu      sync.RWMutex
	entries map[string]SessionEntry
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{
		entries: make(map[string]SessionEntry),
	}
}

// Put records the latest session credential for clientID, replacing any
// prior entry. The caller validates non-emptiness before calling.
func (s *Sessions) Put(clientID, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[clientID] = SessionEntry{
		ClientID:    clientID,
		AccessToken: accessToken,
		CapturedAt:  time.Now(),
	}
}

// Get returns the latest entry for clientID, or false if none was reported.
func (s *Sessions) Get(clientID string) (SessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[clientID]
	return entry, ok
}

// Len returns the number of distinct client identities seen.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
