// ABOUTME: In-memory latest-wins store for screenshots uploaded by mod clients
// ABOUTME: At most one image retained per player, overwritten on every upload

package state

import (
	"sync"
	"time"
)

// ScreenshotEntry is the most recently uploaded image for a player.
type ScreenshotEntry struct {
	PlayerName string
	Image      []byte
	CapturedAt time.Time
}

// Screenshots holds the latest uploaded image per player, overwrite-only
// with no history. The size ceiling on uploads is enforced at the HTTP
// boundary, not here. Entries live until process restart.
type Screenshots struct {
	mu      sync.RWMutex
	entries map[string]ScreenshotEntry
}

// NewScreenshots creates an empty screenshot store.
func NewScreenshots() *Screenshots {
	return &Screenshots{
		entries: make(map[string]ScreenshotEntry),
	}
}

// Put replaces the stored image for playerName with image.
func (s *Screenshots) Put(playerName string, image []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[playerName] = ScreenshotEntry{
		PlayerName: playerName,
		Image:      image,
		CapturedAt: time.Now(),
	}
}

// Get returns the latest entry for playerName, or false if none was uploaded.
func (s *Screenshots) Get(playerName string) (ScreenshotEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[playerName]
	return entry, ok
}

// Len returns the number of distinct players with a stored screenshot.
func (s *Screenshots) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
