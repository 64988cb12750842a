package report

import (
	"sort"
	"sync"

	"deepsent/internal/metrics"
	"deepsent/internal/types"
)

// Session is the per-session report store. Entries live until they are
// invalidated or the session is cleared; nothing expires on its own.
type Session struct {
	mu      sync.RWMutex
	entries map[Key]*types.ReportEntry
}

func NewSession() *Session {
	return &Session{entries: make(map[Key]*types.ReportEntry)}
}

func (s *Session) Lookup(k Key) (*types.ReportEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[k]
	return e, ok
}

func (s *Session) Store(k Key, e *types.ReportEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = e
	metrics.CacheEntries.Set(float64(len(s.entries)))
}

// Invalidate removes k and reports whether it was present.
func (s *Session) Invalidate(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[k]
	delete(s.entries, k)
	metrics.CacheEntries.Set(float64(len(s.entries)))
	return ok
}

// Clear drops every entry and returns how many there were.
func (s *Session) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[Key]*types.ReportEntry)
	metrics.CacheEntries.Set(0)
	return n
}

// Keys lists the cached keys in string order.
func (s *Session) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
