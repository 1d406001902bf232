package clientstate

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps client state in process memory. It serves single-node
// development setups and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]map[Key]memoryEntry
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]map[Key]memoryEntry),
	}
}

func (s *MemoryStore) Load(_ context.Context, session string, key Key) (string, bool, error) {
	if err := validSession(session); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	entry, ok := s.data[session][key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Save(_ context.Context, session string, key Key, value string) error {
	if err := validSession(session); err != nil {
		return err
	}
	entry := memoryEntry{value: value}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, ok := s.data[session]
	if !ok {
		keys = make(map[Key]memoryEntry)
		s.data[session] = keys
	}
	keys[key] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, session string, keys ...Key) error {
	if err := validSession(session); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.data[session]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(stored, key)
	}
	if len(stored) == 0 {
		delete(s.data, session)
	}
	return nil
}

// PurgeExpired drops expired entries and returns how many were removed.
func (s *MemoryStore) PurgeExpired() int {
	now := s.now()
	removed := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for session, keys := range s.data {
		for key, entry := range keys {
			if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
				delete(keys, key)
				removed++
			}
		}
		if len(keys) == 0 {
			delete(s.data, session)
		}
	}
	return removed
}
