package clientstate

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
)

type cachedValue[T any] struct {
	mu       sync.Mutex
	value    T
	lastSeen time.Time
	// dirty marks a value the store has not accepted yet.
	dirty bool
	// evicted is set by EvictIdle; holders of a stale pointer must look up again.
	evicted bool
}

// Cache serialises reads and writes of one key per session and keeps the
// last known value in memory. The store stays the source of truth; when it
// fails the in-memory copy serves the session and the failure is logged and
// counted instead of returned.
type Cache[T any] struct {
	store   Store
	key     Key
	clone   func(T) T
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*cachedValue[T]
}

// NewCache builds a cache for key. clone must deep-copy values handed to callers.
func NewCache[T any](store Store, key Key, clone func(T) T, logg *logger.Logger, m *metrics.StorefrontMetrics) *Cache[T] {
	return &Cache[T]{
		store:    store,
		key:      key,
		clone:    clone,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*cachedValue[T]),
	}
}

// Get returns the current value for session.
func (c *Cache[T]) Get(ctx context.Context, session string) (T, error) {
	var zero T
	if err := validSession(session); err != nil {
		return zero, err
	}
	entry := c.lockEntry(session)
	defer entry.mu.Unlock()
	c.refresh(ctx, session, entry)
	return c.clone(entry.value), nil
}

// Update applies fn to the current value and persists the result wholesale.
// fn must not modify its argument. If fn fails nothing changes.
func (c *Cache[T]) Update(ctx context.Context, session string, fn func(current T) (T, error)) (T, error) {
	var zero T
	if err := validSession(session); err != nil {
		return zero, err
	}
	entry := c.lockEntry(session)
	defer entry.mu.Unlock()
	c.refresh(ctx, session, entry)

	next, err := fn(c.clone(entry.value))
	if err != nil {
		return zero, err
	}
	entry.value = next
	entry.dirty = false
	if err := SaveJSON(ctx, c.store, session, c.key, next); err != nil {
		entry.dirty = true
		c.degraded(ctx, session, "save", err)
	}
	return c.clone(next), nil
}

// EvictIdle forgets in-memory copies not touched for idle. Busy sessions and
// values the store has not accepted yet are kept.
func (c *Cache[T]) EvictIdle(idle time.Duration) int {
	cutoff := c.now().Add(-idle)
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for session, entry := range c.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		if !entry.dirty && entry.lastSeen.Before(cutoff) {
			entry.evicted = true
			delete(c.sessions, session)
			evicted++
		}
		entry.mu.Unlock()
	}
	return evicted
}

// Len is the number of sessions held in memory.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Cache[T]) entry(session string) *cachedValue[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.sessions[session]
	if !ok {
		entry = &cachedValue[T]{}
		c.sessions[session] = entry
	}
	return entry
}

// lockEntry returns the live entry for session with its mutex held. An entry
// evicted between lookup and locking is discarded and looked up again.
func (c *Cache[T]) lockEntry(session string) *cachedValue[T] {
	for {
		entry := c.entry(session)
		entry.mu.Lock()
		if !entry.evicted {
			return entry
		}
		entry.mu.Unlock()
	}
}

// refresh must be called with entry.mu held. Unsaved local changes win over
// the stored value until the next successful save.
func (c *Cache[T]) refresh(ctx context.Context, session string, entry *cachedValue[T]) {
	entry.lastSeen = c.now()
	var stored T
	found, err := LoadJSON(ctx, c.store, session, c.key, &stored)
	switch {
	case err != nil:
		c.degraded(ctx, session, "load", err)
	case entry.dirty:
	case found:
		entry.value = stored
	default:
		var zero T
		entry.value = zero
	}
}

func (c *Cache[T]) degraded(ctx context.Context, session, op string, err error) {
	c.metrics.IncStateFailure(op, string(c.key))
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
		"visitor_session": session,
		"state_key":       string(c.key),
		"state_op":        op,
		"error":           err.Error(),
	}), "client state unavailable; serving in-memory copy")
}
