package notifications

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	defaultTTL      = 3 * time.Second
	defaultMaxStack = 5
	subscriberBuf   = 16
)

// Notification is a transient storefront message.
type Notification struct {
	ID        string                     `json:"id"`
	Message   string                     `json:"message"`
	Severity  enums.NotificationSeverity `json:"severity"`
	CreatedAt time.Time                  `json:"created_at"`
	ExpiresAt time.Time                  `json:"expires_at"`
}

// EventType tells subscribers whether a notification appeared or went away.
type EventType string

const (
	EventShown     EventType = "shown"
	EventDismissed EventType = "dismissed"
)

// Event is delivered to session subscribers.
type Event struct {
	Type         EventType    `json:"type"`
	Notification Notification `json:"notification"`
}

// Sink is the emit-only surface the cart, wishlist and checkout services use.
type Sink interface {
	Show(ctx context.Context, session, message string, severity enums.NotificationSeverity) Notification
}

type entry struct {
	Notification
	timer *time.Timer
}

type sessionState struct {
	stack       []*entry
	subscribers map[int]chan Event
}

// Emitter keeps a capped stack of notifications per visitor session. Every
// entry dismisses itself after the TTL; the oldest is evicted when the stack
// is full. Show never blocks: slow subscribers miss events.
type Emitter struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxStack int
	now      func() time.Time
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	sessions map[string]*sessionState
	nextSub  int
	closed   bool
}

// NewEmitter builds an emitter from notification configuration.
func NewEmitter(cfg config.NotificationsConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) *Emitter {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	maxStack := cfg.MaxStack
	if maxStack <= 0 {
		maxStack = defaultMaxStack
	}
	return &Emitter{
		ttl:      ttl,
		maxStack: maxStack,
		now:      time.Now,
		logg:     logg,
		metrics:  m,
		sessions: make(map[string]*sessionState),
	}
}

// Show pushes a notification for session. Unknown severities render as info.
// After Close the notification is returned but not tracked.
func (e *Emitter) Show(ctx context.Context, session, message string, severity enums.NotificationSeverity) Notification {
	if !severity.IsValid() {
		severity = enums.NotificationSeverityInfo
	}
	now := e.now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   strings.TrimSpace(message),
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(e.ttl),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || strings.TrimSpace(session) == "" {
		return n
	}

	state := e.session(session)
	for len(state.stack) >= e.maxStack {
		oldest := state.stack[0]
		state.stack = state.stack[1:]
		oldest.timer.Stop()
		e.publish(state, Event{Type: EventDismissed, Notification: oldest.Notification})
	}

	item := &entry{Notification: n}
	id := n.ID
	item.timer = time.AfterFunc(e.ttl, func() {
		e.Dismiss(session, id)
	})
	state.stack = append(state.stack, item)
	e.publish(state, Event{Type: EventShown, Notification: n})

	e.metrics.IncNotification(severity.String())
	if e.logg != nil {
		e.logg.Debug(e.logg.WithFields(ctx, map[string]any{
			"notification_severity": severity.String(),
			"visitor_session":       session,
		}), n.Message)
	}
	return n
}

// Active returns the session's visible notifications, oldest first.
func (e *Emitter) Active(session string) []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.sessions[session]
	if !ok {
		return []Notification{}
	}
	out := make([]Notification, 0, len(state.stack))
	for _, item := range state.stack {
		out = append(out, item.Notification)
	}
	return out
}

// Dismiss removes a notification early and cancels its timer. It reports
// whether the notification was still visible.
func (e *Emitter) Dismiss(session, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.sessions[session]
	if !ok {
		return false
	}
	for i, item := range state.stack {
		if item.ID != id {
			continue
		}
		item.timer.Stop()
		state.stack = append(state.stack[:i:i], state.stack[i+1:]...)
		e.publish(state, Event{Type: EventDismissed, Notification: item.Notification})
		e.prune(session, state)
		return true
	}
	return false
}

// Subscribe streams events for session until cancel is called or the emitter closes.
func (e *Emitter) Subscribe(session string) (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan Event, subscriberBuf)
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	state := e.session(session)
	id := e.nextSub
	e.nextSub++
	state.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			current, ok := e.sessions[session]
			if !ok {
				return
			}
			if sub, ok := current.subscribers[id]; ok {
				delete(current.subscribers, id)
				close(sub)
			}
			e.prune(session, current)
		})
	}
}

// Close stops every pending timer and closes all subscriptions.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for session, state := range e.sessions {
		for _, item := range state.stack {
			item.timer.Stop()
		}
		for id, ch := range state.subscribers {
			close(ch)
			delete(state.subscribers, id)
		}
		delete(e.sessions, session)
	}
}

// session must be called with mu held.
func (e *Emitter) session(id string) *sessionState {
	state, ok := e.sessions[id]
	if !ok {
		state = &sessionState{subscribers: make(map[int]chan Event)}
		e.sessions[id] = state
	}
	return state
}

func (e *Emitter) prune(id string, state *sessionState) {
	if len(state.stack) == 0 && len(state.subscribers) == 0 {
		delete(e.sessions, id)
	}
}

func (e *Emitter) publish(state *sessionState, evt Event) {
	for _, ch := range state.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
