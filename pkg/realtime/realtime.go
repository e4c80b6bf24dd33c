// Package realtime provides an in-process publish/subscribe hub used to fan
// out UI events (notifications, state changes) from a search session to its
// listeners, typically WebSocket connections or a terminal printer.
//
// Delivery is best effort: each listener owns a buffered channel and events
// are dropped for listeners whose buffer is full. There is no persistence or
// replay; a listener only sees events published after it registered.
package realtime

import (
	"sync"
	"time"
)

// Event kinds.
const (
	TypeNotification = "notification"
	TypeState        = "state"
)

// Notification phases.
const (
	PhaseShown   = "shown"
	PhaseLeaving = "leaving"
	PhaseRemoved = "removed"
)

// NotificationEvent describes a notification entering a new phase.
type NotificationEvent struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Phase    string `json:"phase"`
}

// StateEvent signals that the session state changed. Listeners fetch the
// snapshot themselves; Revision lets them skip stale signals.
type StateEvent struct {
	Revision uint64 `json:"revision"`
	Reason   string `json:"reason"`
}

// Event is the envelope delivered to listeners. Exactly one of Notification
// or State is set, matching Type.
type Event struct {
	Type         string             `json:"type"`
	At           time.Time          `json:"at"`
	Notification *NotificationEvent `json:"notification,omitempty"`
	State        *StateEvent        `json:"state,omitempty"`
}

// Publisher is implemented by anything that accepts events.
type Publisher interface {
	Broadcast(Event)
}

// Hub is a concurrency-safe fan-out dispatcher.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub creates a hub with the given per-listener buffer size (default 32).
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a listener. Callers must Unregister the returned id.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener that has room for it.
func (h *Hub) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// slow listener
		}
	}
}

// Size returns the number of registered listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close unregisters every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}

// NewStateEvent wraps a state change.
func NewStateEvent(revision uint64, reason string) Event {
	return Event{Type: TypeState, State: &StateEvent{Revision: revision, Reason: reason}}
}

// NewNotificationEvent wraps a notification phase change.
func NewNotificationEvent(n NotificationEvent) Event {
	return Event{Type: TypeNotification, Notification: &n}
}
