// Package notify manages transient status banners.
//
// Every Notify call creates an independent notification that stays visible
// for a fixed lifetime, then enters a short exit phase and is removed.
// Notifications are never deduplicated or queued; concurrent ones stack.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/stusearch/pkg/metrics"
	"github.com/rubiojr/stusearch/pkg/realtime"
)

type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

const (
	DefaultLifetime = 3 * time.Second
	DefaultExit     = 300 * time.Millisecond
)

// ParseSeverity maps a name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case Info, Warning, Error:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Icon returns the glyph shown next to the message.
func (s Severity) Icon() string {
	switch s {
	case Error, Warning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Color returns the banner background color.
func (s Severity) Color() string {
	switch s {
	case Error:
		return "#ff4757"
	case Warning:
		return "#ffb300"
	default:
		return "#00b8ff"
	}
}

// Notification is a snapshot of one banner.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	// Leaving is set once the exit transition started.
	Leaving bool `json:"leaving"`
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Center owns the active notifications of one session.
type Center struct {
	mu       sync.Mutex
	items    []*entry
	lifetime time.Duration
	exit     time.Duration
	pub      realtime.Publisher
	closed   bool
}

type Option func(*Center)

// WithLifetime overrides how long a notification stays before leaving and
// how long the exit phase lasts.
func WithLifetime(lifetime, exit time.Duration) Option {
	return func(c *Center) {
		if lifetime > 0 {
			c.lifetime = lifetime
		}
		if exit >= 0 {
			c.exit = exit
		}
	}
}

// WithPublisher sends phase changes to pub.
func WithPublisher(pub realtime.Publisher) Option {
	return func(c *Center) {
		c.pub = pub
	}
}

func NewCenter(opts ...Option) *Center {
	c := &Center{lifetime: DefaultLifetime, exit: DefaultExit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify shows a new notification and schedules its removal.
func (c *Center) Notify(message string, sev Severity) Notification {
	if _, err := ParseSeverity(string(sev)); err != nil {
		sev = Info
	}
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  sev,
		Icon:      sev.Icon(),
		Color:     sev.Color(),
		CreatedAt: time.Now(),
	}
	metrics.NotificationsTotal.WithLabelValues(string(sev)).Inc()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return n
	}
	e := &entry{n: n}
	c.items = append(c.items, e)
	e.timer = time.AfterFunc(c.lifetime, func() { c.leave(n.ID) })
	c.mu.Unlock()

	c.publish(n, realtime.PhaseShown)
	return n
}

func (c *Center) leave(id string) {
	c.mu.Lock()
	e := c.find(id)
	if e == nil || c.closed {
		c.mu.Unlock()
		return
	}
	e.n.Leaving = true
	n := e.n
	e.timer = time.AfterFunc(c.exit, func() { c.remove(id) })
	c.mu.Unlock()

	c.publish(n, realtime.PhaseLeaving)
}

func (c *Center) remove(id string) {
	c.mu.Lock()
	var removed *entry
	for i, e := range c.items {
		if e.n.ID == id {
			removed = e
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if removed != nil {
		c.publish(removed.n, realtime.PhaseRemoved)
	}
}

func (c *Center) find(id string) *entry {
	for _, e := range c.items {
		if e.n.ID == id {
			return e
		}
	}
	return nil
}

// Active returns visible notifications, oldest first. Leaving ones are
// included until their exit phase ends.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	for i, e := range c.items {
		out[i] = e.n
	}
	return out
}

// Close stops pending timers and drops every notification.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, e := range c.items {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	c.items = nil
}

func (c *Center) publish(n Notification, phase string) {
	if c.pub == nil {
		return
	}
	c.pub.Broadcast(realtime.NewNotificationEvent(realtime.NotificationEvent{
		ID:       n.ID,
		Message:  n.Message,
		Severity: string(n.Severity),
		Icon:     n.Icon,
		Color:    n.Color,
		Phase:    phase,
	}))
}
