// Package notify is the transient notification surface. Messages stay
// active for a fixed dismiss window and then expire on read; no timers
// are involved.
package notify

import (
	"sync"
	"time"

	"github.com/emipmttt/sellia-challenge/internal/bus"
	"github.com/google/uuid"
)

// Level classifies a notification.
type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notification is one transient message.
type Notification struct {
	ID      string
	Level   Level
	Message string
	expires time.Time
}

// Center collects notifications and auto-dismisses them after the
// configured delay.
type Center struct {
	dismiss time.Duration
	bus     *bus.Bus
	clock   func() time.Time

	mu    sync.Mutex
	items []Notification
}

// NewCenter creates a center with the given dismiss delay.
func NewCenter(dismiss time.Duration, b *bus.Bus) *Center {
	return &Center{
		dismiss: dismiss,
		bus:     b,
		clock:   time.Now,
	}
}

// ShowError displays an error notification.
func (c *Center) ShowError(msg string) { c.show(LevelError, msg) }

// ShowSuccess displays a success notification.
func (c *Center) ShowSuccess(msg string) { c.show(LevelSuccess, msg) }

// ShowInfo displays an informational notification.
func (c *Center) ShowInfo(msg string) { c.show(LevelInfo, msg) }

// ShowWarning displays a warning notification.
func (c *Center) ShowWarning(msg string) { c.show(LevelWarning, msg) }

func (c *Center) show(level Level, msg string) {
	n := Notification{
		ID:      uuid.New().String(),
		Level:   level,
		Message: msg,
		expires: c.clock().Add(c.dismiss),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(bus.Event{
			Kind:    bus.KindNotifyPrefix + string(level),
			Payload: n,
		})
	}
}

// Active returns the notifications that have not yet expired, pruning
// the rest.
func (c *Center) Active() []Notification {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.expires) {
			live = append(live, n)
		}
	}
	c.items = live

	out := make([]Notification, len(live))
	copy(out, live)
	return out
}
