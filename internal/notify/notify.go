// Package notify is the non-blocking notification center shown by the rendering surface.
//
// Controllers push messages here instead of blocking the user with alerts;
// the surface drains them with every page response.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Level of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// DefaultCapacity is how many undelivered notifications are kept.
const DefaultCapacity = 50

// Notification is a single user-visible message.
type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Center collects notifications until they are drained.
// It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	pushed   uint64
	capacity int
	logger   *slog.Logger
}

// NewCenter creates a Center keeping at most capacity undelivered items;
// older ones are dropped first.
func NewCenter(capacity int, logger *slog.Logger) *Center {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Center{capacity: capacity, logger: logger}
}

// Info queues an informational message.
func (c *Center) Info(message string) Notification {
	return c.push(LevelInfo, message)
}

// Error queues an error message.
func (c *Center) Error(message string) Notification {
	return c.push(LevelError, message)
}

// Drain returns every queued notification, oldest first, and empties the queue.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items
	c.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Pending returns a copy of the queue without draining it.
func (c *Center) Pending() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.items...)
}

// Seq counts every notification ever queued. Comparing two readings tells
// whether anything was queued in between, even if the queue was drained or
// trimmed meanwhile.
func (c *Center) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushed
}

func (c *Center) push(level Level, message string) Notification {
	n := Notification{
		ID:      xid.New().String(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.pushed++
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = append([]Notification(nil), c.items[over:]...)
	}
	c.mu.Unlock()

	c.logger.Debug("notification queued",
		slog.String("id", n.ID),
		slog.String("level", string(level)),
		slog.String("message", message),
	)
	return n
}
