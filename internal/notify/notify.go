// Package notify keeps the transient notifications shown by the dashboard.
// Each notification dismisses itself after its TTL.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

const DefaultTTL = 5 * time.Second

type Notification struct {
	ID      int
	Kind    Kind
	Message string
	At      time.Time
}

type Center struct {
	mu       sync.Mutex
	ttl      time.Duration
	nextID   int
	active   []Notification
	timers   map[int]*time.Timer
	onChange func()
	closed   bool
}

// New creates a center. A non-positive ttl uses DefaultTTL. onChange, if
// set, is called outside the lock whenever the active list changes,
// including on auto-dismiss from a timer goroutine.
func New(ttl time.Duration, onChange func()) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:      ttl,
		timers:   make(map[int]*time.Timer),
		onChange: onChange,
	}
}

func (c *Center) Success(msg string) int { return c.Push(KindSuccess, msg) }
func (c *Center) Error(msg string) int   { return c.Push(KindError, msg) }
func (c *Center) Info(msg string) int    { return c.Push(KindInfo, msg) }

// Push adds a notification and returns its id. It is a no-op returning 0
// after Close.
func (c *Center) Push(kind Kind, msg string) int {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.nextID++
	id := c.nextID
	c.active = append(c.active, Notification{ID: id, Kind: kind, Message: msg, At: time.Now()})
	c.timers[id] = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	c.mu.Unlock()

	c.changed()
	return id
}

// Dismiss removes a notification early. Unknown ids are ignored.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	removed := false
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			removed = true
			break
		}
	}
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	if removed {
		c.changed()
	}
}

// Active returns the current notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.active...)
}

// Latest returns the newest notification, if any.
func (c *Center) Latest() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.active) == 0 {
		return Notification{}, false
	}
	return c.active[len(c.active)-1], true
}

// Close stops every pending dismissal timer and drops active notifications.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.active = nil
	c.closed = true
}

func (c *Center) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
