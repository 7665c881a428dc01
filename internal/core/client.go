package core

import "sync"

// Client is the handle for one physical connection as seen by the core layer.
// Exactly one Client exists per connection; it is never shared between
// connections. Once closed, Send becomes a no-op, so a superseded or
// disconnected handle can never observe further broadcasts.
type Client struct {
	ID     string
	Events chan Event

	mu     sync.Mutex
	closed bool
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Event, 16),
	}
}

// Send enqueues an event for delivery to the connection. It never blocks:
// events for a closed handle are dropped, and a slow consumer whose buffer is
// full loses the event rather than stalling the sender.
func (c *Client) Send(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

// Close invalidates the handle and closes the event channel. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}

// Closed reports whether the handle has been invalidated.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
