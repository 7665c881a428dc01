package core

import "sync"

type presenceEntry struct {
	name   string
	client *Client
}

// Presence is the process-wide registry of online users. It is the single
// source of truth for "who is online" and maps each user id to its display
// name and active connection handle.
//
// At most one entry exists per user id: registering an already-online user
// replaces the entry (single active session policy).
type Presence struct {
	mu    sync.Mutex
	users map[int64]presenceEntry
}

// NewPresence constructs an empty registry.
func NewPresence() *Presence {
	return &Presence{users: make(map[int64]presenceEntry)}
}

// Register binds the user id to the given handle, last-writer-wins. It
// returns the superseded handle when a different connection previously owned
// the identity; the caller must invalidate it so two handles never both
// believe they own the same user.
func (p *Presence) Register(userID int64, name string, c *Client) (prev *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.users[userID]; ok && old.client != c {
		prev = old.client
	}
	p.users[userID] = presenceEntry{name: name, client: c}
	return prev
}

// Deregister removes the user's entry if it is still owned by the given
// handle. It reports whether an entry was removed. Deregistering an absent
// user, or one whose entry has been superseded by a newer connection, is a
// no-op: a late disconnect of an old handle must not evict its replacement.
func (p *Presence) Deregister(userID int64, owner *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.users[userID]
	if !ok || entry.client != owner {
		return false
	}
	delete(p.users, userID)
	return true
}

// Snapshot returns a point-in-time copy of the online users. Callers never
// see the live map.
func (p *Presence) Snapshot() map[int64]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := make(map[int64]string, len(p.users))
	for id, entry := range p.users {
		users[id] = entry.name
	}
	return users
}
