package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub owns the shared realtime state: the presence registry, the room router,
// and the set of all open connections. Locks cover only map mutation; no lock
// is ever held across store I/O or event delivery.
type Hub struct {
	presence *Presence
	rooms    *Rooms
	log      *zerolog.Logger

	mu    sync.Mutex
	conns map[*Client]struct{}
}

// NewHub constructs a hub with empty registries.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		presence: NewPresence(),
		rooms:    NewRooms(),
		log:      logger,
		conns:    make(map[*Client]struct{}),
	}
}

// Presence exposes the online-user registry.
func (h *Hub) Presence() *Presence { return h.presence }

// Rooms exposes the room router.
func (h *Hub) Rooms() *Rooms { return h.rooms }

// Attach tracks an open connection for global broadcasts. Connections are
// attached whether or not they ever authenticate.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Detach forgets a connection. Idempotent.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// BroadcastPresence pushes the full online-user snapshot to every open
// connection, not just room members: presence is global, not per-conversation.
func (h *Hub) BroadcastPresence() {
	users := h.presence.Snapshot()

	h.mu.Lock()
	targets := make([]*Client, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	ev := Event{Kind: EventUpdateUsers, Users: users}
	for _, c := range targets {
		c.Send(ev)
	}
	h.log.Debug().Int("online", len(users)).Int("connections", len(targets)).Msg("presence broadcast")
}

// BroadcastRoom delivers an event to every member of the room. A non-nil
// exclude handle is skipped (self-exclusive emit).
func (h *Hub) BroadcastRoom(roomID string, ev Event, exclude *Client) {
	for _, c := range h.rooms.Members(roomID) {
		if c == exclude {
			continue
		}
		c.Send(ev)
	}
}
