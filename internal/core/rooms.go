package core

import (
	"strconv"
	"sync"
)

// RoomID derives the conversation key for a pair of users. Both participants
// compute the same id independently, so the ordering must be canonical:
// smaller id first, joined by an underscore. This is a compatibility contract
// with clients that compute room ids themselves.
func RoomID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "_" + strconv.FormatInt(b, 10)
}

// Rooms routes conversation ids to the connections currently joined to them.
// Empty rooms are pruned on leave so a long-running process does not
// accumulate dead entries.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]struct{}
}

// NewRooms constructs an empty router.
func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds the handle to the room. Idempotent: re-joining is a no-op.
// Returns true if the handle was newly added.
func (r *Rooms) Join(roomID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[roomID] = members
	}
	if _, exists := members[c]; exists {
		return false
	}
	members[c] = struct{}{}
	return true
}

// Leave removes the handle from the room, deleting the room once empty.
// Leaving a room the handle is not in is a no-op.
func (r *Rooms) Leave(roomID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	if _, exists := members[c]; !exists {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
	return true
}

// Members returns a copy of the room's current membership.
func (r *Rooms) Members(roomID string) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[roomID]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// Len returns the number of live rooms.
func (r *Rooms) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
