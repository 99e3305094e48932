package ws

import (
	"sync"
)

type Conn interface {
	Send(evt any) error
	Close() error
	UserID() int64
	Room() string
}

// Hub maps room keys to the set of live connections in that room. Each
// room carries its own lock, so a fan-out in one room never blocks a
// join or leave in another; the outer mutex only guards the room map.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu      sync.RWMutex
	members map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// Add registers the connection in its room. Once Add returns the
// connection receives every subsequent broadcast to that room.
//
// The map lock is held across the member insert: releasing it first
// would let a concurrent Remove of the room's last member drop the
// room entry, leaving the connection registered in an orphan that
// Broadcast can no longer reach.
func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	r, ok := h.rooms[c.Room()]
	if !ok {
		r = &room{members: make(map[Conn]struct{})}
		h.rooms[c.Room()] = r
	}
	r.mu.Lock()
	r.members[c] = struct{}{}
	r.mu.Unlock()
	h.mu.Unlock()
}

// Remove is idempotent; removing an absent connection is a no-op.
func (h *Hub) Remove(c Conn) {
	h.mu.RLock()
	r := h.rooms[c.Room()]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	delete(r.members, c)
	empty := len(r.members) == 0
	r.mu.Unlock()

	if !empty {
		return
	}

	// Drop the empty room. Re-check under both locks: a concurrent Add
	// may have repopulated it.
	h.mu.Lock()
	if cur, ok := h.rooms[c.Room()]; ok && cur == r {
		r.mu.Lock()
		if len(r.members) == 0 {
			delete(h.rooms, c.Room())
		}
		r.mu.Unlock()
	}
	h.mu.Unlock()
}

// Broadcast delivers evt to every member of the room, best-effort. The
// member list is snapshotted so sends happen outside any lock.
func (h *Hub) Broadcast(roomKey string, evt any) {
	h.mu.RLock()
	r := h.rooms[roomKey]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.RLock()
	conns := make([]Conn, 0, len(r.members))
	for c := range r.members {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		_ = c.Send(evt)
	}
}
