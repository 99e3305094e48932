package ws

import (
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	userID int64
	room   string
	events []any
}

func (c *fakeConn) Send(evt any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *fakeConn) Close() error  { return nil }
func (c *fakeConn) UserID() int64 { return c.userID }
func (c *fakeConn) Room() string  { return c.room }

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestHub_BroadcastReachesAllMembers(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{userID: 1, room: "dm_1_2"}
	b := &fakeConn{userID: 2, room: "dm_1_2"}
	hub.Add(a)
	hub.Add(b)

	hub.Broadcast("dm_1_2", "hello")

	if a.received() != 1 || b.received() != 1 {
		t.Fatalf("both members should receive: a=%d b=%d", a.received(), b.received())
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{userID: 1, room: "dm_1_2"}
	c := &fakeConn{userID: 3, room: "dm_3_4"}
	hub.Add(a)
	hub.Add(c)

	hub.Broadcast("dm_1_2", "hello")

	if a.received() != 1 {
		t.Fatalf("member of dm_1_2 should receive, got %d", a.received())
	}
	if c.received() != 0 {
		t.Fatalf("member of dm_3_4 must not receive, got %d", c.received())
	}
}

func TestHub_RemoveStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{userID: 1, room: "dm_1_2"}
	b := &fakeConn{userID: 2, room: "dm_1_2"}
	hub.Add(a)
	hub.Add(b)

	hub.Remove(a)
	hub.Broadcast("dm_1_2", "hello")

	if a.received() != 0 {
		t.Fatalf("removed conn must not receive, got %d", a.received())
	}
	if b.received() != 1 {
		t.Fatalf("remaining conn should still receive, got %d", b.received())
	}
}

func TestHub_RemoveIdempotent(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{userID: 1, room: "dm_1_2"}
	hub.Add(a)

	hub.Remove(a)
	hub.Remove(a) // second remove must be a no-op
	hub.Remove(&fakeConn{userID: 9, room: "dm_8_9"})

	hub.Broadcast("dm_1_2", "hello")
	if a.received() != 0 {
		t.Fatalf("removed conn must not receive, got %d", a.received())
	}
}

func TestHub_BroadcastToUnknownRoom(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("dm_404_405", "nobody home") // must not panic
}

func TestHub_ConcurrentJoinLeaveBroadcast(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := "dm_1_2"
			if i%2 == 0 {
				room = "dm_3_4"
			}
			c := &fakeConn{userID: int64(i), room: room}
			hub.Add(c)
			hub.Broadcast(room, i)
			hub.Remove(c)
		}(i)
	}
	wg.Wait()

	// all rooms drained; a final broadcast should reach nobody
	witness := &fakeConn{userID: 100, room: "dm_1_2"}
	hub.Add(witness)
	hub.Broadcast("dm_3_4", "x")
	if witness.received() != 0 {
		t.Fatalf("conn in another room must not receive, got %d", witness.received())
	}
}

// A join racing the removal of the room's last member must still land
// in the live room: once Add returns, broadcasts reach the connection.
func TestHub_AddDuringLastRemoveStillReceives(t *testing.T) {
	hub := NewHub()

	for i := 0; i < 2000; i++ {
		leaving := &fakeConn{userID: 1, room: "dm_1_2"}
		hub.Add(leaving)

		joining := &fakeConn{userID: 2, room: "dm_1_2"}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Remove(leaving)
		}()
		go func() {
			defer wg.Done()
			hub.Add(joining)
		}()
		wg.Wait()

		hub.Broadcast("dm_1_2", "hello")
		if joining.received() != 1 {
			t.Fatalf("iteration %d: joined conn lost membership, received %d", i, joining.received())
		}
		hub.Remove(joining)
	}
}
