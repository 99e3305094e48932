package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn   *websocket.Conn
	room   string
	userID int64
	peerID int64
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, room string, userID, peerID int64) *wsConn {
	return &wsConn{
		conn:   c,
		room:   room,
		userID: userID,
		peerID: peerID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Send serializes writes; gorilla connections allow one writer at a time.
func (c *wsConn) Send(evt any) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(evt)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() int64 { return c.userID }
func (c *wsConn) PeerID() int64 { return c.peerID }
func (c *wsConn) Room() string  { return c.room }
