package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bkbimal250/chat-service/internal/domain"
	"github.com/bkbimal250/chat-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type TokenValidator interface {
	Validate(token string) (int64, error)
}

type UserSvc interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type Presence interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64) error
}

type Server struct {
	upgrader   websocket.Upgrader
	hub        *Hub
	dispatcher *Dispatcher
	tokens     TokenValidator
	users      UserSvc
	presence   Presence

	pingEvery     time.Duration
	maxFrameBytes int64
}

func NewServer(hub *Hub, dispatcher *Dispatcher, tokens TokenValidator, users UserSvc, presence Presence) *Server {
	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		tokens:     tokens,
		users:      users,
		presence:   presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:     15 * time.Second,
		maxFrameBytes: 1 << 20,
	}
}

func (s *Server) SetPingEvery(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

func (s *Server) SetMaxFrameBytes(n int64) {
	if n > 0 {
		s.maxFrameBytes = n
	}
}

// WS endpoint: GET /ws/chat/{user_id}?token=...
//
// Authentication happens before the upgrade and fails closed: a missing
// or invalid token, an inactive account or an unknown peer means the
// socket never joins a room and no error frame is sent.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	uid, err := s.tokens.Validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	self, err := s.users.Get(r.Context(), uid)
	if err != nil || !self.IsActive {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}

	peerID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || peerID <= 0 {
		http.Error(w, "invalid peer id", http.StatusBadRequest)
		return
	}
	if _, err := s.users.Get(r.Context(), peerID); err != nil {
		http.Error(w, "unknown peer", http.StatusNotFound)
		return
	}

	roomKey := domain.RoomKey(uid, peerID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, roomKey, uid, peerID)

	if err := s.presence.SetOnline(r.Context(), uid); err != nil {
		slog.Debug("presence set online failed", "user", uid, "err", err)
	}

	s.hub.Add(c)
	metrics.ConnectionsActive.Inc()
	slog.Info("ws connected", "room", roomKey, "user", uid, "peer", peerID)

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	s.hub.Remove(c)
	metrics.ConnectionsActive.Dec()

	if err := s.presence.SetOffline(context.WithoutCancel(r.Context()), uid); err != nil {
		slog.Debug("presence set offline failed", "user", uid, "err", err)
	}

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", roomKey, "user", uid, "err", err)
	}
	slog.Info("ws disconnected", "room", roomKey, "user", uid)
}

// readLoop processes inbound frames strictly in arrival order; there is
// exactly one of these per connection, so two frames from the same
// socket are never handled concurrently.
func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.maxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		_ = s.presence.SetOnline(ctx, c.userID)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var evt InboundEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			// Liberal-input policy: a client bug must not cost the
			// session, so malformed frames are dropped silently.
			metrics.DroppedFramesTotal.WithLabelValues("malformed").Inc()
			continue
		}

		switch evt.Type {
		case TypeMessage:
			s.dispatcher.HandleMessage(ctx, c.userID, c.peerID, c.room, evt)
		case TypeTyping:
			s.dispatcher.HandleTyping(c.userID, c.room, evt)
		case TypeReadReceipt:
			s.dispatcher.HandleReadReceipt(ctx, c.userID, c.room, evt)
		default:
			metrics.DroppedFramesTotal.WithLabelValues("unknown_type").Inc()
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}
