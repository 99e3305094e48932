package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bkbimal250/chat-service/internal/domain"
	"github.com/bkbimal250/chat-service/internal/postgres"
	"github.com/bkbimal250/chat-service/internal/service"
	httpmw "github.com/bkbimal250/chat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type PresenceChecker interface {
	IsOnline(ctx context.Context, userID int64) (bool, error)
}

type Handler struct {
	chatSvc   *service.ChatService
	notifySvc *service.NotificationService
	presence  PresenceChecker
}

func NewHandler(chat *service.ChatService, notify *service.NotificationService, presence PresenceChecker) *Handler {
	return &Handler{
		chatSvc:   chat,
		notifySvc: notify,
		presence:  presence,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toUserItem(u *domain.User) UserItem {
	return UserItem{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName(),
		UserType: u.UserType,
	}
}

func toMessageItem(m *domain.Message) MessageItem {
	item := MessageItem{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Kind:       string(m.Kind),
		FileURL:    m.FileURL,
		FileName:   m.FileName,
		FileSize:   m.FileSize,
		FileType:   m.FileType,
		IsRead:     m.IsRead,
		ReadAt:     m.ReadAt,
		IsEdited:   m.IsEdited,
		IsDeleted:  m.IsDeleted,
		DeletedAt:  m.DeletedAt,
		ReplyTo:    m.ReplyTo,
		Timestamp:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Body != nil {
		item.Message = *m.Body
	}
	return item
}

// GET /chat/conversations
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	convs, err := h.chatSvc.Conversations(r.Context(), userID)
	if err != nil {
		slog.Error("handler.Conversations:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	items := make([]ConversationItem, 0, len(convs))
	for _, c := range convs {
		online, err := h.presence.IsOnline(r.Context(), c.Peer.ID)
		if err != nil {
			// presence is advisory, a redis hiccup must not fail the list
			online = false
		}
		var kind *string
		if c.LastKind != nil {
			k := string(*c.LastKind)
			kind = &k
		}
		items = append(items, ConversationItem{
			User:          toUserItem(c.Peer),
			LastMessage:   c.LastMessage,
			LastKind:      kind,
			LastTimestamp: c.LastTimestamp,
			UnreadCount:   c.UnreadCount,
			IsSender:      c.IsSender,
			IsOnline:      online,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// GET /chat/conversations/{user_id}/messages
// Returns the full thread with the peer and marks their messages read.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	peerID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || peerID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
		return
	}

	msgs, err := h.chatSvc.History(r.Context(), userID, peerID)
	if err != nil {
		slog.Error("handler.Messages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	items := make([]MessageItem, 0, len(msgs))
	for i := range msgs {
		items = append(items, toMessageItem(&msgs[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

// POST /chat/messages/mark-read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	if _, err := h.chatSvc.MarkConversationRead(r.Context(), req.UserID, userID); err != nil {
		slog.Error("handler.MarkRead:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// PATCH /chat/messages/{id}
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	msg, err := h.chatSvc.Edit(r.Context(), id, userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMessageNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "message not found"})
		case errors.Is(err, domain.ErrNotSender):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "you can only edit your own messages"})
		case errors.Is(err, domain.ErrNotEditable):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "only text messages can be edited"})
		case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			slog.Error("handler.EditMessage:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, toMessageItem(msg))
}

// DELETE /chat/messages/{id}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	if err := h.chatSvc.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrMessageNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "message not found"})
		case errors.Is(err, domain.ErrNotSender):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "you can only delete your own messages"})
		default:
			slog.Error("handler.DeleteMessage:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// GET /chat/messages/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	count, err := h.chatSvc.UnreadCount(r.Context(), userID)
	if err != nil {
		slog.Error("handler.UnreadCount:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// GET /chat/notifications?limit=&cursor=
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	list, next, err := h.notifySvc.List(r.Context(), userID, limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.Notifications:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := NotificationsListResponse{Items: make([]NotificationItem, 0, len(list)), NextCursor: next}
	for _, n := range list {
		resp.Items = append(resp.Items, NotificationItem{
			ID:        n.ID,
			SenderID:  n.SenderID,
			Kind:      string(n.Kind),
			Text:      n.Text,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			MessageID: n.MessageID,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /chat/notifications/mark-all-read
func (h *Handler) NotificationsMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	if _, err := h.notifySvc.MarkAllRead(r.Context(), userID); err != nil {
		slog.Error("handler.NotificationsMarkAllRead:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// GET /chat/notifications/unread-count
func (h *Handler) NotificationsUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())

	count, err := h.notifySvc.UnreadCount(r.Context(), userID)
	if err != nil {
		slog.Error("handler.NotificationsUnreadCount:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}
