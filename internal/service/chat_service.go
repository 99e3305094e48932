package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bkbimal250/chat-service/internal/domain"
	"github.com/bkbimal250/chat-service/internal/postgres"
)

const maxMessageLen = 4000

type MessageStore interface {
	Create(ctx context.Context, m *domain.Message) (*domain.Message, error)
	Get(ctx context.Context, id int64) (*domain.Message, error)
	MarkRead(ctx context.Context, ids []int64, receiverID int64) (int64, error)
	MarkConversationRead(ctx context.Context, senderID, receiverID int64) (int64, error)
	History(ctx context.Context, userID, peerID int64) ([]domain.Message, error)
	Edit(ctx context.Context, id int64, body string) (*domain.Message, error)
	SoftDelete(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context, receiverID int64) (int64, error)
	Conversations(ctx context.Context, userID int64) ([]postgres.ConversationRow, error)
}

type UserStore interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type ChatService struct {
	messages MessageStore
	users    UserStore
}

func NewChatService(messages MessageStore, users UserStore) *ChatService {
	return &ChatService{messages: messages, users: users}
}

type SaveMessageInput struct {
	SenderID   int64
	ReceiverID int64
	Body       string
	Kind       domain.MessageKind
	FileURL    string
	FileName   string
	FileSize   int64
	FileType   string
	ReplyTo    *int64
}

// SaveMessage validates and persists an inbound chat message. A message
// must carry a body or a file reference. A reply_to id that does not
// resolve is dropped rather than treated as an error.
func (s *ChatService) SaveMessage(ctx context.Context, in SaveMessageInput) (*domain.Message, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" && in.FileURL == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(body) > maxMessageLen {
		return nil, domain.ErrMessageTooLong
	}

	kind := in.Kind
	if !kind.Valid() {
		if in.FileURL != "" {
			kind = domain.KindFile
		} else {
			kind = domain.KindText
		}
	}

	var replyTo *int64
	if in.ReplyTo != nil {
		if _, err := s.messages.Get(ctx, *in.ReplyTo); err == nil {
			replyTo = in.ReplyTo
		} else if !errors.Is(err, domain.ErrMessageNotFound) {
			slog.Debug("reply_to lookup failed, dropping link", "id", *in.ReplyTo, "err", err)
		}
	}

	m := &domain.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Kind:       kind,
		ReplyTo:    replyTo,
	}
	if body != "" {
		m.Body = &body
	}
	if in.FileURL != "" {
		m.FileURL = &in.FileURL
	}
	if in.FileName != "" {
		m.FileName = &in.FileName
	}
	if in.FileSize > 0 {
		m.FileSize = &in.FileSize
	}
	if in.FileType != "" {
		m.FileType = &in.FileType
	}

	return s.messages.Create(ctx, m)
}

// MarkRead flags the listed messages as read on behalf of receiverID.
// Ids addressed to someone else are silently excluded by the store.
func (s *ChatService) MarkRead(ctx context.Context, ids []int64, receiverID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.messages.MarkRead(ctx, ids, receiverID)
}

func (s *ChatService) MarkConversationRead(ctx context.Context, senderID, receiverID int64) (int64, error) {
	return s.messages.MarkConversationRead(ctx, senderID, receiverID)
}

// History returns the full thread with a peer and marks the peer's
// messages as read, matching the read-on-open behavior of the client.
func (s *ChatService) History(ctx context.Context, userID, peerID int64) ([]domain.Message, error) {
	msgs, err := s.messages.History(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.messages.MarkConversationRead(ctx, peerID, userID); err != nil {
		slog.Warn("mark conversation read failed", "user", userID, "peer", peerID, "err", err)
	}
	return msgs, nil
}

func (s *ChatService) Edit(ctx context.Context, id, actorID int64, body string) (*domain.Message, error) {
	m, err := s.messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.SenderID != actorID {
		return nil, domain.ErrNotSender
	}
	if m.Kind != domain.KindText {
		return nil, domain.ErrNotEditable
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(body) > maxMessageLen {
		return nil, domain.ErrMessageTooLong
	}
	return s.messages.Edit(ctx, id, body)
}

// Delete soft-deletes a message. The body is retained; only the flag and
// timestamp are set.
func (s *ChatService) Delete(ctx context.Context, id, actorID int64) error {
	m, err := s.messages.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != actorID {
		return domain.ErrNotSender
	}
	return s.messages.SoftDelete(ctx, id)
}

func (s *ChatService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.messages.UnreadCount(ctx, userID)
}

type Conversation struct {
	Peer          *domain.User
	LastMessage   *string
	LastKind      *domain.MessageKind
	LastTimestamp *time.Time
	IsSender      bool
	UnreadCount   int64
}

// Conversations lists the user's threads, newest first. Peers that no
// longer resolve in the user store are skipped.
func (s *ChatService) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	rows, err := s.messages.Conversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Conversation, 0, len(rows))
	for _, r := range rows {
		peer, err := s.users.Get(ctx, r.PeerID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, Conversation{
			Peer:          peer,
			LastMessage:   r.LastMessage,
			LastKind:      r.LastKind,
			LastTimestamp: r.LastTimestamp,
			IsSender:      r.IsSender,
			UnreadCount:   r.UnreadCount,
		})
	}
	return out, nil
}
