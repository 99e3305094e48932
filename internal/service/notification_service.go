package service

import (
	"context"

	"github.com/bkbimal250/chat-service/internal/domain"
	"github.com/bkbimal250/chat-service/internal/metrics"
)

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit int, after string) ([]domain.Notification, string, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

type NotificationService struct {
	store NotificationStore
	users UserStore
}

func NewNotificationService(store NotificationStore, users UserStore) *NotificationService {
	return &NotificationService{store: store, users: users}
}

// NotifyMessage records a notification for the receiver of a freshly
// persisted message. Only called post-commit; a failure here never rolls
// back or blocks the message itself.
func (s *NotificationService) NotifyMessage(ctx context.Context, m *domain.Message) (*domain.Notification, error) {
	senderName := "Someone"
	if sender, err := s.users.Get(ctx, m.SenderID); err == nil {
		senderName = sender.FullName()
	}

	n := &domain.Notification{
		UserID:    m.ReceiverID,
		SenderID:  &m.SenderID,
		Kind:      notificationKind(m.Kind),
		Text:      notificationText(m.Kind, senderName),
		MessageID: &m.ID,
	}
	created, err := s.store.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	metrics.NotificationsTotal.Inc()
	return created, nil
}

func notificationKind(kind domain.MessageKind) domain.NotificationKind {
	switch kind {
	case domain.KindFile, domain.KindImage:
		return domain.NotifyFile
	default:
		return domain.NotifyMessage
	}
}

// notificationText picks the copy for a message kind. Only text, file and
// image have dedicated wording; audio, video and system messages fall
// back to the default template.
func notificationText(kind domain.MessageKind, sender string) string {
	switch kind {
	case domain.KindFile:
		return sender + " sent you a file"
	case domain.KindImage:
		return sender + " sent you a photo"
	default:
		return "New message from " + sender
	}
}

func (s *NotificationService) List(ctx context.Context, userID int64, limit int, after string) ([]domain.Notification, string, error) {
	return s.store.ListByUser(ctx, userID, limit, after)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.UnreadCount(ctx, userID)
}
