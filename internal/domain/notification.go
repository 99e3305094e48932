package domain

import "time"

type NotificationKind string

const (
	NotifyMessage NotificationKind = "message"
	NotifyFile    NotificationKind = "file"
	NotifyTyping  NotificationKind = "typing"
	NotifyOnline  NotificationKind = "online"
	NotifyOffline NotificationKind = "offline"
)

type Notification struct {
	ID        int64            `db:"id"`
	UserID    int64            `db:"user_id"`
	SenderID  *int64           `db:"sender_id"`
	Kind      NotificationKind `db:"notification_type"`
	Text      string           `db:"message"`
	IsRead    bool             `db:"is_read"`
	ReadAt    *time.Time       `db:"read_at"`
	MessageID *int64           `db:"related_message_id"`
	CreatedAt time.Time        `db:"created_at"`
}
