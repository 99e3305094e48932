package domain

import (
	"strings"
	"time"
)

type MessageKind string

const (
	KindText   MessageKind = "text"
	KindFile   MessageKind = "file"
	KindImage  MessageKind = "image"
	KindAudio  MessageKind = "audio"
	KindVideo  MessageKind = "video"
	KindSystem MessageKind = "system"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindFile, KindImage, KindAudio, KindVideo, KindSystem:
		return true
	}
	return false
}

type Message struct {
	ID         int64       `db:"id"`
	SenderID   int64       `db:"sender_id"`
	ReceiverID int64       `db:"receiver_id"`
	Body       *string     `db:"message"`
	Kind       MessageKind `db:"message_type"`

	FileURL  *string `db:"file_url"`
	FileName *string `db:"file_name"`
	FileSize *int64  `db:"file_size"`
	FileType *string `db:"file_type"`

	IsRead      bool       `db:"is_read"`
	ReadAt      *time.Time `db:"read_at"`
	IsDelivered bool       `db:"is_delivered"`
	DeliveredAt *time.Time `db:"delivered_at"`
	IsEdited    bool       `db:"is_edited"`
	IsDeleted   bool       `db:"is_deleted"`
	DeletedAt   *time.Time `db:"deleted_at"`

	ReplyTo   *int64    `db:"reply_to"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasContent reports whether the message carries a body or an attachment.
// A message with neither is invalid and must never be persisted.
func (m *Message) HasContent() bool {
	if m.Body != nil && strings.TrimSpace(*m.Body) != "" {
		return true
	}
	return m.FileURL != nil && *m.FileURL != ""
}
