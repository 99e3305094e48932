package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserItem struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

type MessageItem struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Message    string `json:"message"`
	Kind       string `json:"message_type"`

	FileURL  *string `json:"file_url,omitempty"`
	FileName *string `json:"file_name,omitempty"`
	FileSize *int64  `json:"file_size,omitempty"`
	FileType *string `json:"file_type,omitempty"`

	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	IsEdited  bool       `json:"is_edited"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	ReplyTo   *int64    `json:"reply_to_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ConversationItem struct {
	User          UserItem   `json:"user"`
	LastMessage   *string    `json:"last_message"`
	LastKind      *string    `json:"last_message_type"`
	LastTimestamp *time.Time `json:"last_message_timestamp"`
	UnreadCount   int64      `json:"unread_count"`
	IsSender      bool       `json:"is_sender"`
	IsOnline      bool       `json:"is_online"`
}

type NotificationItem struct {
	ID        int64      `json:"id"`
	SenderID  *int64     `json:"sender_id,omitempty"`
	Kind      string     `json:"notification_type"`
	Text      string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	MessageID *int64     `json:"related_message_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationsListResponse struct {
	Items      []NotificationItem `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type MarkReadRequest struct {
	UserID int64 `json:"user_id"`
}

type EditMessageRequest struct {
	Message string `json:"message"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
