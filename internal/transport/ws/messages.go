package ws

// Event types carried in the `type` discriminator, inbound and outbound.
const (
	TypeMessage     = "message"      // chat message
	TypeTyping      = "typing"       // typing indicator, not persisted
	TypeReadReceipt = "read_receipt" // batch read acknowledgement
)

// InboundEvent is the union of every frame a client may send. Fields
// outside the ones for the given type are ignored.
type InboundEvent struct {
	Type string `json:"type"`

	// type == message
	Message     string `json:"message,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	FileURL     string `json:"file_url,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	FileType    string `json:"file_type,omitempty"`
	ReplyToID   *int64 `json:"reply_to_id,omitempty"`

	// type == typing
	IsTyping bool `json:"is_typing,omitempty"`

	// type == read_receipt
	MessageIDs []int64 `json:"message_ids,omitempty"`
}

type MessageEvent struct {
	Type        string  `json:"type"`
	ID          int64   `json:"id"`
	SenderID    int64   `json:"sender_id"`
	ReceiverID  int64   `json:"receiver_id"`
	Message     string  `json:"message"`
	MessageType string  `json:"message_type"`
	FileURL     *string `json:"file_url,omitempty"`
	FileName    *string `json:"file_name,omitempty"`
	FileSize    *int64  `json:"file_size,omitempty"`
	FileType    *string `json:"file_type,omitempty"`
	Timestamp   string  `json:"timestamp"`
	ReplyToID   *int64  `json:"reply_to_id,omitempty"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	SenderID int64  `json:"sender_id"`
	IsTyping bool   `json:"is_typing"`
}

// ReadReceiptEvent echoes the requested id list as sent, even when some
// ids were excluded from the store update.
type ReadReceiptEvent struct {
	Type       string  `json:"type"`
	SenderID   int64   `json:"sender_id"`
	MessageIDs []int64 `json:"message_ids"`
}
