package ws

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bkbimal250/chat-service/internal/domain"
	"github.com/bkbimal250/chat-service/internal/metrics"
	"github.com/bkbimal250/chat-service/internal/service"
)

type ChatSvc interface {
	SaveMessage(ctx context.Context, in service.SaveMessageInput) (*domain.Message, error)
	MarkRead(ctx context.Context, ids []int64, receiverID int64) (int64, error)
}

type Notifier interface {
	NotifyMessage(ctx context.Context, m *domain.Message) (*domain.Notification, error)
}

type Broadcaster interface {
	Broadcast(roomKey string, evt any)
}

// Dispatcher turns validated inbound frames into store writes and room
// broadcasts. It holds no per-connection state; the caller supplies the
// sender, peer and room on every call.
type Dispatcher struct {
	chat   ChatSvc
	notify Notifier
	hub    Broadcaster

	notifyTimeout time.Duration
}

func NewDispatcher(chat ChatSvc, notify Notifier, hub Broadcaster) *Dispatcher {
	return &Dispatcher{
		chat:          chat,
		notify:        notify,
		hub:           hub,
		notifyTimeout: 10 * time.Second,
	}
}

// HandleMessage persists an inbound chat message and broadcasts it to
// the room. An empty message with no attachment is dropped without a
// broadcast and without surfacing an error to the sender. The write is
// detached from the socket context: a connection closing mid-write must
// not abort a persist that already started.
func (d *Dispatcher) HandleMessage(ctx context.Context, senderID, receiverID int64, roomKey string, in InboundEvent) {
	msg, err := d.chat.SaveMessage(context.WithoutCancel(ctx), service.SaveMessageInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       in.Message,
		Kind:       domain.MessageKind(in.MessageType),
		FileURL:    in.FileURL,
		FileName:   in.FileName,
		FileSize:   in.FileSize,
		FileType:   in.FileType,
		ReplyTo:    in.ReplyToID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) || errors.Is(err, domain.ErrMessageTooLong) {
			metrics.DroppedFramesTotal.WithLabelValues("validation").Inc()
			return
		}
		slog.Warn("chat save failed", "room", roomKey, "sender", senderID, "err", err)
		return
	}

	out := MessageEvent{
		Type:        TypeMessage,
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		ReceiverID:  msg.ReceiverID,
		MessageType: string(msg.Kind),
		FileURL:     msg.FileURL,
		FileName:    msg.FileName,
		FileSize:    msg.FileSize,
		FileType:    msg.FileType,
		Timestamp:   msg.CreatedAt.Format(time.RFC3339Nano),
		ReplyToID:   msg.ReplyTo,
	}
	if msg.Body != nil {
		out.Message = *msg.Body
	}
	d.hub.Broadcast(roomKey, out)
	metrics.MessagesTotal.WithLabelValues(string(msg.Kind)).Inc()

	// Post-commit side effect. Runs on its own context so a notification
	// store hiccup can neither block nor roll back the broadcast.
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.notifyTimeout)
		defer cancel()
		if _, err := d.notify.NotifyMessage(nctx, msg); err != nil {
			slog.Warn("notification create failed", "message", msg.ID, "receiver", msg.ReceiverID, "err", err)
		}
	}()
}

// HandleTyping relays a typing indicator. Nothing is persisted and
// repeated identical values are rebroadcast as-is.
func (d *Dispatcher) HandleTyping(senderID int64, roomKey string, in InboundEvent) {
	d.hub.Broadcast(roomKey, TypingEvent{
		Type:     TypeTyping,
		SenderID: senderID,
		IsTyping: in.IsTyping,
	})
	metrics.TypingEventsTotal.Inc()
}

// HandleReadReceipt marks the listed messages read for senderID (the
// acting user). The store only touches rows actually addressed to them,
// but the broadcast echoes the full requested list.
func (d *Dispatcher) HandleReadReceipt(ctx context.Context, senderID int64, roomKey string, in InboundEvent) {
	if len(in.MessageIDs) == 0 {
		return
	}

	if _, err := d.chat.MarkRead(context.WithoutCancel(ctx), in.MessageIDs, senderID); err != nil {
		slog.Warn("read receipt update failed", "room", roomKey, "user", senderID, "err", err)
		return
	}

	d.hub.Broadcast(roomKey, ReadReceiptEvent{
		Type:       TypeReadReceipt,
		SenderID:   senderID,
		MessageIDs: in.MessageIDs,
	})
	metrics.ReadReceiptsTotal.Inc()
}
