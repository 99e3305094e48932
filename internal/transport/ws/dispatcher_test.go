package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bkbimal250/chat-service/internal/domain"
	"github.com/bkbimal250/chat-service/internal/service"
)

type fakeChatSvc struct {
	mu        sync.Mutex
	saved     []service.SaveMessageInput
	saveErr   error
	nextID    int64
	markIDs   []int64
	markRecv  int64
	markCount int64
	markErr   error
}

func (f *fakeChatSvc) SaveMessage(ctx context.Context, in service.SaveMessageInput) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Body == "" && in.FileURL == "" {
		return nil, domain.ErrEmptyMessage
	}
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, in)
	f.nextID++
	kind := in.Kind
	if !kind.Valid() {
		kind = domain.KindText
	}
	m := &domain.Message{
		ID:         f.nextID,
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Kind:       kind,
		ReplyTo:    in.ReplyTo,
		CreatedAt:  time.Now(),
	}
	if in.Body != "" {
		body := in.Body
		m.Body = &body
	}
	if in.FileURL != "" {
		url := in.FileURL
		m.FileURL = &url
	}
	return m, nil
}

func (f *fakeChatSvc) MarkRead(ctx context.Context, ids []int64, receiverID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return 0, f.markErr
	}
	f.markIDs = append([]int64(nil), ids...)
	f.markRecv = receiverID
	return f.markCount, nil
}

func (f *fakeChatSvc) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []*domain.Message
	err      error
	done     chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 8)}
}

func (f *fakeNotifier) NotifyMessage(ctx context.Context, m *domain.Message) (*domain.Notification, error) {
	f.mu.Lock()
	f.notified = append(f.notified, m)
	err := f.err
	f.mu.Unlock()
	f.done <- struct{}{}
	if err != nil {
		return nil, err
	}
	return &domain.Notification{
		UserID:    m.ReceiverID,
		SenderID:  &m.SenderID,
		Kind:      domain.NotifyMessage,
		MessageID: &m.ID,
	}, nil
}

func (f *fakeNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	rooms  []string
	events []any
}

func (f *fakeBroadcaster) Broadcast(roomKey string, evt any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, roomKey)
	f.events = append(f.events, evt)
}

func (f *fakeBroadcaster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeBroadcaster) last() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

func TestDispatcher_HandleMessage(t *testing.T) {
	chat := &fakeChatSvc{}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleMessage(context.Background(), 1, 2, "dm_1_2", InboundEvent{
		Type:    TypeMessage,
		Message: "hi",
	})

	if chat.savedCount() != 1 {
		t.Fatalf("expected 1 persisted message, got %d", chat.savedCount())
	}
	if bus.count() != 1 {
		t.Fatalf("expected 1 broadcast, got %d", bus.count())
	}
	evt, ok := bus.last().(MessageEvent)
	if !ok {
		t.Fatalf("broadcast event type %T, want MessageEvent", bus.last())
	}
	if evt.Type != TypeMessage || evt.ID != 1 || evt.SenderID != 1 || evt.ReceiverID != 2 || evt.Message != "hi" {
		t.Fatalf("unexpected event: %+v", evt)
	}

	notify.wait(t)
	notify.mu.Lock()
	defer notify.mu.Unlock()
	if len(notify.notified) != 1 || notify.notified[0].ID != evt.ID {
		t.Fatalf("expected 1 notification for message %d, got %+v", evt.ID, notify.notified)
	}
}

func TestDispatcher_HandleMessage_EmptyDropped(t *testing.T) {
	chat := &fakeChatSvc{}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleMessage(context.Background(), 1, 2, "dm_1_2", InboundEvent{Type: TypeMessage})

	if chat.savedCount() != 0 {
		t.Fatalf("empty message must not persist, got %d", chat.savedCount())
	}
	if bus.count() != 0 {
		t.Fatalf("empty message must not broadcast, got %d", bus.count())
	}
	select {
	case <-notify.done:
		t.Fatal("empty message must not create a notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcher_HandleMessage_StoreFailure(t *testing.T) {
	chat := &fakeChatSvc{saveErr: errors.New("store down")}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleMessage(context.Background(), 1, 2, "dm_1_2", InboundEvent{
		Type:    TypeMessage,
		Message: "hi",
	})

	if bus.count() != 0 {
		t.Fatalf("failed persist must not broadcast, got %d", bus.count())
	}
}

func TestDispatcher_HandleMessage_FileOnly(t *testing.T) {
	chat := &fakeChatSvc{}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleMessage(context.Background(), 1, 2, "dm_1_2", InboundEvent{
		Type:        TypeMessage,
		FileURL:     "https://files.example.com/a.png",
		MessageType: "image",
	})

	if chat.savedCount() != 1 {
		t.Fatalf("file-only message should persist, got %d", chat.savedCount())
	}
	evt := bus.last().(MessageEvent)
	if evt.FileURL == nil || *evt.FileURL != "https://files.example.com/a.png" {
		t.Fatalf("file url missing from event: %+v", evt)
	}
	if evt.MessageType != "image" {
		t.Fatalf("kind = %q, want image", evt.MessageType)
	}
	notify.wait(t)
}

func TestDispatcher_HandleTyping(t *testing.T) {
	chat := &fakeChatSvc{}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleTyping(1, "dm_1_2", InboundEvent{Type: TypeTyping, IsTyping: true})
	d.HandleTyping(1, "dm_1_2", InboundEvent{Type: TypeTyping, IsTyping: true})

	if chat.savedCount() != 0 {
		t.Fatalf("typing must not persist, got %d", chat.savedCount())
	}
	// no de-duplication: identical values rebroadcast
	if bus.count() != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", bus.count())
	}
	evt := bus.last().(TypingEvent)
	if evt.SenderID != 1 || !evt.IsTyping {
		t.Fatalf("unexpected typing event: %+v", evt)
	}
}

func TestDispatcher_HandleReadReceipt(t *testing.T) {
	// store reports only one row updated (the other id belongs to
	// someone else) but the broadcast echoes the full list
	chat := &fakeChatSvc{markCount: 1}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleReadReceipt(context.Background(), 2, "dm_1_2", InboundEvent{
		Type:       TypeReadReceipt,
		MessageIDs: []int64{10, 11},
	})

	if chat.markRecv != 2 {
		t.Fatalf("receiver = %d, want 2", chat.markRecv)
	}
	if len(chat.markIDs) != 2 {
		t.Fatalf("store should see both ids, got %v", chat.markIDs)
	}
	evt := bus.last().(ReadReceiptEvent)
	if evt.SenderID != 2 || len(evt.MessageIDs) != 2 {
		t.Fatalf("unexpected read receipt: %+v", evt)
	}
}

func TestDispatcher_HandleReadReceipt_Empty(t *testing.T) {
	chat := &fakeChatSvc{}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleReadReceipt(context.Background(), 2, "dm_1_2", InboundEvent{Type: TypeReadReceipt})

	if bus.count() != 0 {
		t.Fatalf("empty id list must not broadcast, got %d", bus.count())
	}
}

func TestDispatcher_HandleReadReceipt_StoreFailure(t *testing.T) {
	chat := &fakeChatSvc{markErr: errors.New("store down")}
	notify := newFakeNotifier()
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleReadReceipt(context.Background(), 2, "dm_1_2", InboundEvent{
		Type:       TypeReadReceipt,
		MessageIDs: []int64{10},
	})

	if bus.count() != 0 {
		t.Fatalf("failed update must not broadcast, got %d", bus.count())
	}
}

func TestDispatcher_NotificationFailureDoesNotBlockBroadcast(t *testing.T) {
	chat := &fakeChatSvc{}
	notify := newFakeNotifier()
	notify.err = errors.New("notification store down")
	bus := &fakeBroadcaster{}
	d := NewDispatcher(chat, notify, bus)

	d.HandleMessage(context.Background(), 1, 2, "dm_1_2", InboundEvent{
		Type:    TypeMessage,
		Message: "hi",
	})

	if bus.count() != 1 {
		t.Fatalf("broadcast must happen regardless of notification failure, got %d", bus.count())
	}
	notify.wait(t)
}
