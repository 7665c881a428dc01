package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shubhip58/Chattify/internal/log"
	"github.com/shubhip58/Chattify/internal/store"
)

type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*store.Message
	failNext error
}

func (f *fakeMessageStore) AppendMessage(_ context.Context, senderID, receiverID int64, content string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}

	msg := &store.Message{
		ID:         int64(len(f.messages) + 1),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeMessageStore) ListConversation(_ context.Context, userA, userB int64) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*store.Message
	for _, msg := range f.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) || (msg.SenderID == userB && msg.ReceiverID == userA) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestSession(hub *Hub, messages store.MessageStore, id string) *Session {
	return NewSession(hub, NewClient(id), messages, log.Nop())
}

func countEvents(ch <-chan Event, kind EventKind) int {
	n := 0
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return n
			}
			if ev.Kind == kind {
				n++
			}
		default:
			return n
		}
	}
}

func TestSessionScenarioAliceAndBob(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(log.Nop())
	messages := &fakeMessageStore{}

	alice := newTestSession(hub, messages, "conn-a")
	bob := newTestSession(hub, messages, "conn-b")

	alice.Connect(&Identity{UserID: 1, Name: "alice"})
	ev := mustEvent(t, alice.Client().Events, EventUpdateUsers)
	if len(ev.Users) != 1 || ev.Users[1] != "alice" {
		t.Fatalf("unexpected snapshot after alice connects: %v", ev.Users)
	}

	bob.Connect(&Identity{UserID: 2, Name: "bob"})
	ev = mustEvent(t, alice.Client().Events, EventUpdateUsers)
	if len(ev.Users) != 2 || ev.Users[2] != "bob" {
		t.Fatalf("unexpected snapshot after bob connects: %v", ev.Users)
	}

	room := RoomID(1, 2)
	alice.Join(room)
	bob.Join(room)

	drainEvents(alice.Client().Events)
	drainEvents(bob.Client().Events)

	// Message broadcast is self-inclusive: the sender's UI relies on the echo.
	if err := alice.SendMessage(ctx, room, "hi", 1, 2); err != nil {
		t.Fatalf("send message: %v", err)
	}
	for _, s := range []*Session{alice, bob} {
		msgEv := mustEvent(t, s.Client().Events, EventReceiveMessage)
		if msgEv.Content != "hi" || msgEv.SenderID != 1 {
			t.Fatalf("unexpected receive_message for %s: %+v", s.Client().ID, msgEv)
		}
	}
	if messages.count() != 1 {
		t.Fatalf("expected exactly one persisted message, got %d", messages.count())
	}

	// Typing is self-exclusive: the typist must never see its own echo.
	bob.Typing(room, "bob")
	typingEv := mustEvent(t, alice.Client().Events, EventUserTyping)
	if typingEv.Username != "bob" || typingEv.Room != room {
		t.Fatalf("unexpected user_typing: %+v", typingEv)
	}
	noEvent(t, bob.Client().Events, EventUserTyping)

	bob.StopTyping(room)
	mustEvent(t, alice.Client().Events, EventStopTyping)
	noEvent(t, bob.Client().Events, EventStopTyping)

	// Bob disconnects: presence and room membership are cleaned up and alice
	// sees exactly one presence update.
	drainEvents(alice.Client().Events)
	bob.Disconnect()

	if n := countEvents(alice.Client().Events, EventUpdateUsers); n != 1 {
		t.Fatalf("expected exactly one presence broadcast on disconnect, got %d", n)
	}
	if snap := hub.Presence().Snapshot(); len(snap) != 1 || snap[1] != "alice" {
		t.Fatalf("unexpected snapshot after bob disconnects: %v", snap)
	}
	for _, m := range hub.Rooms().Members(room) {
		if m == bob.Client() {
			t.Fatalf("room must not include a disconnected handle")
		}
	}
}

func TestSessionAnonymousConnectionHasNoPresence(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(log.Nop())
	messages := &fakeMessageStore{}

	anon := newTestSession(hub, messages, "conn-anon")
	anon.Connect(nil)

	if snap := hub.Presence().Snapshot(); len(snap) != 0 {
		t.Fatalf("anonymous connection must not register presence: %v", snap)
	}

	anon.Join("1_2")
	ev := mustEvent(t, anon.Client().Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeAuthRequired {
		t.Fatalf("expected auth_required on anonymous join, got %+v", ev)
	}
	if len(hub.Rooms().Members("1_2")) != 0 {
		t.Fatalf("anonymous join must not create a membership")
	}

	if err := anon.SendMessage(ctx, "1_2", "hi", 1, 2); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if messages.count() != 0 {
		t.Fatalf("nothing should be persisted for anonymous sends")
	}

	// Anonymous connections still receive global presence broadcasts.
	other := newTestSession(hub, messages, "conn-u")
	other.Connect(&Identity{UserID: 1, Name: "alice"})
	ev = mustEvent(t, anon.Client().Events, EventUpdateUsers)
	if ev.Users[1] != "alice" {
		t.Fatalf("anonymous connection missed presence broadcast: %v", ev.Users)
	}
}

func TestSessionSendMessageRejectsMalformedIDs(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(log.Nop())
	messages := &fakeMessageStore{}

	alice := newTestSession(hub, messages, "conn-a")
	alice.Connect(&Identity{UserID: 1, Name: "alice"})
	alice.Join("1_2")
	drainEvents(alice.Client().Events)

	if err := alice.SendMessage(ctx, "1_2", "hi", 0, 2); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}

	ev := mustEvent(t, alice.Client().Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request error event, got %+v", ev)
	}
	if messages.count() != 0 {
		t.Fatalf("malformed send must not persist anything")
	}
}

func TestSessionPersistenceFailureAbortsBroadcast(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(log.Nop())
	messages := &fakeMessageStore{failNext: errors.New("disk full")}

	alice := newTestSession(hub, messages, "conn-a")
	bob := newTestSession(hub, messages, "conn-b")
	alice.Connect(&Identity{UserID: 1, Name: "alice"})
	bob.Connect(&Identity{UserID: 2, Name: "bob"})

	room := RoomID(1, 2)
	alice.Join(room)
	bob.Join(room)
	drainEvents(alice.Client().Events)
	drainEvents(bob.Client().Events)

	if err := alice.SendMessage(ctx, room, "hi", 1, 2); !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}

	// The failure surfaces to the sender only; no member sees a broadcast.
	ev := mustEvent(t, alice.Client().Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodePersistenceFailure {
		t.Fatalf("expected persistence_failed error event, got %+v", ev)
	}
	noEvent(t, alice.Client().Events, EventReceiveMessage)
	noEvent(t, bob.Client().Events, EventReceiveMessage)
	noEvent(t, bob.Client().Events, EventError)
}

func TestSessionReconnectReplacesAndSilencesOldHandle(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(log.Nop())
	messages := &fakeMessageStore{}

	room := RoomID(1, 2)

	old := newTestSession(hub, messages, "conn-old")
	old.Connect(&Identity{UserID: 1, Name: "alice"})
	old.Join(room)

	bob := newTestSession(hub, messages, "conn-b")
	bob.Connect(&Identity{UserID: 2, Name: "bob"})
	bob.Join(room)

	// Second connection for the same user replaces, never duplicates.
	fresh := newTestSession(hub, messages, "conn-new")
	fresh.Connect(&Identity{UserID: 1, Name: "alice"})
	fresh.Join(room)

	if !old.Client().Closed() {
		t.Fatalf("superseded handle must be invalidated")
	}
	if snap := hub.Presence().Snapshot(); len(snap) != 2 {
		t.Fatalf("replacement must not duplicate the presence entry: %v", snap)
	}

	drainEvents(fresh.Client().Events)
	if err := bob.SendMessage(ctx, room, "hello again", 2, 1); err != nil {
		t.Fatalf("send message: %v", err)
	}

	msgEv := mustEvent(t, fresh.Client().Events, EventReceiveMessage)
	if msgEv.Content != "hello again" {
		t.Fatalf("unexpected message on fresh handle: %+v", msgEv)
	}

	// The old handle's late disconnect must not evict the fresh session.
	old.Disconnect()
	if snap := hub.Presence().Snapshot(); snap[1] != "alice" {
		t.Fatalf("stale disconnect evicted the replacement: %v", snap)
	}
}

func TestSessionDisconnectCleansUpEverythingOnce(t *testing.T) {
	hub := NewHub(log.Nop())
	messages := &fakeMessageStore{}

	observer := newTestSession(hub, messages, "conn-o")
	observer.Connect(&Identity{UserID: 9, Name: "observer"})

	s := newTestSession(hub, messages, "conn-a")
	s.Connect(&Identity{UserID: 1, Name: "alice"})
	s.Join("1_2")
	s.Join("1_3")

	drainEvents(observer.Client().Events)

	s.Disconnect()
	s.Disconnect() // idempotent

	if len(hub.Rooms().Members("1_2")) != 0 || len(hub.Rooms().Members("1_3")) != 0 {
		t.Fatalf("disconnect must prune all room memberships")
	}
	if snap := hub.Presence().Snapshot(); len(snap) != 1 {
		t.Fatalf("disconnect must deregister presence: %v", snap)
	}
	if n := countEvents(observer.Client().Events, EventUpdateUsers); n != 1 {
		t.Fatalf("expected exactly one presence broadcast, got %d", n)
	}
}
