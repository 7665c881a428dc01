package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shubhip58/Chattify/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, name, email, username string) *store.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), name, email, username, "hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice A", "alice@example.com", "alice")

	byID, err := s.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" || byID.Email != "alice@example.com" || byID.Name != "Alice A" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	if _, err := s.GetUserByUsername(ctx, "alice"); err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("get by email: %v", err)
	}

	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Duplicate email and username are rejected by the schema.
	if _, err := s.CreateUser(ctx, "Other", "alice@example.com", "other", "hash"); err == nil {
		t.Fatalf("expected duplicate email to fail")
	}
	if _, err := s.CreateUser(ctx, "Other", "other@example.com", "alice", "hash"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}

	seedUser(t, s, "Bob B", "bob@example.com", "bob")
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestMessagesAppendAndConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice@example.com", "alice")
	bob := seedUser(t, s, "Bob", "bob@example.com", "bob")
	carol := seedUser(t, s, "Carol", "carol@example.com", "carol")

	first, err := s.AppendMessage(ctx, alice.ID, bob.ID, "hi bob")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := s.AppendMessage(ctx, bob.ID, alice.ID, "hi alice")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("message ids must be monotonic: %d then %d", first.ID, second.ID)
	}

	// Unrelated conversation must not bleed in.
	if _, err := s.AppendMessage(ctx, alice.ID, carol.ID, "hi carol"); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Both orderings of the pair return the same conversation.
	for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		msgs, err := s.ListConversation(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("list conversation: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].Content != "hi bob" || msgs[1].Content != "hi alice" {
			t.Fatalf("conversation out of order: %+v", msgs)
		}
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice@example.com", "alice")
	bob := seedUser(t, s, "Bob", "bob@example.com", "bob")

	if _, err := s.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("create request: %v", err)
	}

	pending, err := s.ListPendingRequests(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].SenderID != alice.ID {
		t.Fatalf("unexpected pending requests: %+v", pending)
	}

	if ok, _ := s.IsFriend(ctx, alice.ID, bob.ID); ok {
		t.Fatalf("pending request must not count as friendship")
	}

	if err := s.AcceptFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Friendship is bidirectional once accepted.
	for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		ok, err := s.IsFriend(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("is friend: %v", err)
		}
		if !ok {
			t.Fatalf("expected %d and %d to be friends", pair[0], pair[1])
		}
	}

	edges, err := s.ListFriends(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list friends: %v", err)
	}
	if len(edges) != 1 || !edges[0].Accepted {
		t.Fatalf("unexpected friend edges: %+v", edges)
	}

	remaining, err := s.ListPendingRequests(ctx, bob.ID)
	if len(mustList(t, remaining, err)) != 0 {
		t.Fatalf("accepted request must leave the pending list")
	}

	// Accepting twice, or accepting a request that never existed, is ErrNotFound.
	if err := s.AcceptFriendRequest(ctx, alice.ID, bob.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double accept, got %v", err)
	}
	if err := s.AcceptFriendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown request, got %v", err)
	}
}

func mustList(t *testing.T, reqs []*store.FriendRequest, err error) []*store.FriendRequest {
	t.Helper()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return reqs
}
