package friends

import (
	"context"
	"errors"
	"testing"

	"github.com/shubhip58/Chattify/internal/store"
	"github.com/shubhip58/Chattify/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return New(st), st
}

func seedUser(t *testing.T, st store.UserStore, username string) *store.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), username, username+"@example.com", username, "hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestRequestAcceptFlow(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}

	// Duplicate in either direction is rejected.
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); !errors.Is(err, ErrRequestAlreadyExists) {
		t.Fatalf("expected ErrRequestAlreadyExists, got %v", err)
	}
	if _, err := svc.SendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, ErrRequestAlreadyExists) {
		t.Fatalf("expected ErrRequestAlreadyExists reversed, got %v", err)
	}

	pending, err := svc.ListPendingRequests(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Username != "alice" {
		t.Fatalf("unexpected pending senders: %+v", pending)
	}

	if err := svc.AcceptRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	for _, uid := range []int64{alice.ID, bob.ID} {
		friendsList, err := svc.ListFriends(ctx, uid)
		if err != nil {
			t.Fatalf("list friends: %v", err)
		}
		if len(friendsList) != 1 {
			t.Fatalf("expected one friend for user %d, got %d", uid, len(friendsList))
		}
	}

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("expected ErrAlreadyFriends, got %v", err)
	}
}

func TestRequestValidation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")

	if _, err := svc.SendRequest(ctx, alice.ID, alice.ID); !errors.Is(err, ErrCannotFriendSelf) {
		t.Fatalf("expected ErrCannotFriendSelf, got %v", err)
	}
	if _, err := svc.SendRequest(ctx, alice.ID, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.AcceptRequest(ctx, alice.ID, 999); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestBrowseUsersExcludesSelfFriendsAndRequests(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")
	dave := seedUser(t, st, "dave")
	seedUser(t, st, "eve")

	// bob: accepted friend; carol: request sent by alice; dave: request to alice.
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}
	if err := svc.AcceptRequest(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.SendRequest(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}
	if _, err := svc.SendRequest(ctx, dave.ID, alice.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}

	users, err := svc.BrowseUsers(ctx, alice.ID)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(users) != 1 || users[0].Username != "eve" {
		t.Fatalf("expected only eve to remain, got %+v", users)
	}
}
