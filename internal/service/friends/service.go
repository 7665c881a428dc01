package friends

import (
	"context"
	"errors"
	"fmt"

	"github.com/shubhip58/Chattify/internal/store"
)

// Common errors for friend operations.
var (
	ErrCannotFriendSelf     = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends       = errors.New("already friends")
	ErrRequestAlreadyExists = errors.New("friend request already exists")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrUserNotFound         = errors.New("user not found")
)

// Service provides friend management business logic.
type Service struct {
	store store.Store
}

// New creates a new friends service.
func New(st store.Store) *Service {
	return &Service{store: st}
}

// SendRequest sends a friend request from one user to another.
func (s *Service) SendRequest(ctx context.Context, fromUserID, toUserID int64) (*store.FriendRequest, error) {
	if fromUserID == toUserID {
		return nil, ErrCannotFriendSelf
	}

	if _, err := s.store.GetUserByID(ctx, toUserID); err != nil {
		return nil, ErrUserNotFound
	}

	friends, err := s.store.IsFriend(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	// A request in either direction blocks a duplicate.
	if _, err := s.store.GetFriendRequest(ctx, fromUserID, toUserID); err == nil {
		return nil, ErrRequestAlreadyExists
	}
	if _, err := s.store.GetFriendRequest(ctx, toUserID, fromUserID); err == nil {
		return nil, ErrRequestAlreadyExists
	}

	req, err := s.store.CreateFriendRequest(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	return req, nil
}

// AcceptRequest accepts a pending friend request addressed to userID.
func (s *Service) AcceptRequest(ctx context.Context, userID, fromUserID int64) error {
	if err := s.store.AcceptFriendRequest(ctx, fromUserID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("accept request: %w", err)
	}
	return nil
}

// ListFriends returns the user's accepted friends as user records.
func (s *Service) ListFriends(ctx context.Context, userID int64) ([]*store.User, error) {
	edges, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	friends := make([]*store.User, 0, len(edges))
	for _, edge := range edges {
		otherID := edge.SenderID
		if otherID == userID {
			otherID = edge.ReceiverID
		}
		user, err := s.store.GetUserByID(ctx, otherID)
		if err != nil {
			continue
		}
		friends = append(friends, user)
	}

	return friends, nil
}

// ListPendingRequests returns the users who sent userID a pending request.
func (s *Service) ListPendingRequests(ctx context.Context, userID int64) ([]*store.User, error) {
	reqs, err := s.store.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	senders := make([]*store.User, 0, len(reqs))
	for _, req := range reqs {
		user, err := s.store.GetUserByID(ctx, req.SenderID)
		if err != nil {
			continue
		}
		senders = append(senders, user)
	}

	return senders, nil
}

// BrowseUsers returns users the given user could befriend: everyone except
// themselves, their friends, and anyone already involved in a request with
// them in either direction.
func (s *Service) BrowseUsers(ctx context.Context, userID int64) ([]*store.User, error) {
	all, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	excluded := map[int64]struct{}{userID: {}}

	sent, err := s.store.ListSentRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	for _, req := range sent {
		excluded[req.ReceiverID] = struct{}{}
	}

	pending, err := s.store.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	for _, req := range pending {
		excluded[req.SenderID] = struct{}{}
	}

	edges, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	for _, edge := range edges {
		excluded[edge.SenderID] = struct{}{}
		excluded[edge.ReceiverID] = struct{}{}
	}

	users := make([]*store.User, 0, len(all))
	for _, user := range all {
		if _, skip := excluded[user.ID]; skip {
			continue
		}
		users = append(users, user)
	}

	return users, nil
}
