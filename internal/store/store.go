package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Message represents a persisted direct message between two users.
// Records are immutable once written; ID is server-assigned and monotonic
// within a conversation.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Content    string
	CreatedAt  time.Time
}

// FriendRequest represents a friendship edge. A request starts unaccepted;
// accepting it makes the edge a bidirectional friendship.
type FriendRequest struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Accepted   bool
	CreatedAt  time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, name, email, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage durably records a message and returns it with the
	// server-assigned ID and timestamp.
	AppendMessage(ctx context.Context, senderID, receiverID int64, content string) (*Message, error)

	// ListConversation returns every message exchanged between the two users,
	// in either direction, ordered by ID.
	ListConversation(ctx context.Context, userA, userB int64) ([]*Message, error)
}

// FriendStore handles friendship persistence.
type FriendStore interface {
	// CreateFriendRequest records a new unaccepted request.
	CreateFriendRequest(ctx context.Context, senderID, receiverID int64) (*FriendRequest, error)

	// AcceptFriendRequest marks the pending request from senderID to
	// receiverID as accepted. Returns ErrNotFound if no such pending request.
	AcceptFriendRequest(ctx context.Context, senderID, receiverID int64) error

	// GetFriendRequest retrieves the request sent from senderID to receiverID.
	GetFriendRequest(ctx context.Context, senderID, receiverID int64) (*FriendRequest, error)

	// ListPendingRequests lists unaccepted requests addressed to the user.
	ListPendingRequests(ctx context.Context, userID int64) ([]*FriendRequest, error)

	// ListSentRequests lists requests the user has sent, any status.
	ListSentRequests(ctx context.Context, userID int64) ([]*FriendRequest, error)

	// ListFriends lists accepted friendships involving the user, either direction.
	ListFriends(ctx context.Context, userID int64) ([]*FriendRequest, error)

	// IsFriend reports whether an accepted friendship exists between the two
	// users, in either direction.
	IsFriend(ctx context.Context, userA, userB int64) (bool, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore
	FriendStore

	// Close closes the underlying database connection.
	Close() error
}
