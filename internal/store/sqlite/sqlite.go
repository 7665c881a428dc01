package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shubhip58/Chattify/internal/store"
)

// schema is applied on open; statements are idempotent so reopening an
// existing database is safe.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id   INTEGER NOT NULL,
	receiver_id INTEGER NOT NULL,
	content     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sender_id) REFERENCES users(id),
	FOREIGN KEY (receiver_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS friend_requests (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id   INTEGER NOT NULL,
	receiver_id INTEGER NOT NULL,
	accepted    BOOLEAN NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (sender_id, receiver_id),
	FOREIGN KEY (sender_id) REFERENCES users(id),
	FOREIGN KEY (receiver_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_pair
	ON messages(sender_id, receiver_id, id);
CREATE INDEX IF NOT EXISTS idx_friend_requests_receiver
	ON friend_requests(receiver_id, accepted);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, username, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (name, email, username, password_hash)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, name, email, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.getUser(ctx, `WHERE username = ?`, username)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*store.User, error) {
	query := `
		SELECT id, name, email, username, password_hash, created_at
		FROM users ` + where

	var user store.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*store.User, error) {
	query := `
		SELECT id, name, email, username, password_hash, created_at
		FROM users
		ORDER BY username
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		var user store.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Username,
			&user.PasswordHash,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// ==== MessageStore implementation ====

// AppendMessage durably records a message.
func (s *SQLiteStore) AppendMessage(ctx context.Context, senderID, receiverID int64, content string) (*store.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, senderID, receiverID, content)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var msg store.Message
	err = s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages WHERE id = ?
	`, id).Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("read back message: %w", err)
	}

	return &msg, nil
}

// ListConversation returns every message between the two users ordered by ID.
func (s *SQLiteStore) ListConversation(ctx context.Context, userA, userB int64) ([]*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// ==== FriendStore implementation ====

// CreateFriendRequest records a new unaccepted request.
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, senderID, receiverID int64) (*store.FriendRequest, error) {
	query := `
		INSERT INTO friend_requests (sender_id, receiver_id, accepted)
		VALUES (?, ?, 0)
	`
	result, err := s.db.ExecContext(ctx, query, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("insert friend request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var req store.FriendRequest
	err = s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, accepted, created_at
		FROM friend_requests WHERE id = ?
	`, id).Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Accepted, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("read back friend request: %w", err)
	}

	return &req, nil
}

// AcceptFriendRequest marks the pending request as accepted.
func (s *SQLiteStore) AcceptFriendRequest(ctx context.Context, senderID, receiverID int64) error {
	query := `
		UPDATE friend_requests
		SET accepted = 1
		WHERE sender_id = ? AND receiver_id = ? AND accepted = 0
	`
	result, err := s.db.ExecContext(ctx, query, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("friend request: %w", store.ErrNotFound)
	}

	return nil
}

// GetFriendRequest retrieves the request sent from senderID to receiverID.
func (s *SQLiteStore) GetFriendRequest(ctx context.Context, senderID, receiverID int64) (*store.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, accepted, created_at
		FROM friend_requests
		WHERE sender_id = ? AND receiver_id = ?
	`
	var req store.FriendRequest
	err := s.db.QueryRowContext(ctx, query, senderID, receiverID).Scan(
		&req.ID, &req.SenderID, &req.ReceiverID, &req.Accepted, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("friend request: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query friend request: %w", err)
	}

	return &req, nil
}

// ListPendingRequests lists unaccepted requests addressed to the user.
func (s *SQLiteStore) ListPendingRequests(ctx context.Context, userID int64) ([]*store.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, accepted, created_at
		FROM friend_requests
		WHERE receiver_id = ? AND accepted = 0
		ORDER BY id
	`
	return s.listRequests(ctx, query, userID)
}

// ListSentRequests lists requests the user has sent, any status.
func (s *SQLiteStore) ListSentRequests(ctx context.Context, userID int64) ([]*store.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, accepted, created_at
		FROM friend_requests
		WHERE sender_id = ?
		ORDER BY id
	`
	return s.listRequests(ctx, query, userID)
}

// ListFriends lists accepted friendships involving the user.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID int64) ([]*store.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, accepted, created_at
		FROM friend_requests
		WHERE (sender_id = ? OR receiver_id = ?) AND accepted = 1
		ORDER BY id
	`
	return s.listRequests(ctx, query, userID, userID)
}

// IsFriend reports whether an accepted friendship exists between the two users.
func (s *SQLiteStore) IsFriend(ctx context.Context, userA, userB int64) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM friend_requests
		WHERE accepted = 1
		  AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, userA, userB, userB, userA).Scan(&count); err != nil {
		return false, fmt.Errorf("query friendship: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) listRequests(ctx context.Context, query string, args ...any) ([]*store.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query friend requests: %w", err)
	}
	defer rows.Close()

	var reqs []*store.FriendRequest
	for rows.Next() {
		var req store.FriendRequest
		if err := rows.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Accepted, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		reqs = append(reqs, &req)
	}

	return reqs, rows.Err()
}
