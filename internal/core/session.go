package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shubhip58/Chattify/internal/store"
)

// Identity is the resolved (user id, display name) pair for a connection.
// The core only caches a read-only copy; resolution belongs to the auth layer.
type Identity struct {
	UserID int64
	Name   string
}

// Session owns the lifecycle of one physical connection: it binds the
// connection to an identity, registers presence, relays inbound events to the
// room router and message store, and guarantees cleanup on disconnect.
//
// All session methods are called from the connection's read goroutine (plus
// Disconnect from the transport teardown path), so a sender's operations are
// processed in order.
type Session struct {
	hub      *Hub
	client   *Client
	messages store.MessageStore
	log      *zerolog.Logger

	mu           sync.Mutex
	identity     *Identity
	rooms        map[string]struct{}
	disconnected bool
}

// NewSession constructs a session for a freshly accepted connection.
func NewSession(hub *Hub, client *Client, messages store.MessageStore, logger *zerolog.Logger) *Session {
	return &Session{
		hub:      hub,
		client:   client,
		messages: messages,
		log:      logger,
		rooms:    make(map[string]struct{}),
	}
}

// Client returns the connection handle owned by this session.
func (s *Session) Client() *Client { return s.client }

// Identity returns the bound identity, or nil for an anonymous connection.
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Connect attaches the connection to the hub and, when an identity was
// resolved, registers presence and broadcasts the updated online list. A nil
// identity leaves the connection attached but anonymous: no presence side
// effect, mirroring a client that connected without a valid session.
func (s *Session) Connect(identity *Identity) {
	s.hub.Attach(s.client)

	if identity == nil {
		s.log.Debug().Str("conn_id", s.client.ID).Msg("anonymous connection")
		return
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	prev := s.hub.Presence().Register(identity.UserID, identity.Name, s.client)
	if prev != nil {
		// Second connection for an already-online user: the old handle is
		// superseded, never rejected. Invalidating it here guarantees it
		// receives no further broadcasts tied to this identity.
		prev.Close()
		s.log.Info().Int64("user_id", identity.UserID).Msg("replaced existing session")
	}

	s.hub.BroadcastPresence()
	s.log.Info().Int64("user_id", identity.UserID).Str("username", identity.Name).Msg("user online")
}

// Join subscribes the connection to a conversation room. Requires a bound
// identity; anonymous joins are rejected with an explicit error rather than
// silently dropped. Re-joining a room is a no-op. A connection may be joined
// to any number of rooms at once.
func (s *Session) Join(roomID string) {
	s.mu.Lock()
	authed := s.identity != nil
	if authed {
		s.rooms[roomID] = struct{}{}
	}
	s.mu.Unlock()

	if !authed {
		s.client.Send(Event{Kind: EventError, Error: coreError(ErrCodeAuthRequired, "join requires authentication")})
		return
	}

	s.hub.Rooms().Join(roomID, s.client)
}

// SendMessage validates and persists a message, then echoes it to every
// member of the room including the sender. Persistence failure aborts the
// broadcast and surfaces an error to the sending connection only: other
// participants never observe a partially applied send.
func (s *Session) SendMessage(ctx context.Context, roomID, content string, senderID, receiverID int64) error {
	if s.Identity() == nil {
		s.client.Send(Event{Kind: EventError, Room: roomID, Error: coreError(ErrCodeAuthRequired, "send requires authentication")})
		return ErrAuthRequired
	}
	if senderID <= 0 || receiverID <= 0 {
		s.client.Send(Event{Kind: EventError, Room: roomID, Error: coreError(ErrCodeBadRequest, "sender_id and receiver_id must be positive integers")})
		return ErrBadRequest
	}

	// No registry lock is held here: a slow or hung store call stalls only
	// this connection's send.
	msg, err := s.messages.AppendMessage(ctx, senderID, receiverID, content)
	if err != nil {
		s.log.Error().Err(err).Int64("sender_id", senderID).Msg("persist message")
		s.client.Send(Event{Kind: EventError, Room: roomID, Error: coreError(ErrCodePersistenceFailure, "message could not be saved")})
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	s.hub.BroadcastRoom(roomID, Event{
		Kind:     EventReceiveMessage,
		Room:     roomID,
		Content:  msg.Content,
		SenderID: msg.SenderID,
	}, nil)
	return nil
}

// Typing relays a typing indicator to the other room members. The typist
// never receives its own echo.
func (s *Session) Typing(roomID, username string) {
	s.hub.BroadcastRoom(roomID, Event{
		Kind:     EventUserTyping,
		Room:     roomID,
		Username: username,
	}, s.client)
}

// StopTyping relays the end of a typing indicator, excluding the typist.
func (s *Session) StopTyping(roomID string) {
	s.hub.BroadcastRoom(roomID, Event{
		Kind: EventStopTyping,
		Room: roomID,
	}, s.client)
}

// Disconnect tears the session down: leaves every joined room, deregisters
// presence, detaches from the hub and invalidates the handle. It is triggered
// by the transport's close notification, so it runs even after an abnormal
// network drop, and it is unconditional and idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.disconnected {
		s.mu.Unlock()
		return
	}
	s.disconnected = true
	identity := s.identity
	rooms := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.rooms = make(map[string]struct{})
	s.mu.Unlock()

	for _, room := range rooms {
		s.hub.Rooms().Leave(room, s.client)
	}

	s.hub.Detach(s.client)
	s.client.Close()

	if identity != nil {
		// Owner check inside Deregister keeps a superseded connection's late
		// disconnect from evicting its replacement's presence entry.
		if s.hub.Presence().Deregister(identity.UserID, s.client) {
			s.hub.BroadcastPresence()
			s.log.Info().Int64("user_id", identity.UserID).Msg("user offline")
		}
	}
}
