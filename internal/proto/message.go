package proto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event names are a compatibility contract with existing clients; both the
// names and payload field names must not change.
const (
	InboundTypeJoin        = "join"
	InboundTypeSendMessage = "send_message"
	InboundTypeTyping      = "typing"
	InboundTypeStopTyping  = "stop_typing"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventUpdateUsers    = "update_users"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventStopTyping     = "stop_typing"
)

// UserID accepts a user id sent either as a JSON number or a numeric string;
// existing clients send both forms.
type UserID int64

// Int64 returns the id as a plain integer.
func (u UserID) Int64() int64 { return int64(u) }

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserID) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("user id %q is not an integer", s)
		}
		*u = UserID(n)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id is not an integer: %w", err)
	}
	*u = UserID(n)
	return nil
}

// JoinData requests to join a conversation room.
type JoinData struct {
	Room string `json:"room"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Room       string `json:"room"`
	Msg        string `json:"msg"`
	SenderID   UserID `json:"sender_id"`
	ReceiverID UserID `json:"receiver_id"`
}

// TypingData signals that a user started typing in a room.
type TypingData struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// StopTypingData signals that a user stopped typing in a room.
type StopTypingData struct {
	Room string `json:"room"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// UpdateUsersData is the full online-user snapshot, keyed by user id.
// The server pushes the whole state on every presence change.
type UpdateUsersData map[string]string

// ReceiveMessageData is a message echoed to all room members, sender included.
type ReceiveMessageData struct {
	Msg      string `json:"msg"`
	SenderID int64  `json:"sender_id"`
}

// UserTypingData notifies room members that a user is typing.
type UserTypingData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// StopTypingEventData notifies room members that typing stopped.
type StopTypingEventData struct {
	Room string `json:"room"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
