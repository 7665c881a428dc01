package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUpdateUsers carries the full online-user snapshot. It is pushed to
	// every open connection after each presence change; clients replace their
	// local list wholesale rather than applying diffs.
	EventUpdateUsers EventKind = iota
	// EventReceiveMessage notifies room members about a persisted message.
	// The sender receives its own echo.
	EventReceiveMessage
	// EventUserTyping notifies room members that a user started typing.
	// Never delivered back to the typist.
	EventUserTyping
	// EventStopTyping notifies room members that a user stopped typing.
	// Never delivered back to the typist.
	EventStopTyping
	// EventError notifies the originating client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Users    map[int64]string // for EventUpdateUsers
	Content  string           // for EventReceiveMessage
	SenderID int64            // for EventReceiveMessage
	Username string           // for EventUserTyping
	Error    *CoreError       // for EventError
}
