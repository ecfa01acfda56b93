package sessions

import (
	"github.com/cardtable/cardtable/pkg/messages"
)

// Connection is the capability a session needs from a transport peer:
// something it can send server messages to, close, and identify in its
// slot table. The session never sees a concrete transport type and
// never owns the connection's lifetime.
type Connection interface {
	// ID returns a stable identity for the connection.
	ID() string
	// Send queues a message for delivery without blocking. It fails if
	// the connection is closed or its send buffer is full.
	Send(msg messages.ServerMessage) error
	// Close closes the underlying transport. Safe to call more than once.
	Close()
	// SetHandler routes subsequent transport events (frames, close) to
	// the given handler. The lobby owns a connection until it is paired
	// into a session.
	SetHandler(handler Handler)
}

// Handler receives transport events for a connection. Implementations
// must not block: they are called from the connection's read goroutine.
type Handler interface {
	HandleFrame(conn Connection, text bool, data []byte)
	HandleClose(conn Connection)
}
