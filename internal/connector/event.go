package connector

import "context"

// EventKind enumerates what a transport can report.
type EventKind int

const (
	// EventText carries a text frame fragment. Final marks the terminal
	// fragment of a logical message.
	EventText EventKind = iota
	// EventPing carries a transport-level ping payload to be echoed.
	EventPing
	// EventClosed reports that the transport is gone, cleanly or not.
	EventClosed
)

// Event is a single piece of inbound transport activity.
type Event struct {
	Kind  EventKind
	Text  string
	Final bool
	Data  []byte
	Err   error
}

// Transport is one open socket session. Implementations must be safe for
// concurrent writes.
type Transport interface {
	WriteText(text string) error
	WritePong(data []byte) error
	Close() error
}

// Dialer opens a transport and delivers its inbound events to sink until an
// EventClosed is emitted. After EventClosed no further events may follow.
type Dialer interface {
	Dial(ctx context.Context, sink func(Event)) (Transport, error)
}

// Protocol is the protocol-specific half of a connection: the handshake sent
// once the transport opens, and the decoder invoked per complete message.
type Protocol interface {
	Opened(c *Conn)
	Message(c *Conn, text string)
}
