package domain

import "github.com/google/uuid"

// LiveRef is the host application's current addressable handle for a
// subscriber. Its validity can change between connection setup and message
// arrival, which is why connectors never hold one directly.
type LiveRef interface {
	Valid() bool
}

// Resolver yields the subscriber's live handle, or false if it is
// temporarily unavailable. Connectors invoke it fresh on every dispatch and
// never cache the result.
type Resolver func() (LiveRef, bool)

// StreamerConnector is the capability exposed to the command surface by
// every connection-based provider.
type StreamerConnector interface {
	// Connect binds a subscriber to an upstream feed. connectionID is
	// provider-specific: a broadcast id, chat id(s), or a streamer UUID for
	// the webhook path. Connecting twice with the same connection id tears
	// down the previous connection first.
	Connect(subscriberID uuid.UUID, connectionID string, resolve Resolver) error

	// Disconnect removes every connection registered for the subscriber and
	// cancels any pending reconnect.
	Disconnect(subscriberID uuid.UUID)

	// IsConnected reports whether the subscriber has a live connection.
	IsConnected(subscriberID uuid.UUID) bool

	// Shutdown tears down all connections and background tasks.
	Shutdown()

	// ProviderName identifies this provider, e.g. "Botrix".
	ProviderName() string
}

// AlertProvider sources follow/sub/gift/donation/raid alerts.
type AlertProvider interface {
	StreamerConnector
	SetAlertHandler(h AlertHandler)
}

// ChatProvider sources relayed chat messages.
type ChatProvider interface {
	StreamerConnector
	SetChatHandler(h ChatHandler)
}
