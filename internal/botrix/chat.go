package botrix

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aetherhyt/HyStreamAlerts/internal/connector"
	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
	"github.com/aetherhyt/HyStreamAlerts/internal/flatjson"
	"github.com/aetherhyt/HyStreamAlerts/internal/metrics"
)

// DefaultChatURL is the Pusher endpoint carrying Botrix chat relays.
const DefaultChatURL = "wss://ws-us2.pusher.com/app/32cbd69e4b950bf97679?protocol=7&client=js&version=7.4.0"

const (
	chatProviderName = "BotrixChat"
	chatPlatform     = "Botrix"

	heartbeatInterval = 30 * time.Second

	// marker token identifying a chat relay among the channel's events
	chatEventMarker = "ChatMessageEvent"

	// sender used when every name lookup fails
	fallbackSender = "Chat"
)

// ChatProvider maintains one Pusher connection per chat id and relays chat
// messages as normalized events.
type ChatProvider struct {
	manager  *connector.Manager
	clock    clockwork.Clock
	channels ChannelNamer

	mu      sync.Mutex
	handler domain.ChatHandler
}

// ChatOption configures a ChatProvider.
type ChatOption func(*ChatProvider)

// WithChannelNamer overrides the candidate channel derivation. The exact
// upstream naming scheme is not documented, so deployments can adjust the
// candidate list without a code change.
func WithChannelNamer(namer ChannelNamer) ChatOption {
	return func(p *ChatProvider) { p.channels = namer }
}

// NewChatProvider creates the Botrix chat provider.
func NewChatProvider(dialer connector.Dialer, clock clockwork.Clock, opts ...ChatOption) *ChatProvider {
	p := &ChatProvider{clock: clock, channels: DefaultChannelNamer}
	for _, opt := range opts {
		opt(p)
	}
	p.manager = connector.NewManager(chatProviderName, dialer, clock, p.newProtocol)
	return p
}

// SetChatHandler installs the consumer for normalized chat messages.
func (p *ChatProvider) SetChatHandler(h domain.ChatHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

func (p *ChatProvider) chatHandler() domain.ChatHandler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler
}

// Connect binds a subscriber to the chat relay for the given chat id(s).
// connectionID may carry one id or two separated by ',' or '|'.
func (p *ChatProvider) Connect(subscriberID uuid.UUID, connectionID string, resolve domain.Resolver) error {
	return p.manager.Connect(subscriberID, connectionID, resolve)
}

// Disconnect removes all of the subscriber's chat connections.
func (p *ChatProvider) Disconnect(subscriberID uuid.UUID) {
	p.manager.Disconnect(subscriberID)
}

// IsConnected reports whether the subscriber has an open chat relay.
func (p *ChatProvider) IsConnected(subscriberID uuid.UUID) bool {
	return p.manager.IsConnected(subscriberID)
}

// Shutdown tears down every chat connection and its heartbeat.
func (p *ChatProvider) Shutdown() {
	p.manager.Shutdown()
}

// ProviderName implements domain.StreamerConnector.
func (p *ChatProvider) ProviderName() string {
	return chatProviderName
}

func (p *ChatProvider) newProtocol(_ uuid.UUID, connectionID string, resolve domain.Resolver) connector.Protocol {
	return &chatProtocol{provider: p, connectionID: connectionID, resolve: resolve}
}

// chatProtocol speaks the Pusher channel-subscription protocol for one
// connection. Subscribing before the connection_established event is
// rejected by the remote service, so the handshake waits for it.
type chatProtocol struct {
	provider     *ChatProvider
	connectionID string
	resolve      domain.Resolver
}

func (cp *chatProtocol) Opened(c *connector.Conn) {
	c.StartHeartbeat(heartbeatInterval, func(c *connector.Conn) {
		if err := c.Send(`{"event":"pusher:ping","data":{}}`); err != nil {
			slog.Debug("heartbeat send failed", "provider", chatProviderName, "error", err)
		}
	})
}

func (cp *chatProtocol) Message(c *connector.Conn, text string) {
	event, ok := flatjson.Extract(text, "event")
	if !ok {
		return
	}

	switch {
	case event == "pusher:connection_established":
		cp.subscribe(c)
	case event == "pusher:ping":
		if err := c.Send(`{"event":"pusher:pong","data":{}}`); err != nil {
			slog.Debug("pong send failed", "provider", chatProviderName, "error", err)
		}
	case event == "pusher_internal:subscription_succeeded":
		channel, _ := flatjson.Extract(text, "channel")
		slog.Debug("channel subscription succeeded", "provider", chatProviderName, "channel", channel)
	case event == "pusher:error":
		slog.Warn("pusher error frame", "provider", chatProviderName, "frame", text)
	case strings.Contains(event, chatEventMarker):
		cp.handleChat(text)
	default:
		// subscription acks for nonexistent channels, member events, etc.
	}
}

// subscribe issues a subscription for every candidate channel name. The
// remote service treats subscriptions to nonexistent channels as no-ops, so
// over-subscribing is the correct strategy while the naming scheme for a
// given account is unknown.
func (cp *chatProtocol) subscribe(c *connector.Conn) {
	candidates := cp.provider.channels(SplitChatIDs(cp.connectionID))
	for _, channel := range candidates {
		msg := fmt.Sprintf(`{"event":"pusher:subscribe","data":{"auth":"","channel":"%s"}}`, channel)
		if err := c.Send(msg); err != nil {
			slog.Warn("subscribe send failed",
				"provider", chatProviderName, "channel", channel, "error", err)
			return
		}
		slog.Debug("subscribing to channel", "provider", chatProviderName, "channel", channel)
	}
}

func (cp *chatProtocol) handleChat(text string) {
	data, ok := flatjson.Extract(text, "data")
	if !ok {
		metrics.EventsDropped.WithLabelValues(chatProviderName, metrics.DropMissingField).Inc()
		return
	}

	// the payload is a JSON-encoded string and must be unescaped before
	// its fields can be read
	payload := flatjson.Unescape(data)

	content, ok := flatjson.Extract(payload, "content")
	if !ok {
		metrics.EventsDropped.WithLabelValues(chatProviderName, metrics.DropMissingField).Inc()
		return
	}
	sender := senderName(payload)

	handler := cp.provider.chatHandler()
	if handler == nil {
		metrics.EventsDropped.WithLabelValues(chatProviderName, metrics.DropNoHandler).Inc()
		return
	}
	if cp.resolve == nil {
		metrics.EventsDropped.WithLabelValues(chatProviderName, metrics.DropNoLiveRef).Inc()
		return
	}
	ref, ok := cp.resolve()
	if !ok || !ref.Valid() {
		metrics.EventsDropped.WithLabelValues(chatProviderName, metrics.DropNoLiveRef).Inc()
		return
	}

	metrics.ChatMessagesDelivered.WithLabelValues(chatProviderName).Inc()
	handler.OnMessage(ref, sender, content, chatPlatform)
}

// senderName resolves the sender through the fallback chain: direct keys
// first, then a heuristic scan for a nested sender object, then a literal
// placeholder. The nested scan is kept out of the extractor on purpose; it
// is a last-resort step, not a general contract.
func senderName(payload string) string {
	for _, key := range []string{"name", "nick_name", "username"} {
		if sender, ok := flatjson.Extract(payload, key); ok {
			return sender
		}
	}

	if idx := strings.Index(payload, `"sender":`); idx != -1 {
		if sender, ok := flatjson.Extract(payload[idx:], "name"); ok {
			return sender
		}
	}

	return fallbackSender
}
