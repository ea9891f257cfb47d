package botrix

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aetherhyt/HyStreamAlerts/internal/connector"
	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
	"github.com/aetherhyt/HyStreamAlerts/internal/flatjson"
	"github.com/aetherhyt/HyStreamAlerts/internal/metrics"
)

// DefaultAlertURL is the Botrix alert feed endpoint.
const DefaultAlertURL = "wss://sub2.botrix.live/"

const alertProviderName = "Botrix"

// AlertProvider maintains one alert-feed connection per broadcast id and
// translates MSG frames into normalized alerts.
type AlertProvider struct {
	manager *connector.Manager
	clock   clockwork.Clock

	mu      sync.Mutex
	handler domain.AlertHandler
}

// NewAlertProvider creates the Botrix alert provider. The dialer is injected
// so tests can run the protocol without a live socket.
func NewAlertProvider(dialer connector.Dialer, clock clockwork.Clock) *AlertProvider {
	p := &AlertProvider{clock: clock}
	p.manager = connector.NewManager(alertProviderName, dialer, clock, p.newProtocol)
	return p
}

// SetAlertHandler installs the consumer for normalized alerts.
func (p *AlertProvider) SetAlertHandler(h domain.AlertHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

func (p *AlertProvider) alertHandler() domain.AlertHandler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler
}

// Connect binds a subscriber to the alert feed for the given broadcast id.
func (p *AlertProvider) Connect(subscriberID uuid.UUID, connectionID string, resolve domain.Resolver) error {
	return p.manager.Connect(subscriberID, connectionID, resolve)
}

// Disconnect removes all of the subscriber's alert connections.
func (p *AlertProvider) Disconnect(subscriberID uuid.UUID) {
	p.manager.Disconnect(subscriberID)
}

// IsConnected reports whether the subscriber has an open alert feed.
func (p *AlertProvider) IsConnected(subscriberID uuid.UUID) bool {
	return p.manager.IsConnected(subscriberID)
}

// Shutdown tears down every alert connection.
func (p *AlertProvider) Shutdown() {
	p.manager.Shutdown()
}

// ProviderName implements domain.StreamerConnector.
func (p *AlertProvider) ProviderName() string {
	return alertProviderName
}

func (p *AlertProvider) newProtocol(_ uuid.UUID, connectionID string, resolve domain.Resolver) connector.Protocol {
	return &alertProtocol{provider: p, broadcastID: connectionID, resolve: resolve}
}

// alertProtocol speaks the Botrix AUTH/PING/MSG protocol for one connection.
type alertProtocol struct {
	provider    *AlertProvider
	broadcastID string
	resolve     domain.Resolver
}

// Opened authenticates immediately; Botrix expects the AUTH frame as the
// first message after the socket opens.
func (a *alertProtocol) Opened(c *connector.Conn) {
	auth := fmt.Sprintf(`{"type":"AUTH","bid":%q}`, a.broadcastID)
	if err := c.Send(auth); err != nil {
		slog.Warn("failed to send auth frame", "provider", alertProviderName, "error", err)
	}
}

func (a *alertProtocol) Message(c *connector.Conn, text string) {
	msgType, ok := flatjson.Extract(text, "type")
	if !ok {
		return
	}

	switch msgType {
	case "PING":
		pong := fmt.Sprintf(`{"type":"PONG","time":%d}`, a.provider.clock.Now().UnixMilli())
		if err := c.Send(pong); err != nil {
			slog.Warn("failed to send pong frame", "provider", alertProviderName, "error", err)
		}
	case "AUTH":
		slog.Debug("alert feed authenticated",
			"provider", alertProviderName, "subscriber", c.SubscriberID())
	case "PONG":
		// server acknowledgment
	case "MSG":
		a.handleAlert(text)
	default:
		slog.Debug("unknown alert frame type", "provider", alertProviderName, "type", msgType)
	}
}

func (a *alertProtocol) handleAlert(text string) {
	content, okContent := flatjson.Extract(text, "content")
	actor, okActor := flatjson.Extract(text, "nick_name")
	if !okContent || !okActor {
		metrics.EventsDropped.WithLabelValues(alertProviderName, metrics.DropMissingField).Inc()
		return
	}

	platform, _ := flatjson.Extract(text, "platform")
	if platform == "" {
		platform = alertProviderName
	}
	amount, _ := flatjson.Extract(text, "amount")

	event, ok := decodeAlert(content, actor, platform, amount)
	if !ok {
		metrics.EventsDropped.WithLabelValues(alertProviderName, metrics.DropUnknownContent).Inc()
		slog.Debug("unknown alert content", "provider", alertProviderName, "content", content)
		return
	}

	handler := a.provider.alertHandler()
	if handler == nil {
		metrics.EventsDropped.WithLabelValues(alertProviderName, metrics.DropNoHandler).Inc()
		return
	}

	// resolved fresh per dispatch, the handle may have gone away
	if a.resolve == nil {
		metrics.EventsDropped.WithLabelValues(alertProviderName, metrics.DropNoLiveRef).Inc()
		return
	}
	ref, ok := a.resolve()
	if !ok || !ref.Valid() {
		metrics.EventsDropped.WithLabelValues(alertProviderName, metrics.DropNoLiveRef).Inc()
		return
	}

	metrics.AlertsDelivered.WithLabelValues(alertProviderName, event.Kind.String()).Inc()
	event.Dispatch(ref, handler)
}

// decodeAlert maps a recognized command token to a normalized alert.
// Numeric details default deterministically when absent or unparsable;
// donation amounts pass through raw.
func decodeAlert(content, actor, platform, amount string) (domain.AlertEvent, bool) {
	event := domain.AlertEvent{Actor: actor, Platform: platform}

	switch content {
	case "!follow":
		event.Kind = domain.AlertFollow
	case "!sub":
		event.Kind = domain.AlertSubscribe
		event.Months = parseIntDefault(amount, 1)
	case "!gift":
		event.Kind = domain.AlertGiftSub
		event.Count = parseIntDefault(amount, 1)
	case "!donation", "!tip":
		event.Kind = domain.AlertDonation
		event.Amount = amount
	case "!raid":
		event.Kind = domain.AlertRaid
		event.Viewers = parseIntDefault(amount, 0)
	default:
		return domain.AlertEvent{}, false
	}
	return event, true
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
