// Package kick implements the passive webhook provider. Unlike the socket
// providers, inbound events are keyed by the external streamer id carried in
// the payload, not by the subscriber id.
package kick

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
	"github.com/aetherhyt/HyStreamAlerts/internal/flatjson"
	"github.com/aetherhyt/HyStreamAlerts/internal/metrics"
)

const providerName = "Kick"

// DefaultWebhookPath is where the receiver is mounted by default.
const DefaultWebhookPath = "/webhook/kick"

// webhook request outcomes for metrics
const (
	outcomeDelivered = "delivered"
	outcomeIgnored   = "ignored"
)

type registration struct {
	subscriberID uuid.UUID
	resolve      domain.Resolver
}

// Provider implements domain.AlertProvider over the webhook feed. Connect
// registers an identity mapping instead of opening a transport; the HTTP
// listener itself is owned by the server.
type Provider struct {
	mu      sync.Mutex
	handler domain.AlertHandler
	entries map[uuid.UUID]registration
}

// NewProvider creates an empty webhook provider.
func NewProvider() *Provider {
	return &Provider{entries: make(map[uuid.UUID]registration)}
}

// SetAlertHandler installs the consumer for normalized alerts.
func (p *Provider) SetAlertHandler(h domain.AlertHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

// Connect maps the external streamer id (the connection id, a UUID string)
// to the subscriber's resolver. Re-registering the same streamer id
// replaces the previous mapping.
func (p *Provider) Connect(subscriberID uuid.UUID, connectionID string, resolve domain.Resolver) error {
	streamerID, err := uuid.Parse(connectionID)
	if err != nil {
		return fmt.Errorf("kick: connection id must be a streamer UUID: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[streamerID] = registration{subscriberID: subscriberID, resolve: resolve}
	return nil
}

// Disconnect removes every mapping registered for the subscriber.
func (p *Provider) Disconnect(subscriberID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for streamerID, reg := range p.entries {
		if reg.subscriberID == subscriberID {
			delete(p.entries, streamerID)
		}
	}
}

// IsConnected reports whether the subscriber has a registered mapping. The
// feed is passive, so registration is the only notion of connectedness.
func (p *Provider) IsConnected(subscriberID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, reg := range p.entries {
		if reg.subscriberID == subscriberID {
			return true
		}
	}
	return false
}

// Shutdown clears all mappings.
func (p *Provider) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.entries)
}

// ProviderName implements domain.StreamerConnector.
func (p *Provider) ProviderName() string {
	return providerName
}

// HandleWebhook accepts POSTed event payloads. Semantic validation failures
// still answer 200: the contract does not leak validation details to the
// sender, and a non-200 would make it retry indefinitely. Non-POST methods
// are rejected with 405 by route registration.
func (p *Provider) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		return c.String(http.StatusOK, "OK")
	}

	p.process(string(body))
	return c.String(http.StatusOK, "OK")
}

func (p *Provider) process(payload string) {
	eventType, okType := flatjson.Extract(payload, "event_type")
	username, okUser := flatjson.Extract(payload, "username")
	streamerIDStr, okStreamer := flatjson.Extract(payload, "streamer_id")
	if !okType || !okUser || !okStreamer {
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		metrics.EventsDropped.WithLabelValues(providerName, metrics.DropMissingField).Inc()
		slog.Debug("webhook payload missing required field", "provider", providerName)
		return
	}

	streamerID, err := uuid.Parse(streamerIDStr)
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		metrics.EventsDropped.WithLabelValues(providerName, metrics.DropInvalidID).Inc()
		return
	}

	p.mu.Lock()
	reg, mapped := p.entries[streamerID]
	handler := p.handler
	p.mu.Unlock()

	if !mapped || handler == nil {
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		metrics.EventsDropped.WithLabelValues(providerName, metrics.DropUnmapped).Inc()
		return
	}

	if reg.resolve == nil {
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		metrics.EventsDropped.WithLabelValues(providerName, metrics.DropNoLiveRef).Inc()
		return
	}
	ref, ok := reg.resolve()
	if !ok || !ref.Valid() {
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		metrics.EventsDropped.WithLabelValues(providerName, metrics.DropNoLiveRef).Inc()
		return
	}

	switch strings.ToLower(eventType) {
	case "follow", "follower", "channel.follow":
		metrics.WebhookRequests.WithLabelValues(outcomeDelivered).Inc()
		metrics.AlertsDelivered.WithLabelValues(providerName, domain.AlertFollow.String()).Inc()
		handler.OnFollow(ref, username, providerName)
	case "subscribe", "subscription", "channel.subscribe":
		// this feed carries no month granularity
		metrics.WebhookRequests.WithLabelValues(outcomeDelivered).Inc()
		metrics.AlertsDelivered.WithLabelValues(providerName, domain.AlertSubscribe.String()).Inc()
		handler.OnSubscribe(ref, username, 1, providerName)
	default:
		metrics.WebhookRequests.WithLabelValues(outcomeIgnored).Inc()
		metrics.EventsDropped.WithLabelValues(providerName, metrics.DropUnknownType).Inc()
		slog.Debug("unknown webhook event type", "provider", providerName, "event_type", eventType)
	}
}
