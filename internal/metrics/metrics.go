// Package metrics defines the Prometheus collectors for the ingestion layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsDelivered counts normalized alerts handed to the alert handler,
	// by provider and alert kind.
	AlertsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_alerts_delivered_total",
			Help: "Normalized alerts delivered to the handler by provider and kind",
		},
		[]string{"provider", "kind"},
	)

	// ChatMessagesDelivered counts normalized chat messages handed to the
	// chat handler, by provider.
	ChatMessagesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_chat_messages_delivered_total",
			Help: "Normalized chat messages delivered to the handler by provider",
		},
		[]string{"provider"},
	)

	// EventsDropped counts inbound payloads that produced no event, by
	// provider and drop reason.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_dropped_total",
			Help: "Inbound payloads dropped without producing an event, by provider and reason",
		},
		[]string{"provider", "reason"},
	)

	// ReconnectsScheduled counts reconnect timers armed after transport
	// failures, by provider.
	ReconnectsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_reconnects_scheduled_total",
			Help: "Reconnect attempts scheduled after transport failures, by provider",
		},
		[]string{"provider"},
	)

	// WebhookRequests counts inbound webhook requests by outcome.
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_webhook_requests_total",
			Help: "Inbound webhook requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Drop reasons shared by the connectors.
const (
	DropMissingField   = "missing_field"
	DropUnknownType    = "unknown_type"
	DropUnmapped       = "unmapped"
	DropNoLiveRef      = "no_live_ref"
	DropInvalidID      = "invalid_id"
	DropUnknownContent = "unknown_content"
	DropNoHandler      = "no_handler"
)
