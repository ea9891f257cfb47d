package connector

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aetherhyt/HyStreamAlerts/internal/metrics"
)

// ReconnectDelay is the fixed wait before re-dialing after a transport
// failure. Immediate retries would hot-loop against an unreachable service.
const ReconnectDelay = 5 * time.Second

// ErrNotConnected is returned by Send when no transport is open.
var ErrNotConnected = errors.New("connector: not connected")

// Conn is one live connection for a (provider, connection id) pair. All
// mutable state is guarded by a single lock; transport callbacks and caller
// threads race on it by design.
type Conn struct {
	provider     string
	subscriberID uuid.UUID
	id           string
	proto        Protocol
	dialer       Dialer
	clock        clockwork.Clock

	mu             sync.Mutex
	transport      Transport
	reconnect      bool
	gen            int
	buf            strings.Builder
	reconnectTimer clockwork.Timer
	heartbeatStop  chan struct{}
}

func newConn(provider string, subscriberID uuid.UUID, connectionID string, proto Protocol, dialer Dialer, clock clockwork.Clock) *Conn {
	return &Conn{
		provider:     provider,
		subscriberID: subscriberID,
		id:           connectionID,
		proto:        proto,
		dialer:       dialer,
		clock:        clock,
		reconnect:    true,
	}
}

// SubscriberID returns the correlation key this connection was opened for.
func (c *Conn) SubscriberID() uuid.UUID { return c.subscriberID }

// ID returns the provider-specific connection id.
func (c *Conn) ID() string { return c.id }

// connect dials the upstream feed. It is a no-op once reconnection has been
// disabled. Dial failure schedules a retry instead of failing loudly.
func (c *Conn) connect() {
	c.mu.Lock()
	if !c.reconnect {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = nil
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	transport, err := c.dialer.Dial(context.Background(), func(ev Event) {
		c.handleEvent(gen, ev)
	})
	if err != nil {
		slog.Warn("connect failed",
			"provider", c.provider, "subscriber", c.subscriberID, "error", err)
		c.scheduleReconnect()
		return
	}

	c.mu.Lock()
	if !c.reconnect {
		// disconnected while the dial was in flight
		c.mu.Unlock()
		_ = transport.Close()
		return
	}
	c.transport = transport
	c.mu.Unlock()

	slog.Info("connected", "provider", c.provider, "subscriber", c.subscriberID)
	c.proto.Opened(c)
}

// disconnect permanently stops this connection: no reconnect will fire, any
// heartbeat is cancelled, and the transport is closed and discarded.
// Idempotent.
func (c *Conn) disconnect() {
	c.mu.Lock()
	c.reconnect = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.stopHeartbeatLocked()
	transport := c.transport
	c.transport = nil
	c.mu.Unlock()

	if transport != nil {
		_ = transport.Close()
	}
}

// IsConnected reports whether a transport is currently open.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil
}

// Send writes a text frame on the open transport.
func (c *Conn) Send(text string) error {
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()
	if transport == nil {
		return ErrNotConnected
	}
	return transport.WriteText(text)
}

// StartHeartbeat runs fn on a fixed interval for the lifetime of the open
// transport. A previous heartbeat is replaced. The task stops when the
// transport closes or the connection is disconnected; a tick that fires just
// after either no-ops.
func (c *Conn) StartHeartbeat(interval time.Duration, fn func(*Conn)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopHeartbeatLocked()
	if c.transport == nil || !c.reconnect {
		return
	}

	stop := make(chan struct{})
	c.heartbeatStop = stop

	go func() {
		ticker := c.clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				if !c.IsConnected() {
					return
				}
				fn(c)
			}
		}
	}()
}

func (c *Conn) stopHeartbeatLocked() {
	if c.heartbeatStop != nil {
		close(c.heartbeatStop)
		c.heartbeatStop = nil
	}
}

// handleEvent is the single decode-and-dispatch point for transport events.
// gen ties events to the dial that produced them so a stale read loop cannot
// touch a newer transport.
func (c *Conn) handleEvent(gen int, ev Event) {
	switch ev.Kind {
	case EventText:
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.buf.WriteString(ev.Text)
		if !ev.Final {
			c.mu.Unlock()
			return
		}
		msg := c.buf.String()
		c.buf.Reset()
		c.mu.Unlock()
		c.proto.Message(c, msg)

	case EventPing:
		c.mu.Lock()
		transport := c.transport
		valid := gen == c.gen
		c.mu.Unlock()
		if valid && transport != nil {
			_ = transport.WritePong(ev.Data)
		}

	case EventClosed:
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.stopHeartbeatLocked()
		c.buf.Reset()
		c.transport = nil
		eligible := c.reconnect
		c.mu.Unlock()

		if eligible {
			slog.Warn("connection lost",
				"provider", c.provider, "subscriber", c.subscriberID, "error", ev.Err)
		}
		c.scheduleReconnect()
	}
}

func (c *Conn) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reconnect || c.reconnectTimer != nil {
		return
	}
	metrics.ReconnectsScheduled.WithLabelValues(c.provider).Inc()
	c.reconnectTimer = c.clock.AfterFunc(ReconnectDelay, c.connect)
}
