package connector

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
)

// ProtocolFactory builds the protocol instance for one connection. The
// resolver must be invoked per dispatch, never cached against a LiveRef.
type ProtocolFactory func(subscriberID uuid.UUID, connectionID string, resolve domain.Resolver) Protocol

// Manager owns the connection-id -> Conn map for one provider and enforces
// at most one live connection per connection id. Caller threads
// (connect/disconnect) and transport callbacks mutate Conns concurrently;
// the map itself is only touched by callers under the manager lock.
type Manager struct {
	provider    string
	dialer      Dialer
	clock       clockwork.Clock
	newProtocol ProtocolFactory

	mu    sync.Mutex
	conns map[string]*Conn
}

// NewManager creates a connection manager for the named provider.
func NewManager(provider string, dialer Dialer, clock clockwork.Clock, factory ProtocolFactory) *Manager {
	return &Manager{
		provider:    provider,
		dialer:      dialer,
		clock:       clock,
		newProtocol: factory,
		conns:       make(map[string]*Conn),
	}
}

// Connect registers a connection for connectionID and dials asynchronously.
// An existing connection under the same id is torn down first, so two
// transports are never simultaneously open for one id.
func (m *Manager) Connect(subscriberID uuid.UUID, connectionID string, resolve domain.Resolver) error {
	proto := m.newProtocol(subscriberID, connectionID, resolve)
	conn := newConn(m.provider, subscriberID, connectionID, proto, m.dialer, m.clock)

	m.mu.Lock()
	if old, ok := m.conns[connectionID]; ok {
		old.disconnect()
	}
	m.conns[connectionID] = conn
	m.mu.Unlock()

	go conn.connect()
	return nil
}

// Disconnect tears down every connection registered for the subscriber. A
// misconfigured subscriber can be registered under multiple connection ids,
// so all matches are removed, not just the first.
func (m *Manager) Disconnect(subscriberID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.conns {
		if conn.SubscriberID() == subscriberID {
			conn.disconnect()
			delete(m.conns, id)
		}
	}
}

// IsConnected reports whether any of the subscriber's connections has an
// open transport.
func (m *Manager) IsConnected(subscriberID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.conns {
		if conn.SubscriberID() == subscriberID && conn.IsConnected() {
			return true
		}
	}
	return false
}

// Shutdown tears down all connections and clears the map.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.conns {
		conn.disconnect()
		delete(m.conns, id)
	}
}
