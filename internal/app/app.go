// Package app wires the provider registry and the subscriber config store
// into one application context.
//
// Orchestrates use cases: configure a subscriber, connect them to their
// providers, tear everything down on shutdown. Sits between the HTTP
// handlers (and any embedding command surface) and the providers.
package app

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
	"github.com/aetherhyt/HyStreamAlerts/internal/registry"
	"github.com/aetherhyt/HyStreamAlerts/internal/store"
)

var (
	// ErrUnknownProvider is returned when no provider is registered under
	// the requested name.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNoConnectionID is returned when the subscriber has no stored
	// connection id for the requested capability.
	ErrNoConnectionID = errors.New("no connection id configured")
)

// App is constructed once in cmd/server and passed by reference.
type App struct {
	Registry *registry.Registry
	Store    *store.Store
}

func New(reg *registry.Registry, st *store.Store) *App {
	return &App{Registry: reg, Store: st}
}

// ConnectAlerts connects the subscriber to the named alert provider (empty
// name selects the default) using their stored broadcast id.
func (a *App) ConnectAlerts(subscriberID uuid.UUID, providerName string, resolve domain.Resolver) error {
	provider, ok := a.Registry.Alert(providerName)
	if !ok {
		return fmt.Errorf("%w: %q has no alert capability", ErrUnknownProvider, providerName)
	}
	broadcastID, ok := a.Store.BroadcastID(subscriberID)
	if !ok {
		return fmt.Errorf("%w: subscriber %s has no broadcast id", ErrNoConnectionID, subscriberID)
	}
	return provider.Connect(subscriberID, broadcastID, resolve)
}

// ConnectChat connects the subscriber to the named chat provider (empty
// name selects the default) using their stored chat id(s).
func (a *App) ConnectChat(subscriberID uuid.UUID, providerName string, resolve domain.Resolver) error {
	provider, ok := a.Registry.Chat(providerName)
	if !ok {
		return fmt.Errorf("%w: %q has no chat capability", ErrUnknownProvider, providerName)
	}
	chatIDs, ok := a.Store.ChatIDs(subscriberID)
	if !ok {
		return fmt.Errorf("%w: subscriber %s has no chat id", ErrNoConnectionID, subscriberID)
	}
	return provider.Connect(subscriberID, chatIDs, resolve)
}

// Disconnect removes the subscriber's connections from every registered
// provider, both capabilities.
func (a *App) Disconnect(subscriberID uuid.UUID) {
	for _, p := range a.providers() {
		p.Disconnect(subscriberID)
	}
}

// Status reports the subscriber's stored config and which providers
// currently hold a live connection for them.
func (a *App) Status(subscriberID uuid.UUID) Status {
	st := Status{
		Enabled:   a.Store.IsEnabled(subscriberID),
		Connected: []string{},
	}
	st.BroadcastID, _ = a.Store.BroadcastID(subscriberID)
	st.ChatIDs, _ = a.Store.ChatIDs(subscriberID)
	for _, p := range a.providers() {
		if p.IsConnected(subscriberID) {
			st.Connected = append(st.Connected, p.ProviderName())
		}
	}
	return st
}

// Status is the per-subscriber view returned by the configuration API.
type Status struct {
	Enabled     bool     `json:"enabled"`
	BroadcastID string   `json:"broadcast_id,omitempty"`
	ChatIDs     string   `json:"chat_ids,omitempty"`
	Connected   []string `json:"connected"`
}

// Shutdown tears down every provider.
func (a *App) Shutdown() {
	a.Registry.Shutdown()
}

// providers returns every registered provider once, even when registered
// under both capabilities.
func (a *App) providers() []domain.StreamerConnector {
	seen := make(map[domain.StreamerConnector]struct{})
	var out []domain.StreamerConnector
	for _, name := range a.Registry.AlertNames() {
		if p, ok := a.Registry.Alert(name); ok {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	for _, name := range a.Registry.ChatNames() {
		if p, ok := a.Registry.Chat(name); ok {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}
