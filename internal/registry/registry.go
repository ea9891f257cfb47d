// Package registry holds named provider instances and resolves defaults per
// capability.
package registry

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
)

// Registry maps case-insensitive provider names to alert and chat
// capabilities. A provider can carry one capability, both, or neither (the
// webhook path registers as an alert provider only). The first provider
// registered per capability becomes that capability's default.
type Registry struct {
	mu           sync.RWMutex
	alerts       map[string]domain.AlertProvider
	chats        map[string]domain.ChatProvider
	defaultAlert string
	defaultChat  string
}

func New() *Registry {
	return &Registry{
		alerts: make(map[string]domain.AlertProvider),
		chats:  make(map[string]domain.ChatProvider),
	}
}

// RegisterAlert registers p under name for the alert capability.
// Re-registering a name replaces the previous instance but does not change
// the default.
func (r *Registry) RegisterAlert(name string, p domain.AlertProvider) {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[key] = p
	if r.defaultAlert == "" {
		r.defaultAlert = key
	}
}

// RegisterChat registers p under name for the chat capability.
func (r *Registry) RegisterChat(name string, p domain.ChatProvider) {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[key] = p
	if r.defaultChat == "" {
		r.defaultChat = key
	}
}

// Alert resolves an alert provider by case-insensitive name. An empty name
// resolves the default.
func (r *Registry) Alert(name string) (domain.AlertProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := normalize(name)
	if key == "" {
		key = r.defaultAlert
	}
	p, ok := r.alerts[key]
	return p, ok
}

// Chat resolves a chat provider by case-insensitive name. An empty name
// resolves the default.
func (r *Registry) Chat(name string) (domain.ChatProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := normalize(name)
	if key == "" {
		key = r.defaultChat
	}
	p, ok := r.chats[key]
	return p, ok
}

// AlertNames returns the registered alert provider names.
func (r *Registry) AlertNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.alerts))
	for name := range r.alerts {
		names = append(names, name)
	}
	return names
}

// ChatNames returns the registered chat provider names.
func (r *Registry) ChatNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.chats))
	for name := range r.chats {
		names = append(names, name)
	}
	return names
}

// Shutdown tears down every registered provider concurrently. A provider
// registered under both capabilities (or under multiple names) is shut down
// exactly once.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	seen := make(map[domain.StreamerConnector]struct{})
	var targets []domain.StreamerConnector
	for _, p := range r.alerts {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			targets = append(targets, p)
		}
	}
	for _, p := range r.chats {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			targets = append(targets, p)
		}
	}
	r.mu.Unlock()

	var group errgroup.Group
	for _, p := range targets {
		group.Go(func() error {
			slog.Debug("shutting down provider", "provider", p.ProviderName())
			p.Shutdown()
			return nil
		})
	}
	_ = group.Wait()
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
