package botrix

import (
	"context"
	"errors"
	"sync"

	"github.com/aetherhyt/HyStreamAlerts/internal/connector"
	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
)

// Shared fakes for the provider tests: an in-memory transport that records
// outbound frames and lets tests inject inbound ones, plus capturing
// handlers and a stub live reference.

type fakeTransport struct {
	mu     sync.Mutex
	writes []string
	closed bool
	sink   func(connector.Event)
}

func (t *fakeTransport) WriteText(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transport closed")
	}
	t.writes = append(t.writes, text)
	return nil
}

func (t *fakeTransport) WritePong([]byte) error { return nil }

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	sink := t.sink
	t.mu.Unlock()
	if sink != nil {
		sink(connector.Event{Kind: connector.EventClosed})
	}
	return nil
}

// receive injects a complete inbound text frame.
func (t *fakeTransport) receive(text string) {
	t.sink(connector.Event{Kind: connector.EventText, Text: text, Final: true})
}

func (t *fakeTransport) sentTexts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.writes))
	copy(out, t.writes)
	return out
}

type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
}

func (d *fakeDialer) Dial(_ context.Context, sink func(connector.Event)) (connector.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := &fakeTransport{sink: sink}
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) transport(i int) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.transports) {
		return nil
	}
	return d.transports[i]
}

type stubRef struct{ valid bool }

func (r stubRef) Valid() bool { return r.valid }

func liveResolver() domain.Resolver {
	return func() (domain.LiveRef, bool) { return stubRef{valid: true}, true }
}

func goneResolver() domain.Resolver {
	return func() (domain.LiveRef, bool) { return nil, false }
}

func invalidRefResolver() domain.Resolver {
	return func() (domain.LiveRef, bool) { return stubRef{valid: false}, true }
}

type alertCall struct {
	kind     domain.AlertKind
	actor    string
	platform string
	number   int
	amount   string
}

type captureAlertHandler struct {
	mu    sync.Mutex
	calls []alertCall
}

func (h *captureAlertHandler) OnFollow(_ domain.LiveRef, follower, platform string) {
	h.record(alertCall{kind: domain.AlertFollow, actor: follower, platform: platform})
}

func (h *captureAlertHandler) OnSubscribe(_ domain.LiveRef, subscriber string, months int, platform string) {
	h.record(alertCall{kind: domain.AlertSubscribe, actor: subscriber, platform: platform, number: months})
}

func (h *captureAlertHandler) OnGiftSub(_ domain.LiveRef, gifter string, count int, platform string) {
	h.record(alertCall{kind: domain.AlertGiftSub, actor: gifter, platform: platform, number: count})
}

func (h *captureAlertHandler) OnDonation(_ domain.LiveRef, donor, amount, platform string) {
	h.record(alertCall{kind: domain.AlertDonation, actor: donor, platform: platform, amount: amount})
}

func (h *captureAlertHandler) OnRaid(_ domain.LiveRef, raider string, viewers int, platform string) {
	h.record(alertCall{kind: domain.AlertRaid, actor: raider, platform: platform, number: viewers})
}

func (h *captureAlertHandler) record(c alertCall) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
}

func (h *captureAlertHandler) recorded() []alertCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]alertCall, len(h.calls))
	copy(out, h.calls)
	return out
}

type chatCall struct {
	sender   string
	message  string
	platform string
}

type captureChatHandler struct {
	mu    sync.Mutex
	calls []chatCall
}

func (h *captureChatHandler) OnMessage(_ domain.LiveRef, sender, message, platform string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, chatCall{sender: sender, message: message, platform: platform})
}

func (h *captureChatHandler) recorded() []chatCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]chatCall, len(h.calls))
	copy(out, h.calls)
	return out
}
