package app

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
)

// SubscriberRef is the standalone deployment's live handle: the bare
// subscriber id, valid for as long as the process runs. An embedding host
// supplies its own Resolver whose validity tracks subscriber presence.
type SubscriberRef struct {
	ID uuid.UUID
}

func (SubscriberRef) Valid() bool { return true }

// StaticResolver yields the same always-valid SubscriberRef on every
// dispatch.
func StaticResolver(id uuid.UUID) domain.Resolver {
	ref := SubscriberRef{ID: id}
	return func() (domain.LiveRef, bool) { return ref, true }
}

// LogHandler is the default alert/chat sink: it logs every delivered event.
// An embedding host replaces it with its own presentation layer via
// SetAlertHandler/SetChatHandler.
type LogHandler struct{}

var (
	_ domain.AlertHandler = LogHandler{}
	_ domain.ChatHandler  = LogHandler{}
)

func (LogHandler) OnFollow(_ domain.LiveRef, follower, platform string) {
	slog.Info("follow alert", "follower", follower, "platform", platform)
}

func (LogHandler) OnSubscribe(_ domain.LiveRef, subscriber string, months int, platform string) {
	slog.Info("subscribe alert", "subscriber", subscriber, "months", months, "platform", platform)
}

func (LogHandler) OnGiftSub(_ domain.LiveRef, gifter string, count int, platform string) {
	slog.Info("gift sub alert", "gifter", gifter, "count", count, "platform", platform)
}

func (LogHandler) OnDonation(_ domain.LiveRef, donor, amount, platform string) {
	slog.Info("donation alert", "donor", donor, "amount", amount, "platform", platform)
}

func (LogHandler) OnRaid(_ domain.LiveRef, raider string, viewers int, platform string) {
	slog.Info("raid alert", "raider", raider, "viewers", viewers, "platform", platform)
}

func (LogHandler) OnMessage(_ domain.LiveRef, sender, text, platform string) {
	slog.Info("chat message", "sender", sender, "text", text, "platform", platform)
}
