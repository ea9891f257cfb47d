package domain

// AlertKind enumerates the recognized alert categories.
type AlertKind int

const (
	AlertFollow AlertKind = iota
	AlertSubscribe
	AlertGiftSub
	AlertDonation
	AlertRaid
)

func (k AlertKind) String() string {
	switch k {
	case AlertFollow:
		return "follow"
	case AlertSubscribe:
		return "subscribe"
	case AlertGiftSub:
		return "gift_sub"
	case AlertDonation:
		return "donation"
	case AlertRaid:
		return "raid"
	default:
		return "unknown"
	}
}

// AlertEvent is a normalized stream alert. Only the detail field matching
// Kind is meaningful: Months for subscriptions, Count for gifted subs,
// Amount for donations (raw, possibly empty), Viewers for raids.
type AlertEvent struct {
	Kind     AlertKind
	Actor    string
	Platform string
	Months   int
	Count    int
	Amount   string
	Viewers  int
}

// Dispatch routes the event to the matching AlertHandler method.
func (e AlertEvent) Dispatch(ref LiveRef, h AlertHandler) {
	switch e.Kind {
	case AlertFollow:
		h.OnFollow(ref, e.Actor, e.Platform)
	case AlertSubscribe:
		h.OnSubscribe(ref, e.Actor, e.Months, e.Platform)
	case AlertGiftSub:
		h.OnGiftSub(ref, e.Actor, e.Count, e.Platform)
	case AlertDonation:
		h.OnDonation(ref, e.Actor, e.Amount, e.Platform)
	case AlertRaid:
		h.OnRaid(ref, e.Actor, e.Viewers, e.Platform)
	}
}

// ChatEvent is a normalized relayed chat message.
type ChatEvent struct {
	Sender   string
	Message  string
	Platform string
}

// AlertHandler consumes normalized alerts. Implementations render them to
// the subscriber; they are supplied by the host application.
type AlertHandler interface {
	OnFollow(ref LiveRef, follower, platform string)
	OnSubscribe(ref LiveRef, subscriber string, months int, platform string)
	OnGiftSub(ref LiveRef, gifter string, count int, platform string)
	OnDonation(ref LiveRef, donor, amount, platform string)
	OnRaid(ref LiveRef, raider string, viewers int, platform string)
}

// ChatHandler consumes normalized chat messages.
type ChatHandler interface {
	OnMessage(ref LiveRef, sender, message, platform string)
}
