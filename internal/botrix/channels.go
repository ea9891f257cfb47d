package botrix

import "strings"

// ChannelNamer derives candidate channel names from the parsed chat id(s).
type ChannelNamer func(ids []string) []string

// SplitChatIDs parses a connection id into its one or two chat ids. The
// legacy dual-id scheme separates them with ',' or '|'.
func SplitChatIDs(connectionID string) []string {
	parts := strings.FieldsFunc(connectionID, func(r rune) bool {
		return r == ',' || r == '|'
	})
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// DefaultChannelNamer reproduces the known naming patterns. With a dual-id
// pair the second id addresses chatroom-style channels and the first
// channel-style ones; with a single id every pattern is tried against it.
// These templates are inferred from observed traffic, not a documented
// protocol, hence the over-subscription.
func DefaultChannelNamer(ids []string) []string {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		id := ids[0]
		return []string{
			"chatroom." + id + ".v2",
			"chatrooms." + id + ".v2",
			"chatroom_" + id,
			"channel." + id,
		}
	default:
		return []string{
			"chatrooms." + ids[1] + ".v2",
			"chatroom_" + ids[1],
			"channel." + ids[0],
			"channel_" + ids[0],
		}
	}
}

// TemplateNamer builds a ChannelNamer from templates containing {0} and {1}
// placeholders for the primary and secondary id. When only one id is
// present, {1} falls back to it. Templates whose placeholders cannot be
// filled are skipped.
func TemplateNamer(templates []string) ChannelNamer {
	return func(ids []string) []string {
		if len(ids) == 0 {
			return nil
		}
		primary := ids[0]
		secondary := primary
		if len(ids) > 1 {
			secondary = ids[1]
		}

		out := make([]string, 0, len(templates))
		for _, tmpl := range templates {
			channel := strings.ReplaceAll(tmpl, "{0}", primary)
			channel = strings.ReplaceAll(channel, "{1}", secondary)
			if channel != "" && !strings.Contains(channel, "{") {
				out = append(out, channel)
			}
		}
		return out
	}
}
