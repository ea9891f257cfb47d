// Package store keeps per-subscriber alert configuration and persists it to
// a flat JSON document.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aetherhyt/HyStreamAlerts/internal/flatjson"
)

// Store holds the enabled flag and per-provider connection ids for each
// subscriber. Every mutating call persists immediately; when the write
// fails, the in-memory state stays authoritative and the next mutation
// retries.
type Store struct {
	mu           sync.Mutex
	path         string
	enabled      map[uuid.UUID]struct{}
	broadcastIDs map[uuid.UUID]string
	chatIDs      map[uuid.UUID]string
}

func New(path string) *Store {
	return &Store{
		path:         path,
		enabled:      make(map[uuid.UUID]struct{}),
		broadcastIDs: make(map[uuid.UUID]string),
		chatIDs:      make(map[uuid.UUID]string),
	}
}

// Load reads the persisted document at the store's path. A missing file is
// a clean empty state. Entries whose UUID fails to parse are skipped, not
// fatal.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading subscriber config: %w", err)
	}
	text := string(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	// a load replaces in-memory state instead of merging into it
	s.enabled = make(map[uuid.UUID]struct{})
	s.broadcastIDs = make(map[uuid.UUID]string)
	s.chatIDs = make(map[uuid.UUID]string)

	if slice, ok := flatjson.ExtractArray(text, "enabled"); ok {
		for _, raw := range flatjson.Strings(slice) {
			id, err := uuid.Parse(raw)
			if err != nil {
				slog.Warn("skipping unparsable subscriber id", "section", "enabled", "value", raw)
				continue
			}
			s.enabled[id] = struct{}{}
		}
	}
	loadIDMap(text, "broadcastIds", s.broadcastIDs)
	loadIDMap(text, "chatIds", s.chatIDs)
	return nil
}

func loadIDMap(text, section string, dst map[uuid.UUID]string) {
	slice, ok := flatjson.ExtractObject(text, section)
	if !ok {
		return
	}
	parts := flatjson.Strings(slice)
	for i := 0; i+1 < len(parts); i += 2 {
		id, err := uuid.Parse(parts[i])
		if err != nil {
			slog.Warn("skipping unparsable subscriber id", "section", section, "value", parts[i])
			continue
		}
		dst[id] = parts[i+1]
	}
}

// SetEnabled flips the subscriber's alert flag and persists.
func (s *Store) SetEnabled(subscriberID uuid.UUID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.enabled[subscriberID] = struct{}{}
	} else {
		delete(s.enabled, subscriberID)
	}
	s.save()
}

// IsEnabled reports whether alerts are enabled for the subscriber.
func (s *Store) IsEnabled(subscriberID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.enabled[subscriberID]
	return ok
}

// EnabledSubscribers returns all subscribers with the flag set.
func (s *Store) EnabledSubscribers() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(s.enabled))
	for id := range s.enabled {
		out = append(out, id)
	}
	return out
}

// SetBroadcastID stores the subscriber's alert-feed broadcast id and
// persists. An empty id removes the entry.
func (s *Store) SetBroadcastID(subscriberID uuid.UUID, broadcastID string) {
	s.setID(s.broadcastIDs, subscriberID, broadcastID)
}

// BroadcastID returns the subscriber's alert-feed broadcast id.
func (s *Store) BroadcastID(subscriberID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.broadcastIDs[subscriberID]
	return id, ok
}

// SetChatIDs stores the subscriber's chat id(s), comma-separated for dual
// id schemes, and persists. An empty value removes the entry.
func (s *Store) SetChatIDs(subscriberID uuid.UUID, chatIDs string) {
	s.setID(s.chatIDs, subscriberID, chatIDs)
}

// ChatIDs returns the subscriber's chat id(s).
func (s *Store) ChatIDs(subscriberID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.chatIDs[subscriberID]
	return id, ok
}

func (s *Store) setID(dst map[uuid.UUID]string, subscriberID uuid.UUID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(dst, subscriberID)
	} else {
		dst[subscriberID] = value
	}
	s.save()
}

// save writes the current state. Caller holds s.mu. IO failure is logged;
// memory stays authoritative.
func (s *Store) save() {
	if err := os.WriteFile(s.path, []byte(s.encode()), 0o600); err != nil {
		slog.Error("persisting subscriber config", "path", s.path, "error", err)
	}
}

// encode renders the document with sorted keys so writes are deterministic.
func (s *Store) encode() string {
	var b strings.Builder
	b.WriteString(`{"enabled":[`)

	enabled := make([]string, 0, len(s.enabled))
	for id := range s.enabled {
		enabled = append(enabled, id.String())
	}
	sort.Strings(enabled)
	for i, id := range enabled {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q", id)
	}

	b.WriteString(`],"broadcastIds":`)
	encodeIDMap(&b, s.broadcastIDs)
	b.WriteString(`,"chatIds":`)
	encodeIDMap(&b, s.chatIDs)
	b.WriteString("}")
	return b.String()
}

func encodeIDMap(b *strings.Builder, m map[uuid.UUID]string) {
	keys := make([]string, 0, len(m))
	byKey := make(map[string]string, len(m))
	for id, value := range m {
		key := id.String()
		keys = append(keys, key)
		byKey[key] = value
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%q:%q", key, byKey[key])
	}
	b.WriteByte('}')
}
