package app

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
	"github.com/aetherhyt/HyStreamAlerts/internal/registry"
	"github.com/aetherhyt/HyStreamAlerts/internal/store"
)

type fakeProvider struct {
	name        string
	connects    []string
	disconnects int
	connected   bool
}

func (p *fakeProvider) Connect(_ uuid.UUID, connectionID string, _ domain.Resolver) error {
	p.connects = append(p.connects, connectionID)
	p.connected = true
	return nil
}

func (p *fakeProvider) Disconnect(uuid.UUID) {
	p.disconnects++
	p.connected = false
}

func (p *fakeProvider) IsConnected(uuid.UUID) bool          { return p.connected }
func (p *fakeProvider) Shutdown()                           {}
func (p *fakeProvider) ProviderName() string                { return p.name }
func (p *fakeProvider) SetAlertHandler(domain.AlertHandler) {}
func (p *fakeProvider) SetChatHandler(domain.ChatHandler)   {}

func testApp(t *testing.T) (*App, *fakeProvider, *fakeProvider) {
	t.Helper()
	alerts := &fakeProvider{name: "Botrix"}
	chat := &fakeProvider{name: "BotrixChat"}

	reg := registry.New()
	reg.RegisterAlert("botrix", alerts)
	reg.RegisterChat("botrix", chat)

	st := store.New(filepath.Join(t.TempDir(), "subscribers.json"))
	return New(reg, st), alerts, chat
}

func noopResolver() (domain.LiveRef, bool) { return nil, false }

func TestApp_ConnectAlertsUsesStoredBroadcastID(t *testing.T) {
	a, alerts, _ := testApp(t)
	id := uuid.New()
	a.Store.SetBroadcastID(id, "stream42")

	require.NoError(t, a.ConnectAlerts(id, "botrix", noopResolver))
	assert.Equal(t, []string{"stream42"}, alerts.connects)
}

func TestApp_ConnectAlertsWithoutBroadcastID(t *testing.T) {
	a, _, _ := testApp(t)

	err := a.ConnectAlerts(uuid.New(), "", noopResolver)
	assert.ErrorIs(t, err, ErrNoConnectionID)
}

func TestApp_ConnectUnknownProvider(t *testing.T) {
	a, _, _ := testApp(t)
	id := uuid.New()
	a.Store.SetBroadcastID(id, "stream42")

	err := a.ConnectAlerts(id, "nope", noopResolver)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestApp_ConnectChatUsesStoredChatIDs(t *testing.T) {
	a, _, chat := testApp(t)
	id := uuid.New()
	a.Store.SetChatIDs(id, "111,222")

	require.NoError(t, a.ConnectChat(id, "", noopResolver))
	assert.Equal(t, []string{"111,222"}, chat.connects)
}

func TestApp_DisconnectReachesAllProviders(t *testing.T) {
	a, alerts, chat := testApp(t)
	id := uuid.New()

	a.Disconnect(id)
	assert.Equal(t, 1, alerts.disconnects)
	assert.Equal(t, 1, chat.disconnects)
}

func TestApp_Status(t *testing.T) {
	a, alerts, _ := testApp(t)
	id := uuid.New()

	a.Store.SetEnabled(id, true)
	a.Store.SetBroadcastID(id, "stream42")
	require.NoError(t, a.ConnectAlerts(id, "", noopResolver))

	st := a.Status(id)
	assert.True(t, st.Enabled)
	assert.Equal(t, "stream42", st.BroadcastID)
	assert.Empty(t, st.ChatIDs)
	assert.Equal(t, []string{alerts.name}, st.Connected)
}
