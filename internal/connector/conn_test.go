package connector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhyt/HyStreamAlerts/internal/domain"
)

// --- fakes ---

type fakeTransport struct {
	mu     sync.Mutex
	writes []string
	pongs  [][]byte
	closed bool
	sink   func(Event)
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

func (t *fakeTransport) WritePong(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pongs = append(t.pongs, data)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	sink := t.sink
	t.mu.Unlock()
	// mirror the real transport: the read loop observes the closure
	if sink != nil {
		sink(Event{Kind: EventClosed})
	}
	return nil
}

func (t *fakeTransport) sentTexts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.writes))
	copy(out, t.writes)
	return out
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

type fakeDialer struct {
	mu         sync.Mutex
	failsLeft  int
	transports []*fakeTransport
	dials      int
}

func (d *fakeDialer) Dial(_ context.Context, sink func(Event)) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.failsLeft > 0 {
		d.failsLeft--
		return nil, errors.New("dial refused")
	}
	t := &fakeTransport{sink: sink}
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) transport(i int) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.transports) {
		return nil
	}
	return d.transports[i]
}

type recordingProto struct {
	mu     sync.Mutex
	opened int
	msgs   []string
}

func (p *recordingProto) Opened(*Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened++
}

func (p *recordingProto) Message(_ *Conn, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, text)
}

func (p *recordingProto) messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	copy(out, p.msgs)
	return out
}

func (p *recordingProto) openCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened
}

func testConn(t *testing.T, dialer *fakeDialer, clock clockwork.Clock) (*Conn, *recordingProto) {
	t.Helper()
	proto := &recordingProto{}
	conn := newConn("test", uuid.New(), "bid-1", proto, dialer, clock)
	t.Cleanup(conn.disconnect)
	return conn, proto
}

func waitConnected(t *testing.T, c *Conn) {
	t.Helper()
	require.Eventually(t, c.IsConnected, time.Second, time.Millisecond)
}

// --- tests ---

func TestConn_ConnectOpensProtocol(t *testing.T) {
	dialer := &fakeDialer{}
	conn, proto := testConn(t, dialer, clockwork.NewFakeClock())

	go conn.connect()
	waitConnected(t, conn)
	assert.Equal(t, 1, proto.openCount())
}

func TestConn_FragmentsAssembledInOrder(t *testing.T) {
	dialer := &fakeDialer{}
	conn, proto := testConn(t, dialer, clockwork.NewFakeClock())

	go conn.connect()
	waitConnected(t, conn)

	sink := dialer.transport(0).sink
	sink(Event{Kind: EventText, Text: `{"type":`, Final: false})
	sink(Event{Kind: EventText, Text: `"PING"}`, Final: true})

	assert.Equal(t, []string{`{"type":"PING"}`}, proto.messages())

	// buffer cleared between logical messages
	sink(Event{Kind: EventText, Text: `{"a":1}`, Final: true})
	assert.Equal(t, []string{`{"type":"PING"}`, `{"a":1}`}, proto.messages())
}

func TestConn_TransportPingGetsPong(t *testing.T) {
	dialer := &fakeDialer{}
	conn, _ := testConn(t, dialer, clockwork.NewFakeClock())

	go conn.connect()
	waitConnected(t, conn)

	transport := dialer.transport(0)
	transport.sink(Event{Kind: EventPing, Data: []byte("hb")})

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.pongs, 1)
	assert.Equal(t, []byte("hb"), transport.pongs[0])
}

func TestConn_ReconnectsAfterClose(t *testing.T) {
	dialer := &fakeDialer{}
	clock := clockwork.NewFakeClock()
	conn, proto := testConn(t, dialer, clock)

	go conn.connect()
	waitConnected(t, conn)

	dialer.transport(0).sink(Event{Kind: EventClosed, Err: errors.New("eof")})
	assert.False(t, conn.IsConnected())

	clock.Advance(ReconnectDelay)
	waitConnected(t, conn)
	assert.Equal(t, 2, dialer.dialCount())
	assert.Equal(t, 2, proto.openCount())
}

func TestConn_DialFailureSchedulesRetry(t *testing.T) {
	dialer := &fakeDialer{failsLeft: 1}
	clock := clockwork.NewFakeClock()
	conn, _ := testConn(t, dialer, clock)

	go conn.connect()
	require.Eventually(t, func() bool { return dialer.dialCount() == 1 }, time.Second, time.Millisecond)
	assert.False(t, conn.IsConnected())

	// wait for the retry timer to be armed before advancing
	clock.BlockUntil(1)
	clock.Advance(ReconnectDelay)
	waitConnected(t, conn)
	assert.Equal(t, 2, dialer.dialCount())
}

func TestConn_DisconnectCancelsScheduledReconnect(t *testing.T) {
	dialer := &fakeDialer{}
	clock := clockwork.NewFakeClock()
	conn, _ := testConn(t, dialer, clock)

	go conn.connect()
	waitConnected(t, conn)

	// lose the transport, a reconnect is now pending
	dialer.transport(0).sink(Event{Kind: EventClosed, Err: errors.New("eof")})
	conn.disconnect()

	clock.Advance(ReconnectDelay * 3)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount())
	assert.False(t, conn.IsConnected())
}

func TestConn_DisconnectIsIdempotent(t *testing.T) {
	dialer := &fakeDialer{}
	conn, _ := testConn(t, dialer, clockwork.NewFakeClock())

	go conn.connect()
	waitConnected(t, conn)

	conn.disconnect()
	conn.disconnect()
	assert.False(t, conn.IsConnected())
	assert.True(t, dialer.transport(0).isClosed())
}

func TestConn_SendRequiresTransport(t *testing.T) {
	conn, _ := testConn(t, &fakeDialer{}, clockwork.NewFakeClock())
	assert.ErrorIs(t, conn.Send("x"), ErrNotConnected)
}

func TestConn_HeartbeatFiresAndStopsOnDisconnect(t *testing.T) {
	dialer := &fakeDialer{}
	clock := clockwork.NewFakeClock()
	conn, _ := testConn(t, dialer, clock)

	go conn.connect()
	waitConnected(t, conn)

	var mu sync.Mutex
	beats := 0
	conn.StartHeartbeat(30*time.Second, func(*Conn) {
		mu.Lock()
		beats++
		mu.Unlock()
	})

	clock.BlockUntil(1)
	clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return beats == 1
	}, time.Second, time.Millisecond)

	conn.disconnect()
	clock.Advance(90 * time.Second)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, beats)
}

func TestManager_ConnectTearsDownSameID(t *testing.T) {
	dialer := &fakeDialer{}
	clock := clockwork.NewFakeClock()
	m := NewManager("test", dialer, clock, func(uuid.UUID, string, domain.Resolver) Protocol {
		return &recordingProto{}
	})
	t.Cleanup(m.Shutdown)

	sub := uuid.New()
	require.NoError(t, m.Connect(sub, "bid-1", nil))
	require.Eventually(t, func() bool { return m.IsConnected(sub) }, time.Second, time.Millisecond)

	first := dialer.transport(0)
	require.NoError(t, m.Connect(sub, "bid-1", nil))
	require.Eventually(t, func() bool { return dialer.dialCount() == 2 }, time.Second, time.Millisecond)

	// the old transport was closed before the replacement was established
	assert.True(t, first.isClosed())
	require.Eventually(t, func() bool { return m.IsConnected(sub) }, time.Second, time.Millisecond)
}

func TestManager_DisconnectRemovesAllSubscriberConnections(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManager("test", dialer, clockwork.NewFakeClock(), func(uuid.UUID, string, domain.Resolver) Protocol {
		return &recordingProto{}
	})
	t.Cleanup(m.Shutdown)

	sub := uuid.New()
	// a subscriber misconfigured under two connection ids
	require.NoError(t, m.Connect(sub, "bid-1", nil))
	require.NoError(t, m.Connect(sub, "bid-2", nil))
	require.Eventually(t, func() bool { return dialer.dialCount() == 2 }, time.Second, time.Millisecond)

	m.Disconnect(sub)
	assert.False(t, m.IsConnected(sub))
	assert.True(t, dialer.transport(0).isClosed())
	assert.True(t, dialer.transport(1).isClosed())
}

func TestManager_IsConnectedUnknownSubscriber(t *testing.T) {
	m := NewManager("test", &fakeDialer{}, clockwork.NewFakeClock(), func(uuid.UUID, string, domain.Resolver) Protocol {
		return &recordingProto{}
	})
	t.Cleanup(m.Shutdown)
	assert.False(t, m.IsConnected(uuid.New()))
}

func TestManager_Shutdown(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManager("test", dialer, clockwork.NewFakeClock(), func(uuid.UUID, string, domain.Resolver) Protocol {
		return &recordingProto{}
	})

	subA, subB := uuid.New(), uuid.New()
	require.NoError(t, m.Connect(subA, "bid-1", nil))
	require.NoError(t, m.Connect(subB, "bid-2", nil))
	require.Eventually(t, func() bool { return m.IsConnected(subA) && m.IsConnected(subB) }, time.Second, time.Millisecond)

	m.Shutdown()
	assert.False(t, m.IsConnected(subA))
	assert.False(t, m.IsConnected(subB))
}
