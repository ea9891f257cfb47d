package connector

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	maxFrameSize     = 512 << 10 // 512 KB
)

// WebsocketDialer dials a fixed URL with gorilla/websocket and pumps inbound
// frames into the connection's event dispatch.
type WebsocketDialer struct {
	URL string
}

// Dial opens the websocket and starts the read loop. gorilla reassembles
// fragmented frames internally, so text events always arrive Final.
func (d *WebsocketDialer) Dial(ctx context.Context, sink func(Event)) (Transport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	conn.SetReadLimit(maxFrameSize)
	conn.SetPingHandler(func(appData string) error {
		sink(Event{Kind: EventPing, Data: []byte(appData)})
		return nil
	})

	t := &wsTransport{conn: conn}
	go t.readLoop(sink)
	return t, nil
}

type wsTransport struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (t *wsTransport) WriteText(text string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *wsTransport) WritePong(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteControl(websocket.PongMessage, data, time.Now().Add(writeTimeout))
}

// Close attempts a graceful close frame, then drops the socket. The read
// loop observes the closure and emits EventClosed.
func (t *wsTransport) Close() error {
	t.writeMu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "disconnecting"),
		time.Now().Add(writeTimeout))
	t.writeMu.Unlock()
	return t.conn.Close()
}

func (t *wsTransport) readLoop(sink func(Event)) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			sink(Event{Kind: EventClosed, Err: err})
			return
		}
		if msgType == websocket.TextMessage {
			sink(Event{Kind: EventText, Text: string(data), Final: true})
		}
	}
}
