// Package connector implements the generic per-subscriber connection state
// machine shared by the websocket-backed providers.
//
// A Conn owns one upstream feed: it dials, hands protocol work to a Protocol,
// buffers fragmented text frames, schedules reconnects after failures, and
// tears everything down deterministically on disconnect. A Manager keys Conns
// by connection id and enforces the one-live-connection-per-id invariant.
//
// Transports deliver inbound activity as Event values to a single dispatch
// function, so the whole state machine is testable without a live socket.
package connector
