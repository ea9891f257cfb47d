// Package botrix implements the two Botrix-backed providers: the
// proprietary AUTH/PING/MSG alert feed and the Pusher-style chat relay.
// Both ride on the generic connection state machine in internal/connector.
package botrix
