// Package channel implements the Connection Manager component.
//
// The Connection Manager:
//   - Owns the socket lifecycle (open/close/send) and the connection state
//   - Resolves the credential fresh on every attempt and binds it to the URL
//   - Sends a keep-alive ping on a fixed interval while open
//   - Schedules a single flat-delay reconnection after an unexpected close
//   - Decodes incoming frames and hands envelopes to the Event Dispatcher
//
// State machine: Idle -activate-> Connecting -open-> Open -close-> Closed
// -timer-> Connecting. Deactivate returns to Idle from any state, cancelling
// every timer and the socket.
package channel
