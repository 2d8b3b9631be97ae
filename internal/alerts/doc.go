// Package alerts maps incoming envelopes to user-facing notifications.
//
// Reactions registered here turn match and message envelopes into toast
// payloads; rendering is behind the Sender interface so the channel stack
// never depends on a display backend.
package alerts
