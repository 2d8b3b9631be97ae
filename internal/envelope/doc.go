// Package envelope implements the wire codec for the notification channel.
//
// Every frame is a JSON object {type, data, timestamp}. The type tag drives
// dispatch; data shape depends on the type and is opaque here. Unknown type
// tags are valid envelopes - consumers without a handler simply ignore them.
package envelope
