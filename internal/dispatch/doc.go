// Package dispatch implements the Event Dispatcher component.
//
// The Event Dispatcher:
//   - Maps envelope type tags to registered reaction callbacks
//   - Preserves registration order for handlers of the same type
//   - Isolates handler panics so one bad reaction cannot stop the rest
//   - Ignores envelopes with no registered handler
package dispatch
