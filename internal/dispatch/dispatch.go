package dispatch

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/regami/realtime/internal/envelope"
)

// Handler reacts to the data payload of one envelope.
type Handler func(data json.RawMessage)

// Dispatcher fans incoming envelopes out to registered reactions.
// Handlers for the same type run in registration order; a panicking handler
// is recovered so it cannot prevent other handlers from running.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New creates an empty Dispatcher.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for a message type. Multiple handlers per
// type are allowed; there is no uniqueness constraint.
func (d *Dispatcher) Subscribe(msgType string, h Handler) {
	if msgType == "" || h == nil {
		return
	}

	d.mu.Lock()
	d.handlers[msgType] = append(d.handlers[msgType], h)
	d.mu.Unlock()
}

// Publish invokes all handlers registered for the envelope's type, in
// registration order, with the envelope's data. An envelope with no
// registered handler is discarded without error.
func (d *Dispatcher) Publish(env envelope.Envelope) {
	d.mu.RLock()
	handlers := d.handlers[env.Type]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.logger.Debug("no handlers for envelope", "type", env.Type)
		return
	}

	for _, h := range handlers {
		d.invoke(env.Type, h, env.Data)
	}
}

// invoke runs a single handler, isolating panics.
func (d *Dispatcher) invoke(msgType string, h Handler, data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				"type", msgType,
				"panic", r,
			)
		}
	}()

	h(data)
}
