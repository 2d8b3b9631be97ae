package alerts

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/regami/realtime/internal/dispatch"
	"github.com/regami/realtime/internal/envelope"
)

// Payload is a generic user-facing notification payload.
type Payload struct {
	Title   string
	Content string
}

// Sender sends notifications using a platform-specific backend.
type Sender interface {
	Send(payload Payload)
}

// matchData is the payload shape shared by all match lifecycle envelopes.
type matchData struct {
	MatchID string `json:"match_id"`
	DogName string `json:"dog_name"`
}

// messageData is the new_message payload.
type messageData struct {
	SenderEmail string `json:"sender_email"`
	Content     string `json:"content"` // preview, server truncates
}

// notificationData is the generic notification payload.
type notificationData struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Register subscribes user-facing reactions for the envelope types that
// warrant a toast. Payload parse failures fall back to a generic text; a
// notification is always better than a dropped one.
func Register(d *dispatch.Dispatcher, sender Sender, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	d.Subscribe(envelope.TypeNewMatch, func(data json.RawMessage) {
		var m matchData
		unmarshalLoose(logger, envelope.TypeNewMatch, data, &m)
		sender.Send(Payload{
			Title:   "New match",
			Content: withDog("You have a new match request", m.DogName),
		})
	})

	d.Subscribe(envelope.TypeMatchAccepted, func(data json.RawMessage) {
		var m matchData
		unmarshalLoose(logger, envelope.TypeMatchAccepted, data, &m)
		sender.Send(Payload{
			Title:   "Match accepted",
			Content: withDog("Your match request was accepted", m.DogName),
		})
	})

	d.Subscribe(envelope.TypeMatchConfirmed, func(data json.RawMessage) {
		var m matchData
		unmarshalLoose(logger, envelope.TypeMatchConfirmed, data, &m)
		sender.Send(Payload{
			Title:   "Match confirmed",
			Content: withDog("Your match is confirmed", m.DogName),
		})
	})

	d.Subscribe(envelope.TypeMatchRejected, func(data json.RawMessage) {
		sender.Send(Payload{
			Title:   "Match declined",
			Content: "Your match request was declined",
		})
	})

	d.Subscribe(envelope.TypeNewMessage, func(data json.RawMessage) {
		var m messageData
		unmarshalLoose(logger, envelope.TypeNewMessage, data, &m)
		title := "New message"
		if m.SenderEmail != "" {
			title = fmt.Sprintf("New message from %s", m.SenderEmail)
		}
		sender.Send(Payload{Title: title, Content: m.Content})
	})

	d.Subscribe(envelope.TypeNotification, func(data json.RawMessage) {
		var n notificationData
		unmarshalLoose(logger, envelope.TypeNotification, data, &n)
		if n.Title == "" {
			n.Title = "Regami"
		}
		sender.Send(Payload{Title: n.Title, Content: n.Message})
	})
}

func unmarshalLoose(logger *slog.Logger, msgType string, data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("unparseable reaction payload", "type", msgType, "error", err)
	}
}

func withDog(base, dogName string) string {
	if dogName == "" {
		return base
	}
	return fmt.Sprintf("%s for %s", base, dogName)
}
