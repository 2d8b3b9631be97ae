package alerts

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/regami/realtime/internal/dispatch"
	"github.com/regami/realtime/internal/envelope"
)

type captureSender struct {
	payloads []Payload
}

func (c *captureSender) Send(p Payload) {
	c.payloads = append(c.payloads, p)
}

func publish(d *dispatch.Dispatcher, msgType, data string) {
	env := envelope.Envelope{Type: msgType}
	if data != "" {
		env.Data = json.RawMessage(data)
	}
	d.Publish(env)
}

func setup(t *testing.T) (*dispatch.Dispatcher, *captureSender) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	d := dispatch.New(logger)
	sender := &captureSender{}
	Register(d, sender, logger)
	return d, sender
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func TestRegister_NewMatchIncludesDogName(t *testing.T) {
	d, sender := setup(t)

	publish(d, envelope.TypeNewMatch, `{"match_id":"m1","dog_name":"Rex"}`)

	if len(sender.payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(sender.payloads))
	}
	p := sender.payloads[0]
	if p.Title != "New match" {
		t.Errorf("unexpected title %q", p.Title)
	}
	if !strings.Contains(p.Content, "Rex") {
		t.Errorf("expected dog name in content, got %q", p.Content)
	}
}

func TestRegister_MatchLifecycleTitles(t *testing.T) {
	tests := []struct {
		msgType string
		title   string
	}{
		{envelope.TypeMatchAccepted, "Match accepted"},
		{envelope.TypeMatchConfirmed, "Match confirmed"},
		{envelope.TypeMatchRejected, "Match declined"},
	}

	for _, tt := range tests {
		t.Run(tt.msgType, func(t *testing.T) {
			d, sender := setup(t)
			publish(d, tt.msgType, `{"match_id":"m1","dog_name":"Luna"}`)
			if len(sender.payloads) != 1 {
				t.Fatalf("expected 1 payload, got %d", len(sender.payloads))
			}
			if sender.payloads[0].Title != tt.title {
				t.Errorf("expected title %q, got %q", tt.title, sender.payloads[0].Title)
			}
		})
	}
}

func TestRegister_NewMessageUsesSender(t *testing.T) {
	d, sender := setup(t)

	publish(d, envelope.TypeNewMessage, `{"sender_email":"alice@example.com","content":"see you at the park"}`)

	if len(sender.payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(sender.payloads))
	}
	p := sender.payloads[0]
	if p.Title != "New message from alice@example.com" {
		t.Errorf("unexpected title %q", p.Title)
	}
	if p.Content != "see you at the park" {
		t.Errorf("unexpected content %q", p.Content)
	}
}

func TestRegister_NotificationFallsBackToAppTitle(t *testing.T) {
	d, sender := setup(t)

	publish(d, envelope.TypeNotification, `{"message":"your profile was approved"}`)

	if len(sender.payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(sender.payloads))
	}
	if sender.payloads[0].Title != "Regami" {
		t.Errorf("expected fallback title, got %q", sender.payloads[0].Title)
	}
}

func TestRegister_MalformedPayloadStillNotifies(t *testing.T) {
	d, sender := setup(t)

	publish(d, envelope.TypeNewMatch, `"not an object"`)

	if len(sender.payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(sender.payloads))
	}
	if sender.payloads[0].Title != "New match" {
		t.Errorf("unexpected title %q", sender.payloads[0].Title)
	}
}

func TestRegister_IgnoresControlEnvelopes(t *testing.T) {
	d, sender := setup(t)

	publish(d, envelope.TypeConnected, `{}`)
	publish(d, envelope.TypePong, "")

	if len(sender.payloads) != 0 {
		t.Fatalf("expected no payloads for control envelopes, got %d", len(sender.payloads))
	}
}
