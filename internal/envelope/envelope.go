package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Errors
var (
	ErrEmptyFrame  = errors.New("empty frame")
	ErrMissingType = errors.New("envelope missing type")
)

// Server → client message types.
const (
	TypeConnected      = "connected"
	TypePong           = "pong"
	TypeNewMatch       = "new_match"
	TypeMatchAccepted  = "match_accepted"
	TypeMatchConfirmed = "match_confirmed"
	TypeMatchRejected  = "match_rejected"
	TypeNewMessage     = "new_message"
	TypeNotification   = "notification"
)

// Client → server message types.
const (
	TypePing = "ping"
)

// Envelope is the discrete unit exchanged over the notification channel.
// Data is opaque to the channel; only registered reactions interpret it.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp EpochMillis     `json:"timestamp,omitempty"`
}

// EpochMillis can unmarshal from a JSON integer, float, or timestamp string.
// The backend sends timestamps as epoch milliseconds, but older builds emit
// event-loop float seconds or ISO 8601 strings.
type EpochMillis int64

func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	// Try as integer first
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*e = EpochMillis(i)
		return nil
	}

	// Try as float (event-loop seconds)
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*e = EpochMillis(f * 1000)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Integer string
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*e = EpochMillis(i)
		return nil
	}

	// ISO 8601 (e.g., "2025-11-11T12:00:00")
	t, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	*e = EpochMillis(t.UnixMilli())
	return nil
}

// parseTimestamp accepts RFC 3339 and the server's zone-less ISO 8601 form.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

// Time converts to a time.Time.
func (e EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(e))
}

// Decode parses a raw text frame into an Envelope.
// A decode failure means the single frame is discarded; it is never a
// connection-level error.
func Decode(raw []byte) (Envelope, error) {
	if len(raw) == 0 {
		return Envelope{}, ErrEmptyFrame
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}

	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}

	return env, nil
}

// Encode builds a raw text frame for an outgoing message. A nil data payload
// is omitted, so Encode(TypePing, nil) produces {"type":"ping"}.
func Encode(msgType string, data any) ([]byte, error) {
	if msgType == "" {
		return nil, ErrMissingType
	}

	var rawData json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal data: %w", err)
		}
		rawData = encoded
	}

	raw, err := json.Marshal(Envelope{Type: msgType, Data: rawData})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return raw, nil
}
