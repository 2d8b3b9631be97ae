package envelope

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
		wantTS   int64
		wantErr  bool
	}{
		{
			name:     "connected envelope",
			raw:      `{"type":"connected","data":{"message":"WebSocket connected","user_id":"u-1"},"timestamp":1000}`,
			wantType: TypeConnected,
			wantTS:   1000,
		},
		{
			name:     "new message envelope",
			raw:      `{"type":"new_message","data":{"sender_email":"a@b.com"},"timestamp":2000}`,
			wantType: TypeNewMessage,
			wantTS:   2000,
		},
		{
			name:     "pong without data",
			raw:      `{"type":"pong"}`,
			wantType: TypePong,
		},
		{
			name:     "unknown type is still a valid envelope",
			raw:      `{"type":"server_maintenance","data":{},"timestamp":3000}`,
			wantType: "server_maintenance",
			wantTS:   3000,
		},
		{
			name:    "invalid json",
			raw:     `{not json`,
			wantErr: true,
		},
		{
			name:    "missing type",
			raw:     `{"data":{},"timestamp":1000}`,
			wantErr: true,
		},
		{
			name:    "empty frame",
			raw:     ``,
			wantErr: true,
		},
		{
			name:    "wrong type shape",
			raw:     `{"type":42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) expected error, got %+v", tt.raw, env)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.raw, err)
			}
			if env.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", env.Type, tt.wantType)
			}
			if int64(env.Timestamp) != tt.wantTS {
				t.Errorf("Timestamp = %d, want %d", env.Timestamp, tt.wantTS)
			}
		})
	}
}

func TestDecode_MissingTypeSentinel(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	if !errors.Is(err, ErrMissingType) {
		t.Errorf("err = %v, want ErrMissingType", err)
	}
}

func TestEpochMillis_FlexibleFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"integer millis", `1731326400000`, 1731326400000},
		{"float seconds", `1234.5`, 1234500},
		{"integer string", `"1731326400000"`, 1731326400000},
		{
			"rfc3339",
			`"2025-11-11T12:00:00Z"`,
			time.Date(2025, 11, 11, 12, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			"iso8601 without zone",
			`"2025-11-11T12:00:00"`,
			time.Date(2025, 11, 11, 12, 0, 0, 0, time.UTC).UnixMilli(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e EpochMillis
			if err := json.Unmarshal([]byte(tt.raw), &e); err != nil {
				t.Fatalf("unmarshal %s failed: %v", tt.raw, err)
			}
			if int64(e) != tt.want {
				t.Errorf("EpochMillis = %d, want %d", e, tt.want)
			}
		})
	}

	var e EpochMillis
	if err := json.Unmarshal([]byte(`"not a timestamp"`), &e); err == nil {
		t.Error("expected error for garbage timestamp string")
	}
}

func TestEncode_Ping(t *testing.T) {
	raw, err := Encode(TypePing, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(raw) != `{"type":"ping"}` {
		t.Errorf("Encode(ping) = %s, want {\"type\":\"ping\"}", raw)
	}
}

func TestEncode_WithData(t *testing.T) {
	raw, err := Encode("ack", map[string]string{"id": "m-1"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode of encoded frame failed: %v", err)
	}
	if env.Type != "ack" {
		t.Errorf("Type = %q, want %q", env.Type, "ack")
	}

	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["id"] != "m-1" {
		t.Errorf("data.id = %q, want %q", data["id"], "m-1")
	}
}

func TestEncode_EmptyType(t *testing.T) {
	if _, err := Encode("", nil); !errors.Is(err, ErrMissingType) {
		t.Errorf("err = %v, want ErrMissingType", err)
	}
}
