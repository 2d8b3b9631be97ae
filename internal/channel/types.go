package channel

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrNoCredential = errors.New("no credential available")
)

// State is the connection lifecycle state. Exactly one per channel;
// transitions drive all timer side effects.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config configures a notification channel.
type Config struct {
	BaseURL           string        // HTTP(S) base address; scheme is upgraded to ws(s)
	HeartbeatInterval time.Duration // ping cadence while open
	ReconnectDelay    time.Duration // flat delay between close and the single retry
	HandshakeTimeout  time.Duration // dial deadline
	WriteTimeout      time.Duration // write deadline for outgoing frames
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 30 * time.Second,
		ReconnectDelay:    5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      5 * time.Second,
	}
}

// Stats is a snapshot of channel counters.
type Stats struct {
	FramesReceived uint64
	PingsSent      uint64
	FramesSent     uint64
	DroppedSends   uint64
	DecodeErrors   uint64
	DialAttempts   uint64
	LastPongAt     time.Time // zero if no pong received yet
}

// command kinds posted to the event loop.
type cmdKind int

const (
	cmdActivate cmdKind = iota
	cmdDeactivate
	cmdSend
)

// command is an instruction for the event loop. Posting never blocks the
// caller; the loop owns all connection state.
type command struct {
	kind  cmdKind
	frame []byte // encoded envelope for cmdSend
}

// dialResult is the outcome of one asynchronous connection attempt.
type dialResult struct {
	attempt uint64
	conn    *websocket.Conn
	err     error
}

// readFrame is one incoming frame (or terminal read error) from the pump.
type readFrame struct {
	data []byte
	err  error
}
