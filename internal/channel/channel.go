package channel

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/regami/realtime/internal/dispatch"
	"github.com/regami/realtime/internal/envelope"
	"github.com/regami/realtime/internal/session"
)

// Channel is the persistent notification connection to the Regami backend.
//
// A single event loop goroutine owns the socket, the state machine, and both
// timers (heartbeat, reconnect). Consumers interact through Activate,
// Deactivate, Send and the read-only status surface; they never touch the
// transport directly. All failures are absorbed here: the only terminal
// state is Idle, reached solely via Deactivate.
type Channel struct {
	cfg    Config
	tokens session.TokenSource
	events *dispatch.Dispatcher
	logger *slog.Logger

	cmds chan command

	// Read-side surface, updated by the loop, safe to read from any goroutine.
	state    atomic.Int32
	lastEnv  atomic.Pointer[envelope.Envelope]
	lastPong atomic.Int64 // unix ms, 0 = never

	framesReceived atomic.Uint64
	framesSent     atomic.Uint64
	pingsSent      atomic.Uint64
	droppedSends   atomic.Uint64
	decodeErrors   atomic.Uint64
	dialAttempts   atomic.Uint64
}

// New creates a channel. Run must be called before Activate has any effect.
func New(cfg Config, tokens session.TokenSource, events *dispatch.Dispatcher, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}

	return &Channel{
		cfg:    cfg,
		tokens: tokens,
		events: events,
		logger: logger.With("channel_id", uuid.NewString()),
		cmds:   make(chan command, 64),
	}
}

// Activate asks the channel to become connected. Re-entrant: while already
// Connecting or Open (or with a retry pending) this is a no-op. A missing
// credential makes the attempt quietly not happen.
func (c *Channel) Activate() {
	c.post(command{kind: cmdActivate})
}

// Deactivate cancels any pending reconnection, stops the heartbeat, closes
// an open connection, and returns to Idle. Idempotent.
func (c *Channel) Deactivate() {
	c.post(command{kind: cmdDeactivate})
}

// Send encodes and transmits a message if the channel is Open; otherwise the
// message is dropped silently and counted. It never blocks and never fails
// the caller, and nothing is queued for later delivery.
func (c *Channel) Send(msgType string, data any) {
	frame, err := envelope.Encode(msgType, data)
	if err != nil {
		c.logger.Warn("dropping unencodable message", "type", msgType, "error", err)
		c.droppedSends.Add(1)
		return
	}
	c.post(command{kind: cmdSend, frame: frame})
}

// post hands a command to the event loop without blocking the caller.
func (c *Channel) post(cmd command) {
	select {
	case c.cmds <- cmd:
	default:
		c.logger.Warn("command buffer full, dropping command", "kind", int(cmd.kind))
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	return State(c.state.Load())
}

// Connected reports whether the channel is currently Open.
func (c *Channel) Connected() bool {
	return c.State() == StateOpen
}

// LastEnvelope returns the most recently received envelope, if any.
func (c *Channel) LastEnvelope() (envelope.Envelope, bool) {
	env := c.lastEnv.Load()
	if env == nil {
		return envelope.Envelope{}, false
	}
	return *env, true
}

// Stats returns a snapshot of channel counters.
func (c *Channel) Stats() Stats {
	s := Stats{
		FramesReceived: c.framesReceived.Load(),
		FramesSent:     c.framesSent.Load(),
		PingsSent:      c.pingsSent.Load(),
		DroppedSends:   c.droppedSends.Load(),
		DecodeErrors:   c.decodeErrors.Load(),
		DialAttempts:   c.dialAttempts.Load(),
	}
	if ms := c.lastPong.Load(); ms > 0 {
		s.LastPongAt = time.UnixMilli(ms)
	}
	return s
}

// loopState is everything the event loop owns. Only the loop goroutine
// touches it, so no locking is needed.
type loopState struct {
	active  bool
	attempt uint64

	dialCancel context.CancelFunc

	conn     *websocket.Conn
	frames   chan readFrame
	pumpQuit chan struct{}

	heartbeat  *time.Ticker
	heartbeatC <-chan time.Time

	reconnect  *time.Timer
	reconnectC <-chan time.Time
}

// Run executes the event loop until ctx is cancelled. It always returns nil;
// connection failures are retried, never surfaced.
func (c *Channel) Run(ctx context.Context) error {
	dials := make(chan dialResult, 1)
	var st loopState

	for {
		select {
		case <-ctx.Done():
			c.teardown(&st)
			return nil

		case cmd := <-c.cmds:
			switch cmd.kind {
			case cmdActivate:
				if st.active {
					c.logger.Debug("activate ignored, already active", "state", c.State())
					continue
				}
				st.active = true
				c.beginAttempt(ctx, &st, dials)

			case cmdDeactivate:
				c.teardown(&st)

			case cmdSend:
				if c.State() != StateOpen || st.conn == nil {
					c.droppedSends.Add(1)
					c.logger.Debug("send while not open, dropping", "state", c.State())
					continue
				}
				if c.write(&st, cmd.frame) {
					c.framesSent.Add(1)
				}
			}

		case res := <-dials:
			c.handleDialResult(ctx, &st, dials, res)

		case <-st.heartbeatC:
			c.sendPing(&st)

		case <-st.reconnectC:
			st.reconnect = nil
			st.reconnectC = nil
			if !st.active {
				continue
			}
			c.logger.Info("reconnect timer fired")
			c.beginAttempt(ctx, &st, dials)

		case fr := <-st.frames:
			if fr.err != nil {
				c.handleClose(&st, fr.err)
				continue
			}
			c.handleFrame(fr.data)
		}
	}
}

// beginAttempt starts one asynchronous connection attempt. Token resolution
// and the handshake run off the loop so Deactivate stays immediate.
func (c *Channel) beginAttempt(ctx context.Context, st *loopState, dials chan dialResult) {
	st.attempt++
	c.setState(StateConnecting)

	dialCtx, cancel := context.WithCancel(ctx)
	st.dialCancel = cancel

	go c.dial(dialCtx, st.attempt, dials)
}

// dial resolves the credential and opens the socket for one attempt.
func (c *Channel) dial(ctx context.Context, attempt uint64, dials chan<- dialResult) {
	c.dialAttempts.Add(1)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		dials <- dialResult{attempt: attempt, err: err}
		return
	}
	if token == "" {
		dials <- dialResult{attempt: attempt, err: ErrNoCredential}
		return
	}

	wsURL, err := BuildWSURL(c.cfg.BaseURL, token)
	if err != nil {
		dials <- dialResult{attempt: attempt, err: err}
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		dials <- dialResult{attempt: attempt, err: err}
		return
	}

	dials <- dialResult{attempt: attempt, conn: conn}
}

// handleDialResult applies the outcome of an attempt, discarding stale ones.
func (c *Channel) handleDialResult(ctx context.Context, st *loopState, dials chan dialResult, res dialResult) {
	if res.attempt != st.attempt || !st.active {
		// A deactivate (or newer attempt) won the race.
		if res.conn != nil {
			res.conn.Close()
		}
		return
	}
	if st.dialCancel != nil {
		// The handshake is done; releasing the attempt context does not
		// affect the established connection.
		st.dialCancel()
		st.dialCancel = nil
	}

	if errors.Is(res.err, ErrNoCredential) {
		// Expected while logged out: no attempt, no retry until the next
		// activation trigger.
		c.logger.Info("no credential available, staying idle")
		st.active = false
		c.setState(StateIdle)
		return
	}

	if res.err != nil {
		c.logger.Warn("connection attempt failed", "error", res.err)
		c.setState(StateClosed)
		c.scheduleReconnect(st)
		return
	}

	st.conn = res.conn
	st.frames = make(chan readFrame)
	st.pumpQuit = make(chan struct{})
	go c.readPump(st.conn, st.frames, st.pumpQuit)

	c.setState(StateOpen)
	c.startHeartbeat(st)
	c.logger.Info("channel open")

	// Synthetic connected reaction so consumers can respond to (re)connection
	// even before the server's own welcome envelope arrives.
	c.events.Publish(envelope.Envelope{
		Type:      envelope.TypeConnected,
		Data:      json.RawMessage(`{}`),
		Timestamp: envelope.EpochMillis(time.Now().UnixMilli()),
	})
}

// handleFrame decodes and dispatches one incoming frame. Malformed frames
// are counted and dropped; they never close the connection.
func (c *Channel) handleFrame(data []byte) {
	c.framesReceived.Add(1)

	env, err := envelope.Decode(data)
	if err != nil {
		c.decodeErrors.Add(1)
		c.logger.Warn("discarding malformed frame", "error", err)
		return
	}

	c.lastEnv.Store(&env)
	if env.Type == envelope.TypePong {
		c.lastPong.Store(time.Now().UnixMilli())
	}

	c.events.Publish(env)
}

// handleClose reacts to the transport dropping: stop the heartbeat, move to
// Closed, and schedule exactly one retry if the channel is still active.
func (c *Channel) handleClose(st *loopState, err error) {
	c.logger.Warn("connection closed", "error", err)

	c.stopHeartbeat(st)
	c.closeConn(st)
	c.setState(StateClosed)

	if st.active {
		c.scheduleReconnect(st)
	}
}

// scheduleReconnect arms the single retry timer with the flat delay.
func (c *Channel) scheduleReconnect(st *loopState) {
	if st.reconnect != nil {
		// At most one pending retry.
		return
	}
	st.reconnect = time.NewTimer(c.cfg.ReconnectDelay)
	st.reconnectC = st.reconnect.C
	c.logger.Info("reconnect scheduled", "delay", c.cfg.ReconnectDelay)
}

// sendPing emits one keep-alive frame if the connection is still open.
func (c *Channel) sendPing(st *loopState) {
	if c.State() != StateOpen || st.conn == nil {
		return
	}
	frame, err := envelope.Encode(envelope.TypePing, nil)
	if err != nil {
		return
	}
	if c.write(st, frame) {
		c.pingsSent.Add(1)
	}
}

// write sends one frame on the open socket. Write failures are logged only;
// the read pump observes the broken transport and drives the close path.
func (c *Channel) write(st *loopState, frame []byte) bool {
	st.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := st.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn("write failed", "error", err)
		return false
	}
	return true
}

func (c *Channel) startHeartbeat(st *loopState) {
	st.heartbeat = time.NewTicker(c.cfg.HeartbeatInterval)
	st.heartbeatC = st.heartbeat.C
}

func (c *Channel) stopHeartbeat(st *loopState) {
	if st.heartbeat != nil {
		st.heartbeat.Stop()
		st.heartbeat = nil
		st.heartbeatC = nil
	}
}

// closeConn tears down the socket and its read pump.
func (c *Channel) closeConn(st *loopState) {
	if st.pumpQuit != nil {
		close(st.pumpQuit)
		st.pumpQuit = nil
	}
	if st.conn != nil {
		st.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		st.conn.Close()
		st.conn = nil
	}
	st.frames = nil
}

// teardown is the single cancellation point: it leaves zero outstanding
// timers, no pending dial, and a closed socket, then returns to Idle.
func (c *Channel) teardown(st *loopState) {
	st.active = false

	if st.dialCancel != nil {
		st.dialCancel()
		st.dialCancel = nil
	}
	if st.reconnect != nil {
		st.reconnect.Stop()
		st.reconnect = nil
		st.reconnectC = nil
	}
	c.stopHeartbeat(st)
	c.closeConn(st)

	c.setState(StateIdle)
}

// readPump reads frames off the socket and feeds the loop until the
// connection drops or the loop abandons this connection.
func (c *Channel) readPump(conn *websocket.Conn, frames chan<- readFrame, quit <-chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case frames <- readFrame{err: err}:
			case <-quit:
			}
			return
		}

		select {
		case frames <- readFrame{data: data}:
		case <-quit:
			return
		}
	}
}

// setState records a state transition.
func (c *Channel) setState(next State) {
	prev := State(c.state.Swap(int32(next)))
	if prev != next {
		c.logger.Debug("state transition", "from", prev, "to", next)
	}
}
