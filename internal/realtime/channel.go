package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
	"github.com/shef088/Hospital-Management-System-sub001/internal/ids"
	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/transport"
)

// State is the channel's connection phase.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	}
	return "unknown"
}

// ErrAuthRejected is returned when the server explicitly refuses the
// handshake credential. It is not retried; the session must be renewed.
var ErrAuthRejected = errors.New("realtime authentication rejected")

type handshake struct {
	Token    *string `json:"token"`
	ClientID string  `json:"clientId"`
}

type handshakeAck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type envelope struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Channel maintains the single shared notification socket for the whole
// session: connect with the current token, retry transient failures with
// capped exponential backoff, and hand received events to the sink in
// arrival order. The token is re-read from the session store on every
// attempt, never cached here.
type Channel struct {
	cfg      config.RealtimeConfig
	tokens   transport.TokenSource
	clientID string
	log      zerolog.Logger

	sink         func(models.Notification)
	onAuthReject func()

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	cancel    context.CancelFunc
	running   bool
	stateSubs []func(State)
}

func New(cfg config.RealtimeConfig, tokens transport.TokenSource, log zerolog.Logger) *Channel {
	return &Channel{
		cfg:      cfg,
		tokens:   tokens,
		clientID: ids.New(),
		log:      log.With().Str("component", "realtime").Logger(),
	}
}

// SetSink registers the consumer of notification events. Events are
// delivered sequentially from the read loop; no deduplication happens
// here or downstream.
func (c *Channel) SetSink(fn func(models.Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = fn
}

// SetAuthRejectHook registers the callback fired when the server refuses
// the handshake. The UI layer surfaces it as requiring re-authentication.
func (c *Channel) SetAuthRejectHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthReject = fn
}

// SubscribeState registers fn for every state transition.
func (c *Channel) SubscribeState(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateSubs = append(c.stateSubs, fn)
}

// State returns the current connection phase.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	subs := make([]func(State), len(c.stateSubs))
	copy(subs, c.stateSubs)
	c.mu.Unlock()
	c.log.Debug().Str("state", s.String()).Msg("channel state")
	for _, fn := range subs {
		fn(s)
	}
}

// Start brings the connection up lazily. There is only ever one socket:
// calling Start while the run loop is alive is a no-op.
func (c *Channel) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()
	go c.run(ctx)
}

// Disconnect tears the socket down and stops reconnecting. Fired when the
// session is cleared.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.running = false
	c.mu.Unlock()
	c.setState(StateDisconnected)
}

func (c *Channel) run(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)

		conn, err := c.dial(ctx)
		if errors.Is(err, ErrAuthRejected) {
			c.mu.Lock()
			c.running = false
			if c.cancel != nil {
				c.cancel()
				c.cancel = nil
			}
			hook := c.onAuthReject
			c.mu.Unlock()
			c.setState(StateDisconnected)
			c.log.Warn().Msg("handshake rejected, not retrying")
			if hook != nil {
				hook()
			}
			return
		}
		if err != nil {
			attempt++
			if !c.waitBackoff(ctx, attempt, err) {
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.setState(StateConnected)
		attempt = 0

		err = c.readLoop(ctx, conn)
		conn.Close()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Msg("connection lost")
		attempt++
		if !c.waitBackoff(ctx, attempt, err) {
			return
		}
	}
}

func (c *Channel) waitBackoff(ctx context.Context, attempt int, cause error) bool {
	c.setState(StateReconnecting)
	d := Backoff(attempt, c.cfg.BackoffMin, c.cfg.BackoffMax)
	c.log.Debug().Err(cause).Int("attempt", attempt).Dur("wait", d).Msg("reconnect scheduled")
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// Backoff returns the delay before reconnect attempt n (1-based):
// min doubled per attempt, capped at max.
func Backoff(attempt int, min, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := min
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// dial opens the socket and performs the authentication handshake with a
// token read fresh from the session store. An anonymous session sends a
// null credential; the server decides whether to accept it.
func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	var tok *string
	if c.tokens != nil {
		if t := c.tokens(); t != "" {
			tok = &t
		}
	}

	deadline := time.Now().Add(c.cfg.HandshakeTimeout)
	conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(handshake{Token: tok, ClientID: c.clientID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake send: %w", err)
	}

	conn.SetReadDeadline(deadline)
	var ack handshakeAck
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake ack: %w", err)
	}
	if ack.Status != "ok" {
		conn.Close()
		if ack.Status == "unauthorized" {
			return nil, fmt.Errorf("%w: %s", ErrAuthRejected, ack.Message)
		}
		return nil, fmt.Errorf("handshake refused: %s %s", ack.Status, ack.Message)
	}

	conn.SetWriteDeadline(time.Time{})
	conn.SetReadDeadline(time.Time{})
	return conn, nil
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) error {
	if c.cfg.PingInterval > 0 {
		conn.SetReadDeadline(time.Now().Add(2 * c.cfg.PingInterval))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(2 * c.cfg.PingInterval))
		})

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(c.cfg.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
			}
		}()
	}

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return err
		}
		if env.Type != "notification" {
			continue
		}
		n, err := decodeNotification(env.Data)
		if err != nil {
			c.log.Warn().Err(err).Msg("undecodable event dropped")
			continue
		}
		c.mu.Lock()
		sink := c.sink
		c.mu.Unlock()
		if sink != nil {
			sink(n)
		}
	}
}

func decodeNotification(data map[string]any) (models.Notification, error) {
	var n models.Notification
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &n,
		TagName:    "json",
	})
	if err != nil {
		return n, err
	}
	if err := dec.Decode(data); err != nil {
		return n, fmt.Errorf("decode notification: %w", err)
	}
	return n, nil
}
