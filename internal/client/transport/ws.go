// Package transport implements the engine's realtime Channel over a
// websocket to the canvas server, reconnecting with exponential backoff and
// resubscribing when the connection drops.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
)

// TokenSource supplies the current access token for dialing.
type TokenSource interface {
	AccessToken() string
}

// Channel is one canvas's realtime connection. Create one per joined canvas;
// private canvases need the same password used to join.
type Channel struct {
	logger    logging.Logger
	serverURL string
	tokens    TokenSource
	password  string

	mu          sync.Mutex
	conn        *websocket.Conn
	closed      bool
	onReconnect func()
}

func NewChannel(logger logging.Logger, serverURL string, tokens TokenSource, password string) *Channel {
	return &Channel{
		logger:    logger,
		serverURL: strings.TrimRight(serverURL, "/"),
		tokens:    tokens,
		password:  password,
	}
}

// Subscribe dials the canvas endpoint and starts a read loop that hands every
// event to the handler. The returned function tears the connection down; a
// dropped connection is redialed with exponential backoff until then.
func (c *Channel) Subscribe(ctx context.Context, canvasID string, handler func(wire.Event)) (func(), error) {
	conn, err := c.dial(ctx, canvasID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.mu.Unlock()

	go c.readLoop(ctx, canvasID, handler)

	return func() {
		c.mu.Lock()
		c.closed = true
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.mu.Unlock()
	}, nil
}

// OnReconnect registers a callback invoked after a dropped connection has
// been redialed. The read loop does not resume until the callback returns,
// so the subscriber can reconcile events missed during the gap before new
// ones arrive.
func (c *Channel) OnReconnect(fn func()) {
	c.mu.Lock()
	c.onReconnect = fn
	c.mu.Unlock()
}

// Publish sends an event on the live connection.
func (c *Channel) Publish(ctx context.Context, canvasID string, ev wire.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return fmt.Errorf("canvas %s: not connected", canvasID)
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Channel) dial(ctx context.Context, canvasID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/canvases/" + canvasID

	q := u.Query()
	q.Set("token", c.tokens.AccessToken())
	if c.password != "" {
		q.Set("password", c.password)
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing canvas %s: %w", canvasID, err)
	}
	return conn, nil
}

func (c *Channel) readLoop(ctx context.Context, canvasID string, handler func(wire.Event)) {
	for {
		c.mu.Lock()
		conn := c.conn
		closed := c.closed
		c.mu.Unlock()
		if closed || conn == nil {
			return
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !c.reconnect(ctx, canvasID) {
				return
			}
			continue
		}

		var ev wire.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			c.logger.Warn(ctx, "dropping malformed event", "canvas", canvasID, "error", err.Error())
			continue
		}
		handler(ev)
	}
}

// reconnect redials until it succeeds, the backoff gives up, or the channel
// is closed. Reports whether the read loop should continue.
func (c *Channel) reconnect(ctx context.Context, canvasID string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	c.logger.Warn(ctx, "connection lost, reconnecting", "canvas", canvasID)

	err := backoff.Retry(func() error {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return backoff.Permanent(fmt.Errorf("channel closed"))
		}
		c.mu.Unlock()

		conn, err := c.dial(ctx, canvasID)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		return nil
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))

	if err != nil {
		c.logger.Error(ctx, "reconnect failed", "canvas", canvasID, "error", err.Error())
		return false
	}
	c.logger.Info(ctx, "reconnected", "canvas", canvasID)

	c.mu.Lock()
	fn := c.onReconnect
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
	return true
}
