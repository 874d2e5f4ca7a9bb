package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/voxa-labs/voxcore/core/events"
)

// DefaultEndpoint is the remote conversational service socket.
const DefaultEndpoint = "wss://api.x.ai/v1/realtime"

// Conn is a persistent duplex socket to the remote service. Writes are
// serialized; reads happen on a single loop so frames are processed in the
// exact order the remote sent them.
type Conn struct {
	ws *websocket.Conn

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// Dial opens the transport. The bearer token rides in the subprotocol list
// rather than a request header; that is the remote service's authorization
// convention.
func Dial(ctx context.Context, endpoint, token string) (*Conn, error) {
	dialer := websocket.Dialer{
		Subprotocols: []string{
			"realtime",
			"openai-insecure-api-key." + token,
			"openai-beta.realtime-v1",
		},
	}

	ws, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open socket connection (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to open socket connection: %w", err)
	}

	return &Conn{ws: ws}, nil
}

func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("socket connection closed")
	}

	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to socket: %w", err)
	}
	return nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		_ = c.ws.Close()
	})
	return nil
}

// ReadLoop blocks, normalizing inbound frames and delivering them in arrival
// order. onClose fires exactly once when the socket ends; a normal remote
// close delivers a nil error.
func (c *Conn) ReadLoop(ctx context.Context, onEvent func(events.Event), onClose func(error)) {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				onClose(nil)
				return
			}

			c.mu.Lock()
			wasClosed := c.closed
			c.mu.Unlock()
			if wasClosed || ctx.Err() != nil {
				onClose(nil)
				return
			}

			onClose(fmt.Errorf("socket read failed: %w", err))
			return
		}

		event, err := ParseFrame(raw)
		if err != nil {
			logger.WarnContext(ctx, "dropping malformed frame", "error", err)
			continue
		}
		if event == nil {
			continue
		}

		onEvent(event)
	}
}
