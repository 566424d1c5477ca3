package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mafianight/backend/internal/hub"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64

	// Minimum spacing between signaling relays per connection. Violations
	// are rejected, not disconnected.
	offerInterval     = 100 * time.Millisecond
	candidateInterval = 50 * time.Millisecond
)

// Client wraps one websocket connection. Outbound traffic goes through the
// buffered send channel and a single write pump, since gorilla connections
// allow only one concurrent writer.
type Client struct {
	id   string
	conn *websocket.Conn
	send hub.Client

	// closed guards the send channel's shutdown: a unicast may race the
	// connection's teardown, and a send on a closed channel panics.
	mu     sync.Mutex
	closed bool

	// Touched only from the connection's own read loop.
	lastSignal time.Time
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(hub.Client, sendBufferSize),
	}
}

// writePump drains the send channel onto the wire. It exits when the send
// channel is closed, closing the connection behind it.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// enqueue hands a message to the write pump without ever blocking the caller.
// Messages for a closed client are dropped.
func (c *Client) enqueue(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

// closeSend shuts the send channel down exactly once, stopping the write
// pump. Enqueues past this point are no-ops.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// allowSignal is the per-connection minimum-interval gate for the webrtc
// relay events. One timestamp covers all three event classes.
func (c *Client) allowSignal(minInterval time.Duration) bool {
	now := time.Now()
	if now.Sub(c.lastSignal) < minInterval {
		return false
	}
	c.lastSignal = now
	return true
}
