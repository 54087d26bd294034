package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps a websocket connection. Reads happen on the connection's own
// event loop; writes can come from any other connection's loop, so they are
// serialized with a mutex.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewClient wraps a websocket connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// SendEvent pushes an event to the connected client
func (c *Client) SendEvent(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{Event: event, Data: data})
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// ReadEnvelope blocks until the next inbound event frame
func (c *Client) ReadEnvelope() (*Envelope, error) {
	var env Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return nil, err
	}
	return &env, nil
}
