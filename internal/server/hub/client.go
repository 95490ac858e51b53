package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn the hub uses; tests substitute an
// in-memory pipe.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one websocket connection joined to a canvas room.
type Client struct {
	ID         string
	UserID     string
	Username   string
	ProfilePic string

	conn     Conn
	send     chan []byte
	lastSeen time.Time
}

const sendBufferSize = 256

func newClient(id string, conn Conn, userID, username, profilePic string) *Client {
	return &Client{
		ID:         id,
		UserID:     userID,
		Username:   username,
		ProfilePic: profilePic,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		lastSeen:   time.Now(),
	}
}

// writePump drains the send channel onto the websocket. It exits when the
// channel is closed by the hub, closing the connection behind it.
func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		message, ok := <-c.send
		if !ok {
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// enqueue hands a payload to the write pump without blocking. A full buffer
// means the client cannot keep up; the payload is dropped and the caller is
// told so it can disconnect the laggard.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}
