package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

const sendBuffer = 256

// Client is one live channel to a seated player.
type Client struct {
	UserID string
	GameID string
	Conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID, gameID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		GameID: gameID,
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// close signals the write pump to stop. The send channel itself is
// never closed, so queued sends racing a detach are harmless.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ReadPump feeds inbound frames to the handler until the connection
// drops, then detaches the client from the registry.
func (c *Client) ReadPump(registry *Registry, handle func(*Client, []byte)) {
	defer func() {
		registry.Detach(c)
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		handle(c, data)
	}
}

// WritePump drains the send channel onto the wire until the client is
// closed.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
