package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// ErrConnectionClosed is returned when sending to a client that has gone away
var ErrConnectionClosed = errors.New("connection closed")

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
)

// client is one game connection. Outbound messages are queued and written by
// writePump so only one goroutine ever writes to the socket.
type client struct {
	conn *websocket.Conn
	send chan string

	closeOnce sync.Once
	done      chan struct{}
}

var _ model.Conn = (*client)(nil)

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan string, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues message for delivery to the game client
func (c *client) Send(ctx context.Context, message string) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears down the socket. Safe to call more than once.
func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	defer c.Close()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
