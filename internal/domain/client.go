package domain

import (
	"sync"

	"github.com/gorilla/websocket"
)

const clientEventBuffer = 32

// Client is one live connection: the ephemeral session id plus the
// socket it writes to. Frames are delivered through a buffered channel
// drained by a single writer goroutine, so a stalled peer socket never
// back-pressures event processing.
type Client struct {
	SessionID string
	Socket    *websocket.Conn
	Events    chan Envelope

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(sessionID string, socket *websocket.Conn) *Client {
	return &Client{
		SessionID: sessionID,
		Socket:    socket,
		Events:    make(chan Envelope, clientEventBuffer),
		closed:    make(chan struct{}),
	}
}

// Enqueue hands a frame to the writer without blocking. A full buffer
// or a closed client drops the frame; delivery is at-most-once.
func (c *Client) Enqueue(env Envelope) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.Events <- env:
		return true
	default:
		return false
	}
}

// Closed reports the channel the writer goroutine selects on to stop.
func (c *Client) Closed() <-chan struct{} {
	return c.closed
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.Socket != nil {
			err = c.Socket.Close()
		}
	})
	return err
}
