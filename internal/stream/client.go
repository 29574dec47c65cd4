package stream

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second

	// sendBuffer is the number of payloads queued per client before it is
	// considered too slow and dropped.
	sendBuffer = 32
)

var (
	// ErrClientClosed is returned by Send after Close.
	ErrClientClosed = errors.New("stream client closed")

	// ErrSlowClient is returned by Send when the client's queue is full.
	ErrSlowClient = errors.New("stream client too slow")
)

// Client represents a websocket client connection. Payloads are queued by
// Send and written by the client's own write loop.
type Client struct {
	conn      *websocket.Conn
	log       *slog.Logger
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client wrapper and starts its write loop.
func NewClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		conn: conn,
		log:  logger,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Send queues a message without blocking.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.log.Warn("websocket client queue full, dropping client")
		return ErrSlowClient
	}
}

// Close stops the write loop, which sends a close frame and terminates the
// connection. It never blocks.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) writeLoop() {
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Warn("websocket send failed", "error", err)
				c.Close()
				return
			}
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

// drain reads until the peer goes away. Incoming messages are ignored; reading
// is required for control frames to be processed.
func (c *Client) drain() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
