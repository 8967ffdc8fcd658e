package observe

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Watchers only send control frames
	maxMessageSize = 512

	sendBuffer = 64
)

// connection is one watcher.
type connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	clock     quartz.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, logger *log.Logger, clock quartz.Clock) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		conn:   conn,
		send:   make(chan *Message, sendBuffer),
		logger: logger,
		clock:  clock,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *connection) start() {
	go c.writePump()
	go c.readPump()
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}

// enqueue queues msg, dropping the watcher if it has fallen too far behind.
func (c *connection) enqueue(msg *Message) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("Watcher send buffer full, closing connection")
		c.close()
		return false
	}
}

// readPump discards anything the watcher sends; the feed is read-only. It
// exists to process control frames and notice disconnects.
func (c *connection) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Watcher read error", "error", err)
			}
			return
		}
	}
}

func (c *connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}
			if msg.Type == MessageTypeGameEnded {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game ended"))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
