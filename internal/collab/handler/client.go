package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BenZehavi423/smart-dashboard/pkg/logger"
	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

// wsClient owns one websocket connection: a single writer goroutine drains
// the buffered send channel so lock-table mutations never wait on a socket.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan model.ServerEvent
	done chan struct{}
	log  *logger.Logger

	writeWait time.Duration
	pongWait  time.Duration
	readLimit int64

	closeOnce sync.Once
}

func newWSClient(id string, conn *websocket.Conn, bufferSize int, readLimit int64, writeWait, pongWait time.Duration, log *logger.Logger) *wsClient {
	return &wsClient{
		id:        id,
		conn:      conn,
		send:      make(chan model.ServerEvent, bufferSize),
		done:      make(chan struct{}),
		log:       log,
		writeWait: writeWait,
		pongWait:  pongWait,
		readLimit: readLimit,
	}
}

// TrySend enqueues an event without blocking. A full buffer means the client
// has stopped draining; the connection is torn down so the read loop fails
// and normal disconnect reconciliation runs.
func (c *wsClient) TrySend(evt model.ServerEvent) bool {
	select {
	case <-c.done:
		return false
	case c.send <- evt:
		return true
	default:
		c.log.Warn("Send buffer full, closing connection", "connection_id", c.id)
		_ = c.Close()
		return false
	}
}

// Close shuts the connection down. Idempotent.
func (c *wsClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
	return nil
}

// writePump is the connection's single writer. It also keeps the connection
// alive with periodic pings.
func (c *wsClient) writePump() {
	pingPeriod := c.pongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case evt := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteJSON(evt); err != nil {
				c.log.Warn("Websocket write failed",
					"connection_id", c.id,
					"event", evt.Event,
					"error", err,
				)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads inbound frames until the connection dies, handing each
// decoded envelope to onMessage. It returns once the transport is gone; the
// caller runs disconnect reconciliation after.
func (c *wsClient) readPump(onMessage func(raw []byte)) {
	defer func() {
		_ = c.Close()
	}()

	c.conn.SetReadLimit(c.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read failed", "connection_id", c.id, "error", err)
			}
			return
		}
		onMessage(raw)
	}
}
