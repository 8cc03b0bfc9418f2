package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"wasteland-server/internal/network"
)

// Настройки WebSocket
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Полный снимок состояния заметно больше команды
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

// wsConn - одно WebSocket-соединение с парой пампов.
// Порядок сообщений сохраняется: пишет только writePump, читает только readPump.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	log       *logrus.Entry
}

func newWSConn(conn *websocket.Conn, log *logrus.Entry) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

func (c *wsConn) start(handler func([]byte)) {
	go c.writePump()
	go c.readPump(handler)
}

func (c *wsConn) write(data []byte) error {
	select {
	case <-c.done:
		return network.ErrClosed
	default:
	}
	select {
	case <-c.done:
		return network.ErrClosed
	case c.send <- data:
		return nil
	}
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump читает сообщения пира
func (c *wsConn) readPump(handler func([]byte)) {
	defer func() {
		c.close()
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Peer disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Errorf("WS Error: %v", err)
			}
			return
		}
		if handler != nil {
			handler(data)
		}
	}
}

// writePump отправляет данные пиру + Ping
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case <-c.done:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err == nil {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			}
			return

		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("write message failed")
				c.close()
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				c.close()
				return
			}
		}
	}
}
