package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"wasteland-server/internal/network"
	"wasteland-server/internal/version"
	"wasteland-server/pkg/logger"
)

// ErrSlotTaken - к хосту уже подключен пир. Сессия рассчитана ровно на двоих.
var ErrSlotTaken = errors.New("peer slot is taken")

// HostSlot - транспорт хоста поверх WebSocket. Пир подключается позже,
// через HTTP-обработчик; до этого Send возвращает ErrNotOpen.
// Слот одноразовый: после ухода пира новый не принимается.
type HostSlot struct {
	mu      sync.Mutex
	handler func([]byte)
	conn    *wsConn

	done      chan struct{}
	closeOnce sync.Once
}

func NewHostSlot() *HostSlot {
	return &HostSlot{done: make(chan struct{})}
}

func (s *HostSlot) OnMessage(handler func([]byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Open ничего не ждет: хост играет и без пира.
func (s *HostSlot) Open(ctx context.Context) error {
	select {
	case <-s.done:
		return network.ErrClosed
	default:
		return nil
	}
}

// Taken - пир уже был подключен.
func (s *HostSlot) Taken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Attach привязывает соединение пира к слоту.
func (s *HostSlot) Attach(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return ErrSlotTaken
	}
	c := newWSConn(conn, logger.For("ws").WithField("remote", conn.RemoteAddr().String()))
	s.conn = c
	c.start(s.handler)

	go func() {
		<-c.done
		s.closeOnce.Do(func() { close(s.done) })
	}()
	return nil
}

func (s *HostSlot) Send(data []byte) error {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c == nil {
		return network.ErrNotOpen
	}
	return c.write(data)
}

func (s *HostSlot) Done() <-chan struct{} {
	return s.done
}

func (s *HostSlot) Close() error {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c != nil {
		c.close()
	}
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// DialTransport - транспорт клиента: подключается к хосту по адресу ws://host:port/ws.
type DialTransport struct {
	URL string

	mu      sync.Mutex
	handler func([]byte)
	conn    *wsConn

	done      chan struct{}
	closeOnce sync.Once
}

func NewDialTransport(url string) *DialTransport {
	return &DialTransport{URL: url, done: make(chan struct{})}
}

func (d *DialTransport) OnMessage(handler func([]byte)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

func (d *DialTransport) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		return nil
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, d.URL, http.Header{"User-Agent": {version.UserAgent()}})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return ErrSlotTaken
		}
		return err
	}
	c := newWSConn(conn, logger.For("ws").WithField("remote", d.URL))
	d.conn = c
	c.start(d.handler)

	go func() {
		<-c.done
		d.closeOnce.Do(func() { close(d.done) })
	}()
	return nil
}

func (d *DialTransport) Send(data []byte) error {
	d.mu.Lock()
	c := d.conn
	d.mu.Unlock()
	if c == nil {
		return network.ErrNotOpen
	}
	return c.write(data)
}

func (d *DialTransport) Done() <-chan struct{} {
	return d.done
}

func (d *DialTransport) Close() error {
	d.mu.Lock()
	c := d.conn
	d.mu.Unlock()
	if c != nil {
		c.close()
	}
	d.closeOnce.Do(func() { close(d.done) })
	return nil
}
