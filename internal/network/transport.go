package network

import (
	"context"
	"errors"
)

var (
	// ErrNotOpen - отправка до Open. Такие сообщения не теряются молча, вызывающий получает ошибку.
	ErrNotOpen = errors.New("transport is not open")
	// ErrClosed - канал закрыт одной из сторон.
	ErrClosed = errors.New("transport is closed")
)

// Transport - надежный упорядоченный двунаправленный канал ровно между двумя пирами.
// Сообщения доставляются обработчику OnMessage по одному и в порядке отправки.
type Transport interface {
	// Open устанавливает канал. OnMessage нужно зарегистрировать до Open.
	Open(ctx context.Context) error
	Send(data []byte) error
	OnMessage(handler func(data []byte))
	// Done закрывается, когда канал разорван (любой стороной).
	Done() <-chan struct{}
	Close() error
}
