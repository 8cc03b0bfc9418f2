package network

import (
	"context"
	"sync"
)

const pipeBuffer = 256

// PipeEnd - один конец in-memory канала. Используется в тестах и в локальной игре без сети.
type PipeEnd struct {
	mu      sync.Mutex
	in      chan []byte
	peer    *PipeEnd
	handler func([]byte)
	open    bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewPipe создает пару связанных концов.
func NewPipe() (*PipeEnd, *PipeEnd) {
	a := &PipeEnd{in: make(chan []byte, pipeBuffer), done: make(chan struct{})}
	b := &PipeEnd{in: make(chan []byte, pipeBuffer), done: make(chan struct{})}
	a.peer, b.peer = b, a
	return a, b
}

func (p *PipeEnd) OnMessage(handler func([]byte)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = handler
}

// Open запускает доставку входящих сообщений.
func (p *PipeEnd) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	if p.open {
		return nil
	}
	p.open = true
	go p.deliver()
	return nil
}

func (p *PipeEnd) deliver() {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.in:
			p.mu.Lock()
			h := p.handler
			p.mu.Unlock()
			if h != nil {
				h(data)
			}
		}
	}
}

func (p *PipeEnd) Send(data []byte) error {
	p.mu.Lock()
	open := p.open
	p.mu.Unlock()
	if !open {
		return ErrNotOpen
	}

	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	msg := append([]byte(nil), data...)
	select {
	case <-p.done:
		return ErrClosed
	case <-p.peer.done:
		return ErrClosed
	case p.peer.in <- msg:
		return nil
	}
}

func (p *PipeEnd) Done() <-chan struct{} {
	return p.done
}

// Close закрывает оба конца: второй пир видит разрыв через Done.
func (p *PipeEnd) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	p.peer.closeOnce.Do(func() { close(p.peer.done) })
	return nil
}
