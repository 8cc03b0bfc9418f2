package network

import (
	"sync"
	"time"

	"wasteland-server/pkg/api"
)

// Значения по умолчанию для пинга
const (
	DefaultPingInterval = 5 * time.Second
	DefaultPongTimeout  = 15 * time.Second
)

// Liveness следит за здоровьем соединения по PING/PONG.
// Соединение нездорово, если ответа не было дольше timeout.
type Liveness struct {
	mu       sync.Mutex
	timeout  time.Duration
	nonce    uint64
	lastPong time.Time
	latency  time.Duration
}

func NewLiveness(timeout time.Duration, now time.Time) *Liveness {
	if timeout <= 0 {
		timeout = DefaultPongTimeout
	}
	return &Liveness{timeout: timeout, lastPong: now}
}

// NextPing готовит очередной пинг.
func (l *Liveness) NextPing(now time.Time) api.PingPayload {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nonce++
	return api.PingPayload{Nonce: l.nonce, SentAt: now.UnixNano()}
}

// Pong учитывает ответ. Задержка = время получения понга - время отправки пинга.
func (l *Liveness) Pong(p api.PongPayload, now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastPong = now
	l.latency = now.Sub(time.Unix(0, p.SentAt))
	if l.latency < 0 {
		l.latency = 0
	}
	return l.latency
}

func (l *Liveness) Healthy(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.lastPong) <= l.timeout
}

func (l *Liveness) Latency() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latency
}
