package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/pkg/api"
)

func TestPipe_Order(t *testing.T) {
	a, b := NewPipe()
	got := make(chan string, 10)
	b.OnMessage(func(data []byte) { got <- string(data) })
	require.NoError(t, a.Open(context.Background()))
	require.NoError(t, b.Open(context.Background()))

	for _, m := range []string{"1", "2", "3"} {
		require.NoError(t, a.Send([]byte(m)))
	}
	for _, want := range []string{"1", "2", "3"} {
		select {
		case m := <-got:
			assert.Equal(t, want, m)
		case <-time.After(waitFor):
			t.Fatal("message lost")
		}
	}
}

func TestPipe_Close(t *testing.T) {
	a, b := NewPipe()
	require.NoError(t, a.Open(context.Background()))
	require.NoError(t, b.Close())

	select {
	case <-a.Done():
	default:
		t.Fatal("peer close not observed")
	}
	assert.ErrorIs(t, a.Send([]byte("x")), ErrClosed)
	assert.ErrorIs(t, a.Open(context.Background()), ErrClosed)
}

func TestLiveness(t *testing.T) {
	start := time.Unix(1000, 0)
	l := NewLiveness(10*time.Second, start)

	p1 := l.NextPing(start)
	p2 := l.NextPing(start)
	assert.Equal(t, p1.Nonce+1, p2.Nonce)

	lat := l.Pong(api.PongPayload(p2), start.Add(40*time.Millisecond))
	assert.Equal(t, 40*time.Millisecond, lat)
	assert.Equal(t, lat, l.Latency())

	assert.True(t, l.Healthy(start.Add(10*time.Second)))
	assert.False(t, l.Healthy(start.Add(11*time.Second)))
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	one := b.Register("one")
	two := b.Register("two")
	assert.Equal(t, 2, b.SubscriberCount())

	b.Broadcast(Update{Type: api.TypeStateSync})
	assert.Equal(t, api.TypeStateSync, (<-one).Type)
	assert.Equal(t, api.TypeStateSync, (<-two).Type)

	b.Unregister("one")
	_, ok := <-one
	assert.False(t, ok)

	b.Close()
	_, ok = <-two
	assert.False(t, ok)
	assert.Zero(t, b.SubscriberCount())
}

func TestErrors(t *testing.T) {
	err := &ConnectionError{Op: "handshake", Err: &DesyncError{Detail: "world"}}
	assert.Contains(t, err.Error(), "handshake")
	var de *DesyncError
	assert.ErrorAs(t, err, &de)
}
