package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/dungeon"
)

func joinedPeer(t *testing.T, opts HostOptions) (*Host, *rawPeer) {
	t.Helper()
	h, end := startHost(t, opts)
	p := newRawPeer(t, end)
	p.send(t, api.TypeHandshake, handshake(balance.Default()))
	p.expect(t, api.TypeHandshakeAck)
	p.expect(t, api.TypeStateSync)
	return h, p
}

func TestHost_Handshake(t *testing.T) {
	h, end := startHost(t, HostOptions{PeerID: "host"})
	p := newRawPeer(t, end)

	p.send(t, api.TypeHandshake, handshake(balance.Default()))

	ack := decode[api.HandshakeAckPayload](t, p.expect(t, api.TypeHandshakeAck))
	assert.Equal(t, "host", ack.PeerID)
	assert.Equal(t, api.ProtocolVersion, ack.ProtocolVersion)
	assert.Equal(t, int64(42), ack.Seed)
	assert.Equal(t, 40, ack.Width)
	assert.Equal(t, domain.StyleOutdoor, ack.Style)
	assert.Equal(t, dungeon.Checksum(h.session.World), ack.WorldHash)

	sync := decode[api.StateSyncPayload](t, p.expect(t, api.TypeStateSync))
	assert.Equal(t, h.session.State.HP, sync.State.HP)
	assert.Len(t, sync.Explored, (40*30+7)/8)
}

func TestHost_HandshakeMismatch(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		_, end := startHost(t, HostOptions{})
		p := newRawPeer(t, end)
		hs := handshake(balance.Default())
		hs.ProtocolVersion = api.ProtocolVersion + 1
		p.send(t, api.TypeHandshake, hs)

		e := decode[api.ErrorPayload](t, p.expect(t, api.TypeError))
		assert.Equal(t, CodeVersion, e.Code)
	})

	t.Run("balance", func(t *testing.T) {
		_, end := startHost(t, HostOptions{})
		p := newRawPeer(t, end)
		bal := balance.Default()
		bal.Player.MaxHP++
		p.send(t, api.TypeHandshake, handshake(bal))

		e := decode[api.ErrorPayload](t, p.expect(t, api.TypeError))
		assert.Equal(t, CodeBalance, e.Code)

		// Без рукопожатия действия не принимаются
		p.send(t, api.TypeGameAction, action(t, "a1", domain.ActionSearch, nil))
		e = decode[api.ErrorPayload](t, p.expect(t, api.TypeError))
		assert.Equal(t, CodeHandshakeRequired, e.Code)
	})
}

func TestHost_StateRequestYieldsExactlyOneSync(t *testing.T) {
	h, p := joinedPeer(t, HostOptions{PingInterval: time.Hour})

	p.send(t, api.TypeStateRequest, api.StateRequestPayload{Reason: "timeout"})

	sync := decode[api.StateSyncPayload](t, p.expect(t, api.TypeStateSync))
	assert.Equal(t, "request", sync.Reason)
	assert.Equal(t, h.session.State.Tick, sync.State.Tick)
	p.expectNone(t, 150*time.Millisecond)
}

func TestHost_RejectionCarriesState(t *testing.T) {
	h, p := joinedPeer(t, HostOptions{PingInterval: time.Hour})

	// Атака вне боя
	p.send(t, api.TypeGameAction, action(t, "a1", domain.ActionAttack, api.TargetPayload{TargetID: 1}))

	rej := decode[api.ActionRejectedPayload](t, p.expect(t, api.TypeActionReject))
	assert.Equal(t, "a1", rej.ActionID)
	assert.Equal(t, handlers.ReasonWrongPhase, rej.Reason)
	assert.Equal(t, h.session.State.HP, rej.State.State.HP)
	assert.Equal(t, domain.PhaseExploration, rej.State.State.Phase)
	assert.Empty(t, h.session.Journal().Actions)
	p.expectNone(t, 100*time.Millisecond)
}

func TestHost_AcceptedActionOrder(t *testing.T) {
	_, p := joinedPeer(t, HostOptions{PingInterval: time.Hour})

	p.send(t, api.TypeGameAction, action(t, "a1", domain.ActionSearch, nil))

	res := decode[api.ActionResultPayload](t, p.expect(t, api.TypeActionResult))
	assert.Equal(t, "a1", res.ActionID)
	assert.Equal(t, "search", res.Action)
	assert.NotEmpty(t, res.Events)

	sync := decode[api.StateSyncPayload](t, p.expect(t, api.TypeStateSync))
	assert.Equal(t, 1, sync.State.Tick)
}

func TestHost_NarrationAttached(t *testing.T) {
	_, p := joinedPeer(t, HostOptions{PingInterval: time.Hour, Narrator: stubNarrator{text: "Пыль и тишина."}})

	p.send(t, api.TypeGameAction, action(t, "a1", domain.ActionSearch, nil))
	res := decode[api.ActionResultPayload](t, p.expect(t, api.TypeActionResult))
	assert.Equal(t, "Пыль и тишина.", res.Narration)
}

func TestHost_NarrationFailureIgnored(t *testing.T) {
	_, p := joinedPeer(t, HostOptions{PingInterval: time.Hour, Narrator: stubNarrator{err: errors.New("quota")}})

	p.send(t, api.TypeGameAction, action(t, "a1", domain.ActionSearch, nil))
	res := decode[api.ActionResultPayload](t, p.expect(t, api.TypeActionResult))
	assert.Empty(t, res.Narration)
	p.expect(t, api.TypeStateSync)
}

func TestHost_BadMessagesDoNotBreakSession(t *testing.T) {
	_, p := joinedPeer(t, HostOptions{PingInterval: time.Hour})

	require.NoError(t, p.end.Send([]byte(`{"type":"BOGUS","payload":{}}`)))
	e := decode[api.ErrorPayload](t, p.expect(t, api.TypeError))
	assert.Equal(t, CodeProtocol, e.Code)

	require.NoError(t, p.end.Send([]byte(`not json`)))
	p.expect(t, api.TypeError)

	p.send(t, api.TypePing, api.PingPayload{Nonce: 7, SentAt: 123})
	pong := decode[api.PongPayload](t, p.expect(t, api.TypePong))
	assert.Equal(t, uint64(7), pong.Nonce)
	assert.Equal(t, int64(123), pong.SentAt)
}

func TestHost_LocalProposal(t *testing.T) {
	h, p := joinedPeer(t, HostOptions{PingInterval: time.Hour})
	updates := h.Updates("test")
	ctx := context.Background()

	id, err := h.Propose(ctx, domain.Command{Action: domain.ActionSearch})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Удаленный игрок видит действие хоста так же, как свое
	res := decode[api.ActionResultPayload](t, p.expect(t, api.TypeActionResult))
	assert.Equal(t, id, res.ActionID)
	p.expect(t, api.TypeStateSync)

	u := <-updates
	assert.Equal(t, api.TypeActionResult, u.Type)

	_, err = h.Propose(ctx, domain.Command{Action: domain.ActionDefend})
	var ve *handlers.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, handlers.ReasonWrongPhase, ve.Reason)

	snap, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Tick)
}

func TestHost_PeerDisconnect(t *testing.T) {
	hostEnd, peerEnd := NewPipe()
	h := NewHost(newSession(t), hostEnd, HostOptions{})
	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()

	newRawPeer(t, peerEnd)
	require.NoError(t, peerEnd.Close())

	select {
	case err := <-done:
		var ce *ConnectionError
		require.ErrorAs(t, err, &ce)
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(waitFor):
		t.Fatal("host did not stop")
	}
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Narrate(context.Context, []domain.Event) (string, error) {
	return s.text, s.err
}

// Снимки читаются из чужих горутин (debug HTTP, бот), пока цикл хоста применяет действия.
// Под -race тест ловит разделяемую с сессией память.
func TestHost_SnapshotWhilePeerActs(t *testing.T) {
	h, p := joinedPeer(t, HostOptions{PingInterval: time.Hour})

	stop := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case <-p.msgs:
			case <-stop:
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 40; i++ {
		a := domain.ActionSearch
		var params any
		if i%2 == 1 {
			a = domain.ActionUseItem
			params = api.ItemPayload{ItemID: "bandage"}
		}
		p.send(t, api.TypeGameAction, action(t, fmt.Sprintf("a%d", i), a, params))

		snap, err := h.Snapshot(ctx)
		require.NoError(t, err)
		_, err = json.Marshal(snap)
		require.NoError(t, err)
	}

	close(stop)
	<-drained
}
