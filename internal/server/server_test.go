package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine"
	"wasteland-server/internal/network"
	"wasteland-server/internal/version"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type stubState struct {
	snap api.StateSyncPayload
	err  error
}

func (s stubState) Snapshot(context.Context) (api.StateSyncPayload, error) {
	return s.snap, s.err
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHealthAndVersion(t *testing.T) {
	srv := httptest.NewServer(New(NewHostSlot(), nil, "0").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info version.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, api.ProtocolVersion, info.Protocol)
	assert.Equal(t, version.UserAgent(), info.UserAgent)
	assert.Contains(t, info.UserAgent, "protocol 1")
}

func TestDebugState(t *testing.T) {
	state := stubState{snap: api.StateSyncPayload{State: domain.GameState{HP: 42, Enemies: domain.NewEnemyArena()}}}
	srv := httptest.NewServer(New(NewHostSlot(), state, "0").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var got api.StateSyncPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 42, got.State.HP)

	resp2, err := http.Get(srv.URL + "/debug/enemies")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "application/json", resp2.Header.Get("Content-Type"))
}

func TestDebugState_Unavailable(t *testing.T) {
	srv := httptest.NewServer(New(NewHostSlot(), stubState{err: errors.New("stopped")}, "0").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWS_SinglePeer(t *testing.T) {
	slot := NewHostSlot()
	srv := httptest.NewServer(New(slot, nil, "0").Handler())
	defer srv.Close()

	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer first.Close()

	require.Eventually(t, slot.Taken, time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Через DialTransport отказ виден как ErrSlotTaken
	assert.ErrorIs(t, NewDialTransport(wsURL(srv)).Open(context.Background()), ErrSlotTaken)
}

func TestTransport_SendBeforeOpen(t *testing.T) {
	assert.ErrorIs(t, NewHostSlot().Send([]byte("x")), network.ErrNotOpen)
	assert.ErrorIs(t, NewDialTransport("ws://127.0.0.1:1/ws").Send([]byte("x")), network.ErrNotOpen)
}

// Полный путь: хост за HTTP, клиент подключается по WebSocket и делает ход.
func TestWS_HostAndClient(t *testing.T) {
	bal := balance.Default()
	session, err := engine.NewSession(engine.Config{
		Seed: 7, Width: 40, Height: 30, Style: domain.StyleDungeon, SessionID: "ws-test",
	}, bal)
	require.NoError(t, err)

	slot := NewHostSlot()
	host := network.NewHost(session, slot, network.HostOptions{PingInterval: time.Hour})
	srv := httptest.NewServer(New(slot, host, "0").Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = host.Run(ctx) }()

	client, err := network.Join(ctx, NewDialTransport(wsURL(srv)), bal, network.ClientOptions{PingInterval: time.Hour})
	require.NoError(t, err)
	go func() { _ = client.Run(ctx) }()
	updates := client.Updates("test")

	_, err = client.Propose(ctx, domain.Command{Action: domain.ActionSearch})
	require.NoError(t, err)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case u := <-updates:
			if u.Type != api.TypeStateSync {
				continue
			}
			assert.Equal(t, 1, u.State.State.Tick)
			return
		case <-deadline:
			t.Fatal("no state sync over websocket")
		}
	}
}
