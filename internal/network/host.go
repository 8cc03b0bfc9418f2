package network

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/dungeon"
	"wasteland-server/pkg/logger"
)

// Narrator превращает события действия в короткий художественный текст.
type Narrator interface {
	Narrate(ctx context.Context, events []domain.Event) (string, error)
}

// Коды ERROR
const (
	CodeProtocol          = "protocol"
	CodeHandshakeRequired = "handshake_required"
	CodeVersion           = "version_mismatch"
	CodeBalance           = "balance_mismatch"
	CodeInternal          = "internal"
)

const DefaultNarrationTimeout = 3 * time.Second

type HostOptions struct {
	PeerID           string
	PingInterval     time.Duration
	PongTimeout      time.Duration
	NarrationTimeout time.Duration
	Narrator         Narrator // nil - без нарратива
}

func (o *HostOptions) defaults() {
	if o.PeerID == "" {
		o.PeerID = "host-" + uuid.NewString()[:8]
	}
	if o.PingInterval <= 0 {
		o.PingInterval = DefaultPingInterval
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = DefaultPongTimeout
	}
	if o.NarrationTimeout <= 0 {
		o.NarrationTimeout = DefaultNarrationTimeout
	}
}

type proposal struct {
	cmd   domain.Command
	reply chan proposalReply
}

type proposalReply struct {
	actionID string
	err      error
}

// Host - авторитетная сторона. Единственный владелец сессии: все изменения
// идут через цикл Run, поэтому сообщения обрабатываются строго по одному.
type Host struct {
	session   *engine.Session
	transport Transport
	opts      HostOptions

	inbox     chan []byte
	proposals chan proposal
	snapshots chan chan api.StateSyncPayload
	stopped   chan struct{}

	hub  *Broadcaster
	live *Liveness

	peerID    string // пустой до рукопожатия
	peerReady bool

	log *logrus.Entry
}

func NewHost(session *engine.Session, transport Transport, opts HostOptions) *Host {
	opts.defaults()
	h := &Host{
		session:   session,
		transport: transport,
		opts:      opts,
		inbox:     make(chan []byte, 64),
		proposals: make(chan proposal),
		snapshots: make(chan chan api.StateSyncPayload),
		stopped:   make(chan struct{}),
		hub:       NewBroadcaster(),
		log:       logger.For("host").WithField("session_id", session.ID),
	}
	transport.OnMessage(func(data []byte) {
		select {
		case h.inbox <- data:
		case <-h.stopped:
		}
	})
	return h
}

// Updates - подписка локального потребителя на обновления хоста.
func (h *Host) Updates(name string) <-chan Update {
	return h.hub.Register(name)
}

// Config - параметры мира текущей сессии.
func (h *Host) Config() engine.Config {
	return h.session.Config
}

// Run - главный цикл хоста. Возвращается при отмене ctx или разрыве канала.
func (h *Host) Run(ctx context.Context) error {
	defer close(h.stopped)
	defer h.hub.Close()

	if err := h.transport.Open(ctx); err != nil {
		return &ConnectionError{Op: "open", Err: err}
	}
	h.live = NewLiveness(h.opts.PongTimeout, time.Now())

	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	h.log.WithFields(logrus.Fields{
		"seed":  h.session.Config.Seed,
		"style": h.session.Config.Style,
	}).Info("Host loop started")

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Host loop stopped")
			return ctx.Err()

		case <-h.transport.Done():
			h.log.Warn("Peer channel closed")
			return &ConnectionError{Op: "receive", Err: ErrClosed}

		case data := <-h.inbox:
			h.handleMessage(ctx, data)

		case p := <-h.proposals:
			id, err := h.applyLocal(ctx, p.cmd)
			p.reply <- proposalReply{actionID: id, err: err}

		case reply := <-h.snapshots:
			reply <- h.session.Snapshot("debug")

		case now := <-ticker.C:
			if !h.peerReady {
				continue
			}
			if !h.live.Healthy(now) {
				h.log.WithField("latency", h.live.Latency()).Warn("Peer is not responding")
			}
			h.send(api.TypePing, h.live.NextPing(now))
		}
	}
}

// Propose - действие игрока, сидящего за хостом.
func (h *Host) Propose(ctx context.Context, cmd domain.Command) (string, error) {
	p := proposal{cmd: cmd, reply: make(chan proposalReply, 1)}
	select {
	case h.proposals <- p:
	case <-h.stopped:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case r := <-p.reply:
		return r.actionID, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Snapshot читает состояние через цикл хоста (для отладочных эндпоинтов).
func (h *Host) Snapshot(ctx context.Context) (api.StateSyncPayload, error) {
	reply := make(chan api.StateSyncPayload, 1)
	select {
	case h.snapshots <- reply:
	case <-h.stopped:
		return api.StateSyncPayload{}, ErrClosed
	case <-ctx.Done():
		return api.StateSyncPayload{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return api.StateSyncPayload{}, ctx.Err()
	}
}

func (h *Host) handleMessage(ctx context.Context, data []byte) {
	env, err := api.Decode(data)
	if err != nil {
		h.log.WithError(err).Warn("Dropping message")
		h.sendError(CodeProtocol, err.Error())
		return
	}

	if !h.peerReady && env.Type != api.TypeHandshake {
		h.sendError(CodeHandshakeRequired, "handshake required before "+string(env.Type))
		return
	}

	switch env.Type {
	case api.TypeHandshake:
		h.handleHandshake(env)

	case api.TypeStateRequest:
		// Payload необязателен: на любой запрос ровно один снимок
		req, _ := api.DecodePayload[api.StateRequestPayload](env)
		h.log.WithField("reason", req.Reason).Debug("State requested")
		h.send(api.TypeStateSync, h.session.Snapshot("request"))

	case api.TypeGameAction:
		h.handleAction(ctx, env)

	case api.TypePing:
		ping, err := api.DecodePayload[api.PingPayload](env)
		if err != nil {
			h.log.WithError(err).Debug("Bad ping")
			return
		}
		h.send(api.TypePong, api.PongPayload(ping))

	case api.TypePong:
		pong, err := api.DecodePayload[api.PongPayload](env)
		if err != nil {
			return
		}
		h.live.Pong(pong, time.Now())

	case api.TypeError:
		e, _ := api.DecodePayload[api.ErrorPayload](env)
		h.log.WithFields(logrus.Fields{"code": e.Code, "message": e.Message}).Warn("Peer reported error")

	default:
		// Сообщения хоста, пришедшие от клиента
		h.log.WithField("type", env.Type).Warn("Unexpected message from peer")
		h.sendError(CodeProtocol, "unexpected "+string(env.Type))
	}
}

func (h *Host) handleHandshake(env *api.Envelope) {
	hs, err := api.DecodePayload[api.HandshakePayload](env)
	if err != nil {
		h.sendError(CodeProtocol, err.Error())
		return
	}
	log := h.log.WithFields(logrus.Fields{"peer_id": hs.PeerID, "name": hs.Name})

	if hs.ProtocolVersion != api.ProtocolVersion {
		log.WithField("version", hs.ProtocolVersion).Warn("Handshake refused: protocol version")
		h.sendError(CodeVersion, ErrVersionMismatch.Error())
		return
	}
	if hs.Fingerprint != h.session.Balance.Fingerprint() {
		log.Warn("Handshake refused: balance fingerprint")
		h.sendError(CodeBalance, ErrBalanceMismatch.Error())
		return
	}

	h.peerID = hs.PeerID
	h.peerReady = true
	h.live = NewLiveness(h.opts.PongTimeout, time.Now())

	cfg := h.session.Config
	h.send(api.TypeHandshakeAck, api.HandshakeAckPayload{
		PeerID:          h.opts.PeerID,
		SessionID:       h.session.ID,
		ProtocolVersion: api.ProtocolVersion,
		Fingerprint:     h.session.Balance.Fingerprint(),
		Seed:            cfg.Seed,
		Width:           cfg.Width,
		Height:          cfg.Height,
		Style:           cfg.Style,
		WorldHash:       dungeon.Checksum(h.session.World),
	})
	h.send(api.TypeStateSync, h.session.Snapshot("handshake"))
	log.Info("Peer joined")
}

func (h *Host) handleAction(ctx context.Context, env *api.Envelope) {
	ga, err := api.DecodePayload[api.GameActionPayload](env)
	if err != nil {
		h.sendError(CodeProtocol, err.Error())
		return
	}
	cmd := domain.Command{Action: domain.ParseAction(ga.Action), Payload: ga.Params}
	h.apply(ctx, ga.ActionID, ga.Action, cmd, false)
}

func (h *Host) applyLocal(ctx context.Context, cmd domain.Command) (string, error) {
	id := uuid.NewString()
	return id, h.apply(ctx, id, cmd.Action.String(), cmd, true)
}

// apply - общий путь для действий обоих игроков.
// Порядок ответа: результат, события боя, затем полный снимок.
func (h *Host) apply(ctx context.Context, actionID, action string, cmd domain.Command, local bool) error {
	log := h.log.WithFields(logrus.Fields{"action_id": actionID, "action": action, "local": local})

	out, err := h.session.Apply(cmd)
	if err != nil {
		ve, ok := engine.AsValidation(err)
		if !ok {
			log.WithError(err).Error("Action failed")
			h.sendError(CodeInternal, err.Error())
			return err
		}
		log.WithField("reason", ve.Reason).Info("Action rejected")
		sync := h.session.Snapshot("rejected")
		if !local {
			h.send(api.TypeActionReject, api.ActionRejectedPayload{
				ActionID: actionID,
				Reason:   ve.Reason,
				Message:  ve.Message,
				State:    sync,
			})
		}
		h.hub.Broadcast(Update{
			Type: api.TypeActionReject, ActionID: actionID, Action: action,
			Reason: ve.Reason, Message: ve.Message, State: &sync,
		})
		return ve
	}

	narration := h.narrate(ctx, out.Events)
	result := api.ActionResultPayload{ActionID: actionID, Action: action, Events: out.Events, Narration: narration}
	h.send(api.TypeActionResult, result)
	h.hub.Broadcast(Update{
		Type: api.TypeActionResult, ActionID: actionID, Action: action,
		Events: out.Events, Narration: narration,
	})

	h.combatMessages(out)

	sync := h.session.Snapshot("action")
	h.send(api.TypeStateSync, sync)
	h.hub.Broadcast(Update{Type: api.TypeStateSync, State: &sync})

	log.WithField("events", len(out.Events)).Debug("Action applied")
	return nil
}

func (h *Host) combatMessages(out engine.Outcome) {
	combat := h.session.Combat
	if combat == nil {
		return
	}
	enemies := h.session.State.Enemies.Snapshot()

	switch {
	case out.CombatStarted:
		h.send(api.TypeCombatStart, api.CombatStartPayload{Combat: *combat, Enemies: enemies})
		h.hub.Broadcast(Update{Type: api.TypeCombatStart})
	case out.CombatEnded:
		end := api.CombatEndPayload{Outcome: combat.Phase, Rounds: combat.Round}
		h.send(api.TypeCombatEnd, end)
		h.hub.Broadcast(Update{Type: api.TypeCombatEnd, Combat: &end})
	case h.session.State.Phase == domain.PhaseCombat:
		h.send(api.TypeCombatUpdate, api.CombatUpdatePayload{Combat: *combat, Enemies: enemies})
		h.hub.Broadcast(Update{Type: api.TypeCombatUpdate})
	}
}

// narrate не блокирует игру дольше NarrationTimeout. Ошибка нарратора - не ошибка действия.
func (h *Host) narrate(ctx context.Context, events []domain.Event) string {
	if h.opts.Narrator == nil || len(events) == 0 {
		return ""
	}
	nctx, cancel := context.WithTimeout(ctx, h.opts.NarrationTimeout)
	defer cancel()

	text, err := h.opts.Narrator.Narrate(nctx, events)
	if err != nil {
		h.log.WithError(err).Warn("Narration failed")
		return ""
	}
	return text
}

// send пишет в канал, только если пир прошел рукопожатие. ERROR уходит всегда.
func (h *Host) send(t api.MessageType, payload any) {
	if !h.peerReady && t != api.TypeError {
		return
	}
	data, err := api.Encode(t, payload)
	if err != nil {
		h.log.WithError(err).WithField("type", t).Error("Encode failed")
		return
	}
	if err := h.transport.Send(data); err != nil {
		if errors.Is(err, ErrClosed) {
			h.log.WithField("type", t).Debug("Send after close")
			return
		}
		h.log.WithError(err).WithField("type", t).Warn("Send failed")
	}
}

func (h *Host) sendError(code, msg string) {
	h.send(api.TypeError, api.ErrorPayload{Code: code, Message: msg})
}
