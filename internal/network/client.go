package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/dungeon"
	"wasteland-server/pkg/logger"
)

const (
	DefaultActionTimeout    = 10 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
)

var ErrHandshakeTimeout = errors.New("handshake timed out")

type ClientOptions struct {
	PeerID           string
	Name             string
	ActionTimeout    time.Duration
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongTimeout      time.Duration
}

func (o *ClientOptions) defaults() {
	if o.PeerID == "" {
		o.PeerID = "client-" + uuid.NewString()[:8]
	}
	if o.Name == "" {
		o.Name = o.PeerID
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = DefaultPingInterval
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = DefaultPongTimeout
	}
}

type pending struct {
	id     string
	cmd    domain.Command
	sentAt time.Time
}

// Client - неавторитетная сторона. Держит реплику сессии: проверяет действия
// оптимистично, но состояние меняет только по снимкам хоста.
// В полете не больше одного действия, остальные ждут в очереди по порядку.
type Client struct {
	transport Transport
	replica   *engine.Session
	ack       api.HandshakeAckPayload
	opts      ClientOptions

	inbox     chan []byte
	proposals chan proposal
	snapshots chan chan api.StateSyncPayload
	stopped   chan struct{}

	queue       []pending
	inflight    *pending
	resyncAsked bool

	hub  *Broadcaster
	live *Liveness
	log  *logrus.Entry
}

// Join подключается к хосту: рукопожатие, сверка мира, первый снимок.
// Любая ошибка здесь - ConnectionError, повторных попыток нет.
func Join(ctx context.Context, transport Transport, bal *balance.Config, opts ClientOptions) (*Client, error) {
	opts.defaults()
	if bal == nil {
		bal = balance.Default()
	}
	c := &Client{
		transport: transport,
		opts:      opts,
		inbox:     make(chan []byte, 64),
		proposals: make(chan proposal),
		snapshots: make(chan chan api.StateSyncPayload),
		stopped:   make(chan struct{}),
		hub:       NewBroadcaster(),
		log:       logger.For("client").WithField("peer_id", opts.PeerID),
	}
	transport.OnMessage(func(data []byte) {
		select {
		case c.inbox <- data:
		case <-c.stopped:
		}
	})

	fail := func(op string, err error) (*Client, error) {
		close(c.stopped)
		_ = transport.Close()
		return nil, &ConnectionError{Op: op, Err: err}
	}

	if err := transport.Open(ctx); err != nil {
		return fail("open", err)
	}
	if err := c.send(api.TypeHandshake, api.HandshakePayload{
		PeerID:          opts.PeerID,
		Name:            opts.Name,
		ProtocolVersion: api.ProtocolVersion,
		Fingerprint:     bal.Fingerprint(),
	}); err != nil {
		return fail("handshake", err)
	}

	hctx, cancel := context.WithTimeout(ctx, opts.HandshakeTimeout)
	defer cancel()

	ack, err := c.awaitAck(hctx)
	if err != nil {
		return fail("handshake", err)
	}
	if ack.ProtocolVersion != api.ProtocolVersion {
		return fail("handshake", ErrVersionMismatch)
	}
	if ack.Fingerprint != bal.Fingerprint() {
		return fail("handshake", ErrBalanceMismatch)
	}
	c.ack = ack

	replica, err := engine.NewReplica(engine.Config{
		Seed:      ack.Seed,
		Width:     ack.Width,
		Height:    ack.Height,
		Style:     ack.Style,
		SessionID: ack.SessionID,
	}, bal)
	if err != nil {
		return fail("handshake", err)
	}
	if sum := dungeon.Checksum(replica.World); sum != ack.WorldHash {
		return fail("handshake", &DesyncError{Detail: fmt.Sprintf("%v: host %x, local %x", ErrWorldMismatch, ack.WorldHash, sum)})
	}
	c.replica = replica

	sync, err := c.awaitSync(hctx)
	if err != nil {
		return fail("handshake", err)
	}
	if err := c.overwrite(sync); err != nil {
		return fail("handshake", err)
	}

	c.log = c.log.WithField("session_id", ack.SessionID)
	c.log.WithFields(logrus.Fields{"seed": ack.Seed, "style": ack.Style}).Info("Joined host")
	return c, nil
}

// awaitAck читает входящие до ACK или ERROR. Остальное до рукопожатия не имеет смысла.
func (c *Client) awaitAck(ctx context.Context) (api.HandshakeAckPayload, error) {
	for {
		env, err := c.next(ctx)
		if err != nil {
			return api.HandshakeAckPayload{}, err
		}
		switch env.Type {
		case api.TypeHandshakeAck:
			return api.DecodePayload[api.HandshakeAckPayload](env)
		case api.TypeError:
			e, _ := api.DecodePayload[api.ErrorPayload](env)
			return api.HandshakeAckPayload{}, fmt.Errorf("%w: %s: %s", ErrHandshakeRefused, e.Code, e.Message)
		default:
			c.log.WithField("type", env.Type).Debug("Ignored before handshake")
		}
	}
}

func (c *Client) awaitSync(ctx context.Context) (api.StateSyncPayload, error) {
	for {
		env, err := c.next(ctx)
		if err != nil {
			return api.StateSyncPayload{}, err
		}
		switch env.Type {
		case api.TypeStateSync:
			return api.DecodePayload[api.StateSyncPayload](env)
		case api.TypePing:
			c.handlePing(env)
		default:
			c.log.WithField("type", env.Type).Debug("Ignored before first sync")
		}
	}
}

func (c *Client) next(ctx context.Context) (*api.Envelope, error) {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrHandshakeTimeout
			}
			return nil, ctx.Err()
		case <-c.transport.Done():
			return nil, ErrClosed
		case data := <-c.inbox:
			env, err := api.Decode(data)
			if err != nil {
				c.log.WithError(err).Warn("Dropping message")
				continue
			}
			return env, nil
		}
	}
}

func (c *Client) Updates(name string) <-chan Update {
	return c.hub.Register(name)
}

// Config - параметры мира, полученные от хоста.
func (c *Client) Config() engine.Config {
	return c.replica.Config
}

// Run - цикл клиента. Возвращается при отмене ctx, разрыве канала или молчании хоста.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.stopped)
	defer c.hub.Close()

	c.live = NewLiveness(c.opts.PongTimeout, time.Now())

	// Тикер чаще пинга, чтобы таймаут действия срабатывал вовремя
	tick := c.opts.PingInterval
	if c.opts.ActionTimeout/2 < tick {
		tick = c.opts.ActionTimeout / 2
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	lastPing := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.transport.Done():
			c.log.Warn("Host channel closed")
			return &ConnectionError{Op: "receive", Err: ErrClosed}

		case data := <-c.inbox:
			c.handleMessage(data)

		case p := <-c.proposals:
			id, err := c.propose(p.cmd)
			p.reply <- proposalReply{actionID: id, err: err}

		case reply := <-c.snapshots:
			reply <- c.replica.Snapshot("local")

		case now := <-ticker.C:
			c.checkTimeout(now)
			if now.Sub(lastPing) >= c.opts.PingInterval {
				lastPing = now
				if !c.live.Healthy(now) {
					return &ConnectionError{Op: "receive", Err: fmt.Errorf("no pong for %s", c.opts.PongTimeout)}
				}
				_ = c.send(api.TypePing, c.live.NextPing(now))
			}
		}
	}
}

// Propose проверяет действие по реплике и ставит его в очередь к хосту.
// Отказ проверки возвращается сразу, без обращения к хосту.
func (c *Client) Propose(ctx context.Context, cmd domain.Command) (string, error) {
	p := proposal{cmd: cmd, reply: make(chan proposalReply, 1)}
	select {
	case c.proposals <- p:
	case <-c.stopped:
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

// Snapshot - локальная копия состояния (то, что прислал хост последним).
func (c *Client) Snapshot(ctx context.Context) (api.StateSyncPayload, error) {
	reply := make(chan api.StateSyncPayload, 1)
	select {
	case c.snapshots <- reply:
	case <-c.stopped:
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

func (c *Client) propose(cmd domain.Command) (string, error) {
	// Пока что-то в полете, проверка по реплике неточна: хост мог уже все поменять.
	// Тогда действие просто встает в очередь, окончательно решит хост.
	if c.inflight == nil && len(c.queue) == 0 {
		if err := c.replica.Validate(cmd); err != nil {
			if ve, ok := engine.AsValidation(err); ok {
				c.hub.Broadcast(Update{
					Type: api.TypeActionReject, Action: cmd.Action.String(),
					Reason: ve.Reason, Message: ve.Message, Local: true,
				})
			}
			return "", err
		}
	}

	next := pending{id: uuid.NewString(), cmd: cmd}
	if c.inflight != nil || len(c.queue) > 0 {
		c.queue = append(c.queue, next)
		return next.id, nil
	}
	// Очередь пуста: отправляем сразу, ошибка канала уходит вызывающему.
	if err := c.transmit(next, time.Now()); err != nil {
		return "", &ConnectionError{Op: "send", Err: err}
	}
	return next.id, nil
}

// transmit отправляет действие и делает его текущим в полете.
func (c *Client) transmit(next pending, now time.Time) error {
	next.sentAt = now
	err := c.send(api.TypeGameAction, api.GameActionPayload{
		ActionID: next.id,
		Action:   next.cmd.Action.String(),
		Params:   next.cmd.Payload,
	})
	if err != nil {
		return err
	}
	c.inflight = &next
	return nil
}

// flush отправляет следующее действие из очереди, если в полете ничего нет.
// Неотправленное действие снимается с очереди, подписчики получают TypeError с его ID.
func (c *Client) flush(now time.Time) {
	for c.inflight == nil && len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		err := c.transmit(next, now)
		if err == nil {
			return
		}
		c.log.WithError(err).WithField("action_id", next.id).Warn("Action not sent")
		c.hub.Broadcast(Update{
			Type:     api.TypeError,
			ActionID: next.id,
			Action:   next.cmd.Action.String(),
			Message:  (&ConnectionError{Op: "send", Err: err}).Error(),
		})
	}
}

// checkTimeout: ответа нет слишком долго - просим полный снимок.
// Само действие не переотправляется: хост мог его уже применить.
func (c *Client) checkTimeout(now time.Time) {
	if c.inflight == nil || now.Sub(c.inflight.sentAt) < c.opts.ActionTimeout {
		return
	}
	c.log.WithField("action_id", c.inflight.id).Warn("Action timed out, requesting state")
	c.inflight = nil
	c.requestState("timeout")
	c.flush(now)
}

func (c *Client) requestState(reason string) {
	c.resyncAsked = true
	_ = c.send(api.TypeStateRequest, api.StateRequestPayload{Reason: reason})
}

func (c *Client) handleMessage(data []byte) {
	env, err := api.Decode(data)
	if err != nil {
		c.log.WithError(err).Warn("Dropping message")
		return
	}

	switch env.Type {
	case api.TypeStateSync:
		sync, err := api.DecodePayload[api.StateSyncPayload](env)
		if err != nil {
			c.log.WithError(err).Warn("Bad state sync")
			return
		}
		if err := c.overwrite(sync); err != nil {
			c.log.WithError(err).Error("State sync rejected")
			c.hub.Broadcast(Update{Type: api.TypeError, Message: err.Error()})
			if !c.resyncAsked {
				c.requestState("desync")
			}
			return
		}
		c.resyncAsked = false
		c.hub.Broadcast(Update{Type: api.TypeStateSync, State: &sync})

	case api.TypeActionResult:
		res, err := api.DecodePayload[api.ActionResultPayload](env)
		if err != nil {
			c.log.WithError(err).Warn("Bad action result")
			return
		}
		c.settle(res.ActionID)
		c.hub.Broadcast(Update{
			Type: api.TypeActionResult, ActionID: res.ActionID, Action: res.Action,
			Events: res.Events, Narration: res.Narration,
		})

	case api.TypeActionReject:
		rej, err := api.DecodePayload[api.ActionRejectedPayload](env)
		if err != nil {
			c.log.WithError(err).Warn("Bad rejection")
			return
		}
		// Отказ несет состояние хоста: откатываемся к нему
		if err := c.overwrite(rej.State); err != nil {
			c.log.WithError(err).Error("Rejection state rejected")
		}
		c.settle(rej.ActionID)
		c.hub.Broadcast(Update{
			Type: api.TypeActionReject, ActionID: rej.ActionID,
			Reason: rej.Reason, Message: rej.Message, State: &rej.State,
		})

	case api.TypeCombatStart, api.TypeCombatUpdate:
		c.hub.Broadcast(Update{Type: env.Type})

	case api.TypeCombatEnd:
		end, err := api.DecodePayload[api.CombatEndPayload](env)
		if err != nil {
			return
		}
		c.hub.Broadcast(Update{Type: env.Type, Combat: &end})

	case api.TypePing:
		c.handlePing(env)

	case api.TypePong:
		pong, err := api.DecodePayload[api.PongPayload](env)
		if err != nil {
			return
		}
		c.live.Pong(pong, time.Now())

	case api.TypeError:
		e, _ := api.DecodePayload[api.ErrorPayload](env)
		c.log.WithFields(logrus.Fields{"code": e.Code, "message": e.Message}).Warn("Host reported error")
		c.hub.Broadcast(Update{Type: api.TypeError, Reason: e.Code, Message: e.Message})

	default:
		c.log.WithField("type", env.Type).Warn("Unexpected message from host")
	}
}

// settle закрывает действие в полете и отправляет следующее.
func (c *Client) settle(actionID string) {
	if c.inflight == nil || c.inflight.id != actionID {
		// Опоздавший ответ после таймаута
		c.log.WithField("action_id", actionID).Debug("Response for unknown action")
		return
	}
	c.inflight = nil
	c.flush(time.Now())
}

func (c *Client) handlePing(env *api.Envelope) {
	ping, err := api.DecodePayload[api.PingPayload](env)
	if err != nil {
		return
	}
	_ = c.send(api.TypePong, api.PongPayload(ping))
}

// overwrite проверяет снимок на совместимость с локальным миром и применяет его.
func (c *Client) overwrite(sync api.StateSyncPayload) error {
	w := c.replica.World
	if want := (w.Width*w.Height + 7) / 8; len(sync.Explored) != want {
		return &DesyncError{Detail: fmt.Sprintf("explored mask %d bytes, want %d", len(sync.Explored), want)}
	}
	loc := sync.State.Location
	if !w.InBounds(loc.X, loc.Y) {
		return &DesyncError{Detail: fmt.Sprintf("player at (%d,%d) outside %dx%d", loc.X, loc.Y, w.Width, w.Height)}
	}
	c.replica.Overwrite(sync)
	return nil
}

func (c *Client) send(t api.MessageType, payload any) error {
	data, err := api.Encode(t, payload)
	if err != nil {
		return err
	}
	return c.transport.Send(data)
}
