package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/dungeon"
	"wasteland-server/pkg/logger"
	"wasteland-server/pkg/utils"
)

// Outcome - результат принятого действия.
type Outcome struct {
	Action        domain.ActionType
	Events        []domain.Event
	Msg           string
	CombatStarted bool
	CombatEnded   bool
	EnemyTurn     bool // после действия прошел ход врагов
}

// Session - одна изолированная симуляция: мир, состояние игрока, бой и память врагов.
// Все операции идут через нее явно, глобального состояния нет.
// Мутирует сессию только один владелец (хост), поэтому блокировок внутри нет.
type Session struct {
	ID      string
	Config  Config
	World   *domain.WorldMap
	State   *domain.GameState
	Combat  *domain.CombatState // nil до первого боя
	Balance *balance.Config

	// Локальные данные симуляции
	brains   map[domain.EnemyID]*systems.Brain
	handlers map[domain.ActionType]handlers.Handler
	rng      utils.Roller
	journal  *domain.ReplaySession
	replica  bool

	appliedLoot int // сколько записей Looted уже применено к карте реплики

	log *logrus.Entry
}

// NewSession строит мир из конфига и создает персонажа по балансу.
func NewSession(cfg Config, bal *balance.Config) (*Session, error) {
	if bal == nil {
		bal = balance.Default()
	}
	world, err := dungeon.GenerateWith(bal, cfg.Width, cfg.Height, cfg.Seed, cfg.Style)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	cfg.Style = world.Style

	s := &Session{
		ID:       cfg.SessionID,
		Config:   cfg,
		World:    world,
		State:    newPlayerState(bal, world, depthFor(world.Style)),
		Balance:  bal,
		brains:   make(map[domain.EnemyID]*systems.Brain),
		handlers: defaultHandlers(),
		rng:      utils.NewRoller(utils.DeriveSeed(cfg.Seed, "simulation")),
		journal: &domain.ReplaySession{
			Seed:        cfg.Seed,
			Width:       cfg.Width,
			Height:      cfg.Height,
			Style:       world.Style,
			Fingerprint: bal.Fingerprint(),
			Timestamp:   time.Now().Unix(),
			Actions:     make([]domain.ReplayAction, 0),
		},
		log: logger.Log.WithFields(logrus.Fields{
			"component":  "session",
			"session_id": cfg.SessionID,
			"seed":       cfg.Seed,
		}),
	}
	s.refreshVision()

	s.log.WithFields(logrus.Fields{
		"style":  world.Style,
		"width":  world.Width,
		"height": world.Height,
		"start":  world.Start,
	}).Info("Session created")
	return s, nil
}

// NewReplica - копия клиента. Мир тот же (из зерна), но действия только проверяются:
// состояние приходит от хоста через Overwrite.
func NewReplica(cfg Config, bal *balance.Config) (*Session, error) {
	s, err := NewSession(cfg, bal)
	if err != nil {
		return nil, err
	}
	s.replica = true
	s.log = s.log.WithField("replica", true)
	return s, nil
}

func newPlayerState(bal *balance.Config, world *domain.WorldMap, depth int) *domain.GameState {
	p := bal.Player
	skills := make(map[string]int, len(p.Skills))
	for name, lvl := range p.Skills {
		skills[name] = domain.ClampSkill(lvl)
	}
	for _, name := range []string{domain.SkillMelee, domain.SkillFirearms, domain.SkillMedical, domain.SkillScavenging} {
		if _, ok := skills[name]; !ok {
			skills[name] = domain.MinSkillLevel
		}
	}
	return &domain.GameState{
		Name:            p.Name,
		HP:              p.MaxHP,
		MaxHP:           p.MaxHP,
		Supplies:        p.Supplies,
		Day:             1,
		TimeOfDay:       domain.TimeMorning,
		Location:        domain.Location{Name: string(world.Style), X: world.Start.X, Y: world.Start.Y, Depth: depth},
		Inventory:       append([]string(nil), p.Inventory...),
		EquippedWeapon:  p.Weapon,
		Skills:          skills,
		Phase:           domain.PhaseExploration,
		ActionPoints:    p.MaxActionPoints,
		MaxActionPoints: p.MaxActionPoints,
		Enemies:         domain.NewEnemyArena(),
	}
}

func (s *Session) context() handlers.Context {
	return handlers.Context{
		World:   s.World,
		State:   s.State,
		Combat:  s.Combat,
		Balance: s.Balance,
		Rng:     s.rng,
		Arena:   s,
	}
}

// Validate проверяет команду, ничего не меняя и не трогая RNG.
// Одну и ту же проверку выполняют и клиент (оптимистично), и хост (окончательно).
func (s *Session) Validate(cmd domain.Command) error {
	handler, ok := s.handlers[cmd.Action]
	if !ok {
		return &ValidationError{Action: cmd.Action, Reason: handlers.ReasonUnknownAction, Message: "Неизвестное действие."}
	}

	reject := func(reason, msg string) error {
		return &ValidationError{Action: cmd.Action, Reason: reason, Message: msg}
	}

	if s.State.IsDead() || (s.Combat != nil && s.Combat.Phase == domain.CombatDefeat) {
		return reject(handlers.ReasonGameOver, "Игра окончена.")
	}

	switch s.State.Phase {
	case domain.PhaseCombat:
		if !cmd.Action.IsCombatAction() {
			return reject(handlers.ReasonWrongPhase, "Это действие недоступно в бою.")
		}
		if s.Combat == nil || s.Combat.Phase != domain.CombatPlayerTurn {
			return reject(handlers.ReasonNotPlayerTurn, "Сейчас не ваш ход.")
		}
		if s.State.ActionPoints < 1 {
			return reject(handlers.ReasonNoActionPoints, "Нет очков действия.")
		}
	default:
		if !cmd.Action.IsExplorationAction() {
			return reject(handlers.ReasonWrongPhase, "Это действие доступно только в бою.")
		}
	}

	if err := handler.Validate(s.context(), cmd.Payload); err != nil {
		if ve, ok := AsValidation(err); ok {
			ve.Action = cmd.Action
			return ve
		}
		return reject(handlers.ReasonInvalidPayload, err.Error())
	}
	return nil
}

// Apply проверяет и применяет команду. Отклоненная команда состояние не меняет.
// Принятая пишется в журнал: по журналу и зерну партия воспроизводится целиком.
func (s *Session) Apply(cmd domain.Command) (Outcome, error) {
	if s.replica {
		return Outcome{}, ErrReplica
	}
	if err := s.Validate(cmd); err != nil {
		s.log.WithFields(logrus.Fields{"action": cmd.Action, "error": err}).Debug("Action rejected")
		return Outcome{}, err
	}

	inCombat := s.State.Phase == domain.PhaseCombat
	res, err := s.handlers[cmd.Action].Apply(s.context(), cmd.Payload)
	if err != nil {
		// Validate прошел, значит это ошибка логики, а не игрока
		s.log.WithError(err).WithField("action", cmd.Action).Error("Action failed after validation")
		return Outcome{}, err
	}

	s.record(cmd)

	out := Outcome{Action: cmd.Action, Events: res.Events, Msg: res.Msg}

	if inCombat {
		out.Events = append(out.Events, s.afterCombatAction(res, &out)...)
	} else if s.State.Phase == domain.PhaseCombat {
		out.CombatStarted = true
	}

	s.log.WithFields(logrus.Fields{
		"action": cmd.Action,
		"events": len(out.Events),
		"phase":  s.State.Phase,
		"hp":     s.State.HP,
		"ap":     s.State.ActionPoints,
	}).Debug("Action applied")
	return out, nil
}

func (s *Session) record(cmd domain.Command) {
	payload := cmd.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	s.journal.Actions = append(s.journal.Actions, domain.ReplayAction{
		Seq:     len(s.journal.Actions),
		Action:  cmd.Action,
		Payload: append(json.RawMessage(nil), payload...),
	})
}

// Journal возвращает журнал принятых действий (для сохранения реплея).
func (s *Session) Journal() *domain.ReplaySession {
	return s.journal
}

// IsReplica - сессия клиента.
func (s *Session) IsReplica() bool {
	return s.replica
}

// Over - игрок погиб.
func (s *Session) Over() bool {
	return s.State.IsDead()
}

func (s *Session) refreshVision() {
	systems.ComputeVisible(s.World, s.State.Location.Pos(), s.Balance.VisionRadius(s.State.TimeOfDay))
}

// Snapshot - полный снимок для STATE_SYNC. Сетка тайлов не передается, только туман войны.
// Снимок не делит память с сессией: его можно читать из другой горутины.
func (s *Session) Snapshot(reason string) api.StateSyncPayload {
	return api.StateSyncPayload{
		State:    *s.State.Clone(),
		Combat:   s.Combat.Clone(),
		Explored: api.PackExplored(s.World),
		Reason:   reason,
	}
}

// Overwrite целиком заменяет состояние реплики снимком хоста.
// Частичных патчей нет: любое расхождение лечится только полным снимком.
func (s *Session) Overwrite(sync api.StateSyncPayload) {
	state := sync.State.Clone()
	s.State = state
	s.Combat = sync.Combat.Clone()

	api.ApplyExplored(s.World, sync.Explored)

	// Повторяем изъятие ресурсов, которое хост уже сделал на своей карте
	if len(state.Looted) < s.appliedLoot {
		s.appliedLoot = len(state.Looted)
	}
	for _, p := range state.Looted[s.appliedLoot:] {
		s.World.TakeResource(p)
	}
	s.appliedLoot = len(state.Looted)

	s.refreshVision()
}
