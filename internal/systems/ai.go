package systems

import (
	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/pkg/logger"
)

// BehaviorState - поведенческое состояние врага.
type BehaviorState string

const (
	StateIdle    BehaviorState = "idle"
	StatePatrol  BehaviorState = "patrol"
	StateAlert   BehaviorState = "alert"
	StateChase   BehaviorState = "chase"
	StateAttack  BehaviorState = "attack"
	StateStunned BehaviorState = "stunned"
)

// Параметры агрессии
const (
	MaxAggro     = 100
	AggroGain    = 25
	AggroDecay   = 10
	ChaseAggro   = 50
	SupportRange = domain.AbilityRange
)

// Brain - память врага между тиками. Живет только на хосте.
type Brain struct {
	Pos          domain.Position `json:"pos"`
	LastKnown    domain.Position `json:"lastKnown"`
	HasLastKnown bool            `json:"hasLastKnown"`
	Aggro        int             `json:"aggro"`
	State        BehaviorState   `json:"state"`
	StunTurns    int             `json:"stunTurns"`
	Cooldown     int             `json:"cooldown"`
}

func NewBrain(pos domain.Position) *Brain {
	return &Brain{Pos: pos, State: StateIdle}
}

// Stun оглушает на n тиков.
func (b *Brain) Stun(turns int) {
	if turns > b.StunTurns {
		b.StunTurns = turns
	}
	b.State = StateStunned
}

// PlanKind - что враг делает в этот тик.
type PlanKind string

const (
	PlanSkip    PlanKind = "skip" // оглушен
	PlanDefend  PlanKind = "defend"
	PlanAttack  PlanKind = "attack"
	PlanAbility PlanKind = "ability"
	PlanMove    PlanKind = "move"
	PlanIdle    PlanKind = "idle"
)

type Plan struct {
	Kind PlanKind
	Tier domain.RangeTier // ярус после тика
}

// Think принимает решение за один тик и обновляет память врага (позицию, агрессию, перезарядку).
// Урон и прочие броски делает вызывающий по Plan.Kind: планировщик RNG не трогает.
func Think(w *domain.WorldMap, b *Brain, e *domain.Enemy, def balance.EnemyDef, cfg *balance.Config, player domain.Position) Plan {
	aiLogger := logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"enemy_id":  e.ID,
		"enemy":     e.Name,
	})

	if b.Cooldown > 0 {
		b.Cooldown--
	}

	if b.StunTurns > 0 {
		b.StunTurns--
		b.State = StateStunned
		if b.StunTurns == 0 {
			e.Status = domain.StatusActive
		}
		aiLogger.Debug("Stunned, skipping turn.")
		return Plan{Kind: PlanSkip, Tier: e.Range}
	}
	if e.Status == domain.StatusStunned {
		e.Status = domain.StatusActive
	}

	if def.Archetype == balance.ArchetypeTank && isLowHP(e, cfg) {
		b.State = StateAlert
		aiLogger.Debug("Tank below threshold, taking defensive stance.")
		return Plan{Kind: PlanDefend, Tier: e.Range}
	}

	if e.Range == domain.RangeMelee {
		b.State = StateAttack
		return Plan{Kind: PlanAttack, Tier: e.Range}
	}

	if def.Archetype == balance.ArchetypeSupport && b.Cooldown == 0 && b.Pos.ChebyshevTo(player) <= abilityRange(cfg) {
		b.Cooldown = cfg.Combat.AbilityCooldown
		b.State = StateAttack
		aiLogger.Debug("Using support ability.")
		return Plan{Kind: PlanAbility, Tier: e.Range}
	}

	if HasLineOfSight(w, b.Pos, player) {
		b.LastKnown = player
		b.HasLastKnown = true
		b.Aggro = min(MaxAggro, b.Aggro+AggroGain)
		if b.Aggro >= ChaseAggro {
			b.State = StateChase
		} else {
			b.State = StateAlert
		}
	} else {
		b.Aggro = max(0, b.Aggro-AggroDecay)
	}

	if !b.HasLastKnown {
		b.State = StateIdle
		return Plan{Kind: PlanIdle, Tier: e.Range}
	}

	path := FindPath(w, b.Pos, b.LastKnown)
	if len(path) == 0 {
		if b.Pos == b.LastKnown {
			// Дошли до последней известной точки, игрока не видно
			b.HasLastKnown = false
			b.State = StatePatrol
		} else {
			b.State = StateIdle
		}
		return Plan{Kind: PlanIdle, Tier: e.Range}
	}

	// На клетку игрока не встаем
	if path[0] != player {
		b.Pos = path[0]
	}
	e.Range = domain.TierForDistance(b.Pos.ChebyshevTo(player))
	return Plan{Kind: PlanMove, Tier: e.Range}
}

// Telegraph объявляет намерение врага на следующий ход (для интерфейса клиента).
func Telegraph(b *Brain, e *domain.Enemy, def balance.EnemyDef, cfg *balance.Config, player domain.Position) domain.Intent {
	switch {
	case !e.IsAlive():
		return domain.IntentIdle
	case b.StunTurns > 0:
		return domain.IntentRecover
	case def.Archetype == balance.ArchetypeTank && isLowHP(e, cfg):
		return domain.IntentDefend
	case e.Range == domain.RangeMelee:
		return domain.IntentAttack
	case def.Archetype == balance.ArchetypeSupport && b.Cooldown <= 1 && b.Pos.ChebyshevTo(player) <= abilityRange(cfg):
		return domain.IntentAbility
	case b.HasLastKnown || b.Aggro > 0:
		return domain.IntentApproach
	}
	return domain.IntentIdle
}

func isLowHP(e *domain.Enemy, cfg *balance.Config) bool {
	return e.MaxHP > 0 && float64(e.HP) < float64(e.MaxHP)*cfg.Combat.TankHPThreshold
}

func abilityRange(cfg *balance.Config) int {
	if cfg.Combat.AbilityRange > 0 {
		return cfg.Combat.AbilityRange
	}
	return SupportRange
}
