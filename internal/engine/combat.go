package engine

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
)

// Brain возвращает память врага (nil для устаревшего ID).
func (s *Session) Brain(id domain.EnemyID) *systems.Brain {
	if _, ok := s.State.Enemies.Get(id); !ok {
		return nil
	}
	return s.brains[id]
}

// BeginCombat ставит врагов в бой и сбрасывает ОД. Дистанция считается от позиции игрока.
func (s *Session) BeginCombat(spawns []systems.Spawn) []domain.Event {
	s.State.Enemies.Clear()
	clear(s.brains)

	player := s.State.Location.Pos()
	for _, sp := range spawns {
		e := systems.NewEnemy(sp.Def, sp.Pos.ChebyshevTo(player))
		id := s.State.Enemies.Spawn(e)
		s.brains[id] = systems.NewBrain(sp.Pos)
	}
	s.telegraph()

	s.State.Phase = domain.PhaseCombat
	s.State.SetActionPoints(s.State.MaxActionPoints)
	s.Combat = &domain.CombatState{
		Phase:              domain.CombatPlayerTurn,
		Round:              1,
		PlayerActionPoints: s.State.ActionPoints,
	}

	names := make([]string, 0, len(spawns))
	for _, sp := range spawns {
		names = append(names, sp.Def.Name)
	}
	ev := domain.Event{
		Type:    domain.EventEncounter,
		Amount:  len(spawns),
		Success: true,
		Text:    fmt.Sprintf("Враги: %v.", names),
	}
	s.Combat.Append(ev)

	s.log.WithFields(logrus.Fields{"enemies": len(spawns), "pos": player}).Debug("Combat started")
	return []domain.Event{ev}
}

// EndCombat завершает бой победой или побегом: враги убираются, фаза - исследование.
func (s *Session) EndCombat(outcome domain.CombatPhase) []domain.Event {
	if s.Combat == nil {
		return nil
	}
	s.Combat.Phase = outcome
	s.Combat.Defending = false
	s.State.Enemies.Clear()
	clear(s.brains)

	s.State.Phase = domain.PhaseExploration
	s.State.SetActionPoints(s.State.MaxActionPoints)
	s.Combat.PlayerActionPoints = s.State.ActionPoints

	var events []domain.Event
	if outcome == domain.CombatVictory {
		events = append(events, domain.Event{Type: domain.EventVictory, Amount: s.Combat.Round, Success: true, Text: "Победа."})
	}
	s.log.WithFields(logrus.Fields{"outcome": outcome, "rounds": s.Combat.Round}).Debug("Combat ended")
	return events
}

// afterCombatAction: списание ОД, проверка исхода, ход врагов, зачистка убитых.
func (s *Session) afterCombatAction(res handlers.Result, out *Outcome) []domain.Event {
	var events []domain.Event

	if s.State.Phase != domain.PhaseCombat {
		// Бой закончился внутри действия (побег)
		out.CombatEnded = true
		s.Combat.Append(res.Events...)
		return nil
	}

	ap := s.State.ActionPoints
	if !res.Free {
		ap--
	}
	ap += res.APRefund
	s.setAP(ap)
	s.Combat.Append(res.Events...)

	if terminal := s.checkTerminal(); terminal != nil {
		out.CombatEnded = true
		return append(events, terminal...)
	}

	if s.State.ActionPoints == 0 || res.EndTurn {
		out.EnemyTurn = true
		events = append(events, s.enemyTurn()...)
		if terminal := s.checkTerminal(); terminal != nil {
			out.CombatEnded = true
			return append(events, terminal...)
		}
	}

	s.sweepDead()
	return events
}

func (s *Session) setAP(ap int) {
	s.State.SetActionPoints(ap)
	if s.Combat != nil {
		s.Combat.PlayerActionPoints = s.State.ActionPoints
	}
}

// checkTerminal: смерть игрока - поражение, все враги без HP - победа.
func (s *Session) checkTerminal() []domain.Event {
	if s.State.IsDead() {
		s.Combat.Phase = domain.CombatDefeat
		ev := domain.Event{Type: domain.EventDefeat, Success: false, Text: "Вы погибли."}
		s.Combat.Append(ev)
		s.log.WithField("round", s.Combat.Round).Info("Player defeated")
		return []domain.Event{ev}
	}
	if s.State.Enemies.AllDown() {
		events := s.EndCombat(domain.CombatVictory)
		s.Combat.Append(events...)
		return events
	}
	return nil
}

// sweepDead убирает убитых врагов из арены. Их ID после этого невалидны.
func (s *Session) sweepDead() {
	for _, e := range s.State.Enemies.Live() {
		if e.IsAlive() {
			continue
		}
		delete(s.brains, e.ID)
		s.State.Enemies.Remove(e.ID)
	}
}

// enemyTurn - ход врагов по порядку появления, затем новый раунд.
func (s *Session) enemyTurn() []domain.Event {
	s.Combat.Phase = domain.CombatEnemyTurn
	player := s.State.Location.Pos()
	cfg := s.Balance

	var events []domain.Event
	for _, e := range s.State.Enemies.Live() {
		if !e.IsAlive() {
			continue
		}
		def, _ := cfg.Enemy(e.TypeID)
		brain := s.brains[e.ID]
		if brain == nil {
			brain = systems.NewBrain(player)
			s.brains[e.ID] = brain
		}

		// Кровотечение срабатывает до хода
		if e.Status == domain.StatusBleeding {
			killed := e.TakeDamage(cfg.Combat.BleedDamage)
			events = append(events, domain.Event{Type: domain.EventBleed, Amount: cfg.Combat.BleedDamage, Target: e.Name, Success: true})
			if killed {
				events = append(events, domain.Event{Type: domain.EventKill, Target: e.Name, Success: true, Text: fmt.Sprintf("%s истек кровью.", e.Name)})
				continue
			}
		}
		if e.Status == domain.StatusGuarded {
			e.Status = domain.StatusActive
		}

		plan := systems.Think(s.World, brain, e, def, cfg, player)
		events = append(events, s.act(e, def, plan)...)

		if s.State.IsDead() {
			break
		}
	}

	s.Combat.Append(events...)
	if s.State.IsDead() {
		return events
	}

	s.telegraph()
	s.Combat.Defending = false
	s.Combat.Round++
	s.setAP(s.State.MaxActionPoints)
	s.Combat.Phase = domain.CombatPlayerTurn
	return events
}

// act исполняет план врага. Броски делаются только для атаки.
func (s *Session) act(e *domain.Enemy, def balance.EnemyDef, plan systems.Plan) []domain.Event {
	cfg := s.Balance
	switch plan.Kind {
	case systems.PlanSkip:
		return []domain.Event{{Type: domain.EventEnemyStunned, Target: e.Name, Text: fmt.Sprintf("%s приходит в себя.", e.Name)}}

	case systems.PlanDefend:
		e.Status = domain.StatusGuarded
		return []domain.Event{{Type: domain.EventEnemyDefend, Target: e.Name, Success: true, Text: fmt.Sprintf("%s уходит в оборону.", e.Name)}}

	case systems.PlanAttack:
		dmg := systems.ResolveEnemyAttack(cfg, s.rng, e.MaxHP, s.Combat.Defending)
		dealt := s.State.TakeDamage(dmg)
		events := []domain.Event{{
			Type: domain.EventEnemyAttack, Amount: dealt, Target: e.Name, Success: true,
			Text: fmt.Sprintf("%s наносит вам %d урона.", e.Name, dealt),
		}}
		if def.Infection > 0 && dealt > 0 {
			s.State.AddInfection(def.Infection)
			events = append(events, domain.Event{Type: domain.EventInfection, Amount: def.Infection, Target: e.Name, Success: true})
		}
		return events

	case systems.PlanAbility:
		dmg := def.AbilityDamage
		if s.Combat.Defending {
			dmg = int(math.Floor(float64(dmg) * cfg.Combat.DefendMultiplier))
		}
		dealt := s.State.TakeDamage(dmg)
		events := []domain.Event{{
			Type: domain.EventEnemyAbility, Amount: dealt, Target: e.Name, Success: true,
			Text: fmt.Sprintf("%s плюется кислотой.", e.Name),
		}}
		if def.AbilityInfection > 0 {
			s.State.AddInfection(def.AbilityInfection)
			events = append(events, domain.Event{Type: domain.EventInfection, Amount: def.AbilityInfection, Target: e.Name, Success: true})
		}
		return events

	case systems.PlanMove:
		return []domain.Event{{Type: domain.EventEnemyMove, Target: e.Name, Text: string(plan.Tier), Success: true}}
	}
	return []domain.Event{{Type: domain.EventEnemyIdle, Target: e.Name}}
}

// telegraph объявляет намерения живых врагов на следующий ход.
func (s *Session) telegraph() {
	player := s.State.Location.Pos()
	for _, e := range s.State.Enemies.Live() {
		def, _ := s.Balance.Enemy(e.TypeID)
		if brain := s.brains[e.ID]; brain != nil {
			e.Intent = systems.Telegraph(brain, e, def, s.Balance, player)
		}
	}
}
