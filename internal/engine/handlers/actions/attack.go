package actions

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

// CheckAttack: цель должна существовать (ID не устарел) и быть живой.
func CheckAttack(ctx handlers.Context, p api.TargetPayload) error {
	target, ok := ctx.State.Enemies.Get(p.TargetID)
	if !ok || !target.IsAlive() {
		return handlers.Reject(handlers.ReasonInvalidTarget, "Цель не найдена.")
	}
	return nil
}

func HandleAttack(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	// 1. Поиск цели
	target, ok := ctx.State.Enemies.Get(p.TargetID)
	if !ok {
		return handlers.Result{}, handlers.Reject(handlers.ReasonInvalidTarget, "Цель не найдена.")
	}

	// 2. Оружие и навык
	weapon := ctx.State.EquippedWeapon
	class := ctx.Balance.WeaponClassOf(weapon)
	bonus := 0
	if def, ok := ctx.Balance.Item(weapon); ok && def.IsWeapon() {
		bonus = def.Damage
	}
	skill := systems.SkillForClass(class)
	level := ctx.State.SkillLevel(skill)

	// 3. Вызов Системы Боя
	out := systems.ResolveAttack(ctx.Balance, ctx.Rng, systems.AttackInput{
		Class:       class,
		Level:       level,
		WeaponBonus: bonus,
		Defense:     target.Defense,
		Guarded:     target.Status == domain.StatusGuarded,
	})

	var res handlers.Result
	killed := false

	switch {
	case out.Jammed:
		res.Msg = "Осечка! Оружие заклинило."
		res.Add(domain.Event{Type: domain.EventWeaponJam, Target: target.Name, Text: res.Msg})

	case !out.Hit:
		res.Msg = fmt.Sprintf("Промах по цели %s.", target.Name)
		res.Add(domain.Event{Type: domain.EventAttackMiss, Target: target.Name, Text: res.Msg})

	case out.Executed:
		before := target.HP
		target.Kill()
		killed = true
		res.Msg = fmt.Sprintf("Казнь! %s падает замертво.", target.Name)
		res.Add(
			domain.Event{Type: domain.EventCritical, Target: target.Name, Success: true},
			domain.Event{Type: domain.EventExecution, Amount: before, Target: target.Name, Success: true, Text: res.Msg},
		)

	default:
		killed = target.TakeDamage(out.Damage)
		res.Msg = fmt.Sprintf("Вы наносите %s %d урона.", target.Name, out.Damage)
		res.Add(domain.Event{Type: domain.EventAttackHit, Amount: out.Damage, Target: target.Name, Success: true, Text: res.Msg})
		if out.Critical {
			res.Add(domain.Event{Type: domain.EventCritical, Amount: out.Damage, Target: target.Name, Success: true})
		}
		if !killed {
			switch {
			case out.Stunned:
				if brain := ctx.Arena.Brain(target.ID); brain != nil {
					brain.Stun(ctx.Balance.Combat.StunTurns)
				}
				target.Status = domain.StatusStunned
				target.Intent = domain.IntentRecover
				res.Add(domain.Event{Type: domain.EventStun, Target: target.Name, Success: true, Text: fmt.Sprintf("%s оглушен.", target.Name)})
			case out.Bleeding:
				target.Status = domain.StatusBleeding
				res.Add(domain.Event{Type: domain.EventBleed, Target: target.Name, Success: true, Text: fmt.Sprintf("%s истекает кровью.", target.Name)})
			}
		}
	}

	if killed {
		target.Intent = domain.IntentIdle
		res.Add(domain.Event{Type: domain.EventKill, Target: target.Name, Success: true, Text: fmt.Sprintf("%s убит.", target.Name)})
	}

	// 4. Рост навыка за крит
	if out.Critical && ctx.State.GrowSkill(skill) {
		res.Add(domain.Event{Type: domain.EventSkillUp, Amount: ctx.State.SkillLevel(skill), Target: skill, Success: true})
	}

	// 5. Убийство из огнестрела на высоком уровне возвращает ОД
	if killed && class == balance.ClassFirearm && level >= 8 {
		res.APRefund = 1
		res.Add(domain.Event{Type: domain.EventAPRefund, Amount: 1, Success: true})
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "attack_handler",
		"target":    target.ID,
		"weapon":    weapon,
		"class":     class,
		"killed":    killed,
	}).Debug("Attack applied.")

	return res, nil
}
