package systems

import (
	"math"

	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/pkg/logger"
	"wasteland-server/pkg/utils"
)

// AttackInput - все, что нужно для броска атаки игрока.
type AttackInput struct {
	Class       balance.WeaponClass
	Level       int // уровень навыка, соответствующего классу оружия
	WeaponBonus int
	Defense     int
	Guarded     bool // цель в защитной стойке
}

// AttackOutcome - результат атаки. Урон еще не применен к цели.
type AttackOutcome struct {
	Jammed   bool
	Hit      bool
	Critical bool
	Executed bool
	Stunned  bool
	Bleeding bool
	Damage   int
}

// SkillForClass - какой навык отвечает за оружие. Без оружия дерутся врукопашную.
func SkillForClass(class balance.WeaponClass) string {
	if class == balance.ClassFirearm {
		return domain.SkillFirearms
	}
	return domain.SkillMelee
}

// ResolveAttack бросает кости строго в порядке: осечка → попадание → крит → казнь → разброс → оглушение.
// Каждый бросок делается только когда он нужен, поэтому число бросков однозначно
// определяется результатом и оба пира, повторяя расчет, остаются на одной последовательности.
func ResolveAttack(cfg *balance.Config, r utils.Roller, in AttackInput) AttackOutcome {
	var out AttackOutcome
	level := domain.ClampSkill(in.Level)
	melee := in.Class == balance.ClassMelee

	if in.Class == balance.ClassFirearm && level <= 7 {
		if utils.Chance(r, cfg.JamChance(level)) {
			out.Jammed = true
			return out
		}
	}

	if !utils.Chance(r, cfg.SkillSuccessChance(level)) {
		return out
	}
	out.Hit = true

	out.Critical = utils.Chance(r, cfg.CritChance(in.Class, level))

	if melee && level >= 8 && out.Critical {
		if utils.Chance(r, cfg.Combat.ExecutionChance) {
			out.Executed = true
			return out
		}
	}

	variance := utils.Uniform(r, -cfg.Combat.DamageVariance, cfg.Combat.DamageVariance)
	out.Damage = cfg.Damage(cfg.Combat.BaseDamage+in.WeaponBonus, variance, in.Defense, out.Critical)
	if in.Guarded {
		out.Damage = max(1, int(math.Floor(float64(out.Damage)*cfg.Combat.GuardMultiplier)))
	}

	if melee && level >= 4 && level <= 7 {
		out.Stunned = utils.Chance(r, cfg.Combat.StunChance)
	}
	if melee && out.Critical && !out.Stunned {
		out.Bleeding = true
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "combat_system",
		"class":     in.Class,
		"level":     level,
		"critical":  out.Critical,
		"damage":    out.Damage,
		"stunned":   out.Stunned,
	}).Debug("Attack resolved.")

	return out
}

// ResolveEnemyAttack - урон врага по игроку, один бросок разброса.
func ResolveEnemyAttack(cfg *balance.Config, r utils.Roller, maxHP int, defending bool) int {
	roll := utils.Uniform(r, cfg.Combat.EnemyRollMin, cfg.Combat.EnemyRollMax)
	return cfg.EnemyDamage(maxHP, roll, defending)
}
