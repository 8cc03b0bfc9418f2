package balance

import (
	"math"

	"wasteland-server/internal/domain"
	"wasteland-server/pkg/utils"
)

// SkillSuccessChance = base + min(level, 10) × perLevel. Уровень 1 → 0.45, уровень 10 → 0.90.
func (c *Config) SkillSuccessChance(level int) float64 {
	return c.Skills.BaseSuccess + float64(domain.ClampSkill(level))*c.Skills.PerLevel
}

// JamChance - шанс осечки огнестрела. С 8 уровня оружие не клинит.
func (c *Config) JamChance(level int) float64 {
	switch level = domain.ClampSkill(level); {
	case level <= 3:
		return c.Combat.JamLow
	case level <= 7:
		return c.Combat.JamMid
	}
	return 0
}

// CritChance: база плюс бонус специализации на уровнях 4–7.
func (c *Config) CritChance(class WeaponClass, level int) float64 {
	chance := c.Combat.CritBase
	level = domain.ClampSkill(level)
	if level >= 4 && level <= 7 {
		switch class {
		case ClassMelee:
			chance += c.Combat.CritMeleeBonus
		case ClassFirearm:
			chance += c.Combat.CritFirearmBonus // выстрел в голову
		}
	}
	return chance
}

// Damage = floor(max(1, base × (1 + variance) − defense) × (crit ? multiplier : 1)).
// variance уже выброшена вызывающим в диапазоне [−v, +v].
func (c *Config) Damage(base int, variance float64, defense int, critical bool) int {
	raw := math.Max(1, float64(base)*(1+variance)-float64(defense))
	if critical {
		raw *= c.Combat.CritMultiplier
	}
	return int(math.Floor(raw))
}

// EnemyDamage - урон врага по игроку. roll - множитель из [EnemyRollMin, EnemyRollMax].
func (c *Config) EnemyDamage(maxHP int, roll float64, defending bool) int {
	base := c.Combat.EnemyBaseDamage
	if maxHP > c.Combat.HeavyThreshold {
		base = c.Combat.EnemyHeavyDamage
	}
	dmg := math.Max(1, float64(base)*roll)
	if defending {
		dmg *= c.Combat.DefendMultiplier
	}
	return int(math.Floor(dmg))
}

// EncounterChance = min(max, base × shelter × dark × (1 + depth × factor)).
func (c *Config) EncounterChance(tile domain.TileType, t domain.TimeOfDay, depth int) float64 {
	e := c.Exploration
	chance := e.BaseEncounter
	if tile.IsShelter() {
		chance *= e.ShelterMultiplier
	}
	if t.IsDark() {
		chance *= e.DarkMultiplier
	}
	if depth > 0 {
		chance *= 1 + float64(depth)*e.DepthFactor
	}
	return math.Min(e.MaxEncounter, chance)
}

// EnemyWeights - веса выбора типа врага (в порядке каталога). Ночью опасные чаще.
func (c *Config) EnemyWeights(night bool) []float64 {
	out := make([]float64, len(c.Enemies))
	for i, e := range c.Enemies {
		w := e.Weight
		if night && e.Dangerous {
			w *= c.Exploration.NightDangerMultiplier
		}
		out[i] = w
	}
	return out
}

// ResourceWeights - веса предметов при раскладке ресурсов (в порядке каталога).
// В зданиях и руинах разрешены все предметы, на открытой местности только common.
func (c *Config) ResourceWeights(commonOnly bool) []float64 {
	out := make([]float64, len(c.Items))
	for i, it := range c.Items {
		if commonOnly && !it.Common {
			continue
		}
		out[i] = it.SpawnWeight
	}
	return out
}

// HealAmount: медик с уровня MedicalBonusLevel лечит на MedicalBonus больше.
func (c *Config) HealAmount(base, medicalLevel int) int {
	if domain.ClampSkill(medicalLevel) >= c.Exploration.MedicalBonusLevel {
		return int(math.Floor(float64(base) * (1 + c.Exploration.MedicalBonus)))
	}
	return base
}

// SearchChance - шанс найти что-то при обыске клетки.
func (c *Config) SearchChance(scavenging int) float64 {
	return math.Min(1, c.Exploration.SearchBase+float64(domain.ClampSkill(scavenging))*c.Exploration.SearchPerLevel)
}

// VisionRadius - ночью видно хуже.
func (c *Config) VisionRadius(t domain.TimeOfDay) int {
	if t == domain.TimeNight {
		return c.Exploration.NightVisionRadius
	}
	return c.Exploration.VisionRadius
}

// WeightedPick выбирает индекс пропорционально весам. Ровно один бросок r.Float64().
// Возвращает -1, если сумма весов не положительна (бросок при этом не делается).
func WeightedPick(r utils.Roller, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := r.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if roll < w {
			return i
		}
		roll -= w
	}
	return last
}
