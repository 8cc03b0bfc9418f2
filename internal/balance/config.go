// Package balance - числовая модель игры: константы из YAML и формулы поверх них.
// Все функции чистые: случайность приходит извне уже выброшенной или через utils.Roller.
package balance

import (
	"errors"
	"fmt"
	"hash/fnv"

	"gopkg.in/yaml.v3"
)

// WeaponClass задается в каталоге явно, по названию предмета класс не угадывается.
type WeaponClass string

const (
	ClassUnarmed WeaponClass = "unarmed"
	ClassMelee   WeaponClass = "melee"
	ClassFirearm WeaponClass = "firearm"
)

// ItemKind - назначение предмета.
type ItemKind string

const (
	KindWeapon   ItemKind = "weapon"
	KindMedical  ItemKind = "medical"
	KindFood     ItemKind = "food"
	KindCure     ItemKind = "cure"
	KindMaterial ItemKind = "material"
)

// Archetype - модель поведения врага в планировщике.
type Archetype string

const (
	ArchetypeGrunt   Archetype = "grunt"
	ArchetypeTank    Archetype = "tank"    // уходит в защиту при низком HP
	ArchetypeSupport Archetype = "support" // есть дальняя способность с перезарядкой
)

type ItemDef struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Kind        ItemKind    `yaml:"kind"`
	Class       WeaponClass `yaml:"class,omitempty"`
	Damage      int         `yaml:"damage,omitempty"` // прибавка к базовому урону
	Heal        int         `yaml:"heal,omitempty"`
	Cure        int         `yaml:"cure,omitempty"`
	Supplies    int         `yaml:"supplies,omitempty"`
	SpawnWeight float64     `yaml:"spawn_weight"`
	Common      bool        `yaml:"common,omitempty"`
}

func (d ItemDef) IsWeapon() bool {
	return d.Kind == KindWeapon
}

// IsConsumable - предмет можно использовать (use_item).
func (d ItemDef) IsConsumable() bool {
	switch d.Kind {
	case KindMedical, KindFood, KindCure:
		return true
	}
	return false
}

type EnemyDef struct {
	ID               string    `yaml:"id"`
	Name             string    `yaml:"name"`
	MaxHP            int       `yaml:"max_hp"`
	Defense          int       `yaml:"defense"`
	Weight           float64   `yaml:"weight"`
	Archetype        Archetype `yaml:"archetype"`
	Dangerous        bool      `yaml:"dangerous,omitempty"`
	Infection        int       `yaml:"infection,omitempty"` // заражение за попадание
	AbilityDamage    int       `yaml:"ability_damage,omitempty"`
	AbilityInfection int       `yaml:"ability_infection,omitempty"`
}

type PlayerConfig struct {
	Name            string         `yaml:"name"`
	MaxHP           int            `yaml:"max_hp"`
	MaxActionPoints int            `yaml:"max_action_points"`
	Supplies        int            `yaml:"supplies"`
	Weapon          string         `yaml:"weapon"`
	Inventory       []string       `yaml:"inventory"`
	Skills          map[string]int `yaml:"skills"`
}

type SkillConfig struct {
	BaseSuccess float64 `yaml:"base_success"`
	PerLevel    float64 `yaml:"per_level"`
}

type CombatConfig struct {
	BaseDamage       int     `yaml:"base_damage"`
	DamageVariance   float64 `yaml:"damage_variance"`
	CritBase         float64 `yaml:"crit_base"`
	CritMeleeBonus   float64 `yaml:"crit_melee_bonus"`
	CritFirearmBonus float64 `yaml:"crit_firearm_bonus"`
	CritMultiplier   float64 `yaml:"crit_multiplier"`
	JamLow           float64 `yaml:"jam_low"`
	JamMid           float64 `yaml:"jam_mid"`
	ExecutionChance  float64 `yaml:"execution_chance"`
	StunChance       float64 `yaml:"stun_chance"`
	StunTurns        int     `yaml:"stun_turns"`
	FleeChance       float64 `yaml:"flee_chance"`
	BleedDamage      int     `yaml:"bleed_damage"`
	GuardMultiplier  float64 `yaml:"guard_multiplier"`
	EnemyBaseDamage  int     `yaml:"enemy_base_damage"`
	EnemyHeavyDamage int     `yaml:"enemy_heavy_damage"`
	HeavyThreshold   int     `yaml:"heavy_threshold"`
	EnemyRollMin     float64 `yaml:"enemy_roll_min"`
	EnemyRollMax     float64 `yaml:"enemy_roll_max"`
	DefendMultiplier float64 `yaml:"defend_multiplier"`
	AbilityCooldown  int     `yaml:"ability_cooldown"`
	AbilityRange     int     `yaml:"ability_range"`
	TankHPThreshold  float64 `yaml:"tank_hp_threshold"`
	MaxEnemies       int     `yaml:"max_enemies"`
}

type ExplorationConfig struct {
	BaseEncounter         float64 `yaml:"base_encounter"`
	ShelterMultiplier     float64 `yaml:"shelter_multiplier"`
	DarkMultiplier        float64 `yaml:"dark_multiplier"`
	DepthFactor           float64 `yaml:"depth_factor"`
	MaxEncounter          float64 `yaml:"max_encounter"`
	NightDangerMultiplier float64 `yaml:"night_danger_multiplier"`
	SearchBase            float64 `yaml:"search_base"`
	SearchPerLevel        float64 `yaml:"search_per_level"`
	RestHeal              int     `yaml:"rest_heal"`
	RestSupplyCost        int     `yaml:"rest_supply_cost"`
	TicksPerTimeOfDay     int     `yaml:"ticks_per_time_of_day"`
	VisionRadius          int     `yaml:"vision_radius"`
	NightVisionRadius     int     `yaml:"night_vision_radius"`
	MedicalBonusLevel     int     `yaml:"medical_bonus_level"`
	MedicalBonus          float64 `yaml:"medical_bonus"`
	ResourceDensity       float64 `yaml:"resource_density"`
}

// Config - весь баланс игры.
type Config struct {
	Player      PlayerConfig      `yaml:"player"`
	Skills      SkillConfig       `yaml:"skills"`
	Combat      CombatConfig      `yaml:"combat"`
	Exploration ExplorationConfig `yaml:"exploration"`
	Items       []ItemDef         `yaml:"items"`
	Enemies     []EnemyDef        `yaml:"enemies"`
}

// Item ищет предмет в каталоге.
func (c *Config) Item(id string) (ItemDef, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemDef{}, false
}

// Enemy ищет тип врага в каталоге.
func (c *Config) Enemy(id string) (EnemyDef, bool) {
	for _, e := range c.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return EnemyDef{}, false
}

// WeaponClassOf возвращает класс оружия в руках. Пустая рука - unarmed.
func (c *Config) WeaponClassOf(itemID string) WeaponClass {
	if itemID == "" {
		return ClassUnarmed
	}
	def, ok := c.Item(itemID)
	if !ok || !def.IsWeapon() || def.Class == "" {
		return ClassUnarmed
	}
	return def.Class
}

// Validate проверяет, что баланс пригоден для игры.
func (c *Config) Validate() error {
	var errs []error
	if c.Player.MaxHP <= 0 {
		errs = append(errs, errors.New("player.max_hp must be positive"))
	}
	if c.Player.MaxActionPoints <= 0 {
		errs = append(errs, errors.New("player.max_action_points must be positive"))
	}
	if c.Combat.MaxEnemies <= 0 {
		errs = append(errs, errors.New("combat.max_enemies must be positive"))
	}
	if c.Combat.EnemyRollMax < c.Combat.EnemyRollMin {
		errs = append(errs, errors.New("combat.enemy_roll_max is below enemy_roll_min"))
	}
	if c.Exploration.TicksPerTimeOfDay <= 0 {
		errs = append(errs, errors.New("exploration.ticks_per_time_of_day must be positive"))
	}
	if len(c.Enemies) == 0 {
		errs = append(errs, errors.New("enemy catalogue is empty"))
	}
	seen := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if seen[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate item %q", it.ID))
		}
		seen[it.ID] = true
		if it.Kind == KindWeapon && it.Class != ClassMelee && it.Class != ClassFirearm {
			errs = append(errs, fmt.Errorf("weapon %q has no class", it.ID))
		}
	}
	for _, id := range c.Player.Inventory {
		if !seen[id] {
			errs = append(errs, fmt.Errorf("starting item %q is not in the catalogue", id))
		}
	}
	if c.Player.Weapon != "" && !seen[c.Player.Weapon] {
		errs = append(errs, fmt.Errorf("starting weapon %q is not in the catalogue", c.Player.Weapon))
	}
	return errors.Join(errs...)
}

// Fingerprint - отпечаток баланса. Пиры с разными отпечатками посчитают бой по-разному,
// поэтому клиент отказывается подключаться.
func (c *Config) Fingerprint() uint64 {
	data, err := yaml.Marshal(c)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}
