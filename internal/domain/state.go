package domain

import (
	"maps"
	"slices"
)

// Phase - глобальная фаза игры.
type Phase string

const (
	PhaseExploration Phase = "exploration"
	PhaseCombat      Phase = "combat"
)

// TimeOfDay - время суток. Вечером и ночью встречи вдвое вероятнее.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

var timeCycle = []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening, TimeNight}

// IsDark - вечер или ночь.
func (t TimeOfDay) IsDark() bool {
	return t == TimeEvening || t == TimeNight
}

// Next возвращает следующее время суток и признак смены дня.
func (t TimeOfDay) Next() (TimeOfDay, bool) {
	for i, v := range timeCycle {
		if v == t {
			if i == len(timeCycle)-1 {
				return timeCycle[0], true
			}
			return timeCycle[i+1], false
		}
	}
	return TimeMorning, false
}

// Навыки
const (
	SkillMelee      = "melee"
	SkillFirearms   = "firearms"
	SkillMedical    = "medical"
	SkillScavenging = "scavenging"

	MinSkillLevel = 1
	MaxSkillLevel = 10
)

// Location - где находится игрок. Depth повышает шанс встречи.
type Location struct {
	Name  string `json:"name"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Depth int    `json:"depth"`
}

func (l Location) Pos() Position {
	return Position{X: l.X, Y: l.Y}
}

// GameState - авторитетное состояние игры. Меняется только на хосте;
// клиент целиком перезаписывает свою копию при каждой синхронизации.
type GameState struct {
	Name            string         `json:"name"`
	HP              int            `json:"hp"`
	MaxHP           int            `json:"maxHp"`
	Infection       int            `json:"infection"`
	Supplies        int            `json:"supplies"`
	Day             int            `json:"day"`
	TimeOfDay       TimeOfDay      `json:"timeOfDay"`
	Tick            int            `json:"tick"`
	Location        Location       `json:"location"`
	Inventory       []string       `json:"inventory"`
	EquippedWeapon  string         `json:"equippedWeapon,omitempty"`
	Skills          map[string]int `json:"skills"`
	Phase           Phase          `json:"phase"`
	ActionPoints    int            `json:"actionPoints"`
	MaxActionPoints int            `json:"maxActionPoints"`
	Enemies         *EnemyArena    `json:"enemies"`
	Looted          []Position     `json:"looted,omitempty"`
}

// IsDead - игрок погиб.
func (s *GameState) IsDead() bool {
	return s.HP <= 0
}

// TakeDamage отнимает HP (не ниже 0). Возвращает фактический урон.
func (s *GameState) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := s.HP
	s.HP -= amount
	if s.HP < 0 {
		s.HP = 0
	}
	return before - s.HP
}

// Heal лечит не выше MaxHP. Возвращает фактически восстановленное.
func (s *GameState) Heal(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := s.HP
	s.HP += amount
	if s.HP > s.MaxHP {
		s.HP = s.MaxHP
	}
	return s.HP - before
}

// AddInfection держит заражение в пределах [0, 100].
func (s *GameState) AddInfection(delta int) {
	s.Infection += delta
	if s.Infection < 0 {
		s.Infection = 0
	}
	if s.Infection > 100 {
		s.Infection = 100
	}
}

// SetActionPoints ограничивает ОД диапазоном [0, MaxActionPoints].
func (s *GameState) SetActionPoints(ap int) {
	if ap < 0 {
		ap = 0
	}
	if ap > s.MaxActionPoints {
		ap = s.MaxActionPoints
	}
	s.ActionPoints = ap
}

// SkillLevel возвращает уровень навыка (минимум 1).
func (s *GameState) SkillLevel(name string) int {
	return ClampSkill(s.Skills[name])
}

// GrowSkill повышает навык на 1 (не выше 10). Возвращает true, если уровень вырос.
func (s *GameState) GrowSkill(name string) bool {
	if s.Skills == nil {
		s.Skills = make(map[string]int)
	}
	cur := s.SkillLevel(name)
	if cur >= MaxSkillLevel {
		s.Skills[name] = MaxSkillLevel
		return false
	}
	s.Skills[name] = cur + 1
	return true
}

// ClampSkill держит уровень в [1, 10].
func ClampSkill(level int) int {
	if level < MinSkillLevel {
		return MinSkillLevel
	}
	if level > MaxSkillLevel {
		return MaxSkillLevel
	}
	return level
}

// HasItem проверяет наличие предмета в инвентаре.
func (s *GameState) HasItem(itemID string) bool {
	for _, id := range s.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveItem удаляет один экземпляр предмета, сохраняя порядок.
func (s *GameState) RemoveItem(itemID string) bool {
	for i, id := range s.Inventory {
		if id == itemID {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			if s.EquippedWeapon == itemID && !s.HasItem(itemID) {
				s.EquippedWeapon = ""
			}
			return true
		}
	}
	return false
}

// AddItem кладет предмет в конец инвентаря.
func (s *GameState) AddItem(itemID string) {
	s.Inventory = append(s.Inventory, itemID)
}

// IsLooted - ресурсы клетки уже забраны.
func (s *GameState) IsLooted(p Position) bool {
	for _, l := range s.Looted {
		if l == p {
			return true
		}
	}
	return false
}

// Clone - глубокая копия: снимок не делит с оригиналом ни карту навыков, ни срезы, ни арену.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Inventory = slices.Clone(s.Inventory)
	out.Looted = slices.Clone(s.Looted)
	out.Skills = maps.Clone(s.Skills)
	out.Enemies = s.Enemies.Clone()
	return &out
}
