package domain

import "slices"

// CombatPhase - состояние боевого автомата.
// victory, defeat и fled - терминальные.
type CombatPhase string

const (
	CombatPlayerTurn CombatPhase = "player_turn"
	CombatEnemyTurn  CombatPhase = "enemy_turn"
	CombatVictory    CombatPhase = "victory"
	CombatDefeat     CombatPhase = "defeat"
	CombatFled       CombatPhase = "fled"
)

func (p CombatPhase) IsTerminal() bool {
	return p == CombatVictory || p == CombatDefeat || p == CombatFled
}

// CombatState - состояние текущего (или последнего) боя.
type CombatState struct {
	Phase              CombatPhase `json:"phase"`
	Round              int         `json:"round"`
	PlayerActionPoints int         `json:"playerActionPoints"`
	Defending          bool        `json:"defending"`
	Log                []Event     `json:"log"`
}

// Append добавляет события в боевой лог.
func (c *CombatState) Append(events ...Event) {
	c.Log = append(c.Log, events...)
}

func (c *CombatState) Clone() *CombatState {
	if c == nil {
		return nil
	}
	out := *c
	out.Log = slices.Clone(c.Log)
	return &out
}
