package domain

// EventType - тип записи результата. Эти записи потребляет нарративный сервис.
type EventType string

const (
	EventAttackHit    EventType = "attack_hit"
	EventAttackMiss   EventType = "attack_miss"
	EventWeaponJam    EventType = "weapon_jam"
	EventCritical     EventType = "critical"
	EventExecution    EventType = "execution"
	EventStun         EventType = "stun"
	EventBleed        EventType = "bleed"
	EventKill         EventType = "kill"
	EventSkillUp      EventType = "skill_up"
	EventAPRefund     EventType = "ap_refund"
	EventDefend       EventType = "defend"
	EventHeal         EventType = "heal"
	EventCure         EventType = "cure"
	EventFlee         EventType = "flee"
	EventReposition   EventType = "reposition"
	EventTurnEnd      EventType = "turn_end"
	EventEnemyAttack  EventType = "enemy_attack"
	EventEnemyAbility EventType = "enemy_ability"
	EventEnemyDefend  EventType = "enemy_defend"
	EventEnemyMove    EventType = "enemy_move"
	EventEnemyIdle    EventType = "enemy_idle"
	EventEnemyStunned EventType = "enemy_stunned"
	EventInfection    EventType = "infection"
	EventVictory      EventType = "victory"
	EventDefeat       EventType = "defeat"
	EventMove         EventType = "move"
	EventSearch       EventType = "search"
	EventRest         EventType = "rest"
	EventEquip        EventType = "equip"
	EventEncounter    EventType = "encounter"
	EventTimePassed   EventType = "time_passed"
)

// Event - структурированная запись результата действия.
// Target - имя или ID цели, Amount - урон/лечение/количество.
type Event struct {
	Type    EventType `json:"type"`
	Amount  int       `json:"amount,omitempty"`
	Target  string    `json:"target,omitempty"`
	Success bool      `json:"success"`
	Text    string    `json:"text,omitempty"`
}

// Параметры восприятия по умолчанию
const (
	VisionRadius      = 8
	NightVisionRadius = 5
	AbilityRange      = 5
)
