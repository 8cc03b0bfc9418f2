package domain

// RangeTier - качественная дистанция до игрока в бою.
type RangeTier string

const (
	RangeMelee RangeTier = "Melee"
	RangeNear  RangeTier = "Near"
	RangeFar   RangeTier = "Far"
)

// Closer сдвигает ярус на шаг к игроку (Far → Near → Melee).
func (r RangeTier) Closer() RangeTier {
	switch r {
	case RangeFar:
		return RangeNear
	default:
		return RangeMelee
	}
}

// Farther сдвигает ярус на шаг от игрока (Melee → Near → Far).
func (r RangeTier) Farther() RangeTier {
	switch r {
	case RangeMelee:
		return RangeNear
	default:
		return RangeFar
	}
}

// TierForDistance: ≤1 → Melee, ≤5 → Near, дальше Far.
func TierForDistance(d int) RangeTier {
	switch {
	case d <= 1:
		return RangeMelee
	case d <= 5:
		return RangeNear
	}
	return RangeFar
}

// StatusTag - состояние врага.
type StatusTag string

const (
	StatusActive   StatusTag = "Active"
	StatusStunned  StatusTag = "Stunned"
	StatusBleeding StatusTag = "Bleeding"
	StatusGuarded  StatusTag = "Guarded" // защитная стойка: входящий урон вдвое меньше
)

// Intent - объявленный (телеграфируемый) следующий ход врага.
type Intent string

const (
	IntentAttack   Intent = "attack"
	IntentAbility  Intent = "ability"
	IntentDefend   Intent = "defend"
	IntentApproach Intent = "approach"
	IntentRecover  Intent = "recover" // оглушен, пропустит ход
	IntentIdle     Intent = "idle"
)

type Enemy struct {
	ID     EnemyID   `json:"id"`
	TypeID string    `json:"typeId"`
	Name   string    `json:"name"`
	HP     int       `json:"hp"`
	MaxHP  int       `json:"maxHp"`
	Status StatusTag `json:"status"`
	Intent Intent    `json:"intent"`
	Range  RangeTier `json:"range"`
	// Defense вычитается из урона игрока до множителя крита.
	Defense int `json:"defense"`
}

func (e *Enemy) IsAlive() bool {
	return e.HP > 0
}

// TakeDamage наносит урон. Возвращает true, если враг погиб от этого удара.
func (e *Enemy) TakeDamage(amount int) bool {
	if e.HP <= 0 {
		return false
	}
	if amount < 0 {
		amount = 0
	}
	e.HP -= amount
	if e.HP <= 0 {
		e.HP = 0
		return true
	}
	return false
}

// Kill - мгновенная казнь, минуя расчет урона.
func (e *Enemy) Kill() {
	e.HP = 0
}
