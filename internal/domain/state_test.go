package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameState_Clamps(t *testing.T) {
	s := &GameState{HP: 10, MaxHP: 100, MaxActionPoints: 3}

	assert.Equal(t, 10, s.TakeDamage(25))
	assert.Equal(t, 0, s.HP)
	assert.True(t, s.IsDead())

	s.HP = 90
	assert.Equal(t, 10, s.Heal(50))
	assert.Equal(t, 100, s.HP)

	s.SetActionPoints(-2)
	assert.Equal(t, 0, s.ActionPoints)
	s.SetActionPoints(9)
	assert.Equal(t, 3, s.ActionPoints)

	s.AddInfection(150)
	assert.Equal(t, 100, s.Infection)
	s.AddInfection(-500)
	assert.Equal(t, 0, s.Infection)
}

func TestGameState_Skills(t *testing.T) {
	s := &GameState{}
	assert.Equal(t, 1, s.SkillLevel(SkillMelee), "неизвестный навык считается первым уровнем")

	s.Skills = map[string]int{SkillFirearms: 9}
	assert.True(t, s.GrowSkill(SkillFirearms))
	assert.False(t, s.GrowSkill(SkillFirearms))
	assert.Equal(t, 10, s.SkillLevel(SkillFirearms))
}

func TestGameState_Inventory(t *testing.T) {
	s := &GameState{Inventory: []string{"pipe", "bandage", "pipe"}, EquippedWeapon: "pipe"}

	assert.True(t, s.RemoveItem("pipe"))
	assert.Equal(t, []string{"bandage", "pipe"}, s.Inventory)
	assert.Equal(t, "pipe", s.EquippedWeapon, "второй экземпляр остался в руках")

	assert.True(t, s.RemoveItem("pipe"))
	assert.Empty(t, s.EquippedWeapon)
	assert.False(t, s.RemoveItem("rifle"))
}
