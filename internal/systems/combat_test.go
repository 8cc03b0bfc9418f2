package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wasteland-server/internal/balance"
	"wasteland-server/pkg/utils"
)

func TestResolveAttack(t *testing.T) {
	cfg := balance.Default()

	tests := []struct {
		name      string
		in        AttackInput
		floats    []float64
		want      AttackOutcome
		wantRolls int
	}{
		{
			name:      "plain hit vs defense 2",
			in:        AttackInput{Class: balance.ClassMelee, Level: 1, Defense: 2},
			floats:    []float64{0.0, 0.99, 0.5}, // попал, без крита, разброс 0
			want:      AttackOutcome{Hit: true, Damage: 8},
			wantRolls: 3,
		},
		{
			name:      "miss consumes one roll",
			in:        AttackInput{Class: balance.ClassMelee, Level: 1},
			floats:    []float64{0.5},
			want:      AttackOutcome{},
			wantRolls: 1,
		},
		{
			name:      "firearm jam aborts",
			in:        AttackInput{Class: balance.ClassFirearm, Level: 2},
			floats:    []float64{0.01},
			want:      AttackOutcome{Jammed: true},
			wantRolls: 1,
		},
		{
			name:      "firearm level 8 never jams",
			in:        AttackInput{Class: balance.ClassFirearm, Level: 8},
			floats:    []float64{0.0, 0.99, 0.5},
			want:      AttackOutcome{Hit: true, Damage: 10},
			wantRolls: 3,
		},
		{
			name:      "execution",
			in:        AttackInput{Class: balance.ClassMelee, Level: 8, Defense: 50},
			floats:    []float64{0.0, 0.0, 0.1},
			want:      AttackOutcome{Hit: true, Critical: true, Executed: true},
			wantRolls: 3,
		},
		{
			name:      "melee stun at level 5",
			in:        AttackInput{Class: balance.ClassMelee, Level: 5},
			floats:    []float64{0.0, 0.9, 0.5, 0.1},
			want:      AttackOutcome{Hit: true, Stunned: true, Damage: 10},
			wantRolls: 4,
		},
		{
			name:      "melee critical bleeds",
			in:        AttackInput{Class: balance.ClassMelee, Level: 1},
			floats:    []float64{0.0, 0.05, 0.5},
			want:      AttackOutcome{Hit: true, Critical: true, Bleeding: true, Damage: 15},
			wantRolls: 3,
		},
		{
			name:      "guarded target halves damage",
			in:        AttackInput{Class: balance.ClassMelee, Level: 1, Defense: 2, Guarded: true},
			floats:    []float64{0.0, 0.99, 0.5},
			want:      AttackOutcome{Hit: true, Damage: 4},
			wantRolls: 3,
		},
		{
			name:      "unarmed never stuns",
			in:        AttackInput{Class: balance.ClassUnarmed, Level: 5},
			floats:    []float64{0.0, 0.99, 0.5},
			want:      AttackOutcome{Hit: true, Damage: 10},
			wantRolls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &utils.ScriptedRoller{Floats: tt.floats}
			got := ResolveAttack(cfg, r, tt.in)
			assert.Equal(t, tt.want, got)
			rolls, _ := r.Consumed()
			assert.Equal(t, tt.wantRolls, rolls)
		})
	}
}

func TestResolveEnemyAttack(t *testing.T) {
	cfg := balance.Default()

	assert.Equal(t, 8, ResolveEnemyAttack(cfg, &utils.ScriptedRoller{Floats: []float64{0.5}}, 30, false))
	assert.Equal(t, 4, ResolveEnemyAttack(cfg, &utils.ScriptedRoller{Floats: []float64{0.5}}, 30, true))
	assert.Equal(t, 15, ResolveEnemyAttack(cfg, &utils.ScriptedRoller{Floats: []float64{0.5}}, 60, false))
}
