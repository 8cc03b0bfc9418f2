package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSeed(t *testing.T) {
	a := DeriveSeed(42, "worldgen")
	assert.Equal(t, a, DeriveSeed(42, "worldgen"))
	assert.NotEqual(t, a, DeriveSeed(42, "simulation"))
	assert.NotEqual(t, a, DeriveSeed(43, "worldgen"))
}

func TestNewRoller_Deterministic(t *testing.T) {
	r1, r2 := NewRoller(7), NewRoller(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, r1.Float64(), r2.Float64())
	}
}

func TestRangeInt(t *testing.T) {
	r := NewRoller(1)
	for i := 0; i < 1000; i++ {
		v := RangeInt(r, 3, 5)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 5)
	}
	assert.Equal(t, 4, RangeInt(r, 4, 2))
}

func TestScriptedRoller(t *testing.T) {
	s := &ScriptedRoller{Floats: []float64{0.1, 0.9}, Ints: []int{10, -1}, Fallback: 0.5}

	assert.True(t, Chance(s, 0.2))
	assert.False(t, Chance(s, 0.2))
	assert.Equal(t, 0.5, s.Float64())

	assert.Equal(t, 2, s.Intn(3)) // обрезается до n-1
	assert.Equal(t, 0, s.Intn(3))
	assert.Equal(t, 0, s.Intn(3))

	floats, ints := s.Consumed()
	assert.Equal(t, 3, floats)
	assert.Equal(t, 3, ints)
}

func TestGenerateID(t *testing.T) {
	assert.NotEqual(t, GenerateID(), GenerateID())
	assert.Len(t, GenerateID(), 36)
}
