package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/utils"
)

func TestNewSession(t *testing.T) {
	s := newTestSession(t, 42)

	assert.Equal(t, domain.PhaseExploration, s.State.Phase)
	assert.Equal(t, 100, s.State.HP)
	assert.Equal(t, 3, s.State.ActionPoints)
	assert.Equal(t, "pipe", s.State.EquippedWeapon)
	assert.Equal(t, domain.TimeMorning, s.State.TimeOfDay)
	assert.True(t, s.World.IsWalkable(s.State.Location.Pos()))
	assert.NotEmpty(t, s.World.Explored(), "стартовое поле зрения уже открыто")
	assert.Nil(t, s.Combat)

	_, err := NewSession(Config{Seed: 1, Width: 0, Height: 10}, balance.Default())
	assert.Error(t, err)
}

func TestExploration_MoveBlocked(t *testing.T) {
	s := newTestSession(t, 42)
	s.State.Location.X, s.State.Location.Y = 0, 0

	err := s.Validate(cmd(t, domain.ActionMove, api.MovePayload{Dx: -1}))
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, handlers.ReasonBlocked, ve.Reason)

	err = s.Validate(attack(t, domain.PackEnemyID(1, 0)))
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, handlers.ReasonWrongPhase, ve.Reason)
}

func TestExploration_MoveAroundCorners(t *testing.T) {
	s := newTestSession(t, 42)
	s.rng = &utils.ScriptedRoller{Fallback: 0.99} // встреч нет
	at := domain.Position{X: 5, Y: 5}
	for _, p := range []domain.Position{at, {X: 6, Y: 4}, {X: 5, Y: 4}} {
		s.World.Map[p.Y][p.X].Type = domain.TileFloor
	}
	s.World.Map[5][6].Type = domain.TileWall
	s.World.Map[5][4].Type = domain.TileWater
	s.State.Location.X, s.State.Location.Y = at.X, at.Y

	// Вода - препятствие
	err := s.Validate(cmd(t, domain.ActionMove, api.MovePayload{Dx: -1}))
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, handlers.ReasonBlocked, ve.Reason)

	// Диагональ мимо угла стены разрешена: проходима сама клетка назначения
	_, err = s.Apply(cmd(t, domain.ActionMove, api.MovePayload{Dx: 1, Dy: -1}))
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 6, Y: 4}, s.State.Location.Pos())
}

func TestExploration_MoveAdvancesTimeAndVision(t *testing.T) {
	s := newTestSession(t, 42)
	s.rng = &utils.ScriptedRoller{Fallback: 0.99} // встреч нет

	step, ok := walkableStep(s)
	require.True(t, ok)
	start := s.State.Location.Pos()

	out, err := s.Apply(cmd(t, domain.ActionMove, step))
	require.NoError(t, err)
	assert.False(t, out.CombatStarted)
	assert.Equal(t, start.Shift(step.Dx, step.Dy), s.State.Location.Pos())
	assert.Equal(t, 1, s.State.Tick)

	for y := 0; y < s.World.Height; y++ {
		for x := 0; x < s.World.Width; x++ {
			tile := s.World.Map[y][x]
			if tile.IsVisible {
				assert.True(t, tile.IsExplored, "visible без explored в (%d,%d)", x, y)
			}
		}
	}
	assert.True(t, s.World.TileAt(start.X, start.Y).IsExplored)
}

func TestExploration_EncounterStartsCombat(t *testing.T) {
	s := newTestSession(t, 42)
	s.rng = &utils.ScriptedRoller{Fallback: 0.0}

	step, ok := walkableStep(s)
	require.True(t, ok)

	out, err := s.Apply(cmd(t, domain.ActionMove, step))
	require.NoError(t, err)
	assert.True(t, out.CombatStarted)

	assert.Equal(t, domain.PhaseCombat, s.State.Phase)
	require.NotNil(t, s.Combat)
	assert.Equal(t, domain.CombatPlayerTurn, s.Combat.Phase)
	assert.Equal(t, 1, s.Combat.Round)
	assert.Equal(t, s.State.MaxActionPoints, s.State.ActionPoints)
	assert.Equal(t, 1, s.State.Enemies.Len())
	assert.Equal(t, "raider", s.State.Enemies.Live()[0].TypeID)
}

func TestExploration_Search(t *testing.T) {
	s := newTestSession(t, 42)
	pos := s.State.Location.Pos()
	s.World.TileAt(pos.X, pos.Y).Resources = []string{"medkit"}

	s.rng = &utils.ScriptedRoller{Floats: []float64{0.0}}
	_, err := s.Apply(cmd(t, domain.ActionSearch, nil))
	require.NoError(t, err)
	assert.True(t, s.State.HasItem("medkit"))
	assert.Equal(t, []domain.Position{pos}, s.State.Looted)
	assert.Empty(t, s.World.TileAt(pos.X, pos.Y).Resources)

	// Пустая клетка: успех дает случайный обычный предмет
	s.rng = &utils.ScriptedRoller{Floats: []float64{0.0, 0.0}}
	_, err = s.Apply(cmd(t, domain.ActionSearch, nil))
	require.NoError(t, err)
	assert.Equal(t, "pipe", s.State.Inventory[len(s.State.Inventory)-1])

	size := len(s.State.Inventory)
	s.rng = &utils.ScriptedRoller{Floats: []float64{0.99}}
	out, err := s.Apply(cmd(t, domain.ActionSearch, nil))
	require.NoError(t, err)
	assert.Len(t, s.State.Inventory, size)
	assert.False(t, out.Events[0].Success)
	assert.Equal(t, 3, s.State.Tick)
}

func TestExploration_Rest(t *testing.T) {
	s := newTestSession(t, 42)
	s.State.HP = 50

	_, err := s.Apply(cmd(t, domain.ActionRest, nil))
	require.NoError(t, err)
	assert.Equal(t, 70, s.State.HP)
	assert.Equal(t, 4, s.State.Supplies)
	assert.Equal(t, domain.TimeAfternoon, s.State.TimeOfDay)

	for i := 0; i < 3; i++ {
		_, err = s.Apply(cmd(t, domain.ActionRest, nil))
		require.NoError(t, err)
	}
	assert.Equal(t, domain.TimeMorning, s.State.TimeOfDay)
	assert.Equal(t, 2, s.State.Day)
	assert.Equal(t, 100, s.State.HP)

	s.State.Supplies = 0
	err = s.Validate(cmd(t, domain.ActionRest, nil))
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, handlers.ReasonNoSupplies, ve.Reason)
}

func TestExploration_EquipAndUse(t *testing.T) {
	s := newTestSession(t, 42)
	s.State.AddItem("pistol")
	s.State.AddItem("antibiotics")
	s.State.Infection = 40

	_, err := s.Apply(cmd(t, domain.ActionEquip, api.ItemPayload{ItemID: "pistol"}))
	require.NoError(t, err)
	assert.Equal(t, "pistol", s.State.EquippedWeapon)

	err = s.Validate(cmd(t, domain.ActionEquip, api.ItemPayload{ItemID: "bandage"}))
	assert.Error(t, err)

	_, err = s.Apply(cmd(t, domain.ActionUseItem, api.ItemPayload{ItemID: "antibiotics"}))
	require.NoError(t, err)
	assert.Equal(t, 10, s.State.Infection)
	assert.False(t, s.State.HasItem("antibiotics"))
}

// play гоняет сессию простым автопилотом.
func play(t *testing.T, s *Session, steps int) {
	t.Helper()
	for i := 0; i < steps && !s.Over(); i++ {
		if s.State.Phase == domain.PhaseCombat {
			live := s.State.Enemies.Live()
			require.NotEmpty(t, live)
			_, err := s.Apply(attack(t, live[0].ID))
			require.NoError(t, err)
			continue
		}
		if i%5 == 4 {
			_, err := s.Apply(cmd(t, domain.ActionSearch, nil))
			require.NoError(t, err)
			continue
		}
		step, ok := walkableStep(s)
		require.True(t, ok)
		_, err := s.Apply(cmd(t, domain.ActionMove, step))
		require.NoError(t, err)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	s := newTestSession(t, 77)
	play(t, s, 150)
	require.NotEmpty(t, s.Journal().Actions)

	replayed, err := Replay(s.Journal(), balance.Default())
	require.NoError(t, err)
	assert.Equal(t, stateJSON(t, s), stateJSON(t, replayed))
	assert.Len(t, replayed.Journal().Actions, len(s.Journal().Actions))
}

func TestReplay_BalanceMismatch(t *testing.T) {
	s := newTestSession(t, 77)
	other := balance.Default()
	other.Combat.FleeChance = 0.9

	_, err := Replay(s.Journal(), other)
	assert.ErrorIs(t, err, ErrBalanceMismatch)
}

func TestReplica_Overwrite(t *testing.T) {
	host := newTestSession(t, 5)
	replica, err := NewReplica(testConfig(5), balance.Default())
	require.NoError(t, err)

	pos := host.State.Location.Pos()
	host.World.TileAt(pos.X, pos.Y).Resources = []string{"scrap", "medkit"}
	replica.World.TileAt(pos.X, pos.Y).Resources = []string{"scrap", "medkit"}
	host.rng = &utils.ScriptedRoller{Floats: []float64{0.0}}
	_, err = host.Apply(cmd(t, domain.ActionSearch, nil))
	require.NoError(t, err)

	play(t, host, 40)

	replica.Overwrite(host.Snapshot("test"))
	assert.Equal(t, stateJSON(t, host), stateJSON(t, replica))
	assertSameResources(t, host.World, replica.World)

	// повторная синхронизация ничего не забирает второй раз
	replica.Overwrite(host.Snapshot("test"))
	assertSameResources(t, host.World, replica.World)

	_, err = replica.Apply(cmd(t, domain.ActionSearch, nil))
	assert.ErrorIs(t, err, ErrReplica)
}

func assertSameResources(t *testing.T, a, b *domain.WorldMap) {
	t.Helper()
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			assert.Equal(t, a.Map[y][x].Resources, b.Map[y][x].Resources, "ресурсы в (%d,%d)", x, y)
		}
	}
}
