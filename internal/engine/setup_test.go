package engine

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testConfig(seed int64) Config {
	return Config{Seed: seed, Width: 40, Height: 25, Style: domain.StyleDungeon, SessionID: "test"}
}

func newTestSession(t *testing.T, seed int64) *Session {
	t.Helper()
	s, err := NewSession(testConfig(seed), balance.Default())
	require.NoError(t, err)
	return s
}

// startFight ставит врагов вплотную к игроку (ярус Melee).
func startFight(t *testing.T, s *Session, enemyIDs ...string) []*domain.Enemy {
	t.Helper()
	spawns := make([]systems.Spawn, 0, len(enemyIDs))
	for _, id := range enemyIDs {
		def, ok := s.Balance.Enemy(id)
		require.True(t, ok, id)
		spawns = append(spawns, systems.Spawn{Def: def, Pos: s.State.Location.Pos()})
	}
	s.BeginCombat(spawns)
	return s.State.Enemies.Live()
}

func cmd(t *testing.T, action domain.ActionType, payload any) domain.Command {
	t.Helper()
	if payload == nil {
		return domain.Command{Action: action}
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return domain.Command{Action: action, Payload: raw}
}

func attack(t *testing.T, id domain.EnemyID) domain.Command {
	return cmd(t, domain.ActionAttack, api.TargetPayload{TargetID: id})
}

// walkableStep ищет шаг, который сессия примет.
func walkableStep(s *Session) (api.MovePayload, bool) {
	for _, d := range [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}} {
		p := api.MovePayload{Dx: d[0], Dy: d[1]}
		raw, _ := json.Marshal(p)
		if s.Validate(domain.Command{Action: domain.ActionMove, Payload: raw}) == nil {
			return p, true
		}
	}
	return api.MovePayload{}, false
}

func stateJSON(t *testing.T, s *Session) string {
	t.Helper()
	raw, err := json.Marshal(s.Snapshot("test"))
	require.NoError(t, err)
	return string(raw)
}
