package systems

import (
	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/pkg/utils"
)

// Радиус, в котором появляются враги при встрече
const (
	SpawnMinDistance = 2
	SpawnMaxDistance = 6
)

// Spawn - враг, которого нужно поставить в бой.
type Spawn struct {
	Def balance.EnemyDef
	Pos domain.Position
}

// RollEncounter - один бросок на встречу после перемещения.
func RollEncounter(cfg *balance.Config, r utils.Roller, tile domain.TileType, t domain.TimeOfDay, depth int) bool {
	return utils.Chance(r, cfg.EncounterChance(tile, t, depth))
}

// SpawnEncounter выбирает от 1 до MaxEnemies врагов и ставит их на свободные проходимые клетки
// в кольце вокруг игрока. Если места нет, враг встает вплотную к игроку.
func SpawnEncounter(cfg *balance.Config, r utils.Roller, w *domain.WorldMap, player domain.Position, t domain.TimeOfDay) []Spawn {
	count := utils.RangeInt(r, 1, max(1, cfg.Combat.MaxEnemies))
	weights := cfg.EnemyWeights(t == domain.TimeNight)

	taken := map[domain.Position]bool{player: true}
	candidates := spawnCandidates(w, player)

	spawns := make([]Spawn, 0, count)
	for i := 0; i < count; i++ {
		idx := balance.WeightedPick(r, weights)
		if idx < 0 {
			break
		}
		def := cfg.Enemies[idx]

		free := candidates[:0:0]
		for _, c := range candidates {
			if !taken[c] {
				free = append(free, c)
			}
		}
		pos := player
		if len(free) > 0 {
			pos = free[r.Intn(len(free))]
		}
		taken[pos] = true
		spawns = append(spawns, Spawn{Def: def, Pos: pos})
	}
	return spawns
}

// spawnCandidates - проходимые клетки на расстоянии [SpawnMinDistance, SpawnMaxDistance], построчно.
func spawnCandidates(w *domain.WorldMap, player domain.Position) []domain.Position {
	var out []domain.Position
	for y := player.Y - SpawnMaxDistance; y <= player.Y+SpawnMaxDistance; y++ {
		for x := player.X - SpawnMaxDistance; x <= player.X+SpawnMaxDistance; x++ {
			p := domain.Position{X: x, Y: y}
			d := p.ChebyshevTo(player)
			if d < SpawnMinDistance || !w.IsWalkable(p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// NewEnemy создает врага из каталога на заданной дистанции.
func NewEnemy(def balance.EnemyDef, distance int) domain.Enemy {
	return domain.Enemy{
		TypeID:  def.ID,
		Name:    def.Name,
		HP:      def.MaxHP,
		MaxHP:   def.MaxHP,
		Status:  domain.StatusActive,
		Intent:  domain.IntentApproach,
		Range:   domain.TierForDistance(distance),
		Defense: def.Defense,
	}
}
