package dungeon

import (
	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/pkg/utils"
)

// shelterDensityBonus - в зданиях и руинах ресурсов втрое больше.
const shelterDensityBonus = 3

// PlaceResources раскладывает предметы каталога по проходимым клеткам.
// Обход строго построчный, чтобы количество бросков RNG не зависело ни от чего, кроме карты.
func PlaceResources(world *domain.WorldMap, cfg *balance.Config, rng utils.Roller) {
	density := cfg.Exploration.ResourceDensity
	if density <= 0 || len(cfg.Items) == 0 {
		return
	}
	open := cfg.ResourceWeights(true)
	sheltered := cfg.ResourceWeights(false)

	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			p := domain.Position{X: x, Y: y}
			if p == world.Start || !world.IsWalkable(p) {
				continue
			}
			tile := &world.Map[y][x]
			chance, weights := density, open
			if tile.Type.IsShelter() {
				chance, weights = density*shelterDensityBonus, sheltered
			}
			if !utils.Chance(rng, chance) {
				continue
			}
			if idx := balance.WeightedPick(rng, weights); idx >= 0 {
				tile.Resources = append(tile.Resources, cfg.Items[idx].ID)
			}
		}
	}
}
