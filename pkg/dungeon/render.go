package dungeon

import (
	"strings"

	"wasteland-server/internal/domain"
)

var tileGlyphs = map[domain.TileType]byte{
	domain.TileFloor:    '.',
	domain.TileWall:     '#',
	domain.TileDoor:     '+',
	domain.TileGrass:    '"',
	domain.TileWater:    '~',
	domain.TileBuilding: ':',
	domain.TileRuins:    '%',
}

// Render рисует карту в ASCII: '@' - старт, '*' - клетка с ресурсами.
func Render(world *domain.WorldMap) string {
	var sb strings.Builder
	sb.Grow((world.Width + 1) * world.Height)
	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			tile := world.Map[y][x]
			switch {
			case world.Start.X == x && world.Start.Y == y:
				sb.WriteByte('@')
			case len(tile.Resources) > 0:
				sb.WriteByte('*')
			default:
				g, ok := tileGlyphs[tile.Type]
				if !ok {
					g = '?'
				}
				sb.WriteByte(g)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
