package dungeon

import (
	"hash/fnv"

	"wasteland-server/internal/domain"
)

// Checksum - отпечаток рельефа карты. Ресурсы и туман не учитываются:
// они меняются по ходу партии, а рельеф после генерации неизменен.
func Checksum(world *domain.WorldMap) uint64 {
	h := fnv.New64a()
	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			h.Write([]byte(world.Map[y][x].Type))
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}
