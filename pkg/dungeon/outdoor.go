package dungeon

import (
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"wasteland-server/internal/domain"
	"wasteland-server/pkg/utils"
)

// Параметры открытой местности
const (
	noiseScale      = 0.12
	waterLevel      = -0.45
	initialWallFill = 0.38
	smoothPasses    = 4
	buildingMin     = 4
	buildingMax     = 7
	ruinsChance     = 0.6
)

// OutdoorBuilder - пустошь: клеточный автомат для скал, шум для воды, здания и руины.
type OutdoorBuilder struct {
	width     int
	height    int
	seed      int64
	world     *domain.WorldMap
	buildings []Rect
	rng       *rand.Rand
}

func NewOutdoor(width, height int, seed int64, rng *rand.Rand) *OutdoorBuilder {
	return &OutdoorBuilder{
		width:  width,
		height: height,
		seed:   seed,
		world:  domain.NewWorldMap(width, height, seed, domain.StyleOutdoor, domain.TileGrass),
		rng:    rng,
	}
}

func (b *OutdoorBuilder) isBorder(x, y int) bool {
	return x == 0 || y == 0 || x == b.width-1 || y == b.height-1
}

// WithTerrain: шум задает озера, случайное заполнение и сглаживание - скалы.
func (b *OutdoorBuilder) WithTerrain() *OutdoorBuilder {
	noise := opensimplex.New(utils.DeriveSeed(b.seed, "terrain"))

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			tile := &b.world.Map[y][x]
			switch {
			case b.isBorder(x, y) && b.width > 2 && b.height > 2:
				tile.Type = domain.TileWall
			case noise.Eval2(float64(x)*noiseScale, float64(y)*noiseScale) < waterLevel:
				tile.Type = domain.TileWater
			case b.rng.Float64() < initialWallFill:
				tile.Type = domain.TileWall
			default:
				tile.Type = domain.TileGrass
			}
		}
	}

	for i := 0; i < smoothPasses; i++ {
		b.smooth()
	}
	return b
}

// smooth - один шаг клеточного автомата 4-5. Вода и рамка не трогаются.
func (b *OutdoorBuilder) smooth() {
	next := make([]domain.TileType, b.width*b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			cur := b.world.Map[y][x].Type
			next[y*b.width+x] = cur
			if cur == domain.TileWater || b.isBorder(x, y) {
				continue
			}
			walls := b.wallNeighbours(x, y)
			if walls >= 5 {
				next[y*b.width+x] = domain.TileWall
			} else if walls <= 3 {
				next[y*b.width+x] = domain.TileGrass
			}
		}
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			b.world.Map[y][x].Type = next[y*b.width+x]
		}
	}
}

func (b *OutdoorBuilder) wallNeighbours(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			t := b.world.TileAt(x+dx, y+dy)
			if t == nil || t.Type == domain.TileWall {
				n++
			}
		}
	}
	return n
}

// WithBuildings ставит прямоугольные здания: стены по периметру, пол внутри, одна дверь.
func (b *OutdoorBuilder) WithBuildings() *OutdoorBuilder {
	if b.width < buildingMin+2 || b.height < buildingMin+2 {
		return b
	}
	maxSide := min(buildingMax, b.width-2, b.height-2)
	target := b.width*b.height/300 + 1
	for attempt := 0; attempt < target*10 && len(b.buildings) < target; attempt++ {
		w := utils.RangeInt(b.rng, buildingMin, maxSide)
		h := utils.RangeInt(b.rng, buildingMin, maxSide)
		r := Rect{
			X: utils.RangeInt(b.rng, 1, b.width-w-1),
			Y: utils.RangeInt(b.rng, 1, b.height-h-1),
			W: w,
			H: h,
		}
		overlaps := false
		for _, other := range b.buildings {
			if r.Intersects(other) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		b.placeBuilding(r)
		b.buildings = append(b.buildings, r)
	}
	return b
}

func (b *OutdoorBuilder) placeBuilding(r Rect) {
	for y := r.Y; y <= r.Y+r.H; y++ {
		for x := r.X; x <= r.X+r.W; x++ {
			if r.OnPerimeter(x, y) {
				b.world.Map[y][x].Type = domain.TileWall
			} else {
				b.world.Map[y][x].Type = domain.TileBuilding
			}
		}
	}

	// Дверь на случайной стороне, не в углу. Снаружи двери расчищаем проход.
	var door, outside domain.Position
	switch b.rng.Intn(4) {
	case 0:
		door = domain.Position{X: utils.RangeInt(b.rng, r.X+1, r.X+r.W-1), Y: r.Y}
		outside = door.Shift(0, -1)
	case 1:
		door = domain.Position{X: utils.RangeInt(b.rng, r.X+1, r.X+r.W-1), Y: r.Y + r.H}
		outside = door.Shift(0, 1)
	case 2:
		door = domain.Position{X: r.X, Y: utils.RangeInt(b.rng, r.Y+1, r.Y+r.H-1)}
		outside = door.Shift(-1, 0)
	default:
		door = domain.Position{X: r.X + r.W, Y: utils.RangeInt(b.rng, r.Y+1, r.Y+r.H-1)}
		outside = door.Shift(1, 0)
	}
	b.world.Map[door.Y][door.X].Type = domain.TileDoor
	if t := b.world.TileAt(outside.X, outside.Y); t != nil && !b.isBorder(outside.X, outside.Y) && t.Type.BlocksMovement() {
		t.Type = domain.TileGrass
	}
}

// WithRuins разбрасывает пятна руин по траве.
func (b *OutdoorBuilder) WithRuins() *OutdoorBuilder {
	clusters := b.width*b.height/200 + 1
	for i := 0; i < clusters; i++ {
		cx := b.rng.Intn(b.width)
		cy := b.rng.Intn(b.height)
		radius := utils.RangeInt(b.rng, 1, 2)
		for y := cy - radius; y <= cy+radius; y++ {
			for x := cx - radius; x <= cx+radius; x++ {
				t := b.world.TileAt(x, y)
				if t == nil || t.Type != domain.TileGrass {
					continue
				}
				if b.rng.Float64() < ruinsChance {
					t.Type = domain.TileRuins
				}
			}
		}
	}
	return b
}

// Build выбирает старт ближе к центру и запечатывает недостижимые карманы.
func (b *OutdoorBuilder) Build() *domain.WorldMap {
	start, ok := findStart(b.world, b.width/2, b.height/2)
	if !ok {
		start = domain.Position{X: b.width / 2, Y: b.height / 2}
		b.world.Map[start.Y][start.X].Type = domain.TileGrass
	}
	b.world.Start = start
	sealUnreachable(b.world)
	return b.world
}
