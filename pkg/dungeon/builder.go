package dungeon

import (
	"math/rand"

	"wasteland-server/internal/domain"
)

func carve(world *domain.WorldMap, x, y int) {
	if world.InBounds(x, y) {
		world.Map[y][x].Type = domain.TileFloor
	}
}

func createRoom(world *domain.WorldMap, room Rect) {
	for y := room.Y + 1; y < room.Y+room.H; y++ {
		for x := room.X + 1; x < room.X+room.W; x++ {
			carve(world, x, y)
		}
	}
}

func createHCorridor(world *domain.WorldMap, x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		carve(world, x, y)
	}
}

func createVCorridor(world *domain.WorldMap, y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		carve(world, x, y)
	}
}

// LevelBuilder предоставляет fluent API для подземелья: комнаты, коридоры, двери.
type LevelBuilder struct {
	width  int
	height int
	rooms  []Rect
	world  *domain.WorldMap
	rng    *rand.Rand
}

// NewLevel создает builder, карта изначально целиком из стен.
func NewLevel(width, height int, seed int64, rng *rand.Rand) *LevelBuilder {
	return &LevelBuilder{
		width:  width,
		height: height,
		world:  domain.NewWorldMap(width, height, seed, domain.StyleDungeon, domain.TileWall),
		rng:    rng,
	}
}

func (b *LevelBuilder) randRange(lo, hi int) int {
	return b.rng.Intn(hi-lo+1) + lo
}

// WithRooms генерирует комнаты и соединяет каждую с предыдущей L-образным коридором.
func (b *LevelBuilder) WithRooms(maxRooms int) *LevelBuilder {
	maxSize := min(MaxSize, b.width-2, b.height-2)
	if maxSize < MinSize {
		b.carveOpen()
		return b
	}

	b.rooms = make([]Rect, 0, maxRooms)
	for i := 0; i < maxRooms; i++ {
		w := b.randRange(MinSize, maxSize)
		h := b.randRange(MinSize, maxSize)
		x := b.randRange(1, b.width-w-1)
		y := b.randRange(1, b.height-h-1)

		newRoom := Rect{X: x, Y: y, W: w, H: h}

		failed := false
		for _, other := range b.rooms {
			if newRoom.Intersects(other) {
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		createRoom(b.world, newRoom)

		if len(b.rooms) > 0 {
			prevX, prevY := b.rooms[len(b.rooms)-1].Center()
			currX, currY := newRoom.Center()

			if b.rng.Intn(2) == 0 {
				createHCorridor(b.world, prevX, currX, prevY)
				createVCorridor(b.world, prevY, currY, currX)
			} else {
				createVCorridor(b.world, prevY, currY, prevX)
				createHCorridor(b.world, prevX, currX, currY)
			}
		}
		b.rooms = append(b.rooms, newRoom)
	}

	return b
}

// carveOpen - карта слишком мала для комнат: одна открытая площадка внутри рамки.
func (b *LevelBuilder) carveOpen() {
	if b.width < 3 || b.height < 3 {
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				carve(b.world, x, y)
			}
		}
		return
	}
	for y := 1; y < b.height-1; y++ {
		for x := 1; x < b.width-1; x++ {
			carve(b.world, x, y)
		}
	}
}

// WithDoors ставит двери там, где коридор пробил стену комнаты.
// Дверью становится только проем между двумя стенами, иначе коридор вдоль стены
// превратился бы в ряд дверей.
func (b *LevelBuilder) WithDoors() *LevelBuilder {
	for _, room := range b.rooms {
		for y := room.Y; y <= room.Y+room.H; y++ {
			for x := room.X; x <= room.X+room.W; x++ {
				if !room.OnPerimeter(x, y) {
					continue
				}
				t := b.world.TileAt(x, y)
				if t == nil || t.Type != domain.TileFloor {
					continue
				}
				if b.isWall(x-1, y) && b.isWall(x+1, y) || b.isWall(x, y-1) && b.isWall(x, y+1) {
					t.Type = domain.TileDoor
				}
			}
		}
	}
	return b
}

func (b *LevelBuilder) isWall(x, y int) bool {
	t := b.world.TileAt(x, y)
	return t == nil || t.Type == domain.TileWall
}

// GetStartPos возвращает стартовую позицию (центр первой комнаты)
func (b *LevelBuilder) GetStartPos() domain.Position {
	if len(b.rooms) > 0 {
		cx, cy := b.rooms[0].Center()
		return domain.Position{X: cx, Y: cy}
	}
	if p, ok := findStart(b.world, b.width/2, b.height/2); ok {
		return p
	}
	return domain.Position{X: b.width / 2, Y: b.height / 2}
}

// Build собирает и возвращает готовую карту
func (b *LevelBuilder) Build() *domain.WorldMap {
	b.world.Start = b.GetStartPos()
	if !b.world.IsWalkable(b.world.Start) {
		carve(b.world, b.world.Start.X, b.world.Start.Y)
	}
	return b.world
}
