// Package dungeon строит уровни детерминированно от (width, height, seed, style).
// Оба пира вызывают Generate с одинаковыми аргументами и получают одинаковую карту,
// поэтому сам мир по сети не передается.
package dungeon

import (
	"errors"
	"fmt"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/pkg/utils"
)

// Константы генерации
const (
	MapWidth  = 40
	MapHeight = 25
	MaxRooms  = 8
	MinSize   = 4
	MaxSize   = 10
)

var ErrInvalidSize = errors.New("world size must be positive")

// Rect - вспомогательная структура для комнаты
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.W && r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H && r.Y+r.H >= other.Y
}

// OnPerimeter - клетка лежит на стене комнаты (кольцо вокруг вырезанной части).
func (r Rect) OnPerimeter(x, y int) bool {
	if x < r.X || x > r.X+r.W || y < r.Y || y > r.Y+r.H {
		return false
	}
	return x == r.X || x == r.X+r.W || y == r.Y || y == r.Y+r.H
}

// Generate строит уровень со встроенным балансом.
func Generate(width, height int, seed int64, style domain.Style) (*domain.WorldMap, error) {
	return GenerateWith(balance.Default(), width, height, seed, style)
}

// GenerateWith строит уровень с заданным каталогом предметов (для раскладки ресурсов).
// Одинаковые аргументы всегда дают одинаковую карту.
func GenerateWith(cfg *balance.Config, width, height int, seed int64, style domain.Style) (*domain.WorldMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if style == "" {
		style = domain.StyleDungeon
	}
	if !style.Valid() {
		return nil, fmt.Errorf("unknown world style %q", style)
	}

	rng := utils.NewRoller(utils.DeriveSeed(seed, "worldgen"))

	var world *domain.WorldMap
	switch style {
	case domain.StyleOutdoor:
		world = NewOutdoor(width, height, seed, rng).
			WithTerrain().
			WithBuildings().
			WithRuins().
			Build()
	default:
		world = NewLevel(width, height, seed, rng).
			WithRooms(maxRoomsFor(width, height)).
			WithDoors().
			Build()
	}

	PlaceResources(world, cfg, rng)
	return world, nil
}

func maxRoomsFor(width, height int) int {
	return max(MaxRooms, width*height/125)
}

// findStart возвращает проходимую клетку, ближайшую к точке (по кольцам Чебышева).
func findStart(world *domain.WorldMap, cx, cy int) (domain.Position, bool) {
	limit := max(world.Width, world.Height)
	for r := 0; r <= limit; r++ {
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				if max(abs(x-cx), abs(y-cy)) != r {
					continue
				}
				p := domain.Position{X: x, Y: y}
				if world.IsWalkable(p) {
					return p, true
				}
			}
		}
	}
	return domain.Position{}, false
}

// sealUnreachable превращает в стены проходимые клетки, до которых нельзя дойти от старта.
// Ходьба в 8 направлениях без срезания углов дает ту же связность, что и 4-связная заливка.
func sealUnreachable(world *domain.WorldMap) {
	seen := make([]bool, world.Width*world.Height)
	queue := []domain.Position{world.Start}
	seen[world.GetIndex(world.Start.X, world.Start.Y)] = true
	steps := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, s := range steps {
			n := p.Shift(s[0], s[1])
			if !world.IsWalkable(n) {
				continue
			}
			idx := world.GetIndex(n.X, n.Y)
			if seen[idx] {
				continue
			}
			seen[idx] = true
			queue = append(queue, n)
		}
	}

	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			if !seen[world.GetIndex(x, y)] && world.IsWalkable(domain.Position{X: x, Y: y}) {
				world.Map[y][x].Type = domain.TileWall
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
