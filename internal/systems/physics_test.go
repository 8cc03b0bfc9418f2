package systems

import (
	"testing"

	"wasteland-server/internal/domain"
)

// Helper для создания пустой карты; стены ставятся в тестах
func createTestWorld(w, h int) *domain.WorldMap {
	return domain.NewWorldMap(w, h, 1, domain.StyleDungeon, domain.TileFloor)
}

func TestHasLineOfSight(t *testing.T) {
	// Карта 5x5
	// . . . . .
	// . . # . .  (2,1) - стена
	// . # # # .  (1,2), (2,2), (3,2) - стена
	// . . # . .  (2,3) - стена
	// . . . . .

	w := createTestWorld(5, 5)
	w.Map[1][2].Type = domain.TileWall
	w.Map[2][1].Type = domain.TileWall
	w.Map[2][2].Type = domain.TileWall
	w.Map[2][3].Type = domain.TileWall
	w.Map[3][2].Type = domain.TileWall

	tests := []struct {
		name string
		p1   domain.Position
		p2   domain.Position
		want bool
	}{
		{"Clear horizontal", domain.Position{X: 0, Y: 0}, domain.Position{X: 4, Y: 0}, true},
		{"Blocked horizontal", domain.Position{X: 0, Y: 2}, domain.Position{X: 4, Y: 2}, false},
		{"Clear diagonal", domain.Position{X: 0, Y: 0}, domain.Position{X: 1, Y: 1}, true},
		{"Blocked diagonal", domain.Position{X: 0, Y: 0}, domain.Position{X: 4, Y: 4}, false}, // через (2,2)
		{"Adjacent wall", domain.Position{X: 2, Y: 1}, domain.Position{X: 2, Y: 2}, true},     // стоим рядом со стеной и смотрим на нее
		{"Behind wall", domain.Position{X: 2, Y: 1}, domain.Position{X: 2, Y: 3}, false},      // стена (2,2) мешает
		{"Same point", domain.Position{X: 3, Y: 3}, domain.Position{X: 3, Y: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasLineOfSight(w, tt.p1, tt.p2); got != tt.want {
				t.Errorf("HasLineOfSight(%v, %v) = %v, want %v", tt.p1, tt.p2, got, tt.want)
			}
		})
	}
}

func TestHasLineOfSight_WaterIsTransparent(t *testing.T) {
	w := createTestWorld(5, 1)
	w.Map[0][2].Type = domain.TileWater

	if !HasLineOfSight(w, domain.Position{X: 0, Y: 0}, domain.Position{X: 4, Y: 0}) {
		t.Error("water must not block sight")
	}
}

func TestCalculateMove(t *testing.T) {
	world := createTestWorld(10, 10)
	world.Map[5][5].Type = domain.TileWall
	from := domain.Position{X: 4, Y: 5}

	// 1. Шаг в пустую клетку
	res := CalculateMove(world, from, 0, -1)
	if !res.HasMoved || res.NewPos != (domain.Position{X: 4, Y: 4}) {
		t.Errorf("expected move to (4,4), got %+v", res)
	}

	// 2. В стену
	res = CalculateMove(world, from, 1, 0)
	if res.HasMoved || !res.IsWall {
		t.Errorf("expected wall collision, got %+v", res)
	}

	// 3. Диагональ через угол стены
	res = CalculateMove(world, from, 1, 1)
	if res.HasMoved || !res.CutCorner {
		t.Errorf("expected corner cut to be refused, got %+v", res)
	}

	// 4. За край карты
	res = CalculateMove(world, domain.Position{X: 0, Y: 0}, -1, 0)
	if res.HasMoved || !res.IsWall {
		t.Errorf("expected boundary collision, got %+v", res)
	}
}
