package systems

import (
	"wasteland-server/internal/domain"
)

// MovementResult - результат вычисления движения
type MovementResult struct {
	NewPos    domain.Position
	HasMoved  bool
	IsWall    bool // уперлись в стену, воду или край карты
	CutCorner bool // диагональ через угол стены
}

// CalculateMove вычисляет новую позицию. Не меняет состояние мира!
// Диагональный шаг разрешен, только если обе соседние ортогональные клетки проходимы.
func CalculateMove(w *domain.WorldMap, from domain.Position, dx, dy int) MovementResult {
	target := from.Shift(dx, dy)
	res := MovementResult{NewPos: target}

	if !w.IsWalkable(target) {
		res.IsWall = true
		return res
	}

	if dx != 0 && dy != 0 {
		if !w.IsWalkable(from.Shift(dx, 0)) || !w.IsWalkable(from.Shift(0, dy)) {
			res.CutCorner = true
			return res
		}
	}

	res.HasMoved = true
	return res
}
