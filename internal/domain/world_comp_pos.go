package domain

import "math"

// DistanceTo возвращает точное расстояние до другой точки (float)
func (p Position) DistanceTo(other Position) float64 {
	return math.Sqrt(math.Pow(float64(p.X-other.X), 2) + math.Pow(float64(p.Y-other.Y), 2))
}

// ChebyshevTo - число шагов при движении в 8 направлениях.
// По нему считаются дистанции ярусов (Melee/Near/Far) и радиус способностей.
func (p Position) ChebyshevTo(other Position) int {
	dx := abs(p.X - other.X)
	dy := abs(p.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// IsAdjacent возвращает true, если цель в соседней клетке (включая диагональ)
func (p Position) IsAdjacent(other Position) bool {
	return p != other && p.ChebyshevTo(other) <= 1
}

// Shift возвращает новую позицию со смещением, не меняя текущую.
func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// DirectionTo возвращает шаг (-1..1) по каждой оси в сторону цели.
func (p Position) DirectionTo(other Position) (int, int) {
	return sign(other.X - p.X), sign(other.Y - p.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
