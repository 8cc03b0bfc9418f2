package systems

import (
	"wasteland-server/internal/domain"
)

// HasLineOfSight проверяет прямую видимость между двумя точками по Брезенхэму.
// Начальная и конечная клетки не проверяются: стоящий у стены видит саму стену.
func HasLineOfSight(w *domain.WorldMap, p1, p2 domain.Position) bool {
	if p1 == p2 {
		return true
	}

	x0, y0 := p1.X, p1.Y
	x1, y1 := p2.X, p2.Y

	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}

	sx, sy := p1.DirectionTo(p2)
	err := dx - dy

	for {
		if x0 == x1 && y0 == y1 {
			return true
		}
		if (x0 != p1.X || y0 != p1.Y) && w.IsOpaque(x0, y0) {
			return false
		}

		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Distance - расстояние Чебышева (шаги в 8 направлениях).
func Distance(a, b domain.Position) int {
	return a.ChebyshevTo(b)
}
