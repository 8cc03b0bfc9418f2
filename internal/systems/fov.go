package systems

import (
	"github.com/sirupsen/logrus"

	"wasteland-server/internal/domain"
	"wasteland-server/pkg/logger"
)

// Мультипликаторы для трансформации координат в 8 октантов
var multipliers = [4][8]int{
	{1, 0, 0, -1, -1, 0, 0, 1},
	{0, 1, -1, 0, 0, -1, 1, 0},
	{0, 1, 1, 0, 0, -1, -1, 0},
	{1, 0, 0, 1, -1, 0, 0, -1},
}

// shadowcaster - один проход рекурсивного shadowcasting вокруг наблюдателя.
type shadowcaster struct {
	world    *domain.WorldMap
	cx, cy   int
	radius   int
	radiusSq int
	lit      []domain.Position
}

// ComputeVisible пересчитывает видимость вокруг наблюдателя.
// Все клетки теряют флаг visible, видимые получают visible и explored
// (поэтому visible ⊆ explored сохраняется всегда). Возвращает видимые клетки,
// каждую ровно один раз, начиная с самого наблюдателя.
func ComputeVisible(w *domain.WorldMap, pos domain.Position, radius int) []domain.Position {
	fovLogger := logger.Log.WithFields(logrus.Fields{
		"component":    "fov_system",
		"observer_pos": pos,
		"radius":       radius,
	})

	w.ClearVisible()

	if radius <= 0 || !w.InBounds(pos.X, pos.Y) {
		fovLogger.Warn("FOV calculation skipped: blind observer or position out of bounds.")
		return nil
	}

	sc := &shadowcaster{world: w, cx: pos.X, cy: pos.Y, radius: radius, radiusSq: radius * radius}

	// Центр всегда виден
	sc.light(pos.X, pos.Y)

	for i := 0; i < 8; i++ {
		sc.cast(1, 1.0, 0.0, multipliers[0][i], multipliers[1][i], multipliers[2][i], multipliers[3][i])
	}

	fovLogger.WithField("visible_tiles", len(sc.lit)).Debug("FOV calculation complete.")
	return sc.lit
}

func (sc *shadowcaster) light(x, y int) {
	t := sc.world.TileAt(x, y)
	if t == nil || t.IsVisible {
		return
	}
	t.IsVisible = true
	t.IsExplored = true
	sc.lit = append(sc.lit, domain.Position{X: x, Y: y})
}

func (sc *shadowcaster) cast(row int, start, end float64, xx, xy, yx, yy int) {
	if start < end {
		return
	}

	for j := row; j <= sc.radius; j++ {
		dx, dy := -j-1, -j
		blocked := false
		newStart := start

		for {
			dx++
			if dx > 0 {
				break
			}

			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			X := sc.cx + dx*xx + dy*xy
			Y := sc.cy + dx*yx + dy*yy

			if dx*dx+dy*dy < sc.radiusSq {
				sc.light(X, Y)
			}

			opaque := sc.world.IsOpaque(X, Y)
			if blocked {
				if opaque {
					newStart = rSlope
					continue
				}
				// Стена кончилась
				blocked = false
				start = newStart
			} else if opaque && j < sc.radius {
				blocked = true
				sc.cast(j+1, start, lSlope, xx, xy, yx, yy)
				newStart = rSlope
			}
		}
		if blocked {
			break
		}
	}
}
