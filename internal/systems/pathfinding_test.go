package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/domain"
)

func TestFindPath_Open(t *testing.T) {
	w := createTestWorld(10, 10)
	path := FindPath(w, domain.Position{X: 0, Y: 0}, domain.Position{X: 3, Y: 3})

	require.Len(t, path, 3, "диагональ стоит как прямой шаг")
	assert.Equal(t, domain.Position{X: 3, Y: 3}, path[len(path)-1])
}

func TestFindPath_StepsAreValid(t *testing.T) {
	w := createTestWorld(12, 8)
	for y := 0; y < 6; y++ {
		w.Map[y][5].Type = domain.TileWall
	}
	start := domain.Position{X: 1, Y: 1}
	goal := domain.Position{X: 10, Y: 1}

	path := FindPath(w, start, goal)
	require.NotEmpty(t, path)

	prev := start
	for _, p := range path {
		assert.True(t, w.IsWalkable(p))
		res := CalculateMove(w, prev, p.X-prev.X, p.Y-prev.Y)
		assert.True(t, res.HasMoved, "шаг %v -> %v недопустим", prev, p)
		prev = p
	}
	assert.Equal(t, goal, prev)
}

func TestFindPath_Blocked(t *testing.T) {
	w := createTestWorld(7, 5)
	for y := 0; y < 5; y++ {
		w.Map[y][3].Type = domain.TileWall
	}

	assert.Empty(t, FindPath(w, domain.Position{X: 0, Y: 2}, domain.Position{X: 6, Y: 2}))
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	w := createTestWorld(3, 3)
	w.Map[0][1].Type = domain.TileWall
	w.Map[1][0].Type = domain.TileWall

	assert.Empty(t, FindPath(w, domain.Position{X: 0, Y: 0}, domain.Position{X: 1, Y: 1}))
}

func TestFindPath_Degenerate(t *testing.T) {
	w := createTestWorld(5, 5)
	w.Map[4][4].Type = domain.TileWall

	assert.Empty(t, FindPath(w, domain.Position{X: 1, Y: 1}, domain.Position{X: 1, Y: 1}))
	assert.Empty(t, FindPath(w, domain.Position{X: 1, Y: 1}, domain.Position{X: 4, Y: 4}), "цель в стене")
	assert.Empty(t, FindPath(w, domain.Position{X: 1, Y: 1}, domain.Position{X: 9, Y: 9}), "цель за картой")
}

func TestFindPath_Deterministic(t *testing.T) {
	w := createTestWorld(20, 20)
	for y := 2; y < 18; y++ {
		w.Map[y][10].Type = domain.TileWall
	}
	a := FindPath(w, domain.Position{X: 1, Y: 10}, domain.Position{X: 18, Y: 10})
	b := FindPath(w, domain.Position{X: 1, Y: 10}, domain.Position{X: 18, Y: 10})
	assert.Equal(t, a, b)
}
