package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/domain"
)

func assertVisibleSubsetOfExplored(t *testing.T, w *domain.WorldMap) {
	t.Helper()
	for y := range w.Map {
		for x := range w.Map[y] {
			tile := w.Map[y][x]
			if tile.IsVisible && !tile.IsExplored {
				t.Fatalf("tile (%d,%d) visible but not explored", x, y)
			}
		}
	}
}

func TestComputeVisible_OpenRoom(t *testing.T) {
	w := createTestWorld(11, 11)
	pos := domain.Position{X: 5, Y: 5}

	visible := ComputeVisible(w, pos, 3)

	require.NotEmpty(t, visible)
	assert.Equal(t, pos, visible[0], "первым идет сам наблюдатель")
	seen := make(map[domain.Position]bool, len(visible))
	for _, p := range visible {
		assert.False(t, seen[p], "клетка %v повторяется", p)
		seen[p] = true
		assert.True(t, w.Map[p.Y][p.X].IsVisible)
	}
	assert.Len(t, visible, countVisible(w))
	assert.True(t, seen[domain.Position{X: 5, Y: 3}])
	assert.True(t, w.Map[5][5].IsVisible, "центр всегда виден")
	assert.True(t, w.Map[3][5].IsVisible)
	assert.False(t, w.Map[2][5].IsVisible, "радиус строгий")
	assert.False(t, w.Map[0][0].IsVisible)
	assertVisibleSubsetOfExplored(t, w)
}

func TestComputeVisible_WallCastsShadow(t *testing.T) {
	w := createTestWorld(11, 11)
	w.Map[3][5].Type = domain.TileWall

	ComputeVisible(w, domain.Position{X: 5, Y: 5}, 8)

	assert.True(t, w.Map[3][5].IsVisible, "саму стену видно")
	assert.False(t, w.Map[1][5].IsVisible, "за стеной тень")
	assertVisibleSubsetOfExplored(t, w)
}

func TestComputeVisible_ExploredPersists(t *testing.T) {
	w := createTestWorld(11, 11)

	ComputeVisible(w, domain.Position{X: 1, Y: 1}, 3)
	assert.True(t, w.Map[1][1].IsVisible)

	ComputeVisible(w, domain.Position{X: 9, Y: 9}, 3)
	assert.False(t, w.Map[1][1].IsVisible)
	assert.True(t, w.Map[1][1].IsExplored, "исследованное не забывается")
	assertVisibleSubsetOfExplored(t, w)
}

func TestComputeVisible_Blind(t *testing.T) {
	w := createTestWorld(5, 5)
	ComputeVisible(w, domain.Position{X: 2, Y: 2}, 3)

	assert.Empty(t, ComputeVisible(w, domain.Position{X: 2, Y: 2}, 0))
	assert.False(t, w.Map[2][2].IsVisible, "видимость сброшена")
	assert.True(t, w.Map[2][2].IsExplored)
}

func countVisible(w *domain.WorldMap) int {
	n := 0
	for y := range w.Map {
		for x := range w.Map[y] {
			if w.Map[y][x].IsVisible {
				n++
			}
		}
	}
	return n
}
