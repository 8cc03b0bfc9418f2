package domain

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileType - тип клетки карты.
type TileType string

const (
	TileFloor    TileType = "floor"
	TileWall     TileType = "wall"
	TileDoor     TileType = "door"
	TileGrass    TileType = "grass"
	TileWater    TileType = "water"
	TileBuilding TileType = "building"
	TileRuins    TileType = "ruins"
)

// BlocksMovement - по клетке нельзя пройти (стена, вода).
func (t TileType) BlocksMovement() bool {
	return t == TileWall || t == TileWater
}

// BlocksSight - клетка не пропускает свет. Вода взгляд не закрывает.
func (t TileType) BlocksSight() bool {
	return t == TileWall
}

// IsShelter - руины и здания удваивают шанс встречи.
func (t TileType) IsShelter() bool {
	return t == TileRuins || t == TileBuilding
}

// Style - стиль генерации уровня.
type Style string

const (
	StyleDungeon Style = "dungeon"
	StyleOutdoor Style = "outdoor"
)

func (s Style) Valid() bool {
	return s == StyleDungeon || s == StyleOutdoor
}

type Tile struct {
	Type       TileType `json:"type"`
	IsExplored bool     `json:"explored"`
	IsVisible  bool     `json:"visible"`
	Resources  []string `json:"resources,omitempty"` // ID предметов из каталога баланса
}

// WorldMap - сгенерированный уровень. Между пирами не передается:
// клиент восстанавливает его из (Width, Height, Seed, Style).
type WorldMap struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Seed   int64    `json:"seed"`
	Style  Style    `json:"style"`
	Start  Position `json:"start"`
	Map    [][]Tile `json:"map"`
}

// NewWorldMap создает карту, заполненную клетками одного типа.
func NewWorldMap(width, height int, seed int64, style Style, fill TileType) *WorldMap {
	grid := make([][]Tile, height)
	for y := 0; y < height; y++ {
		row := make([]Tile, width)
		for x := range row {
			row[x].Type = fill
		}
		grid[y] = row
	}
	return &WorldMap{Width: width, Height: height, Seed: seed, Style: style, Map: grid}
}

func (w *WorldMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < w.Width && y < w.Height
}

func (w *WorldMap) GetIndex(x, y int) int {
	return y*w.Width + x
}

// TileAt возвращает указатель на клетку или nil за пределами карты.
func (w *WorldMap) TileAt(x, y int) *Tile {
	if !w.InBounds(x, y) {
		return nil
	}
	return &w.Map[y][x]
}

// IsWalkable - клетка в пределах карты и не стена/вода.
func (w *WorldMap) IsWalkable(p Position) bool {
	t := w.TileAt(p.X, p.Y)
	return t != nil && !t.Type.BlocksMovement()
}

// IsOpaque - за пределами карты тоже темно.
func (w *WorldMap) IsOpaque(x, y int) bool {
	t := w.TileAt(x, y)
	return t == nil || t.Type.BlocksSight()
}

// ClearVisible сбрасывает флаг видимости у всех клеток.
func (w *WorldMap) ClearVisible() {
	for y := range w.Map {
		for x := range w.Map[y] {
			w.Map[y][x].IsVisible = false
		}
	}
}

// Explored возвращает индексы исследованных клеток.
func (w *WorldMap) Explored() []int {
	var out []int
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.Map[y][x].IsExplored {
				out = append(out, w.GetIndex(x, y))
			}
		}
	}
	return out
}

// MarkExplored помечает клетку по индексу (используется при восстановлении тумана войны).
func (w *WorldMap) MarkExplored(idx int) {
	if idx < 0 || idx >= w.Width*w.Height {
		return
	}
	w.Map[idx/w.Width][idx%w.Width].IsExplored = true
}

// TakeResource забирает первый ресурс с клетки.
func (w *WorldMap) TakeResource(p Position) (string, bool) {
	t := w.TileAt(p.X, p.Y)
	if t == nil || len(t.Resources) == 0 {
		return "", false
	}
	item := t.Resources[0]
	t.Resources = t.Resources[1:]
	if len(t.Resources) == 0 {
		t.Resources = nil
	}
	return item, true
}

// ClearResources опустошает клетку (при восстановлении состояния у клиента).
func (w *WorldMap) ClearResources(p Position) {
	if t := w.TileAt(p.X, p.Y); t != nil {
		t.Resources = nil
	}
}
