package systems

import (
	"container/heap"

	"wasteland-server/internal/domain"
)

// Порядок обхода соседей фиксирован: от него зависит выбор среди равных путей,
// а путь должен совпадать на обоих пирах.
var neighbourSteps = [8][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

type pathNode struct {
	pos   domain.Position
	g, f  int
	h     int
	seq   int
	index int
}

// openSet - min-heap по (f, h, seq).
type openSet []*pathNode

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*o)
	*o = append(*o, n)
}

func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	return n
}

// FindPath ищет кратчайший путь A* в 8 направлениях без срезания углов.
// Возвращает шаги без стартовой клетки, последний шаг - goal.
// Пустой результат: цель недостижима, непроходима или совпадает со стартом.
func FindPath(w *domain.WorldMap, start, goal domain.Position) []domain.Position {
	if start == goal || !w.InBounds(start.X, start.Y) || !w.IsWalkable(goal) {
		return nil
	}

	size := w.Width * w.Height
	gScore := make([]int, size)
	for i := range gScore {
		gScore[i] = -1
	}
	cameFrom := make([]int, size)
	closed := make([]bool, size)

	startIdx := w.GetIndex(start.X, start.Y)
	gScore[startIdx] = 0
	cameFrom[startIdx] = -1

	seq := 0
	open := &openSet{}
	h0 := start.ChebyshevTo(goal)
	heap.Push(open, &pathNode{pos: start, g: 0, h: h0, f: h0, seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		curIdx := w.GetIndex(cur.pos.X, cur.pos.Y)
		if closed[curIdx] {
			continue
		}
		closed[curIdx] = true

		if cur.pos == goal {
			return reconstruct(w, cameFrom, curIdx)
		}

		for _, s := range neighbourSteps {
			mv := CalculateMove(w, cur.pos, s[0], s[1])
			if !mv.HasMoved {
				continue
			}
			nIdx := w.GetIndex(mv.NewPos.X, mv.NewPos.Y)
			if closed[nIdx] {
				continue
			}
			g := cur.g + 1
			if gScore[nIdx] >= 0 && g >= gScore[nIdx] {
				continue
			}
			gScore[nIdx] = g
			cameFrom[nIdx] = curIdx
			seq++
			h := mv.NewPos.ChebyshevTo(goal)
			heap.Push(open, &pathNode{pos: mv.NewPos, g: g, h: h, f: g + h, seq: seq})
		}
	}
	return nil
}

func reconstruct(w *domain.WorldMap, cameFrom []int, idx int) []domain.Position {
	var rev []domain.Position
	for cameFrom[idx] >= 0 {
		rev = append(rev, domain.Position{X: idx % w.Width, Y: idx / w.Width})
		idx = cameFrom[idx]
	}
	path := make([]domain.Position, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
