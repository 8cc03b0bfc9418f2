package api

import "wasteland-server/internal/domain"

// PackExplored упаковывает туман войны в битовую маску (LSB первым).
func PackExplored(w *domain.WorldMap) []byte {
	bits := make([]byte, (w.Width*w.Height+7)/8)
	for _, idx := range w.Explored() {
		bits[idx/8] |= 1 << (idx % 8)
	}
	return bits
}

// ApplyExplored восстанавливает туман войны на локальной копии карты.
// Видимость сбрасывается: ее клиент пересчитывает сам.
func ApplyExplored(w *domain.WorldMap, bits []byte) {
	total := w.Width * w.Height
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.GetIndex(x, y)
			tile := &w.Map[y][x]
			tile.IsVisible = false
			tile.IsExplored = idx < total && idx/8 < len(bits) && bits[idx/8]&(1<<(idx%8)) != 0
		}
	}
}
