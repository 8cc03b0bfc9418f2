package engine

import (
	"time"

	"wasteland-server/internal/domain"
	"wasteland-server/pkg/dungeon"
	"wasteland-server/pkg/utils"
)

// Config хранит параметры запуска сессии.
// Пиры обмениваются только им: мир каждый строит сам.
type Config struct {
	// Seed - мастер-зерно. От него зависят карта, ресурсы и весь боевой RNG.
	Seed      int64
	Width     int
	Height    int
	Style     domain.Style
	SessionID string
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:      time.Now().UnixNano(),
		Width:     dungeon.MapWidth,
		Height:    dungeon.MapHeight,
		Style:     domain.StyleOutdoor,
		SessionID: utils.GenerateID(),
	}
}

// depthFor - глубина уровня. Подземелье глубже поверхности и опаснее.
func depthFor(style domain.Style) int {
	if style == domain.StyleDungeon {
		return 1
	}
	return 0
}
