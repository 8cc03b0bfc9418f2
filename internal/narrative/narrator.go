// Package narrative превращает события действия в текст для игрока.
// Нарратив необязателен: ошибка нарратора никогда не влияет на игру.
package narrative

import (
	"context"
	"strings"

	"wasteland-server/internal/domain"
)

// Plain склеивает тексты событий. Работает без сети, используется по умолчанию.
type Plain struct{}

func (Plain) Narrate(_ context.Context, events []domain.Event) (string, error) {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.Text == "" {
			continue
		}
		parts = append(parts, ev.Text)
	}
	return strings.Join(parts, " "), nil
}
