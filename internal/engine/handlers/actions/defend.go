package actions

import (
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
)

// HandleDefend - стойка до конца ближайшего хода врагов: входящий урон вдвое меньше.
func HandleDefend(ctx handlers.Context) (handlers.Result, error) {
	ctx.Combat.Defending = true
	msg := "Вы занимаете оборону."
	return handlers.Result{
		Msg:    msg,
		Events: []domain.Event{{Type: domain.EventDefend, Success: true, Text: msg}},
	}, nil
}
