package actions

import (
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
)

// HandleEndTurn отдает оставшиеся ОД и передает ход врагам.
func HandleEndTurn(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Result{
		Free:    true,
		EndTurn: true,
		Events:  []domain.Event{{Type: domain.EventTurnEnd, Amount: ctx.State.ActionPoints, Success: true}},
	}, nil
}
