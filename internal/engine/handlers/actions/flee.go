package actions

import (
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/pkg/utils"
)

// HandleFlee - один бросок. Успех завершает бой и не тратит ОД,
// провал тратит ОД как обычное действие.
func HandleFlee(ctx handlers.Context) (handlers.Result, error) {
	if !utils.Chance(ctx.Rng, ctx.Balance.Combat.FleeChance) {
		msg := "Сбежать не удалось."
		return handlers.Result{
			Msg:    msg,
			Events: []domain.Event{{Type: domain.EventFlee, Success: false, Text: msg}},
		}, nil
	}

	res := handlers.Result{Msg: "Вы сбежали.", Free: true}
	res.Add(domain.Event{Type: domain.EventFlee, Success: true, Text: res.Msg})
	res.Add(ctx.Arena.EndCombat(domain.CombatFled)...)
	return res, nil
}
