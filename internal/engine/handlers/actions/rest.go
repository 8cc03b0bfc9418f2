package actions

import (
	"fmt"

	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
)

func CheckRest(ctx handlers.Context) error {
	cost := max(1, ctx.Balance.Exploration.RestSupplyCost)
	if ctx.State.Supplies < cost {
		return handlers.Reject(handlers.ReasonNoSupplies, "Нет припасов для отдыха.")
	}
	return nil
}

// HandleRest тратит припасы, лечит и проматывает время до следующего периода суток.
// Во время отдыха встреч не бывает.
func HandleRest(ctx handlers.Context) (handlers.Result, error) {
	cost := max(1, ctx.Balance.Exploration.RestSupplyCost)
	ctx.State.Supplies -= cost
	healed := ctx.State.Heal(ctx.Balance.Exploration.RestHeal)

	var res handlers.Result
	res.Msg = fmt.Sprintf("Вы отдыхаете и восстанавливаете %d HP.", healed)
	res.Add(domain.Event{Type: domain.EventRest, Amount: healed, Success: true, Text: res.Msg})
	res.Add(advanceClock(ctx, ticksToNextPeriod(ctx))...)
	refreshVision(ctx)
	return res, nil
}
