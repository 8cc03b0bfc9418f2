package actions

import (
	"errors"
	"fmt"

	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
)

// CheckUseItem: предмет должен быть в инвентаре и быть расходником.
// В бою годится только то, что лечит.
func CheckUseItem(ctx handlers.Context, p api.ItemPayload) error {
	def, err := systems.CheckUse(ctx.Balance, ctx.State, p.ItemID)
	switch {
	case errors.Is(err, systems.ErrItemNotHeld):
		return handlers.Reject(handlers.ReasonItemNotHeld, "Предмета нет в инвентаре.")
	case err != nil:
		return handlers.Reject(handlers.ReasonNotUsable, fmt.Sprintf("%s нельзя использовать.", p.ItemID))
	}
	if ctx.InCombat() && def.Heal <= 0 {
		return handlers.Reject(handlers.ReasonNotUsable, fmt.Sprintf("%s нельзя использовать в бою.", def.Name))
	}
	return nil
}

func HandleUseItem(ctx handlers.Context, p api.ItemPayload) (handlers.Result, error) {
	def, err := systems.CheckUse(ctx.Balance, ctx.State, p.ItemID)
	if err != nil {
		return handlers.Result{}, handlers.Reject(handlers.ReasonNotUsable, err.Error())
	}

	events := systems.ApplyUse(ctx.Balance, ctx.State, def)
	res := handlers.Result{Events: events, Msg: fmt.Sprintf("Вы используете: %s.", def.Name)}
	for i := range res.Events {
		res.Events[i].Text = res.Msg
	}
	return res, nil
}
