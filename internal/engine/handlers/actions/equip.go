package actions

import (
	"errors"
	"fmt"

	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
)

func CheckEquip(ctx handlers.Context, p api.ItemPayload) error {
	_, err := systems.CheckEquip(ctx.Balance, ctx.State, p.ItemID)
	switch {
	case errors.Is(err, systems.ErrItemNotHeld):
		return handlers.Reject(handlers.ReasonItemNotHeld, "Предмета нет в инвентаре.")
	case err != nil:
		return handlers.Reject(handlers.ReasonNotUsable, fmt.Sprintf("%s не оружие.", p.ItemID))
	}
	return nil
}

// HandleEquip берет оружие в руки. Класс оружия задан в каталоге, по названию его не угадываем.
func HandleEquip(ctx handlers.Context, p api.ItemPayload) (handlers.Result, error) {
	def, err := systems.CheckEquip(ctx.Balance, ctx.State, p.ItemID)
	if err != nil {
		return handlers.Result{}, handlers.Reject(handlers.ReasonNotUsable, err.Error())
	}
	ctx.State.EquippedWeapon = def.ID
	msg := fmt.Sprintf("В руках: %s.", def.Name)
	return handlers.Result{
		Msg:    msg,
		Events: []domain.Event{{Type: domain.EventEquip, Target: def.ID, Success: true, Text: msg}},
	}, nil
}
