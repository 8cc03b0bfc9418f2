package actions

import (
	"fmt"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/pkg/utils"
)

// HandleSearch - один бросок на успех. Находка берется с клетки, если там лежат ресурсы,
// иначе это случайный обычный предмет из каталога. Обыск занимает ход.
func HandleSearch(ctx handlers.Context) (handlers.Result, error) {
	var res handlers.Result
	chance := ctx.Balance.SearchChance(ctx.State.SkillLevel(domain.SkillScavenging))
	pos := ctx.State.Location.Pos()

	if !utils.Chance(ctx.Rng, chance) {
		res.Msg = "Вы ничего не нашли."
		res.Add(domain.Event{Type: domain.EventSearch, Success: false, Text: res.Msg})
		res.Add(advanceClock(ctx, 1)...)
		return res, nil
	}

	itemID, fromTile := ctx.World.TakeResource(pos)
	if fromTile {
		// Клиент повторит изъятие на своей копии карты по этому журналу
		ctx.State.Looted = append(ctx.State.Looted, pos)
	} else {
		idx := balance.WeightedPick(ctx.Rng, ctx.Balance.ResourceWeights(true))
		if idx >= 0 {
			itemID = ctx.Balance.Items[idx].ID
		}
	}

	if itemID == "" {
		res.Msg = "Вы ничего не нашли."
		res.Add(domain.Event{Type: domain.EventSearch, Success: false, Text: res.Msg})
	} else {
		ctx.State.AddItem(itemID)
		name := itemID
		if def, ok := ctx.Balance.Item(itemID); ok {
			name = def.Name
		}
		res.Msg = fmt.Sprintf("Найдено: %s.", name)
		res.Add(domain.Event{Type: domain.EventSearch, Amount: 1, Target: itemID, Success: true, Text: res.Msg})
	}
	res.Add(advanceClock(ctx, 1)...)
	return res, nil
}
