package actions

import (
	"fmt"

	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
)

// CheckMove: в бою ждем направление (toward/away), вне боя - шаг (dx, dy) на проходимую клетку.
// Игрока останавливают только стена, вода и край карты. Срезать угол стены по диагонали можно,
// это ограничение есть только у поиска пути.
func CheckMove(ctx handlers.Context, p api.MovePayload) error {
	if ctx.InCombat() {
		if !p.IsCombatMove() {
			return handlers.Reject(handlers.ReasonInvalidPayload, "В бою укажите направление: toward или away.")
		}
		return nil
	}
	if p.IsCombatMove() {
		return handlers.Reject(handlers.ReasonInvalidPayload, "Вне боя укажите шаг dx/dy.")
	}
	if res := systems.CalculateMove(ctx.World, ctx.State.Location.Pos(), p.Dx, p.Dy); res.IsWall {
		return handlers.Reject(handlers.ReasonBlocked, "Путь прегражден.")
	}
	return nil
}

func HandleMove(ctx handlers.Context, p api.MovePayload) (handlers.Result, error) {
	if ctx.InCombat() {
		return shiftRange(ctx, p.Direction), nil
	}

	res := systems.CalculateMove(ctx.World, ctx.State.Location.Pos(), p.Dx, p.Dy)
	if res.IsWall {
		return handlers.Result{}, handlers.Reject(handlers.ReasonBlocked, "Путь прегражден.")
	}

	ctx.State.Location.X = res.NewPos.X
	ctx.State.Location.Y = res.NewPos.Y

	var out handlers.Result
	out.Add(domain.Event{Type: domain.EventMove, Target: fmt.Sprintf("%d,%d", res.NewPos.X, res.NewPos.Y), Success: true})
	out.Add(advanceClock(ctx, 1)...)
	refreshVision(ctx)

	// Бросок на встречу после каждого успешного шага
	tile := ctx.World.TileAt(res.NewPos.X, res.NewPos.Y)
	if systems.RollEncounter(ctx.Balance, ctx.Rng, tile.Type, ctx.State.TimeOfDay, ctx.State.Location.Depth) {
		spawns := systems.SpawnEncounter(ctx.Balance, ctx.Rng, ctx.World, res.NewPos, ctx.State.TimeOfDay)
		out.Add(ctx.Arena.BeginCombat(spawns)...)
		out.Msg = "На вас напали!"
	}
	return out, nil
}

// shiftRange сдвигает ярус дистанции всех живых врагов на шаг.
func shiftRange(ctx handlers.Context, direction string) handlers.Result {
	var res handlers.Result
	for _, e := range ctx.State.Enemies.Live() {
		if !e.IsAlive() {
			continue
		}
		if direction == api.DirectionToward {
			e.Range = e.Range.Closer()
		} else {
			e.Range = e.Range.Farther()
		}
		res.Add(domain.Event{Type: domain.EventReposition, Target: e.Name, Text: string(e.Range), Success: true})
	}
	if direction == api.DirectionToward {
		res.Msg = "Вы сближаетесь с противником."
	} else {
		res.Msg = "Вы разрываете дистанцию."
	}
	return res
}
