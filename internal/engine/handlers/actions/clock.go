package actions

import (
	"fmt"

	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/systems"
)

// advanceClock продвигает время на ticks ходов исследования.
// Каждые TicksPerTimeOfDay ходов меняется время суток, после ночи наступает новый день.
func advanceClock(ctx handlers.Context, ticks int) []domain.Event {
	s := ctx.State
	per := max(1, ctx.Balance.Exploration.TicksPerTimeOfDay)

	var events []domain.Event
	for i := 0; i < ticks; i++ {
		s.Tick++
		if s.Tick%per != 0 {
			continue
		}
		next, newDay := s.TimeOfDay.Next()
		s.TimeOfDay = next
		if newDay {
			s.Day++
		}
		events = append(events, domain.Event{
			Type:    domain.EventTimePassed,
			Amount:  s.Day,
			Target:  string(next),
			Success: true,
			Text:    fmt.Sprintf("День %d, %s.", s.Day, next),
		})
	}
	return events
}

// ticksToNextPeriod - сколько ходов осталось до смены времени суток.
func ticksToNextPeriod(ctx handlers.Context) int {
	per := max(1, ctx.Balance.Exploration.TicksPerTimeOfDay)
	return per - ctx.State.Tick%per
}

// refreshVision пересчитывает поле зрения. Ночью видно хуже.
func refreshVision(ctx handlers.Context) {
	radius := ctx.Balance.VisionRadius(ctx.State.TimeOfDay)
	systems.ComputeVisible(ctx.World, ctx.State.Location.Pos(), radius)
}
