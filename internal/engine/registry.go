package engine

import (
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine/handlers"
	"wasteland-server/internal/engine/handlers/actions"
)

func defaultHandlers() map[domain.ActionType]handlers.Handler {
	return map[domain.ActionType]handlers.Handler{
		domain.ActionAttack:  handlers.WithPayload(actions.CheckAttack, actions.HandleAttack),
		domain.ActionDefend:  handlers.WithEmptyPayload(nil, actions.HandleDefend),
		domain.ActionUseItem: handlers.WithPayload(actions.CheckUseItem, actions.HandleUseItem),
		domain.ActionFlee:    handlers.WithEmptyPayload(nil, actions.HandleFlee),
		domain.ActionMove:    handlers.WithPayload(actions.CheckMove, actions.HandleMove),
		domain.ActionEndTurn: handlers.WithEmptyPayload(nil, actions.HandleEndTurn),
		domain.ActionSearch:  handlers.WithEmptyPayload(nil, actions.HandleSearch),
		domain.ActionRest:    handlers.WithEmptyPayload(actions.CheckRest, actions.HandleRest),
		domain.ActionEquip:   handlers.WithPayload(actions.CheckEquip, actions.HandleEquip),
	}
}
