package domain

import (
	"encoding/json"
	"strings"
)

// ActionType - внутренний числовой идентификатор действия игрока.
// Числовое значение пишется в файл реплея, поэтому порядок менять нельзя.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionAttack
	ActionDefend
	ActionUseItem
	ActionFlee
	ActionMove
	ActionEndTurn
	ActionSearch
	ActionRest
	ActionEquip
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"attack":   ActionAttack,
	"defend":   ActionDefend,
	"use_item": ActionUseItem,
	"flee":     ActionFlee,
	"move":     ActionMove,
	"end_turn": ActionEndTurn,
	"search":   ActionSearch,
	"rest":     ActionRest,
	"equip":    ActionEquip,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionAttack:  "attack",
	ActionDefend:  "defend",
	ActionUseItem: "use_item",
	ActionFlee:    "flee",
	ActionMove:    "move",
	ActionEndTurn: "end_turn",
	ActionSearch:  "search",
	ActionRest:    "rest",
	ActionEquip:   "equip",
}

// ParseAction конвертирует строку из JSON в ActionType (регистр не важен).
func ParseAction(s string) ActionType {
	if val, ok := actionStringToCmd[strings.ToLower(strings.TrimSpace(s))]; ok {
		return val
	}
	return ActionUnknown
}

func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "unknown"
}

// IsCombatAction - действие доступно в фазе боя.
func (a ActionType) IsCombatAction() bool {
	switch a {
	case ActionAttack, ActionDefend, ActionUseItem, ActionFlee, ActionMove, ActionEndTurn:
		return true
	}
	return false
}

// IsExplorationAction - действие доступно вне боя.
func (a ActionType) IsExplorationAction() bool {
	switch a {
	case ActionMove, ActionSearch, ActionRest, ActionEquip, ActionUseItem:
		return true
	}
	return false
}

// Command - действие игрока в виде, удобном для движка и журнала.
type Command struct {
	Action  ActionType
	Payload json.RawMessage
}
