package handlers

import (
	"encoding/json"
	"fmt"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/utils"
)

// Arena - боевой контур сессии. Хендлеры не создают врагов сами:
// начало и конец боя всегда проходят через сессию.
type Arena interface {
	Brain(id domain.EnemyID) *systems.Brain
	BeginCombat(spawns []systems.Spawn) []domain.Event
	EndCombat(outcome domain.CombatPhase) []domain.Event
}

// Context передает хендлеру состояние сессии.
// Мы передаем ссылки, чтобы Apply мог менять состояние. Validate обязан только читать.
type Context struct {
	World   *domain.WorldMap
	State   *domain.GameState
	Combat  *domain.CombatState // nil вне боя
	Balance *balance.Config
	Rng     utils.Roller
	Arena   Arena
}

// InCombat - игрок сейчас в бою.
func (c Context) InCombat() bool {
	return c.State.Phase == domain.PhaseCombat
}

// Result - результат выполнения команды.
// Хендлер НЕ пишет в журнал и не трогает ОД напрямую, он возвращает данные.
type Result struct {
	Events []domain.Event
	Msg    string

	// Free - действие не тратит ОД (успешный побег, конец хода).
	Free bool
	// APRefund - сколько ОД вернуть после списания.
	APRefund int
	// EndTurn - передать ход врагам, не дожидаясь нуля ОД.
	EndTurn bool
}

// Add дописывает события в результат.
func (r *Result) Add(events ...domain.Event) {
	r.Events = append(r.Events, events...)
}

// ValidateFunc проверяет команду без побочных эффектов. RNG не трогает.
type ValidateFunc func(ctx Context, payload json.RawMessage) error

// ApplyFunc применяет уже проверенную команду.
type ApplyFunc func(ctx Context, payload json.RawMessage) (Result, error)

// Handler - контракт для любой команды (attack, move, ...).
// Validate и Apply разделены: клиент гоняет только Validate для оптимистичной проверки.
type Handler struct {
	Validate ValidateFunc
	Apply    ApplyFunc
}

// Коды причин отказа (уходят клиенту в ACTION_REJECTED)
const (
	ReasonNotPlayerTurn  = "not_player_turn"
	ReasonNoActionPoints = "no_action_points"
	ReasonInvalidTarget  = "invalid_target"
	ReasonItemNotHeld    = "item_not_held"
	ReasonNotUsable      = "not_usable"
	ReasonNoSupplies     = "no_supplies"
	ReasonInvalidPayload = "invalid_payload"
	ReasonWrongPhase     = "wrong_phase"
	ReasonBlocked        = "blocked"
	ReasonGameOver       = "game_over"
	ReasonUnknownAction  = "unknown_action"
)

// ValidationError - действие отклонено. Состояние при этом не меняется.
type ValidationError struct {
	Action  domain.ActionType
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %s (%s)", e.Action, e.Reason, e.Message)
}

// Reject - короткий конструктор для хендлеров. Action проставляет сессия.
func Reject(reason, message string) error {
	return &ValidationError{Reason: reason, Message: message}
}
