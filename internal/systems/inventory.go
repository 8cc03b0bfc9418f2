package systems

import (
	"errors"
	"fmt"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
)

var (
	ErrItemNotHeld   = errors.New("item is not in inventory")
	ErrItemUnknown   = errors.New("item is not in the catalogue")
	ErrItemNotUsable = errors.New("item cannot be used")
	ErrItemNotWeapon = errors.New("item is not a weapon")
)

// CheckUse проверяет, можно ли использовать предмет. Состояние не меняет.
func CheckUse(cfg *balance.Config, s *domain.GameState, itemID string) (balance.ItemDef, error) {
	if !s.HasItem(itemID) {
		return balance.ItemDef{}, fmt.Errorf("%w: %s", ErrItemNotHeld, itemID)
	}
	def, ok := cfg.Item(itemID)
	if !ok {
		return balance.ItemDef{}, fmt.Errorf("%w: %s", ErrItemUnknown, itemID)
	}
	if !def.IsConsumable() {
		return def, fmt.Errorf("%w: %s", ErrItemNotUsable, itemID)
	}
	return def, nil
}

// ApplyUse тратит предмет и применяет эффект. Возвращает записи результата.
func ApplyUse(cfg *balance.Config, s *domain.GameState, def balance.ItemDef) []domain.Event {
	s.RemoveItem(def.ID)

	var events []domain.Event
	if def.Heal > 0 {
		amount := def.Heal
		if def.Kind == balance.KindMedical {
			amount = cfg.HealAmount(def.Heal, s.SkillLevel(domain.SkillMedical))
		}
		healed := s.Heal(amount)
		events = append(events, domain.Event{Type: domain.EventHeal, Amount: healed, Target: def.ID, Success: true})
	}
	if def.Cure > 0 {
		before := s.Infection
		s.AddInfection(-def.Cure)
		events = append(events, domain.Event{Type: domain.EventCure, Amount: before - s.Infection, Target: def.ID, Success: true})
	}
	if def.Supplies > 0 {
		s.Supplies += def.Supplies
	}
	if len(events) == 0 {
		events = append(events, domain.Event{Type: domain.EventHeal, Target: def.ID, Success: true})
	}
	return events
}

// CheckEquip проверяет, можно ли взять предмет в руки.
func CheckEquip(cfg *balance.Config, s *domain.GameState, itemID string) (balance.ItemDef, error) {
	if !s.HasItem(itemID) {
		return balance.ItemDef{}, fmt.Errorf("%w: %s", ErrItemNotHeld, itemID)
	}
	def, ok := cfg.Item(itemID)
	if !ok {
		return balance.ItemDef{}, fmt.Errorf("%w: %s", ErrItemUnknown, itemID)
	}
	if !def.IsWeapon() {
		return def, fmt.Errorf("%w: %s", ErrItemNotWeapon, itemID)
	}
	return def, nil
}
