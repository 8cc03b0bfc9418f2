package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine"
	"wasteland-server/internal/network"
	"wasteland-server/internal/systems"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

// Driver - сторона сессии, через которую играет бот: хост или клиент.
type Driver interface {
	Propose(ctx context.Context, cmd domain.Command) (string, error)
	Updates(name string) <-chan network.Update
	Snapshot(ctx context.Context) (api.StateSyncPayload, error)
	Config() engine.Config
}

const (
	healThreshold = 0.4
	restThreshold = 0.5
	frontierTries = 24
)

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
// Он играет так же, как человек: предлагает действия и ждет ответа хоста.
//
// Жизненный цикл:
//  1. NewBot -> строит свою копию мира из параметров сессии.
//  2. Run -> цикл: снимок, решение, предложение, ожидание ответа.
//  3. Decide -> выбор действия по снимку (без сети, удобно тестировать).
type Bot struct {
	Name       string
	Delay      time.Duration // пауза между ходами, чтобы за ботом можно было следить
	MaxActions int           // 0 - без ограничения

	driver Driver
	bal    *balance.Config
	// Локальная картина мира: тот же генератор, туман из снимков
	replica *engine.Session
	log     *logrus.Entry
}

func NewBot(name string, driver Driver, bal *balance.Config) (*Bot, error) {
	if bal == nil {
		bal = balance.Default()
	}
	replica, err := engine.NewReplica(driver.Config(), bal)
	if err != nil {
		return nil, err
	}
	return &Bot{
		Name:    name,
		driver:  driver,
		bal:     bal,
		replica: replica,
		log:     logger.For("bot").WithField("name", name),
	}, nil
}

// Run играет, пока игрок жив, не исчерпан лимит действий или не отменен ctx.
func (b *Bot) Run(ctx context.Context) error {
	updates := b.driver.Updates(b.Name)
	b.log.Info("Bot started")

	for n := 0; b.MaxActions == 0 || n < b.MaxActions; n++ {
		snap, err := b.driver.Snapshot(ctx)
		if err != nil {
			return err
		}
		b.replica.Overwrite(snap)
		if snap.State.IsDead() || (snap.Combat != nil && snap.Combat.Phase == domain.CombatDefeat) {
			b.log.WithField("day", snap.State.Day).Info("Bot died")
			return nil
		}

		cmd := b.Decide(snap)
		id, err := b.driver.Propose(ctx, cmd)
		if err != nil {
			if _, ok := engine.AsValidation(err); ok {
				// Решение оказалось недопустимым: безопасный ход по фазе
				b.log.WithError(err).WithField("action", cmd.Action).Debug("Decision rejected")
				cmd = fallback(snap)
				if id, err = b.driver.Propose(ctx, cmd); err != nil {
					return err
				}
			} else {
				return err
			}
		}

		if err := b.await(ctx, updates, id); err != nil {
			return err
		}

		if b.Delay > 0 {
			select {
			case <-time.After(b.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	b.log.Info("Bot finished")
	return nil
}

// await ждет ответа хоста на свое действие: снимок после результата или отказ.
func (b *Bot) await(ctx context.Context, updates <-chan network.Update, actionID string) error {
	settled := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return network.ErrClosed
			}
			switch {
			case u.Type == api.TypeActionResult && u.ActionID == actionID:
				settled = true
				if u.Narration != "" {
					b.log.Info(u.Narration)
				}
			case u.Type == api.TypeActionReject && u.ActionID == actionID:
				return nil
			case u.Type == api.TypeError && u.ActionID == actionID:
				return fmt.Errorf("action %s not delivered: %s", actionID, u.Message)
			case u.Type == api.TypeStateSync && settled:
				return nil
			}
		}
	}
}

// Decide выбирает действие по снимку.
func (b *Bot) Decide(snap api.StateSyncPayload) domain.Command {
	s := &snap.State
	if s.Phase == domain.PhaseCombat {
		return b.decideCombat(s)
	}
	return b.decideExplore(s)
}

func (b *Bot) decideCombat(s *domain.GameState) domain.Command {
	if float64(s.HP) < float64(s.MaxHP)*healThreshold {
		if item, ok := b.healingItem(s); ok {
			return command(domain.ActionUseItem, api.ItemPayload{ItemID: item})
		}
	}

	// Добиваем самого слабого
	var target *domain.Enemy
	for _, e := range s.Enemies.Live() {
		if !e.IsAlive() {
			continue
		}
		if target == nil || e.HP < target.HP {
			target = e
		}
	}
	if target == nil {
		return command(domain.ActionEndTurn, nil)
	}
	return command(domain.ActionAttack, api.TargetPayload{TargetID: target.ID})
}

func (b *Bot) decideExplore(s *domain.GameState) domain.Command {
	hurt := float64(s.HP) < float64(s.MaxHP)*restThreshold
	if hurt {
		if item, ok := b.healingItem(s); ok {
			return command(domain.ActionUseItem, api.ItemPayload{ItemID: item})
		}
		cost := b.bal.Exploration.RestSupplyCost
		if cost < 1 {
			cost = 1
		}
		if s.Supplies >= cost {
			return command(domain.ActionRest, nil)
		}
	}

	if s.EquippedWeapon == "" || b.bal.WeaponClassOf(s.EquippedWeapon) == balance.ClassUnarmed {
		for _, id := range s.Inventory {
			if def, ok := b.bal.Item(id); ok && def.IsWeapon() {
				return command(domain.ActionEquip, api.ItemPayload{ItemID: id})
			}
		}
	}

	pos := s.Location.Pos()
	if t := b.replica.World.TileAt(pos.X, pos.Y); t != nil && len(t.Resources) > 0 {
		return command(domain.ActionSearch, nil)
	}

	if step, ok := b.frontierStep(pos); ok {
		return command(domain.ActionMove, api.MovePayload{Dx: step.X - pos.X, Dy: step.Y - pos.Y})
	}
	return command(domain.ActionSearch, nil)
}

// healingItem - самое слабое лечение, которого хватает.
func (b *Bot) healingItem(s *domain.GameState) (string, bool) {
	best, bestHeal := "", 0
	for _, id := range s.Inventory {
		def, ok := b.bal.Item(id)
		if !ok || !def.IsConsumable() || def.Heal <= 0 {
			continue
		}
		if best == "" || def.Heal < bestHeal {
			best, bestHeal = id, def.Heal
		}
	}
	return best, best != ""
}

// frontierStep - первый шаг к ближайшей неисследованной проходимой клетке.
func (b *Bot) frontierStep(from domain.Position) (domain.Position, bool) {
	w := b.replica.World
	var frontier []domain.Position
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			p := domain.Position{X: x, Y: y}
			if !w.Map[y][x].IsExplored && w.IsWalkable(p) {
				frontier = append(frontier, p)
			}
		}
	}
	sort.SliceStable(frontier, func(i, j int) bool {
		return systems.Distance(from, frontier[i]) < systems.Distance(from, frontier[j])
	})

	for i, goal := range frontier {
		if i >= frontierTries {
			break
		}
		if path := systems.FindPath(w, from, goal); len(path) > 0 {
			return path[0], true
		}
	}
	return domain.Position{}, false
}

// fallback - действие, которое допустимо почти всегда.
func fallback(snap api.StateSyncPayload) domain.Command {
	if snap.State.Phase == domain.PhaseCombat {
		return command(domain.ActionEndTurn, nil)
	}
	return command(domain.ActionSearch, nil)
}

func command(action domain.ActionType, payload any) domain.Command {
	cmd := domain.Command{Action: action}
	if payload != nil {
		// Сериализация payload-структур протокола не падает
		raw, _ := json.Marshal(payload)
		cmd.Payload = raw
	}
	return cmd
}
