package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// EnemyID - 32-битный идентификатор врага внутри боя.
//
// Формат битов (от старших к младшим):
//
//	[ Generation (16) | Slot (16) ]
//
// Generation увеличивается каждый раз, когда слот освобождается, поэтому
// ID убитого или удаленного врага никогда не совпадет с новым жильцом слота.
type EnemyID uint32

// NilEnemyID - отсутствие цели.
const NilEnemyID EnemyID = 0

const (
	bitsSlot  = 16
	maskSlot  = (1 << bitsSlot) - 1
	maskGen   = (1 << 16) - 1
	shiftGen  = bitsSlot
	firstGen  = 1 // поколение 0 зарезервировано, чтобы NilEnemyID был невалиден
	maxSlots  = maskSlot + 1
	genWrapTo = firstGen
)

func PackEnemyID(gen uint16, slot uint16) EnemyID {
	return EnemyID(uint32(gen)<<shiftGen | uint32(slot))
}

func (id EnemyID) Slot() uint16 {
	return uint16(uint32(id) & maskSlot)
}

func (id EnemyID) Generation() uint16 {
	return uint16((uint32(id) >> shiftGen) & maskGen)
}

func (id EnemyID) IsNil() bool {
	return id == NilEnemyID
}

func (id EnemyID) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return fmt.Sprintf("[gen=%d slot=%d]", id.Generation(), id.Slot())
}

// MarshalJSON сериализует ID строкой, как и остальные идентификаторы протокола.
func (id EnemyID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON принимает как строку, так и число.
func (id *EnemyID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > 1 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*id = NilEnemyID
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*id = EnemyID(v)
	return nil
}

// ParseEnemyID разбирает десятичное представление ID (из текстовых команд).
func ParseEnemyID(s string) (EnemyID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return NilEnemyID, fmt.Errorf("invalid enemy id %q: %w", s, err)
	}
	return EnemyID(v), nil
}

type enemySlot struct {
	gen   uint16
	live  bool
	enemy Enemy
}

// EnemyArena хранит врагов текущего боя в слотах с поколениями.
// Порядок обхода (Live) - по номеру слота, он же порядок появления.
type EnemyArena struct {
	slots []enemySlot
	free  []uint16
}

func NewEnemyArena() *EnemyArena {
	return &EnemyArena{}
}

// Clone копирует слоты вместе с поколениями. Для nil возвращает пустую арену.
func (a *EnemyArena) Clone() *EnemyArena {
	if a == nil {
		return NewEnemyArena()
	}
	return &EnemyArena{
		slots: slices.Clone(a.slots),
		free:  slices.Clone(a.free),
	}
}

// Spawn размещает врага и присваивает ему ID.
func (a *EnemyArena) Spawn(e Enemy) EnemyID {
	var slot uint16
	if len(a.free) > 0 {
		// Берем наименьший свободный слот, чтобы порядок обхода совпадал с порядком появления.
		slot = a.free[0]
		a.free = a.free[1:]
	} else {
		if len(a.slots) >= maxSlots {
			panic("enemy arena is full")
		}
		slot = uint16(len(a.slots))
		a.slots = append(a.slots, enemySlot{gen: firstGen})
	}
	s := &a.slots[slot]
	e.ID = PackEnemyID(s.gen, slot)
	s.enemy = e
	s.live = true
	return e.ID
}

// Get возвращает врага, только если ID не устарел.
func (a *EnemyArena) Get(id EnemyID) (*Enemy, bool) {
	if a == nil || id.IsNil() {
		return nil, false
	}
	slot := int(id.Slot())
	if slot >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[slot]
	if !s.live || s.gen != id.Generation() {
		return nil, false
	}
	return &s.enemy, true
}

// Remove освобождает слот и продвигает поколение.
func (a *EnemyArena) Remove(id EnemyID) bool {
	if _, ok := a.Get(id); !ok {
		return false
	}
	slot := id.Slot()
	s := &a.slots[slot]
	s.live = false
	s.enemy = Enemy{}
	s.gen++
	if s.gen == 0 {
		s.gen = genWrapTo
	}
	a.free = insertSorted(a.free, slot)
	return true
}

func insertSorted(list []uint16, v uint16) []uint16 {
	i := 0
	for i < len(list) && list[i] < v {
		i++
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

// Clear удаляет всех врагов. Поколения сохраняются, так что старые ID остаются невалидными.
func (a *EnemyArena) Clear() {
	if a == nil {
		return
	}
	for _, e := range a.Live() {
		a.Remove(e.ID)
	}
}

// Live возвращает указатели на живые слоты (включая врагов с HP 0 до зачистки).
func (a *EnemyArena) Live() []*Enemy {
	if a == nil {
		return nil
	}
	out := make([]*Enemy, 0, len(a.slots))
	for i := range a.slots {
		if a.slots[i].live {
			out = append(out, &a.slots[i].enemy)
		}
	}
	return out
}

// Len - количество занятых слотов.
func (a *EnemyArena) Len() int {
	if a == nil {
		return 0
	}
	n := 0
	for i := range a.slots {
		if a.slots[i].live {
			n++
		}
	}
	return n
}

// AllDown - true, если у всех врагов HP ≤ 0 (или врагов нет).
func (a *EnemyArena) AllDown() bool {
	for _, e := range a.Live() {
		if e.IsAlive() {
			return false
		}
	}
	return true
}

// Snapshot возвращает копию списка врагов (для протокола и логов).
func (a *EnemyArena) Snapshot() []Enemy {
	live := a.Live()
	out := make([]Enemy, len(live))
	for i, e := range live {
		out[i] = *e
	}
	return out
}

// MarshalJSON - на проводе арена выглядит как обычный упорядоченный список.
func (a *EnemyArena) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Snapshot())
}

// UnmarshalJSON восстанавливает слоты по ID, сохраняя поколения.
func (a *EnemyArena) UnmarshalJSON(data []byte) error {
	var list []Enemy
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	a.slots = nil
	a.free = nil
	for _, e := range list {
		slot := int(e.ID.Slot())
		for len(a.slots) <= slot {
			a.slots = append(a.slots, enemySlot{gen: firstGen})
		}
		a.slots[slot] = enemySlot{gen: e.ID.Generation(), live: true, enemy: e}
	}
	for i := range a.slots {
		if !a.slots[i].live {
			a.free = append(a.free, uint16(i))
		}
	}
	return nil
}
