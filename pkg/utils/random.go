package utils

import (
	"hash/fnv"
	"math/rand"

	"github.com/google/uuid"
)

// Roller - источник случайности для игровой логики.
// *rand.Rand удовлетворяет интерфейсу; в тестах подставляется ScriptedRoller.
type Roller interface {
	Float64() float64
	Intn(n int) int
}

// NewRoller создает детерминированный генератор от сида.
func NewRoller(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// StringToSeed превращает строку (имя игрока, id сессии) в сид.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

// DeriveSeed смешивает мастер-сид с меткой подсистемы,
// чтобы генератор мира и боевой RNG не делили одну последовательность.
func DeriveSeed(master int64, label string) int64 {
	return master ^ StringToSeed(label)
}

// GenerateID создает уникальный ID для сетевых сущностей (пиры, correlation id).
// В симуляции не используется: там только детерминированные ID.
func GenerateID() string {
	return uuid.NewString()
}

// Chance возвращает true с вероятностью p.
func Chance(r Roller, p float64) bool {
	return r.Float64() < p
}

// Uniform возвращает число из [lo, hi).
func Uniform(r Roller, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// RangeInt возвращает число из [lo, hi] включительно.
func RangeInt(r Roller, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// ScriptedRoller выдает заранее заданные значения по порядку.
// Когда сценарий закончился, возвращает Fallback (для Float64) и 0 (для Intn).
type ScriptedRoller struct {
	Floats   []float64
	Ints     []int
	Fallback float64

	fi, ii int
}

func (s *ScriptedRoller) Float64() float64 {
	s.fi++
	if s.fi <= len(s.Floats) {
		return s.Floats[s.fi-1]
	}
	return s.Fallback
}

func (s *ScriptedRoller) Intn(n int) int {
	s.ii++
	if s.ii <= len(s.Ints) {
		v := s.Ints[s.ii-1]
		if v >= n {
			v = n - 1
		}
		if v < 0 {
			v = 0
		}
		return v
	}
	return 0
}

// Consumed сообщает, сколько бросков уже сделано (включая броски сверх сценария).
func (s *ScriptedRoller) Consumed() (floats, ints int) {
	return s.fi, s.ii
}
