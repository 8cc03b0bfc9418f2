package domain

import "encoding/json"

// ReplayAction - одно принятое хостом действие игрока.
// Отклоненные действия не пишутся: они не меняют состояние и не тратят RNG.
type ReplayAction struct {
	Seq     int             `json:"seq"`
	Action  ActionType      `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// ReplaySession - полная запись партии. Мира в ней нет: он восстанавливается из зерна.
type ReplaySession struct {
	Seed        int64          `json:"seed"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Style       Style          `json:"style"`
	Fingerprint uint64         `json:"fingerprint"` // отпечаток баланса
	Timestamp   int64          `json:"timestamp"`
	Actions     []ReplayAction `json:"actions"`
}
