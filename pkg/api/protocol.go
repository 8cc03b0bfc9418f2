// Package api - протокол синхронизации хоста и клиента.
// Набор типов сообщений закрыт: все, что не перечислено здесь, отбрасывается как ProtocolError.
package api

import (
	"encoding/json"

	"wasteland-server/internal/domain"
)

// ProtocolVersion меняется при любом несовместимом изменении формата сообщений.
const ProtocolVersion = 1

// MessageType - тег сообщения.
type MessageType string

const (
	TypeHandshake     MessageType = "HANDSHAKE"
	TypeHandshakeAck  MessageType = "HANDSHAKE_ACK"
	TypeStateSync     MessageType = "STATE_SYNC"
	TypeStateRequest  MessageType = "STATE_REQUEST"
	TypeGameAction    MessageType = "GAME_ACTION"
	TypeActionResult  MessageType = "ACTION_RESULT"
	TypeActionReject  MessageType = "ACTION_REJECTED"
	TypeCombatStart   MessageType = "COMBAT_START"
	TypeCombatUpdate  MessageType = "COMBAT_UPDATE"
	TypeCombatEnd     MessageType = "COMBAT_END"
	TypePing          MessageType = "PING"
	TypePong          MessageType = "PONG"
	TypeError         MessageType = "ERROR"
)

var knownTypes = map[MessageType]bool{
	TypeHandshake:    true,
	TypeHandshakeAck: true,
	TypeStateSync:    true,
	TypeStateRequest: true,
	TypeGameAction:   true,
	TypeActionResult: true,
	TypeActionReject: true,
	TypeCombatStart:  true,
	TypeCombatUpdate: true,
	TypeCombatEnd:    true,
	TypePing:         true,
	TypePong:         true,
	TypeError:        true,
}

// IsKnown - тип входит в закрытый набор протокола.
func (t MessageType) IsKnown() bool {
	return knownTypes[t]
}

// Envelope это корневой объект любого сообщения на проводе.
type Envelope struct {
	// Type определяет структуру Payload.
	Type MessageType `json:"type"`

	// Timestamp - время отправки (Unix milliseconds). Только для логов.
	Timestamp int64 `json:"ts"`

	// Payload JSON-объект, структура зависит от Type.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Рукопожатие ---

// HandshakePayload отправляет клиент при подключении.
type HandshakePayload struct {
	PeerID          string `json:"peerId"`
	Name            string `json:"name"`
	ProtocolVersion int    `json:"protocolVersion"`
	// Fingerprint - отпечаток баланса клиента. Разный баланс = разная математика боя.
	Fingerprint uint64 `json:"fingerprint"`
}

// HandshakeAckPayload - ответ хоста. Мир не передается, только параметры генерации.
type HandshakeAckPayload struct {
	PeerID          string       `json:"peerId"`
	SessionID       string       `json:"sessionId"`
	ProtocolVersion int          `json:"protocolVersion"`
	Fingerprint     uint64       `json:"fingerprint"`
	Seed            int64        `json:"seed"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	Style           domain.Style `json:"style"`
	// WorldHash - отпечаток рельефа хоста. Клиент сверяет его со своей генерацией.
	WorldHash uint64 `json:"worldHash"`
}

// --- Состояние ---

// StateSyncPayload - полный снимок авторитетного состояния.
// Сетку тайлов не содержит: клиент строит ее из сида и накладывает туман войны из Explored.
type StateSyncPayload struct {
	State  domain.GameState    `json:"state"`
	Combat *domain.CombatState `json:"combat,omitempty"`

	// Explored - битовая маска исследованных клеток (бит i = клетка с индексом i).
	Explored []byte `json:"explored"`

	// Reason - почему отправлен снимок (action, request, combat...). Только для логов.
	Reason string `json:"reason,omitempty"`
}

// StateRequestPayload - клиент просит полный снимок (после таймаута или рассинхрона).
type StateRequestPayload struct {
	Reason string `json:"reason,omitempty"`
}

// --- Действия ---

// GameActionPayload - предложение действия от клиента.
type GameActionPayload struct {
	// ActionID - correlation id, генерирует клиент. Возвращается в ответе хоста.
	ActionID string `json:"actionId"`

	// Action название действия (attack, move, ...).
	Action string `json:"action"`

	// Params JSON-объект с данными для действия. Его структура зависит от Action.
	Params json.RawMessage `json:"params,omitempty"`
}

// ActionResultPayload - действие принято и применено.
type ActionResultPayload struct {
	ActionID  string         `json:"actionId"`
	Action    string         `json:"action"`
	Events    []domain.Event `json:"events"`
	Narration string         `json:"narration,omitempty"`
}

// ActionRejectedPayload - действие отклонено. Всегда несет текущее состояние хоста,
// чтобы клиент откатился, а не разошелся с хостом.
type ActionRejectedPayload struct {
	ActionID string           `json:"actionId"`
	Reason   string           `json:"reason"`
	Message  string           `json:"message,omitempty"`
	State    StateSyncPayload `json:"state"`
}

// --- Бой ---

type CombatStartPayload struct {
	Combat  domain.CombatState `json:"combat"`
	Enemies []domain.Enemy     `json:"enemies"`
}

type CombatUpdatePayload struct {
	Combat  domain.CombatState `json:"combat"`
	Enemies []domain.Enemy     `json:"enemies"`
}

type CombatEndPayload struct {
	Outcome domain.CombatPhase `json:"outcome"`
	Rounds  int                `json:"rounds"`
}

// --- Живость соединения ---

type PingPayload struct {
	Nonce  uint64 `json:"nonce"`
	SentAt int64  `json:"sentAt"` // Unix nanoseconds
}

// PongPayload возвращает nonce и SentAt пинга без изменений.
type PongPayload struct {
	Nonce  uint64 `json:"nonce"`
	SentAt int64  `json:"sentAt"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Параметры действий ---

// TargetPayload используется для действий, нацеленных на врага (attack).
type TargetPayload struct {
	TargetID domain.EnemyID `json:"targetId"`
}

// ItemPayload используется для действий с предметами (use_item, equip).
type ItemPayload struct {
	ItemID string `json:"itemId"`
}

// MovePayload: вне боя - шаг (dx, dy), в бою - смена дистанции (direction).
type MovePayload struct {
	Dx        int    `json:"dx,omitempty"`
	Dy        int    `json:"dy,omitempty"`
	Direction string `json:"direction,omitempty"` // toward | away
}

const (
	DirectionToward = "toward"
	DirectionAway   = "away"
)
