package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProtocolError - сообщение не удалось разобрать или его тип неизвестен.
// Такие сообщения логируются и пропускаются, сессия не рвется.
type ProtocolError struct {
	Type   MessageType
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := "protocol error"
	if e.Type != "" {
		msg += " [" + string(e.Type) + "]"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError - удобная проверка через errors.As.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// Encode упаковывает payload в конверт и сериализует.
func Encode(t MessageType, payload any) ([]byte, error) {
	if !t.IsKnown() {
		return nil, &ProtocolError{Type: t, Reason: "unknown message type"}
	}
	env := Envelope{Type: t, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Decode разбирает конверт. Payload не трогает: его разбирает DecodePayload по типу.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Reason: "malformed envelope", Err: err}
	}
	if env.Type == "" {
		return nil, &ProtocolError{Reason: "missing type"}
	}
	if !env.Type.IsKnown() {
		return nil, &ProtocolError{Type: env.Type, Reason: "unknown message type"}
	}
	return &env, nil
}

// DecodePayload распаковывает payload конверта и валидирует его, если тип реализует Validator.
func DecodePayload[T any](env *Envelope) (T, error) {
	var payload T
	if len(env.Payload) == 0 {
		return payload, &ProtocolError{Type: env.Type, Reason: "empty payload"}
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return payload, &ProtocolError{Type: env.Type, Reason: "invalid payload format", Err: err}
	}
	if v, ok := any(payload).(Validator); ok {
		if err := v.Validate(); err != nil {
			return payload, &ProtocolError{Type: env.Type, Reason: "validation failed", Err: err}
		}
	}
	return payload, nil
}
