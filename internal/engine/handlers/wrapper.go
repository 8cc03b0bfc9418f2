package handlers

import (
	"encoding/json"

	"wasteland-server/pkg/api"
)

// TypedValidateFunc - "чистая" проверка, которая работает с готовой структурой T
type TypedValidateFunc[T any] func(ctx Context, payload T) error

// TypedApplyFunc - "чистая" логика, которая работает с готовой структурой T
type TypedApplyFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyValidateFunc / EmptyApplyFunc - для команд без данных (defend, flee, rest...)
type EmptyValidateFunc func(ctx Context) error
type EmptyApplyFunc func(ctx Context) (Result, error)

// decode берет на себя Unmarshal и Validate DTO.
func decode[T any](raw json.RawMessage) (T, error) {
	var payload T

	// 1. Распаковка JSON
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, Reject(ReasonInvalidPayload, "invalid payload format: "+err.Error())
	}

	// 2. Автоматическая валидация
	// Проверяем, реализует ли структура T интерфейс Validator
	if v, ok := any(payload).(api.Validator); ok {
		if err := v.Validate(); err != nil {
			return payload, Reject(ReasonInvalidPayload, err.Error())
		}
	}
	return payload, nil
}

// WithPayload собирает Handler из типизированных проверки и логики.
// check может быть nil, если кроме валидации DTO проверять нечего.
func WithPayload[T any](check TypedValidateFunc[T], apply TypedApplyFunc[T]) Handler {
	return Handler{
		Validate: func(ctx Context, raw json.RawMessage) error {
			payload, err := decode[T](raw)
			if err != nil {
				return err
			}
			if check == nil {
				return nil
			}
			return check(ctx, payload)
		},
		Apply: func(ctx Context, raw json.RawMessage) (Result, error) {
			payload, err := decode[T](raw)
			if err != nil {
				return Result{}, err
			}
			// 3. Вызов чистой логики
			return apply(ctx, payload)
		},
	}
}

// WithEmptyPayload - обертка для команд без данных. Входящий JSON игнорируется.
func WithEmptyPayload(check EmptyValidateFunc, apply EmptyApplyFunc) Handler {
	return Handler{
		Validate: func(ctx Context, _ json.RawMessage) error {
			if check == nil {
				return nil
			}
			return check(ctx)
		},
		Apply: func(ctx Context, _ json.RawMessage) (Result, error) {
			return apply(ctx)
		},
	}
}
