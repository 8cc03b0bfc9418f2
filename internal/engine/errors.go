package engine

import (
	"errors"

	"wasteland-server/internal/engine/handlers"
)

// ValidationError - действие отклонено, состояние не изменилось.
type ValidationError = handlers.ValidationError

var (
	// ErrReplica - копия клиента не применяет действия, только проверяет их.
	ErrReplica = errors.New("replica session cannot apply actions")
	// ErrReplayDiverged - записанное действие было отклонено при повторе.
	ErrReplayDiverged = errors.New("replay diverged")
	// ErrBalanceMismatch - журнал записан с другим балансом.
	ErrBalanceMismatch = errors.New("balance fingerprint mismatch")
)

// AsValidation достает ValidationError из цепочки ошибок.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
