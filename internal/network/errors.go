package network

import (
	"errors"
	"fmt"
)

var (
	ErrVersionMismatch  = errors.New("protocol version mismatch")
	ErrBalanceMismatch  = errors.New("balance fingerprint mismatch")
	ErrHandshakeRefused = errors.New("handshake refused by host")
	ErrUnexpectedReply  = errors.New("unexpected reply")
	ErrWorldMismatch    = errors.New("world checksum mismatch")
)

// ConnectionError - не удалось подключиться или канал разорван.
// Повторных попыток нет: решение о переподключении принимает вызывающий.
type ConnectionError struct {
	Op  string // open, handshake, send, receive
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DesyncError - состояние клиента разошлось с хостом.
// Лечится только полным STATE_SYNC, частичных патчей нет.
type DesyncError struct {
	Detail string
}

func (e *DesyncError) Error() string {
	return "desync: " + e.Detail
}
