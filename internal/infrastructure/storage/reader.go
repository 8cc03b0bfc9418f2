package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"wasteland-server/internal/domain"
)

var ErrInvalidMagic = errors.New("invalid magic")

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return Load(path)
}

// Load читает файл реплея по пути.
func Load(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(bufio.NewReader(f))
}

// Read разбирает бинарный формат реплея.
func Read(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, ErrInvalidMagic
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}
	if header.ActionCount < 0 {
		return nil, fmt.Errorf("negative action count: %d", header.ActionCount)
	}

	var style domain.Style
	switch header.Style {
	case styleDungeon:
		style = domain.StyleDungeon
	case styleOutdoor:
		style = domain.StyleOutdoor
	default:
		return nil, fmt.Errorf("unknown style code %d", header.Style)
	}

	session := &domain.ReplaySession{
		Seed:        header.Seed,
		Width:       int(header.Width),
		Height:      int(header.Height),
		Style:       style,
		Fingerprint: header.Fingerprint,
		Timestamp:   header.Timestamp,
		Actions:     make([]domain.ReplayAction, header.ActionCount),
	}

	// 2. Читаем Actions
	for i := 0; i < int(header.ActionCount); i++ {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}

		act := domain.ReplayAction{
			Seq:    int(ah.Seq),
			Action: domain.ActionType(ah.ActionType),
		}

		if ah.PayloadLen > 0 {
			act.Payload = make([]byte, ah.PayloadLen)
			if _, err := io.ReadFull(r, act.Payload); err != nil {
				return nil, fmt.Errorf("action %d payload: %w", i, err)
			}
		} else {
			act.Payload = json.RawMessage{}
		}

		session.Actions[i] = act
	}

	return session, nil
}
