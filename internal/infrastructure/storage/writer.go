package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"wasteland-server/internal/domain"
	"wasteland-server/pkg/logger"
)

const (
	MagicHeader string = `WLRP` // 4 байта
	Version1    uint32 = 1
	Extension          = ".wlrp"
)

// Коды стиля в файле
const (
	styleDungeon uint8 = 0
	styleOutdoor uint8 = 1
)

// ReplayFileHeader - точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
type ReplayFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Seed        int64   // 8 байт
	Timestamp   int64   // 8 байт
	Fingerprint uint64  // 8 байт, отпечаток баланса
	Width       int32   // 4 байта
	Height      int32   // 4 байта
	Style       uint8   // 1 байт
	ActionCount int32   // 4 байта
}

// ActionHeader - заголовок каждой записи действия.
type ActionHeader struct {
	Seq        int32  // 4
	ActionType uint8  // 1
	PayloadLen uint16 // 2
}

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) *ReplayService {
	// Создаем папку если нет
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.For("storage").WithError(err).WithField("dir", dir).Warn("failed to create replay dir")
	}
	return &ReplayService{SaveDir: dir}
}

// Save пишет журнал в новый файл и возвращает его путь.
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	filename := fmt.Sprintf("replay_%d_%s_%d%s", session.Seed, session.Style, session.Timestamp, Extension)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := Write(bw, session); err != nil {
		return "", err
	}
	if err := bw.Flush(); err != nil {
		return "", err
	}

	logger.For("storage").WithFields(logrus.Fields{
		"path":    path,
		"actions": len(session.Actions),
	}).Info("Replay saved")
	return path, nil
}

func encodeStyle(s domain.Style) (uint8, error) {
	switch s {
	case domain.StyleDungeon:
		return styleDungeon, nil
	case domain.StyleOutdoor:
		return styleOutdoor, nil
	}
	return 0, fmt.Errorf("unknown style %q", s)
}

// Write сериализует журнал в бинарный формат.
func Write(w io.Writer, s *domain.ReplaySession) error {
	style, err := encodeStyle(s.Style)
	if err != nil {
		return err
	}

	// 1. Подготавливаем и пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:     Version1,
		Seed:        s.Seed,
		Timestamp:   s.Timestamp,
		Fingerprint: s.Fingerprint,
		Width:       int32(s.Width),
		Height:      int32(s.Height),
		Style:       style,
		ActionCount: int32(len(s.Actions)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// 2. Пишем действия
	for _, act := range s.Actions {
		payloadLen := len(act.Payload)
		if payloadLen > 65535 {
			return fmt.Errorf("payload too long: %d", payloadLen)
		}

		actHeader := ActionHeader{
			Seq:        int32(act.Seq),
			ActionType: uint8(act.Action),
			PayloadLen: uint16(payloadLen),
		}

		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}
		if payloadLen > 0 {
			if _, err := w.Write(act.Payload); err != nil {
				return err
			}
		}
	}

	return nil
}
