package storage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/domain"
)

func sampleSession() *domain.ReplaySession {
	return &domain.ReplaySession{
		Seed:        -42,
		Width:       60,
		Height:      40,
		Style:       domain.StyleOutdoor,
		Fingerprint: 0xDEADBEEF,
		Timestamp:   1700000000,
		Actions: []domain.ReplayAction{
			{Seq: 0, Action: domain.ActionMove, Payload: json.RawMessage(`{"dx":1,"dy":0}`)},
			{Seq: 1, Action: domain.ActionSearch, Payload: json.RawMessage{}},
			{Seq: 2, Action: domain.ActionAttack, Payload: json.RawMessage(`{"targetId":"65536"}`)},
		},
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	in := sampleSession()
	require.NoError(t, Write(&buf, in))

	out, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveLoad(t *testing.T) {
	svc := NewReplayService(t.TempDir())
	in := sampleSession()

	path, err := svc.Save(in)
	require.NoError(t, err)
	assert.Contains(t, path, "replay_-42_outdoor_1700000000.wlrp")

	out, err := svc.Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.Actions, out.Actions)
	assert.Equal(t, in.Fingerprint, out.Fingerprint)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("CDRP0000000000000000000000000000000000000000000000")))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = Read(bytes.NewReader([]byte("WL")))
	assert.Error(t, err)

	// Обрезанный файл
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSession()))
	_, err = Read(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	assert.Error(t, err)
}

func TestWrite_UnknownStyle(t *testing.T) {
	s := sampleSession()
	s.Style = "swamp"
	assert.Error(t, Write(&bytes.Buffer{}, s))
}
