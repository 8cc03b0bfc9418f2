package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/domain"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(TypeGameAction, GameActionPayload{ActionID: "a1", Action: "attack", Params: json.RawMessage(`{"targetId":"65536"}`)})
	require.NoError(t, err)

	env, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeGameAction, env.Type)

	p, err := DecodePayload[GameActionPayload](env)
	require.NoError(t, err)
	assert.Equal(t, "a1", p.ActionID)

	var target TargetPayload
	require.NoError(t, json.Unmarshal(p.Params, &target))
	assert.Equal(t, domain.PackEnemyID(1, 0), target.TargetID)
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"TELEPORT","payload":{}}`))
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MessageType("TELEPORT"), pe.Type)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.True(t, IsProtocolError(err))

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.True(t, IsProtocolError(err))
}

func TestDecodePayload_Validation(t *testing.T) {
	data, err := Encode(TypeGameAction, GameActionPayload{Action: "attack"})
	require.NoError(t, err)
	env, err := Decode(data)
	require.NoError(t, err)

	_, err = DecodePayload[GameActionPayload](env)
	assert.True(t, IsProtocolError(err), "actionId обязателен")

	_, err = Encode("BOGUS", nil)
	assert.Error(t, err)
}

func TestMovePayload_Validate(t *testing.T) {
	tests := []struct {
		p       MovePayload
		wantErr bool
	}{
		{MovePayload{Dx: 1}, false},
		{MovePayload{Dx: -1, Dy: 1}, false},
		{MovePayload{}, true},
		{MovePayload{Dx: 2}, true},
		{MovePayload{Direction: DirectionToward}, false},
		{MovePayload{Direction: "sideways"}, true},
		{MovePayload{Direction: DirectionAway, Dx: 1}, true},
	}
	for _, tt := range tests {
		err := tt.p.Validate()
		if tt.wantErr {
			assert.Error(t, err, "%+v", tt.p)
		} else {
			assert.NoError(t, err, "%+v", tt.p)
		}
	}
}

func TestExploredBitset(t *testing.T) {
	src := domain.NewWorldMap(5, 3, 1, domain.StyleDungeon, domain.TileFloor)
	src.MarkExplored(0)
	src.MarkExplored(7)
	src.MarkExplored(14)

	bits := PackExplored(src)
	assert.Len(t, bits, 2)

	dst := domain.NewWorldMap(5, 3, 1, domain.StyleDungeon, domain.TileFloor)
	dst.Map[1][1].IsExplored = true // будет перезаписано
	ApplyExplored(dst, bits)
	assert.Equal(t, src.Explored(), dst.Explored())
}
