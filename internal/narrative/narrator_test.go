package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/internal/domain"
)

func TestPlain(t *testing.T) {
	text, err := Plain{}.Narrate(context.Background(), []domain.Event{
		{Type: domain.EventAttackHit, Amount: 8, Text: "Удар трубой."},
		{Type: domain.EventTurnEnd},
		{Type: domain.EventKill, Text: "Рейдер падает."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Удар трубой. Рейдер падает.", text)

	text, err = Plain{}.Narrate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt("Russian", "outdoor", []domain.Event{
		{Type: domain.EventAttackMiss, Target: "raider"},
		{Type: domain.EventHeal, Amount: 20, Success: true, Text: "Бинт."},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Answer in Russian")
	assert.Contains(t, prompt, "Location: outdoor")
	assert.Contains(t, prompt, "- attack_miss target=raider (failed)")
	assert.Contains(t, prompt, "- heal amount=20: Бинт.")
}

func TestNewGemini_EmptyKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.Error(t, err)
}
