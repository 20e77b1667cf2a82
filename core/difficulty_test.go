package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	_, err = ParseDifficulty("nightmare")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestDefaultPolicyIsValid(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}, p.Difficulties())

	_, err := p.Level(Difficulty(7))
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestPolicyValidate(t *testing.T) {
	widerHard := DefaultPolicy()
	hard := widerHard[DifficultyHard]
	hard.ToleranceMinutes = 10
	widerHard[DifficultyHard] = hard
	assert.ErrorIs(t, widerHard.Validate(), ErrInvalidPolicy)

	noAttempts := DefaultPolicy()
	easy := noAttempts[DifficultyEasy]
	easy.Attempts = 0
	noAttempts[DifficultyEasy] = easy
	assert.ErrorIs(t, noAttempts.Validate(), ErrInvalidPolicy)

	longer := DefaultPolicy()
	medium := longer[DifficultyMedium]
	medium.TTL = time.Hour
	longer[DifficultyMedium] = medium
	assert.ErrorIs(t, longer.Validate(), ErrInvalidPolicy)

	assert.ErrorIs(t, Policy{}.Validate(), ErrInvalidPolicy)
}

func TestNoiseGrowsWithDifficulty(t *testing.T) {
	p := DefaultPolicy()
	easy := p[DifficultyEasy].RenderParams()
	hard := p[DifficultyHard].RenderParams()

	assert.False(t, easy.DecoyHand)
	assert.True(t, hard.DecoyHand)
	assert.Greater(t, hard.ExtraTicks, easy.ExtraTicks)
	assert.Less(t, hard.TickContrast, easy.TickContrast)
}
