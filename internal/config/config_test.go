package config

import (
	"testing"
	"time"

	"github.com/playmatatu/snooker/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsMatchGameDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, game.DefaultConfig(), cfg.GameConfig())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9191")
	t.Setenv("TABLE_WIDTH", "1000")
	t.Setenv("FRICTION_RATE", "0.02")
	t.Setenv("SUB_STEPS", "40")
	t.Setenv("TICK_MILLIS", "16")
	t.Setenv("COLLISION_THRESHOLD", "11.5")
	t.Setenv("PLAYER2_NAME", "Ronnie")
	t.Setenv("MAX_CUE_SPEED_Y", "not-a-number")

	cfg := Load()
	g := cfg.GameConfig()

	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, 1000.0, g.Width)
	assert.Equal(t, 0.02, g.FrictionRate)
	assert.Equal(t, 40, g.SubSteps)
	assert.Equal(t, 16*time.Millisecond, g.TickDuration)
	assert.Equal(t, 11.5, g.Threshold())
	assert.Equal(t, "Ronnie", g.PlayerNames[1])
	assert.Equal(t, game.MaxCueSpeed, g.MaxCueSpeedY)
	require.NoError(t, g.Validate())
}

func TestInvalidEnvironmentFailsValidation(t *testing.T) {
	t.Setenv("TABLE_INDENT", "500")
	assert.ErrorIs(t, Load().GameConfig().Validate(), game.ErrInvalidConfig)
}
