package raffle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

func TestConfigService_GetCreatesDefaults(t *testing.T) {
	env := newTestEnv(t)

	cfg, err := env.config.Get(env.ctx)
	require.NoError(t, err)
	assert.True(t, cfg.Active)
	assert.Equal(t, models.RuleItemCount, cfg.RuleType)
	assert.Equal(t, 5.0, cfg.Threshold)

	stored, err := env.store.GetConfig(env.ctx)
	require.NoError(t, err, "default config is persisted on first read")
	assert.Equal(t, cfg, stored)
}

func TestConfigService_UpdateMergesPatch(t *testing.T) {
	env := newTestEnv(t)
	rule := models.RuleOrderValue
	threshold := 200.0

	cfg, err := env.config.Update(env.ctx, ConfigPatch{RuleType: &rule, Threshold: &threshold})
	require.NoError(t, err)
	assert.True(t, cfg.Active, "unpatched fields keep their value")
	assert.Equal(t, models.RuleOrderValue, cfg.RuleType)
	assert.Equal(t, 200.0, cfg.Threshold)

	cfg, err = env.config.SetActive(env.ctx, false)
	require.NoError(t, err)
	assert.False(t, cfg.Active)
	assert.Equal(t, models.RuleOrderValue, cfg.RuleType)
}

func TestConfigService_RejectsNonPositiveThreshold(t *testing.T) {
	env := newTestEnv(t)

	for _, bad := range []float64{0, -3} {
		th := bad
		_, err := env.config.Update(env.ctx, ConfigPatch{Threshold: &th})
		assert.ErrorIs(t, err, ErrValidation)
	}

	cfg, err := env.config.Get(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Threshold, "rejected write leaves config untouched")
}

func TestConfigService_RejectsUnknownRule(t *testing.T) {
	env := newTestEnv(t)
	rule := models.RuleType("POINTS")

	_, err := env.config.Update(env.ctx, ConfigPatch{RuleType: &rule})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfigService_StoreErrorSurfaces(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("store down")
	env.store.FailWith(boom)

	_, err := env.config.Get(env.ctx)
	assert.ErrorIs(t, err, boom)
}
