// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvAsBool(t *testing.T) {
	assert.True(t, getEnvAsBool("UNSET_BOOL_KEY", true))
	assert.False(t, getEnvAsBool("UNSET_BOOL_KEY", false))

	t.Setenv("SET_BOOL_KEY", "false")
	assert.False(t, getEnvAsBool("SET_BOOL_KEY", true))

	t.Setenv("SET_BOOL_KEY", "TRUE")
	assert.True(t, getEnvAsBool("SET_BOOL_KEY", false))

	// Garbage falls back to the default.
	t.Setenv("SET_BOOL_KEY", "maybe")
	assert.True(t, getEnvAsBool("SET_BOOL_KEY", true))
}

func TestLoadSeedFlag(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Database.AutoSeed)

	t.Setenv("DB_AUTO_SEED", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.AutoSeed)
}
