package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slugkit/pkg/config"
)

type defaultsConfig struct {
	Store     string `env:"CFG_TEST_STORE_DEFAULT" envDefault:"mongo"`
	BatchSize int    `env:"CFG_TEST_BATCH_DEFAULT" envDefault:"500"`
	DryRun    bool   `env:"CFG_TEST_DRY_RUN_DEFAULT" envDefault:"true"`
}

type overrideConfig struct {
	Store     string `env:"CFG_TEST_STORE" envDefault:"mongo"`
	BatchSize int    `env:"CFG_TEST_BATCH" envDefault:"500"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED" envDefault:"initial"`
}

type requiredConfig struct {
	Collection string `env:"CFG_TEST_REQUIRED_COLLECTION,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "mongo", cfg.Store)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.True(t, cfg.DryRun)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CFG_TEST_STORE", "pg")
	t.Setenv("CFG_TEST_BATCH", "50")

	var cfg overrideConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "pg", cfg.Store)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_CachedPerType(t *testing.T) {
	t.Setenv("CFG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	t.Setenv("CFG_TEST_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoad_Errors(t *testing.T) {
	err := config.Load[requiredConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)

	var cfg requiredConfig
	err = config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	assert.Panics(t, func() {
		var again requiredConfig
		config.MustLoad(&again)
	})
}
