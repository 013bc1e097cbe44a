package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/config"
)

type sampleConfig struct {
	Addr    string        `env:"CFG_TEST_ADDR" envDefault:":8080"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("parses defaults and caches by type", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFG_TEST_ADDR", ":9090")

		var first sampleConfig
		require.NoError(t, config.Load(&first))
		assert.Equal(t, ":9090", first.Addr)
		assert.Equal(t, 5*time.Second, first.Timeout)

		t.Setenv("CFG_TEST_ADDR", ":1111")
		var second sampleConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("reset forces a reparse", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFG_TEST_ADDR", ":2222")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":2222", cfg.Addr)
	})

	t.Run("missing required variable", func(t *testing.T) {
		config.Reset()
		var cfg requiredConfig
		assert.Error(t, config.Load(&cfg))
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("nil target", func(t *testing.T) {
		var cfg *sampleConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilTarget)
	})
}
