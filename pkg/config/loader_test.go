package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/config"
)

type appConfig struct {
	Name    string        `env:"TEST_APP_NAME" envDefault:"dashboard"`
	Timeout time.Duration `env:"TEST_APP_TIMEOUT" envDefault:"5s"`
	Debug   bool          `env:"TEST_APP_DEBUG"`
}

type requiredConfig struct {
	Secret string `env:"TEST_REQUIRED_SECRET,required"`
}

type fileConfig struct {
	Value string `env:"TEST_FILE_VALUE"`
}

func TestLoad(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_APP_NAME", "console")
	t.Setenv("TEST_APP_DEBUG", "true")

	cfg, err := config.Load[appConfig]()
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Name)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)

	t.Run("served from cache", func(t *testing.T) {
		t.Setenv("TEST_APP_NAME", "changed")
		cached, err := config.Load[appConfig]()
		require.NoError(t, err)
		assert.Equal(t, "console", cached.Name)
	})

	t.Run("reset re-reads environment", func(t *testing.T) {
		t.Setenv("TEST_APP_NAME", "changed")
		config.Reset()
		fresh, err := config.Load[appConfig]()
		require.NoError(t, err)
		assert.Equal(t, "changed", fresh.Name)
	})
}

func TestLoad_Required(t *testing.T) {
	config.Reset()
	os.Unsetenv("TEST_REQUIRED_SECRET")

	_, err := config.Load[requiredConfig]()
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad[requiredConfig]() })
}

func TestLoad_InvalidType(t *testing.T) {
	_, err := config.Load[string]()
	assert.ErrorIs(t, err, config.ErrInvalidConfigType)
}

func TestLoadEnv(t *testing.T) {
	config.Reset()
	os.Unsetenv("TEST_FILE_VALUE")
	t.Cleanup(func() { os.Unsetenv("TEST_FILE_VALUE") })

	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("TEST_FILE_VALUE=\"from file\"\n"), 0o600))

	require.NoError(t, config.LoadEnv(path))
	cfg, err := config.Load[fileConfig]()
	require.NoError(t, err)
	assert.Equal(t, "from file", cfg.Value)

	assert.ErrorIs(t, config.LoadEnv(filepath.Join(t.TempDir(), "missing.env")), config.ErrLoadEnvFile)
}
