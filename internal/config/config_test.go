package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.Weather.BaseURL)
	assert.Equal(t, 0, cfg.Weather.Timeout)
	assert.Equal(t, 2, cfg.Weather.Workers)
	assert.False(t, cfg.Weather.SupersedeInFlight)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WH_WEATHER_API_KEY", "from-env")
	t.Setenv("WH_WEATHER_RATE_LIMIT_RPS", "2.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, 2.5, cfg.Weather.RateLimit.RPS)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.yaml")
	content := []byte(`
weather:
  api_key: file-key
  timeout: 5
  supersede_in_flight: true
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Weather.APIKey)
	assert.Equal(t, 5, cfg.Weather.Timeout)
	assert.True(t, cfg.Weather.SupersedeInFlight)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWeatherConfig_Validate(t *testing.T) {
	valid := NewDefaultConfig().Weather
	valid.APIKey = "k"
	require.NoError(t, valid.Validate())

	noKey := valid
	noKey.APIKey = ""
	assert.ErrorContains(t, noKey.Validate(), "api_key")

	badURL := valid
	badURL.BaseURL = "not a url"
	assert.ErrorContains(t, badURL.Validate(), "base_url")

	noWorkers := valid
	noWorkers.Workers = 0
	assert.ErrorContains(t, noWorkers.Validate(), "workers")
}

func TestGetSetConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir on older toolchains).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
