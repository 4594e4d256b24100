package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestNewDefaultConfig_PassesValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.Browser.NavigationTimeout)
	assert.True(t, cfg.Scraper.Optimization)
	assert.Positive(t, cfg.Scraper.MaxHTMLBytes)
}

func TestNewConfigFromViper_APIKeyFromEnv(t *testing.T) {
	t.Setenv("GHOSTFILL_LLM_API_KEY", "secret-key")

	cfg, err := NewConfigFromViper(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey)
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.Provider = "skynet"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestValidate_RejectsNonPositiveTimeouts(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Filler.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Browser.NavigationTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestDataDir_UsesConfiguredPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.DataDir = t.TempDir()

	dir, err := cfg.DataDir()
	require.NoError(t, err)
	assert.Equal(t, cfg.Store.DataDir, dir)
}

func TestAsSettings_MapsEngineFields(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.APIKey = "k"
	cfg.Filler.Prompt = "fill politely"

	s := cfg.AsSettings()
	assert.Equal(t, "gemini", s.AIModel.Provider)
	assert.Equal(t, "k", s.AIModel.APIKey)
	assert.Equal(t, "fill politely", s.Filler.Prompt)
	assert.Equal(t, cfg.Scraper.Timeout, s.Scraper.Timeout)
}
