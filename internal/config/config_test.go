package config

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_PORT", "9000")

	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.APIPort)
	assert.Equal(t, "0.0.0.0", cfg.APIHost)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.True(t, cfg.IsProduction())
}

func TestProcessRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	var cfg Config
	assert.Error(t, envconfig.Process("", &cfg))
}

func TestListenPort(t *testing.T) {
	t.Run("defaults to API_PORT", func(t *testing.T) {
		cfg := Config{APIPort: 8000}
		assert.Equal(t, 8000, cfg.ListenPort())
	})

	t.Run("platform PORT wins", func(t *testing.T) {
		cfg := Config{APIPort: 8000, Port: 5433}
		assert.Equal(t, 5433, cfg.ListenPort())
	})
}

func TestAllowedOrigins(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		cfg := Config{CORSOrigins: "*"}
		assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	})

	t.Run("json array", func(t *testing.T) {
		cfg := Config{CORSOrigins: `["https://app.example.com", "http://localhost:3000"]`}
		assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins())
	})

	t.Run("comma list", func(t *testing.T) {
		cfg := Config{CORSOrigins: "https://app.example.com, http://localhost:3000"}
		assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins())
	})

	t.Run("empty", func(t *testing.T) {
		cfg := Config{CORSOrigins: "  "}
		assert.Empty(t, cfg.AllowedOrigins())
	})
}
