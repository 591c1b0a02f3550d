package config

import (
	"encoding/json"
	"strings"
)

// Config holds all environment-driven settings for the service. Platform
// providers (Railway, Render, Fly.io, Heroku) inject PORT; API_PORT is the
// fallback for local and self-hosted runs.
type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	APIHost string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort int    `envconfig:"API_PORT" default:"8000"`
	Port    int    `envconfig:"PORT"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`

	// CORSOrigins is either a JSON array of origins or a comma-separated
	// list. "*" allows any origin.
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// DataDir is the root under which ProjectLib, DataLib, DashboardLib and
	// QueryLib live.
	DataDir string `envconfig:"DATA_DIR" default:"."`
}

// ListenPort resolves the port to bind: the platform-injected PORT wins over
// API_PORT.
func (c Config) ListenPort() int {
	if c.Port != 0 {
		return c.Port
	}
	return c.APIPort
}

// AllowedOrigins parses CORS_ORIGINS. Both a JSON array and the plain comma
// list that platform dashboards tend to produce are accepted.
func (c Config) AllowedOrigins() []string {
	raw := strings.TrimSpace(c.CORSOrigins)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var origins []string
		if err := json.Unmarshal([]byte(raw), &origins); err == nil {
			return trimAll(origins)
		}
	}

	return trimAll(strings.Split(raw, ","))
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
