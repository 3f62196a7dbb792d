package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 8090, cfg.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3*time.Second, cfg.SubmitCooldown)
	assert.Equal(t, SessionBackendFile, cfg.SessionBackend)
	assert.Nil(t, cfg.PublicPaths)
	assert.False(t, cfg.EventsEnabled())
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STOREFRONT_API_BASE_URL":    "https://shop.example/api",
		"STOREFRONT_SUBMIT_COOLDOWN": "5s",
		"STOREFRONT_SESSION_BACKEND": "redis",
		"KAFKA_BROKERS":              "k1:9092,k2:9092",
		"STOREFRONT_PUBLIC_PATHS":    "/auth/login/,/track/",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.SubmitCooldown)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, []string{"/auth/login/", "/track/"}, cfg.PublicPaths)
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTPPort)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad base url", map[string]string{"STOREFRONT_API_BASE_URL": "ftp://x"}, "STOREFRONT_API_BASE_URL"},
		{"bad port", map[string]string{"STOREFRONT_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"negative retries", map[string]string{"STOREFRONT_HTTP_MAX_RETRIES": "-1"}, "MAX_RETRIES"},
		{"zero timeout", map[string]string{"STOREFRONT_HTTP_TIMEOUT": "0s"}, "TIMEOUT"},
		{"unknown backend", map[string]string{"STOREFRONT_SESSION_BACKEND": "sqlite"}, "unknown STOREFRONT_SESSION_BACKEND"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"unparsable duration", map[string]string{"STOREFRONT_SUBMIT_COOLDOWN": "soon"}, "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.env)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
