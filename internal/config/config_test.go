package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "vibeai.db", cfg.SQLitePath)
	assert.Equal(t, 720*time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, 4*1024*1024, cfg.MaxImageBytes)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_TIMEOUT", "15s")
	t.Setenv("TZ_NAME", "Europe/Istanbul")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "vibes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.Equal(t, "Europe/Istanbul", cfg.Location().String())
	assert.Contains(t, cfg.DSN(), "dbname=vibes")
	assert.Contains(t, cfg.DSN(), "password=pw")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "mongo"}},
		{"postgres without password", map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "postgres", "DB_PASSWORD": ""}},
		{"bad zone", map[string]string{"JWT_SECRET": "s", "TZ_NAME": "Mars/Olympus"}},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "AI_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
