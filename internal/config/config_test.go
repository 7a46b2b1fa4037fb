package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "HOST", "ENV", "DATABASE_PATH", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "placeholder") // registers cleanup restoring the original value
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "spellingbee.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.GetAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_PATH", "/tmp/bee.db")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.GetAddr())
	assert.Equal(t, "/tmp/bee.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.IsProduction())
}
