package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg, err := Parse([]string{
		"-a", ":9090",
		"-d", "postgres://localhost/skillshare",
		"-s", "secret",
		"-w", "hook",
	})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.RunAddress)
	assert.Equal(t, "postgres://localhost/skillshare", cfg.DatabaseURI)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.ToastDedupWindow)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestParseEnvWinsOverFlags(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":7070")
	t.Setenv("TOAST_DEDUP_WINDOW", "1m")

	cfg, err := Parse([]string{
		"-a", ":9090",
		"-d", "postgres://localhost/skillshare",
		"-s", "secret",
		"-w", "hook",
	})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.RunAddress)
	assert.Equal(t, time.Minute, cfg.ToastDedupWindow)
}

func TestParseMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no database", []string{"-s", "secret", "-w", "hook"}},
		{"no jwt secret", []string{"-d", "postgres://x", "-w", "hook"}},
		{"no webhook secret", []string{"-d", "postgres://x", "-s", "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.Error(t, err)
		})
	}
}
