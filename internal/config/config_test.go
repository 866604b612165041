package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/victornm/tutormate/internal/config"
)

type testConfig struct {
	HTTP struct {
		Port int32
	}

	Game struct {
		Window   time.Duration
		Cooldown time.Duration
	}

	Redis struct {
		Addrs  []string
		Prefix string
	}
}

func defaults() testConfig {
	var c testConfig
	c.HTTP.Port = 8080
	c.Game.Window = 2 * time.Minute
	c.Game.Cooldown = time.Hour
	c.Redis.Addrs = []string{"localhost:6379"}
	c.Redis.Prefix = "local"
	return c
}

func TestLoad(t *testing.T) {
	tests := map[string]struct {
		arrange func(t *testing.T) string
		assert  func(t *testing.T, c testConfig, err error)
	}{
		"defaults survive an empty file": {
			arrange: func(t *testing.T) string {
				return writeFile(t, "{}\n")
			},
			assert: func(t *testing.T, c testConfig, err error) {
				require.NoError(t, err)
				require.Equal(t, defaults(), c)
			},
		},
		"file overrides defaults": {
			arrange: func(t *testing.T) string {
				return writeFile(t, "http:\n  port: 9090\ngame:\n  window: 30s\nredis:\n  addrs: [\"redis:6379\"]\n")
			},
			assert: func(t *testing.T, c testConfig, err error) {
				require.NoError(t, err)
				require.Equal(t, int32(9090), c.HTTP.Port)
				require.Equal(t, 30*time.Second, c.Game.Window)
				require.Equal(t, time.Hour, c.Game.Cooldown)
				require.Equal(t, []string{"redis:6379"}, c.Redis.Addrs)
				require.Equal(t, "local", c.Redis.Prefix)
			},
		},
		"environment overrides the file": {
			arrange: func(t *testing.T) string {
				t.Setenv("GAME_COOLDOWN", "10m")
				t.Setenv("REDIS_PREFIX", "prod")
				return writeFile(t, "game:\n  cooldown: 5m\n")
			},
			assert: func(t *testing.T, c testConfig, err error) {
				require.NoError(t, err)
				require.Equal(t, 10*time.Minute, c.Game.Cooldown)
				require.Equal(t, "prod", c.Redis.Prefix)
			},
		},
		"no file reads the environment only": {
			arrange: func(t *testing.T) string {
				t.Setenv("HTTP_PORT", "7070")
				return ""
			},
			assert: func(t *testing.T, c testConfig, err error) {
				require.NoError(t, err)
				require.Equal(t, int32(7070), c.HTTP.Port)
			},
		},
		"missing file": {
			arrange: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			assert: func(t *testing.T, _ testConfig, err error) {
				require.Error(t, err)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			file := tt.arrange(t)

			c := defaults()
			err := config.Load(file, &c)

			tt.assert(t, c, err)
		})
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}
