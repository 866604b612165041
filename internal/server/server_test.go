package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victornm/tutormate/internal/attempt"
	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/server"
	"github.com/victornm/tutormate/internal/storage"
	"github.com/victornm/tutormate/internal/window"
)

func testConfig(t *testing.T) server.Config {
	t.Helper()

	c := server.DefaultConfig()
	c.Storage.SQLite.Path = filepath.Join(t.TempDir(), "server.db")
	c.LLM.Provider = "none"
	return c
}

func TestDefaultConfig(t *testing.T) {
	c := server.DefaultConfig()

	require.Equal(t, window.DefaultDuration, c.Game.Window)
	require.Equal(t, time.Hour, c.Game.Cooldown)
	require.Equal(t, storage.DriverSQLite, c.Storage.Driver)
	require.Equal(t, 30*time.Second, c.Storage.Timeout)
	require.Equal(t, "gemini", c.LLM.Provider)
	require.Equal(t, 24*time.Hour, c.Tutor.SessionTTL)
	require.Empty(t, c.Admin.Token, "admin routes are off by default")
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	c := testConfig(t)
	require.NoError(t, server.Migrate(ctx, c))
	require.NoError(t, server.Migrate(ctx, c), "migrating twice is a no-op")

	c.Storage.Driver = "oracle"
	require.Error(t, server.Migrate(ctx, c))
}

func TestResetAttempts(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)
	require.NoError(t, server.Migrate(ctx, c))

	db, err := storage.OpenSQLite(c.Storage.SQLite.Path)
	require.NoError(t, err)
	st := attempt.NewSQLiteStore(db)
	for _, user := range []int64{1, 2} {
		require.NoError(t, st.Insert(ctx, &domain.Attempt{
			UserID:      user,
			WindowID:    10,
			Score:       decimal.NewFromInt(100),
			CompletedAt: time.Now(),
		}))
	}
	require.NoError(t, db.Close())

	n, err := server.ResetAttempts(ctx, c)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	rs := miniredis.RunT(t)

	c := testConfig(t)
	c.Redis.Leaderboard.Addrs = []string{rs.Addr()}
	c.Redis.Pubsub.Addrs = []string{rs.Addr()}
	c.Redis.Tutor.Addrs = []string{rs.Addr()}

	s, err := server.Init(ctx, c)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	for path, code := range map[string]int{
		"/healthz":             http.StatusOK,
		"/metrics":             http.StatusOK,
		"/v1/game/current":     http.StatusOK,
		"/v1/admin/game/reset": http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, code, w.Code, path)
	}
}

func TestInit_Failures(t *testing.T) {
	rs := miniredis.RunT(t)

	tests := map[string]func(c *server.Config){
		"redis unreachable": func(c *server.Config) {
			c.Redis.Leaderboard.Addrs = []string{"127.0.0.1:1"}
		},
		"unknown llm provider": func(c *server.Config) {
			c.LLM.Provider = "hal9000"
		},
		"unknown tracing exporter": func(c *server.Config) {
			c.Tracing.Exporter = "carrier-pigeon"
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := testConfig(t)
			c.Redis.Leaderboard.Addrs = []string{rs.Addr()}
			c.Redis.Pubsub.Addrs = []string{rs.Addr()}
			c.Redis.Tutor.Addrs = []string{rs.Addr()}
			mutate(&c)

			_, err := server.Init(context.Background(), c)
			require.Error(t, err)
		})
	}
}
