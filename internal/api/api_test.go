package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/victornm/tutormate/internal/api"
	"github.com/victornm/tutormate/internal/attempt"
	"github.com/victornm/tutormate/internal/event"
	"github.com/victornm/tutormate/internal/game"
	"github.com/victornm/tutormate/internal/leaderboard"
	"github.com/victornm/tutormate/internal/llm"
	"github.com/victornm/tutormate/internal/mastery"
	"github.com/victornm/tutormate/internal/storage"
	"github.com/victornm/tutormate/internal/tutor"
)

const adminToken = "secret"

// 2026-03-01T10:00:30Z is 30s into window 14769660, which serves mcq_science.
var start = time.Date(2026, 3, 1, 10, 0, 30, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	router *gin.Engine
	clock  *clock
	eb     *event.Bus
	db     *sql.DB
	redis  redis.UniversalClient
	llm    *llm.Mock
	checks map[string]api.Checker
}

func makeAPI(t *testing.T, replies ...llm.MockReply) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(context.Background(), storage.DriverSQLite, db))

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	t.Cleanup(func() { rc.Close() })

	h := &harness{
		clock:  &clock{now: start},
		eb:     event.NewBus(),
		db:     db,
		redis:  rc,
		llm:    llm.NewMock(replies...),
		checks: map[string]api.Checker{},
	}
	t.Cleanup(h.eb.Stop)

	ms := mastery.NewService(mastery.Config{
		EventBus: h.eb,
		Store:    mastery.NewSQLiteStore(db),
		Now:      h.clock.Now,
	})

	a := api.New(api.Config{
		EventBus:  h.eb,
		Scheduler: game.NewScheduler(game.DefaultCatalog(), 0),
		Attempts: attempt.NewService(attempt.Config{
			EventBus: h.eb,
			Store:    attempt.NewSQLiteStore(db),
			Now:      h.clock.Now,
		}),
		Mastery: ms,
		Tutor: tutor.NewService(tutor.Config{
			Sessions: tutor.NewSessionStore(tutor.SessionStoreConfig{Redis: rc, Prefix: "test"}),
			Agents:   tutor.NewAgents(tutor.AgentsConfig{Provider: h.llm}),
			Mastery:  ms,
		}),
		Leaderboard: leaderboard.NewService(leaderboard.Config{
			EventBus: h.eb,
			Redis:    rc,
			Prefix:   "test",
			Now:      h.clock.Now,
		}),
		Redis:        rc,
		PubsubPrefix: "test",
		AdminToken:   adminToken,
		Checks:       h.checks,
		Now:          h.clock.Now,
	})

	h.router = gin.New()
	a.Register(h.router)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var allCorrect = map[string]any{
	"user_id":   7,
	"window_id": 14769660,
	"answer":    map[string]string{"0": "Nitrogen", "1": "Au", "2": "Mitochondria"},
}
