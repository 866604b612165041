// Package api exposes the game, progress and tutor services over HTTP and
// pushes leaderboard changes to users over Redis pubsub.
package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/victornm/tutormate/internal/attempt"
	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/event"
	"github.com/victornm/tutormate/internal/game"
	"github.com/victornm/tutormate/internal/leaderboard"
	"github.com/victornm/tutormate/internal/mastery"
	"github.com/victornm/tutormate/internal/tutor"
)

// AdminTokenHeader carries the shared secret of the admin routes.
const AdminTokenHeader = "X-Admin-Token"

type Config struct {
	EventBus     *event.Bus
	Scheduler    *game.Scheduler
	Attempts     *attempt.Service
	Cooldown     time.Duration
	Mastery      *mastery.Service
	Tutor        *tutor.Service
	Leaderboard  *leaderboard.Service
	Redis        Redis
	PubsubPrefix string
	// AdminToken guards the admin routes. Admin routes are disabled when empty.
	AdminToken string
	Checks     map[string]Checker
	Now        func() time.Time
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	sched    *game.Scheduler
	as       *attempt.Service
	cooldown time.Duration
	ms       *mastery.Service
	ts       *tutor.Service
	ls       *leaderboard.Service

	redis  Redis
	prefix string

	adminToken string
	checks     map[string]Checker
	now        func() time.Time
}

func New(c Config) *API {
	a := &API{
		sched:      c.Scheduler,
		as:         c.Attempts,
		cooldown:   c.Cooldown,
		ms:         c.Mastery,
		ts:         c.Tutor,
		ls:         c.Leaderboard,
		redis:      c.Redis,
		prefix:     c.PubsubPrefix,
		adminToken: c.AdminToken,
		checks:     c.Checks,
		now:        c.Now,
	}
	if a.cooldown <= 0 {
		a.cooldown = attempt.DefaultCooldown
	}
	if a.now == nil {
		a.now = time.Now
	}

	// Register event handlers
	if a.redis != nil {
		event.Subscribe(c.EventBus, a.PublishLeaderboardUpdated)
	}

	return a
}

// Register mounts every route on r.
func (a *API) Register(r gin.IRouter) {
	r.GET("/healthz", a.health)

	v1 := r.Group("/v1")

	g := v1.Group("/game")
	g.GET("/current", a.currentGame)
	g.POST("/submit", a.submitGame)
	g.GET("/leaderboard", a.getLeaderboard)

	admin := v1.Group("/admin", a.requireAdmin)
	admin.POST("/game/reset", a.resetGame)

	st := v1.Group("/students/:id")
	st.GET("/mastery", a.getMastery)
	st.POST("/mastery", a.applyMastery)
	st.GET("/next-session", a.nextSession)
	st.GET("/summary", a.summary)

	ts := v1.Group("/tutor/sessions")
	ts.POST("", a.createSession)
	ts.GET("/:id", a.getSession)
	ts.POST("/:id/quiz", a.setQuiz)
	ts.POST("/:id/responses", a.setResponses)
	ts.POST("/:id/diagnose", a.diagnose)
	ts.GET("/:id/explanations", a.explanations)
	ts.GET("/:id/practice", a.practice)
	ts.GET("/:id/study", a.study)
	ts.POST("/:id/practice/submit", a.submitPractice)

	chat := v1.Group("/chat")
	chat.POST("/start", a.chatStart)
	chat.POST("/message", a.chatMessage)
}

func (a *API) requireAdmin(c *gin.Context) {
	got := c.GetHeader(AdminTokenHeader)
	if a.adminToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(a.adminToken)) != 1 {
		renderError(c, errors.New(errors.CodePermissionDenied, errors.WithMessagef("admin token required")))
		return
	}
	c.Next()
}

// renderError writes err as {code, message} with the matching HTTP status.
func renderError(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal || e.Code == errors.CodeUnavailable {
		slog.ErrorContext(c.Request.Context(), "api: request failed",
			"path", c.FullPath(),
			"error", err,
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}

// bind decodes the JSON body into v, reporting malformed bodies as invalid arguments.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		renderError(c, errors.InvalidArgument("invalid request body: %v", err))
		return false
	}
	return true
}

func respond(c *gin.Context, v any) {
	c.JSON(http.StatusOK, v)
}

// Leaderboard entries as sent to clients.
func toLeaderboard(l domain.Leaderboard) Leaderboard {
	data := Leaderboard{
		Day:     l.Day,
		Entries: make([]LeaderboardEntry, 0, len(l.Entries)),
	}
	for _, e := range l.Entries {
		data.Entries = append(data.Entries, LeaderboardEntry{
			UserID: e.UserID,
			Score:  e.Score,
		})
	}
	return data
}
