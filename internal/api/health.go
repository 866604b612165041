package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type healthResult struct {
	Status string `json:"status"`
}

func (a *API) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]healthResult, len(a.checks))
	status := http.StatusOK

	for name, chk := range a.checks {
		if err := chk.Check(ctx); err != nil {
			slog.ErrorContext(ctx, "api: health check failed", "name", name, "error", err)
			results[name] = healthResult{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = healthResult{Status: "ok"}
	}

	c.JSON(status, results)
}
