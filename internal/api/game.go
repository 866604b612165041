package api

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/victornm/tutormate/internal/attempt"
	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/game"
	"github.com/victornm/tutormate/internal/leaderboard"
)

const previousResult = "See previous result"

type (
	CurrentGameResponse struct {
		Played        bool                  `json:"played"`
		Game          domain.GameDefinition `json:"game"`
		TimeRemaining int64                 `json:"time_remaining"`
		WindowID      int64                 `json:"window_id"`
		LastResult    *LastResult           `json:"last_result"`
		// Cooldown is "unknown" when the user's last attempt could not be read.
		Cooldown string `json:"cooldown,omitempty"`
	}

	LastResult struct {
		Correct       bool          `json:"correct"`
		Score         json.Number   `json:"score"`
		Reward        domain.Reward `json:"reward"`
		CorrectAnswer string        `json:"correct_answer"`
	}

	GameResult struct {
		GameID        string        `json:"game_id"`
		Correct       bool          `json:"correct"`
		Score         json.Number   `json:"score"`
		Reward        domain.Reward `json:"reward"`
		CorrectAnswer string        `json:"correct_answer"`
	}

	SubmitGameRequest struct {
		UserID   *int64      `json:"user_id"`
		WindowID *int64      `json:"window_id"`
		Answer   game.Answer `json:"answer"`
	}

	ResetGameResponse struct {
		Removed int64 `json:"removed"`
	}
)

func (a *API) currentGame(c *gin.Context) {
	ctx := c.Request.Context()
	now := a.now()
	round := a.sched.Current(now)

	resp := CurrentGameResponse{
		Game:          round.Game,
		TimeRemaining: seconds(round.Remaining),
		WindowID:      round.WindowID,
	}

	raw, found := c.GetQuery("user_id")
	if !found {
		respond(c, resp)
		return
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID < 0 {
		renderError(c, errors.InvalidArgument("user_id must be a non-negative integer"))
		return
	}

	last, err := a.as.Last(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "api: read last attempt failed",
			"user_id", userID,
			"error", err,
		)
		resp.Cooldown = "unknown"
		respond(c, resp)
		return
	}

	played, remaining := attempt.Cooldown(last, now, a.cooldown)
	if played {
		resp.Played = true
		resp.TimeRemaining = seconds(remaining)
		resp.LastResult = &LastResult{
			Correct:       last.Score.Equal(decimal.NewFromInt(100)),
			Score:         number(last.Score),
			Reward:        game.RewardFor(last.Score),
			CorrectAnswer: previousResult,
		}
	}

	respond(c, resp)
}

func (a *API) submitGame(c *gin.Context) {
	var req SubmitGameRequest
	if !bind(c, &req) {
		return
	}

	switch {
	case req.UserID == nil || *req.UserID < 0:
		renderError(c, errors.InvalidArgument("user_id must be a non-negative integer"))
		return
	case req.WindowID == nil || *req.WindowID < 0:
		renderError(c, errors.InvalidArgument("window_id must be a non-negative integer"))
		return
	case req.Answer.IsEmpty():
		renderError(c, errors.InvalidArgument("answer is required"))
		return
	}

	res := a.sched.Validate(*req.WindowID, req.Answer)

	_, err := a.as.Record(c.Request.Context(), attempt.RecordRequest{
		UserID:   *req.UserID,
		WindowID: *req.WindowID,
		Score:    res.Score,
		Reward:   res.Reward,
	})
	if err != nil {
		if e := errors.Convert(err); e.Code == errors.CodeAlreadyExists {
			renderError(c, errors.New(errors.CodeAlreadyExists,
				errors.WithMessagef("already played: user=%d window=%d", *req.UserID, *req.WindowID),
				errors.WithCause(e.Unwrap()),
			))
			return
		}
		renderError(c, err)
		return
	}

	respond(c, GameResult{
		GameID:        res.GameID,
		Correct:       res.Correct,
		Score:         number(res.Score),
		Reward:        res.Reward,
		CorrectAnswer: res.CorrectAnswer,
	})
}

func (a *API) resetGame(c *gin.Context) {
	n, err := a.as.Reset(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, ResetGameResponse{Removed: n})
}

func (a *API) getLeaderboard(c *gin.Context) {
	l, err := a.ls.GetLeaderboard(c.Request.Context(), leaderboard.GetLeaderboardRequest{
		Day: c.Query("day"),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, toLeaderboard(*l))
}

// seconds truncates d to whole seconds.
func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// number renders a decimal as a JSON number without going through float64.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
