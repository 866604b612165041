// Package attempt keeps the ledger of played game windows.
package attempt

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/event"
	"github.com/victornm/tutormate/internal/storage"
	"github.com/victornm/tutormate/internal/telemetry"
)

// DefaultCooldown is how long a result keeps being replayed to the player.
const DefaultCooldown = time.Hour

// Store persists attempts. Insert must be a single constrained write and
// report a duplicate (user, window) pair as errors.CodeAlreadyExists.
type Store interface {
	Exists(ctx context.Context, userID, windowID int64) (bool, error)
	Insert(ctx context.Context, a *domain.Attempt) error
	Last(ctx context.Context, userID int64) (*domain.Attempt, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Config struct {
	EventBus *event.Bus
	Store    Store
	Timeout  time.Duration
	Now      func() time.Time
}

type Service struct {
	eb      *event.Bus
	store   Store
	timeout time.Duration
	now     func() time.Time
}

func NewService(c Config) *Service {
	s := &Service{
		eb:      c.EventBus,
		store:   c.Store,
		timeout: c.Timeout,
		now:     c.Now,
	}
	if s.timeout <= 0 {
		s.timeout = storage.DefaultTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// HasPlayed reports whether the user already has an attempt for the window.
func (s *Service) HasPlayed(ctx context.Context, userID, windowID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.store.Exists(ctx, userID, windowID)
	if err != nil {
		return false, storage.Classify(err)
	}
	return ok, nil
}

type RecordRequest struct {
	UserID   int64
	WindowID int64
	Score    decimal.Decimal
	Reward   domain.Reward
}

// Record stores the attempt. Of several concurrent calls for the same user
// and window exactly one succeeds; the rest get errors.CodeAlreadyExists.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*domain.Attempt, error) {
	if req.UserID < 0 || req.WindowID < 0 {
		return nil, errors.InvalidArgument("user_id and window_id must not be negative")
	}

	a := &domain.Attempt{
		UserID:      req.UserID,
		WindowID:    req.WindowID,
		Score:       req.Score,
		CompletedAt: s.now(),
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Insert(tctx, a); err != nil {
		if errors.Is(err, errors.CodeAlreadyExists) {
			telemetry.GameSubmissions.WithLabelValues("duplicate").Inc()
			return nil, errors.New(errors.CodeAlreadyExists,
				errors.WithMessagef("already played window %d", req.WindowID),
				errors.WithCause(err))
		}

		telemetry.GameSubmissions.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "attempt: record failed",
			"user_id", req.UserID,
			"window_id", req.WindowID,
			"error", err,
		)
		return nil, storage.Classify(err)
	}

	telemetry.GameSubmissions.WithLabelValues("recorded").Inc()
	telemetry.GameRewards.WithLabelValues(string(req.Reward)).Inc()

	if s.eb != nil {
		s.eb.Publish(ctx, domain.EventGameCompleted{
			Attempt: *a,
			Reward:  req.Reward,
		})
	}

	return a, nil
}

// Last returns the most recent attempt of the user, or nil if there is none.
func (s *Service) Last(ctx context.Context, userID int64) (*domain.Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	a, err := s.store.Last(ctx, userID)
	if err != nil {
		return nil, storage.Classify(err)
	}
	return a, nil
}

// Reset removes every attempt and returns how many were removed.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, storage.Classify(err)
	}

	slog.InfoContext(ctx, "attempt: ledger reset", "removed", n)
	return n, nil
}

// Cooldown reports whether last still blocks play at now, and for how long.
// A completion time in the future counts as zero elapsed.
func Cooldown(last *domain.Attempt, now time.Time, d time.Duration) (played bool, remaining time.Duration) {
	if last == nil {
		return false, 0
	}

	elapsed := now.Sub(last.CompletedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= d {
		return false, 0
	}
	return true, d - elapsed
}
