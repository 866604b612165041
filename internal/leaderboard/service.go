// Package leaderboard ranks users by their accumulated game scores per UTC day.
package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/event"
)

const (
	DayLayout = "2006-01-02"

	publishInterval  = 200 * time.Millisecond
	defaultRetention = 7 * 24 * time.Hour
)

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
	// Retention is how long a day's leaderboard is kept after its last update.
	Retention time.Duration
	Now       func() time.Time
}

type Service struct {
	eb        *event.Bus
	redis     redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

func NewService(c Config) *Service {
	s := &Service{
		eb:        c.EventBus,
		redis:     c.Redis,
		prefix:    c.Prefix,
		retention: c.Retention,
		now:       c.Now,
	}
	if s.retention <= 0 {
		s.retention = defaultRetention
	}
	if s.now == nil {
		s.now = time.Now
	}

	event.Subscribe(s.eb, s.UpdateLeaderboard)

	return s
}

type GetLeaderboardRequest struct {
	// Day is YYYY-MM-DD in UTC. Empty means today.
	Day string
}

// GetLeaderboard returns the leaderboard of a day, including all users and their scores.
func (s *Service) GetLeaderboard(ctx context.Context, req GetLeaderboardRequest) (*domain.Leaderboard, error) {
	day := req.Day
	if day == "" {
		day = s.now().UTC().Format(DayLayout)
	}
	if _, err := time.Parse(DayLayout, day); err != nil {
		return nil, errors.InvalidArgument("invalid day %q, want YYYY-MM-DD", day)
	}

	res, err := s.redis.ZRevRangeWithScores(ctx, s.getLeaderboardKey(day), 0, -1).Result()
	if err != nil {
		return nil, errors.Unavailable(fmt.Errorf("get leaderboard: %w", err))
	}

	if len(res) == 0 {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("leaderboard not found: day=%s", day))
	}

	scores := make([]domain.LeaderboardEntry, 0, len(res))
	for _, z := range res {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		scores = append(scores, domain.LeaderboardEntry{
			UserID: id,
			Score:  z.Score,
		})
	}

	return &domain.Leaderboard{
		Day:     day,
		Entries: scores,
	}, nil
}

// UpdateLeaderboard adds a completed game's score to the user's total for
// the day the game was completed.
func (s *Service) UpdateLeaderboard(ctx context.Context, e domain.EventGameCompleted) error {
	a := e.Attempt
	day := a.CompletedAt.UTC().Format(DayLayout)
	key := s.getLeaderboardKey(day)

	_, err := s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZIncrBy(ctx, key, a.Score.InexactFloat64(), strconv.FormatInt(a.UserID, 10))
		p.Expire(ctx, key, s.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}

	return s.schedulePublishLeaderboard(ctx, day, a.CompletedAt)
}

// schedulePublishLeaderboard publishes leaderboard changes at most once per
// interval, across all instances sharing the Redis.
func (s *Service) schedulePublishLeaderboard(ctx context.Context, day string, at time.Time) error {
	ok, err := s.redis.SetNX(ctx, s.getLeaderboardTimeKey(day), at.UnixMilli(), publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if !ok {
		return nil
	}

	return s.publishLeaderboard(ctx, day)
}

func (s *Service) publishLeaderboard(ctx context.Context, day string) error {
	l, err := s.GetLeaderboard(ctx, GetLeaderboardRequest{Day: day})
	if err != nil {
		return fmt.Errorf("get leaderboard failed: day=%s: %w", day, err)
	}

	s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
		Leaderboard: *l,
	})

	return nil
}

func (s *Service) getLeaderboardKey(day string) string {
	return fmt.Sprintf("%s:leaderboard:%s", s.prefix, day)
}

func (s *Service) getLeaderboardTimeKey(day string) string {
	return fmt.Sprintf("%s:leaderboard:%s:time", s.prefix, day)
}
