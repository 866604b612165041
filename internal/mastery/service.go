// Package mastery tracks per-concept proficiency of students.
package mastery

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/event"
	"github.com/victornm/tutormate/internal/storage"
	"github.com/victornm/tutormate/internal/telemetry"
)

var (
	correctDelta   = decimal.RequireFromString("0.1")
	incorrectDelta = decimal.RequireFromString("-0.05")

	minScore = decimal.Zero
	maxScore = decimal.NewFromInt(1)
)

// Store persists mastery rows. Modify runs fn on the current row (a zero row
// for a first update) and writes the result back atomically.
type Store interface {
	Modify(ctx context.Context, studentID, conceptID string, fn func(m *domain.ConceptMastery)) (*domain.ConceptMastery, error)
	List(ctx context.Context, studentID string) ([]domain.ConceptStatus, error)
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

type ApplyRequest struct {
	StudentID string
	ConceptID string
	Correct   bool
	// Mistake describes what went wrong. Ignored for correct outcomes.
	Mistake string
}

// Apply records one graded outcome: +0.1 when correct, -0.05 otherwise,
// clamped to [0, 1]. The history keeps the unclamped delta.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*domain.ConceptMastery, error) {
	if strings.TrimSpace(req.StudentID) == "" || strings.TrimSpace(req.ConceptID) == "" {
		return nil, errors.InvalidArgument("student and concept are required")
	}

	now := s.now()
	delta := correctDelta
	var mistake *string
	if !req.Correct {
		delta = incorrectDelta
		if req.Mistake != "" {
			mistake = &req.Mistake
		}
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m, err := s.store.Modify(tctx, req.StudentID, req.ConceptID, func(m *domain.ConceptMastery) {
		m.Score = clamp(m.Score.Add(delta))
		m.LastPracticed = now
		m.LastMistake = mistake
		m.History = append(m.History, domain.MasteryChange{
			Timestamp: now,
			Delta:     delta,
			Mistake:   mistake,
		})
	})
	if err != nil {
		slog.ErrorContext(ctx, "mastery: apply failed",
			"student_id", req.StudentID,
			"concept_id", req.ConceptID,
			"error", err,
		)
		return nil, storage.Classify(err)
	}

	telemetry.MasteryUpdates.WithLabelValues(strconv.FormatBool(req.Correct)).Inc()

	if s.eb != nil {
		s.eb.Publish(ctx, domain.EventMasteryUpdated{
			Mastery: *m,
			Correct: req.Correct,
		})
	}

	return m, nil
}

// Outcome is one graded question of a practice report.
type Outcome struct {
	ConceptID string
	Question  string
	Correct   bool
}

// ApplyReport applies every outcome in order. It stops at the first failure;
// outcomes applied before it stay applied.
func (s *Service) ApplyReport(ctx context.Context, studentID string, outcomes []Outcome) ([]domain.ConceptMastery, error) {
	res := make([]domain.ConceptMastery, 0, len(outcomes))
	for _, o := range outcomes {
		req := ApplyRequest{
			StudentID: studentID,
			ConceptID: o.ConceptID,
			Correct:   o.Correct,
		}
		if !o.Correct {
			req.Mistake = fmt.Sprintf("Failed question: %s", o.Question)
		}

		m, err := s.Apply(ctx, req)
		if err != nil {
			return res, err
		}
		res = append(res, *m)
	}
	return res, nil
}

// Status lists the tracked concepts of a student, in no particular order.
func (s *Service) Status(ctx context.Context, studentID string) ([]domain.ConceptStatus, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, errors.InvalidArgument("student is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st, err := s.store.List(ctx, studentID)
	if err != nil {
		return nil, storage.Classify(err)
	}
	return st, nil
}

func clamp(d decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(d, minScore), maxScore)
}
