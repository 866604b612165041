// Package tutor runs the quiz review flow and the chat tutor on top of the
// LLM agents, and feeds graded work into the mastery tracker.
package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/mastery"
)

type Config struct {
	Sessions *SessionStore
	Agents   *Agents
	Mastery  *mastery.Service
}

type Service struct {
	sessions *SessionStore
	agents   *Agents
	mastery  *mastery.Service
}

func NewService(c Config) *Service {
	return &Service{
		sessions: c.Sessions,
		agents:   c.Agents,
		mastery:  c.Mastery,
	}
}

func (s *Service) CreateSession(ctx context.Context, studentID string) (*Session, error) {
	return s.sessions.Create(ctx, strings.TrimSpace(studentID))
}

func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.sessions.Get(ctx, id)
}

// SetQuiz stores the answer key. Stored responses are normalized again.
func (s *Service) SetQuiz(ctx context.Context, id string, q Quiz) (*Session, error) {
	if len(q.Questions) == 0 {
		return nil, errors.InvalidArgument("quiz has no questions")
	}
	for i, qq := range q.Questions {
		if strings.TrimSpace(qq.ID) == "" {
			return nil, errors.InvalidArgument("question #%d has no id", i)
		}
	}

	return s.sessions.Update(ctx, id, func(ss *Session) error {
		ss.Quiz = &q
		ss.normalize()
		return nil
	})
}

// SetResponses stores the student's answers. The session adopts the
// student id of the first responses it sees.
func (s *Service) SetResponses(ctx context.Context, id string, r Responses) (*Session, error) {
	return s.sessions.Update(ctx, id, func(ss *Session) error {
		switch {
		case r.StudentID == "":
			r.StudentID = ss.StudentID
		case ss.StudentID == "":
			ss.StudentID = r.StudentID
		case ss.StudentID != r.StudentID:
			return errors.InvalidArgument("session belongs to student %s", ss.StudentID)
		}

		ss.Responses = &r
		ss.normalize()
		return nil
	})
}

func (ss *Session) normalize() {
	if ss.Quiz == nil || ss.Responses == nil {
		return
	}
	n := Ingest(*ss.Quiz, *ss.Responses)
	ss.Normalized = &n
	ss.Diagnosis, ss.WeakConcepts, ss.Practice, ss.Grade = nil, nil, nil, nil
}

func (s *Service) Diagnose(ctx context.Context, id string) (Diagnosis, error) {
	ss, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Diagnosis{}, err
	}
	if ss.Normalized == nil {
		return Diagnosis{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session needs a quiz and responses before diagnosis"))
	}

	d := s.agents.Diagnose(ctx, *ss.Normalized)

	_, err = s.sessions.Update(ctx, id, func(ss *Session) error {
		ss.Diagnosis = &d
		ss.WeakConcepts = d.WeakConcepts
		ss.Practice, ss.Grade = nil, nil
		return nil
	})
	return d, err
}

func (s *Service) weakConcepts(ctx context.Context, id string) ([]WeakConcept, error) {
	ss, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ss.Diagnosis == nil {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session has not been diagnosed"))
	}
	return ss.WeakConcepts, nil
}

func (s *Service) Explanations(ctx context.Context, id string) (Explanations, error) {
	weak, err := s.weakConcepts(ctx, id)
	if err != nil {
		return Explanations{}, err
	}
	return s.agents.Explain(ctx, weak), nil
}

// Practice generates a new practice set and stores it for grading.
func (s *Service) Practice(ctx context.Context, id string) (PracticeSet, error) {
	weak, err := s.weakConcepts(ctx, id)
	if err != nil {
		return PracticeSet{}, err
	}

	p := s.agents.Practice(ctx, weak)
	if err := s.storePractice(ctx, id, p); err != nil {
		return PracticeSet{}, err
	}
	return p, nil
}

func (s *Service) storePractice(ctx context.Context, id string, p PracticeSet) error {
	_, err := s.sessions.Update(ctx, id, func(ss *Session) error {
		ss.Practice = &p
		ss.Grade = nil
		return nil
	})
	return err
}

// StudyPack is the explanations and practice set for a diagnosed session.
type StudyPack struct {
	Explanations Explanations `json:"explanations"`
	Practice     PracticeSet  `json:"practice"`
}

// Study builds explanations and practice concurrently.
func (s *Service) Study(ctx context.Context, id string) (StudyPack, error) {
	weak, err := s.weakConcepts(ctx, id)
	if err != nil {
		return StudyPack{}, err
	}

	var pack StudyPack
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pack.Explanations = s.agents.Explain(gctx, weak)
		return nil
	})
	g.Go(func() error {
		pack.Practice = s.agents.Practice(gctx, weak)
		return nil
	})
	if err := g.Wait(); err != nil {
		return StudyPack{}, err
	}

	if err := s.storePractice(ctx, id, pack.Practice); err != nil {
		return StudyPack{}, err
	}
	return pack, nil
}

// SubmitPractice grades answers, keyed by question text, against the stored
// practice set and applies the outcome to the student's mastery.
func (s *Service) SubmitPractice(ctx context.Context, id string, answers map[string]string) (GradeReport, error) {
	ss, err := s.sessions.Get(ctx, id)
	if err != nil {
		return GradeReport{}, err
	}
	if ss.Practice == nil {
		return GradeReport{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session has no practice set"))
	}

	r := Grade(*ss.Practice, answers)

	if ss.StudentID != "" && s.mastery != nil {
		if _, err := s.mastery.ApplyReport(ctx, ss.StudentID, r.Outcomes()); err != nil {
			return GradeReport{}, err
		}
	}

	_, err = s.sessions.Update(ctx, id, func(ss *Session) error {
		ss.Grade = &r
		return nil
	})
	return r, err
}

func (s *Service) ChatStart(ctx context.Context, settings ChatSettings) ChatOpening {
	return s.agents.ChatStart(ctx, settings)
}

type ChatMessageRequest struct {
	StudentID string
	Settings  ChatSettings
	History   []ChatEntry
	Message   string
}

// ChatMessage answers one chat turn. A graded turn with a named concept is
// applied to the student's mastery when the student is known.
func (s *Service) ChatMessage(ctx context.Context, req ChatMessageRequest) (ChatTurn, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatTurn{}, errors.InvalidArgument("message is required")
	}

	t := s.agents.ChatReply(ctx, req.Settings, req.History, req.Message)
	if t.Error != "" || t.Concept == "" || req.StudentID == "" || s.mastery == nil {
		return t, nil
	}

	ar := mastery.ApplyRequest{
		StudentID: req.StudentID,
		ConceptID: t.Concept,
		Correct:   t.IsCorrect,
	}
	if !t.IsCorrect {
		ar.Mistake = fmt.Sprintf("Chat answer: %s", req.Message)
	}
	if _, err := s.mastery.Apply(ctx, ar); err != nil {
		slog.ErrorContext(ctx, "tutor: chat mastery update failed",
			"student_id", req.StudentID,
			"concept_id", t.Concept,
			"error", err,
		)
		return ChatTurn{}, err
	}
	return t, nil
}

// StudentSummary is the mastery status of a student with a written report.
type StudentSummary struct {
	Status []domain.ConceptStatus `json:"status"`
	Report string                 `json:"report"`
	Error  string                 `json:"error,omitempty"`
}

func (s *Service) Summary(ctx context.Context, studentID string) (StudentSummary, error) {
	st, err := s.mastery.Status(ctx, studentID)
	if err != nil {
		return StudentSummary{}, err
	}
	if st == nil {
		st = []domain.ConceptStatus{}
	}

	sum := s.agents.Summarize(ctx, studentID, st)
	return StudentSummary{Status: st, Report: sum.Report, Error: sum.Error}, nil
}
