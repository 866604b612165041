package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/llm"
	"github.com/victornm/tutormate/internal/mathcheck"
)

const (
	DefaultQuestionsPerConcept = 3
	// chatHistory is how many earlier chat entries are sent back to the model.
	chatHistory = 5
)

// ErrNoModel is reported by agents running without a provider.
var ErrNoModel = errors.New("tutor model is not configured")

// Agents wrap the LLM calls of the tutoring flow. Every agent degrades to a
// usable result with Error set instead of failing the request.
type Agents struct {
	llm        llm.Provider
	timeout    time.Duration
	perConcept int
}

type AgentsConfig struct {
	// Provider may be nil, in which case every agent returns its fallback.
	Provider            llm.Provider
	Timeout             time.Duration
	QuestionsPerConcept int
}

func NewAgents(c AgentsConfig) *Agents {
	a := &Agents{
		llm:        c.Provider,
		timeout:    c.Timeout,
		perConcept: c.QuestionsPerConcept,
	}
	if a.timeout <= 0 {
		a.timeout = 60 * time.Second
	}
	if a.perConcept <= 0 {
		a.perConcept = DefaultQuestionsPerConcept
	}
	return a
}

func generate[T any](ctx context.Context, a *Agents, agent string, req llm.Request) (T, error) {
	var zero T
	if a.llm == nil {
		return zero, ErrNoModel
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	v, err := llm.GenerateJSON[T](ctx, a.llm, req)
	if err != nil {
		slog.WarnContext(ctx, "tutor: agent failed", "agent", agent, "error", err)
		return zero, err
	}
	return v, nil
}

// Diagnose finds the concepts behind wrong answers. A quiz without wrong
// answers is not sent to the model.
func (a *Agents) Diagnose(ctx context.Context, q NormalizedQuiz) Diagnosis {
	wrong := make([]NormalizedQuestion, 0, len(q.Questions))
	for _, qq := range q.Questions {
		if !mathcheck.Equal(qq.StudentAnswer, qq.CorrectAnswer) {
			wrong = append(wrong, qq)
		}
	}
	if len(wrong) == 0 {
		return Diagnosis{WeakConcepts: []WeakConcept{}}
	}

	prompt, err := render("diagnose.tmpl", NormalizedQuiz{QuizID: q.QuizID, Questions: wrong})
	if err != nil {
		return Diagnosis{WeakConcepts: []WeakConcept{}, Error: err.Error()}
	}

	d, err := generate[Diagnosis](ctx, a, "diagnose", llm.Request{
		Messages: llm.UserPrompt(prompt),
		Schema:   diagnosisSchema,
	})
	if err != nil {
		return Diagnosis{WeakConcepts: []WeakConcept{}, Error: err.Error()}
	}
	if d.WeakConcepts == nil {
		d.WeakConcepts = []WeakConcept{}
	}
	return d
}

func (a *Agents) Explain(ctx context.Context, weak []WeakConcept) Explanations {
	if len(weak) == 0 {
		return Explanations{Items: []Explanation{}}
	}

	prompt, err := render("explain.tmpl", weak)
	if err != nil {
		return Explanations{Items: []Explanation{}, Error: err.Error()}
	}

	e, err := generate[Explanations](ctx, a, "explain", llm.Request{
		Messages: llm.UserPrompt(prompt),
		Schema:   explanationsSchema,
	})
	if err != nil {
		return Explanations{Items: []Explanation{}, Error: err.Error()}
	}
	return e
}

func (a *Agents) Practice(ctx context.Context, weak []WeakConcept) PracticeSet {
	if len(weak) == 0 {
		return PracticeSet{Groups: []PracticeGroup{}}
	}

	prompt, err := render("practice.tmpl", struct {
		PerConcept int
		Concepts   []WeakConcept
	}{a.perConcept, weak})
	if err != nil {
		return PracticeSet{Groups: []PracticeGroup{}, Error: err.Error()}
	}

	p, err := generate[PracticeSet](ctx, a, "practice", llm.Request{
		Messages: llm.UserPrompt(prompt),
		Schema:   practiceSchema,
	})
	if err != nil {
		return PracticeSet{Groups: []PracticeGroup{}, Error: err.Error()}
	}
	return p
}

// Summary is a progress report for a student.
type Summary struct {
	Report string `json:"report"`
	Error  string `json:"error,omitempty"`
}

// Summarize writes a progress report. Without a model it falls back to a
// plain report built from the scores.
func (a *Agents) Summarize(ctx context.Context, studentID string, status []domain.ConceptStatus) Summary {
	if len(status) == 0 {
		return Summary{Report: "No concepts practiced yet."}
	}

	prompt, err := render("summary.tmpl", struct {
		StudentID string
		Concepts  []domain.ConceptStatus
	}{studentID, status})
	if err != nil {
		return Summary{Report: plainReport(status), Error: err.Error()}
	}

	if a.llm == nil {
		return Summary{Report: plainReport(status), Error: ErrNoModel.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.llm.Generate(ctx, llm.Request{Messages: llm.UserPrompt(prompt)})
	if err != nil {
		slog.WarnContext(ctx, "tutor: agent failed", "agent", "summary", "error", err)
		return Summary{Report: plainReport(status), Error: err.Error()}
	}
	return Summary{Report: strings.TrimSpace(resp.Text)}
}

func plainReport(status []domain.ConceptStatus) string {
	best, worst := status[0], status[0]
	for _, s := range status[1:] {
		if s.MasteryScore.GreaterThan(best.MasteryScore) {
			best = s
		}
		if s.MasteryScore.LessThan(worst.MasteryScore) {
			worst = s
		}
	}
	if best.ConceptID == worst.ConceptID {
		return fmt.Sprintf("Student is working on %s (mastery %s).",
			best.ConceptID, best.MasteryScore.StringFixed(2))
	}
	return fmt.Sprintf("Student is strongest in %s (mastery %s) and needs help with %s (mastery %s).",
		best.ConceptID, best.MasteryScore.StringFixed(2),
		worst.ConceptID, worst.MasteryScore.StringFixed(2))
}

func (a *Agents) ChatStart(ctx context.Context, s ChatSettings) ChatOpening {
	system, err := chatSystem(s)
	if err != nil {
		return ChatOpening{Error: err.Error()}
	}
	prompt, err := render("chat_start.tmpl", nil)
	if err != nil {
		return ChatOpening{Error: err.Error()}
	}

	o, err := generate[ChatOpening](ctx, a, "chat_start", llm.Request{
		System:   system,
		Messages: llm.UserPrompt(prompt),
		Schema:   chatStartSchema,
	})
	if err != nil {
		return ChatOpening{Error: err.Error()}
	}
	return o
}

// ChatReply grades the student's message against the conversation so far.
// Only the last few history entries are sent.
func (a *Agents) ChatReply(ctx context.Context, s ChatSettings, history []ChatEntry, message string) ChatTurn {
	s = s.withDefaults()
	system, err := chatSystem(s)
	if err != nil {
		return ChatTurn{Difficulty: s.Difficulty, Error: err.Error()}
	}
	prompt, err := render("chat_reply.tmpl", message)
	if err != nil {
		return ChatTurn{Difficulty: s.Difficulty, Error: err.Error()}
	}

	if len(history) > chatHistory {
		history = history[len(history)-chatHistory:]
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		role := llm.RoleUser
		if h.Role == string(llm.RoleAssistant) || h.Role == "tutor" {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})

	t, err := generate[ChatTurn](ctx, a, "chat_reply", llm.Request{
		System:   system,
		Messages: msgs,
		Schema:   chatTurnSchema,
	})
	if err != nil {
		return ChatTurn{Difficulty: s.Difficulty, Error: err.Error()}
	}
	if t.Difficulty == "" {
		t.Difficulty = s.Difficulty
	}
	return t
}
