package tutor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/llm"
	"github.com/victornm/tutormate/internal/tutor"
)

func TestAgents_Diagnose(t *testing.T) {
	wrong := tutor.NormalizedQuiz{
		QuizID: "q1",
		Questions: []tutor.NormalizedQuestion{
			{ID: "1", QuestionText: "1/2 + 1/4", StudentAnswer: "0.75", CorrectAnswer: "3/4", Concepts: []string{"fractions"}},
			{ID: "2", QuestionText: "2^3", StudentAnswer: "6", CorrectAnswer: "8", Concepts: []string{"exponents", "multiplication"}},
		},
	}

	tests := map[string]struct {
		arrange func() (*llm.Mock, tutor.NormalizedQuiz)
		assert  func(t *testing.T, m *llm.Mock, d tutor.Diagnosis)
	}{
		"all correct answers skip the model": {
			arrange: func() (*llm.Mock, tutor.NormalizedQuiz) {
				q := wrong
				q.Questions = wrong.Questions[:1]
				return llm.NewMock(), q
			},
			assert: func(t *testing.T, m *llm.Mock, d tutor.Diagnosis) {
				require.Empty(t, m.Calls())
				require.Empty(t, d.WeakConcepts)
				require.NotNil(t, d.WeakConcepts)
				require.Empty(t, d.Error)
			},
		},
		"model diagnosis is returned": {
			arrange: func() (*llm.Mock, tutor.NormalizedQuiz) {
				return llm.NewMock(llm.MockReply{
					Text: "```json\n{\"weak_concepts\":[{\"concept\":\"exponents\",\"reason\":\"multiplied base by exponent\"}],\"summary\":\"Review powers.\"}\n```",
				}), wrong
			},
			assert: func(t *testing.T, m *llm.Mock, d tutor.Diagnosis) {
				require.Len(t, m.Calls(), 1)
				prompt := m.Calls()[0].Messages[0].Content
				require.Contains(t, prompt, "2^3")
				require.NotContains(t, prompt, "1/2 + 1/4", "correct answers are not sent")
				require.Equal(t, []tutor.WeakConcept{{Concept: "exponents", Reason: "multiplied base by exponent"}}, d.WeakConcepts)
				require.Equal(t, "Review powers.", d.Summary)
			},
		},
		"model failure leaves no weak concepts": {
			arrange: func() (*llm.Mock, tutor.NormalizedQuiz) {
				return llm.NewMock(llm.MockReply{Err: errors.New("boom")}), wrong
			},
			assert: func(t *testing.T, _ *llm.Mock, d tutor.Diagnosis) {
				require.Equal(t, "boom", d.Error)
				require.NotNil(t, d.WeakConcepts)
				require.Empty(t, d.WeakConcepts)
			},
		},
		"non-JSON output is an error": {
			arrange: func() (*llm.Mock, tutor.NormalizedQuiz) {
				return llm.NewMock(llm.MockReply{Text: "not json"}), wrong
			},
			assert: func(t *testing.T, _ *llm.Mock, d tutor.Diagnosis) {
				require.NotEmpty(t, d.Error)
				require.NotNil(t, d.WeakConcepts)
				require.Empty(t, d.WeakConcepts)
			},
		},
		"malformed output is an error": {
			arrange: func() (*llm.Mock, tutor.NormalizedQuiz) {
				return llm.NewMock(llm.MockReply{Text: `{"concepts":[]}`}), wrong
			},
			assert: func(t *testing.T, _ *llm.Mock, d tutor.Diagnosis) {
				require.NotEmpty(t, d.Error)
				require.Empty(t, d.WeakConcepts)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, q := tt.arrange()
			a := tutor.NewAgents(tutor.AgentsConfig{Provider: m})
			tt.assert(t, m, a.Diagnose(context.Background(), q))
		})
	}
}

func TestAgents_ExplainAndPractice(t *testing.T) {
	weak := []tutor.WeakConcept{{Concept: "exponents"}}

	t.Run("no weak concepts", func(t *testing.T) {
		m := llm.NewMock()
		a := tutor.NewAgents(tutor.AgentsConfig{Provider: m})

		e := a.Explain(context.Background(), nil)
		p := a.Practice(context.Background(), nil)

		require.Empty(t, m.Calls())
		require.Equal(t, []tutor.Explanation{}, e.Items)
		require.Equal(t, []tutor.PracticeGroup{}, p.Groups)
	})

	t.Run("generated", func(t *testing.T) {
		m := llm.NewMock(
			llm.MockReply{Text: `{"explanations":[{"concept":"exponents","explanation":"Repeated multiplication.","example":"2^3 = 8"}]}`},
			llm.MockReply{Text: `{"practice_set":[{"concept":"exponents","questions":[{"question":"3^2?","answer":"9"}]}]}`},
		)
		a := tutor.NewAgents(tutor.AgentsConfig{Provider: m, QuestionsPerConcept: 5})

		e := a.Explain(context.Background(), weak)
		p := a.Practice(context.Background(), weak)

		require.Equal(t, []tutor.Explanation{{Concept: "exponents", Explanation: "Repeated multiplication.", Example: "2^3 = 8"}}, e.Items)
		require.Equal(t, []tutor.PracticeGroup{{
			Concept:   "exponents",
			Questions: []tutor.PracticeQuestion{{Question: "3^2?", Answer: "9"}},
		}}, p.Groups)
		require.Contains(t, m.Calls()[1].Messages[0].Content, "Write 5 practice questions")
	})

	t.Run("model failure leaves empty lists", func(t *testing.T) {
		a := tutor.NewAgents(tutor.AgentsConfig{})

		e := a.Explain(context.Background(), weak)
		p := a.Practice(context.Background(), weak)

		require.Equal(t, tutor.ErrNoModel.Error(), e.Error)
		require.Empty(t, e.Items)
		require.Equal(t, tutor.ErrNoModel.Error(), p.Error)
		require.Empty(t, p.Groups)
	})
}

func TestAgents_Summarize(t *testing.T) {
	status := []domain.ConceptStatus{
		{ConceptID: "algebra", MasteryScore: decimal.RequireFromString("0.8")},
		{ConceptID: "geometry", MasteryScore: decimal.RequireFromString("0.2")},
	}

	tests := map[string]struct {
		provider func() llm.Provider
		status   []domain.ConceptStatus
		want     tutor.Summary
	}{
		"nothing practiced": {
			provider: func() llm.Provider { return llm.NewMock() },
			want:     tutor.Summary{Report: "No concepts practiced yet."},
		},
		"model report": {
			provider: func() llm.Provider { return llm.NewMock(llm.MockReply{Text: "  Doing well.\n"}) },
			status:   status,
			want:     tutor.Summary{Report: "Doing well."},
		},
		"fallback without a model": {
			provider: func() llm.Provider { return nil },
			status:   status,
			want: tutor.Summary{
				Report: "Student is strongest in algebra (mastery 0.80) and needs help with geometry (mastery 0.20).",
				Error:  tutor.ErrNoModel.Error(),
			},
		},
		"fallback on model failure": {
			provider: func() llm.Provider { return llm.NewMock(llm.MockReply{Err: errors.New("down")}) },
			status:   status[:1],
			want: tutor.Summary{
				Report: "Student is working on algebra (mastery 0.80).",
				Error:  "down",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a := tutor.NewAgents(tutor.AgentsConfig{Provider: tt.provider()})
			require.Equal(t, tt.want, a.Summarize(context.Background(), "s1", tt.status))
		})
	}
}

func TestAgents_Chat(t *testing.T) {
	m := llm.NewMock(
		llm.MockReply{Text: `{"message":"Hi! I am TutorMate.","question":"What is 2+2?"}`},
		llm.MockReply{Text: `{"feedback":"Correct!","next_question":"What is 3*3?","is_correct":true,"concept":"arithmetic"}`},
	)
	a := tutor.NewAgents(tutor.AgentsConfig{Provider: m})

	o := a.ChatStart(context.Background(), tutor.ChatSettings{Subject: "Math", Difficulty: tutor.DifficultyBeginner})
	require.Equal(t, tutor.ChatOpening{Message: "Hi! I am TutorMate.", Question: "What is 2+2?"}, o)

	history := make([]tutor.ChatEntry, 0, 8)
	for i := range 8 {
		role := "user"
		if i%2 == 0 {
			role = "assistant"
		}
		history = append(history, tutor.ChatEntry{Role: role, Content: "turn"})
	}
	turn := a.ChatReply(context.Background(), tutor.ChatSettings{Difficulty: "unknown"}, history, "4")

	require.Equal(t, tutor.ChatTurn{
		Feedback:     "Correct!",
		NextQuestion: "What is 3*3?",
		IsCorrect:    true,
		Concept:      "arithmetic",
		Difficulty:   tutor.DifficultyIntermediate,
	}, turn)

	calls := m.Calls()
	require.Len(t, calls, 2)
	require.Contains(t, calls[0].System, "You are TutorMate")
	require.Contains(t, calls[0].System, "Ask simple, foundational questions.")
	require.Contains(t, calls[1].System, "Ask conceptual questions.")
	require.Contains(t, calls[1].System, tutor.DefaultGradeLevel)
	require.Len(t, calls[1].Messages, 6, "last 5 history entries plus the answer")
	require.Equal(t, llm.RoleUser, calls[1].Messages[0].Role)
	require.Contains(t, calls[1].Messages[5].Content, "The student answered: 4")
}
