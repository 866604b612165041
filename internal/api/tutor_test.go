package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/victornm/tutormate/internal/api"
	"github.com/victornm/tutormate/internal/llm"
	"github.com/victornm/tutormate/internal/planner"
	"github.com/victornm/tutormate/internal/tutor"
)

func TestAPI_Students(t *testing.T) {
	h := makeAPI(t)

	for _, req := range []api.ApplyMasteryRequest{
		{ConceptID: "fractions", Correct: true},
		{ConceptID: "fractions", Correct: true},
		{ConceptID: "geometry", Correct: false, Mistake: "mixed up radius and diameter"},
		{ConceptID: "algebra", Correct: true},
	} {
		w := h.do(t, http.MethodPost, "/v1/students/s1/mastery", req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := h.do(t, http.MethodPost, "/v1/students/s9/mastery", api.ApplyMasteryRequest{ConceptID: "geometry", Correct: false})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"mastery_score":0,`, "scores are JSON numbers")
	require.Contains(t, w.Body.String(), `"score_delta":-0.05,`)

	w = h.do(t, http.MethodPost, "/v1/students/s1/mastery", api.ApplyMasteryRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code, "concept is required")

	got := decode[api.MasteryResponse](t, h.do(t, http.MethodGet, "/v1/students/s1/mastery", nil))
	require.Equal(t, "s1", got.StudentID)
	require.Len(t, got.Concepts, 3)

	next := decode[planner.NextSession](t, h.do(t, http.MethodGet, "/v1/students/s1/next-session", nil))
	require.Equal(t, []string{"geometry", "algebra", "fractions"}, next.Focus)
	require.True(t, next.SuggestedAt.Equal(start.AddDate(0, 0, 1)))

	sum := decode[api.SummaryResponse](t, h.do(t, http.MethodGet, "/v1/students/s1/summary", nil))
	require.Len(t, sum.Status, 3)
	require.Equal(t, "Student is strongest in fractions (mastery 0.20) and needs help with geometry (mastery 0.00).", sum.Report)
	require.NotEmpty(t, sum.Error)

	empty := decode[api.MasteryResponse](t, h.do(t, http.MethodGet, "/v1/students/nobody/mastery", nil))
	require.Empty(t, empty.Concepts)
	require.NotNil(t, empty.Concepts)
}

func TestAPI_TutorSession(t *testing.T) {
	h := makeAPI(t,
		llm.MockReply{Text: `{"weak_concepts":[{"concept":"exponents","reason":"multiplied"}],"summary":"Powers."}`},
		llm.MockReply{Text: `{"explanations":[{"concept":"exponents","explanation":"Repeated multiplication."}]}`},
		llm.MockReply{Text: `{"practice_set":[{"concept":"exponents","questions":[{"question":"2^5?","answer":"32"}]}]}`},
	)

	ss := decode[tutor.Session](t, h.do(t, http.MethodPost, "/v1/tutor/sessions", api.CreateSessionRequest{StudentID: "s1"}))
	require.NotEmpty(t, ss.ID)
	base := "/v1/tutor/sessions/" + ss.ID

	w := h.do(t, http.MethodPost, base+"/diagnose", nil)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = h.do(t, http.MethodPost, base+"/quiz", tutor.Quiz{
		QuizID: "q1",
		Questions: []tutor.QuizQuestion{
			{ID: "1", Text: "2^3", CorrectAnswer: "8", Concepts: []string{"exponents"}},
			{ID: "2", Text: "1/2 of 10", CorrectAnswer: "5", Concepts: []string{"fractions"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodPost, base+"/responses", tutor.Responses{
		Responses: []tutor.QuestionAnswer{{QuestionID: "1", Answer: "6"}, {QuestionID: "2", Answer: "5.0"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	n := decode[tutor.NormalizedQuiz](t, w)
	require.Equal(t, "s1", n.StudentID)
	require.Len(t, n.Questions, 2)

	d := decode[tutor.Diagnosis](t, h.do(t, http.MethodPost, base+"/diagnose", nil))
	require.Equal(t, []tutor.WeakConcept{{Concept: "exponents", Reason: "multiplied"}}, d.WeakConcepts)

	e := decode[tutor.Explanations](t, h.do(t, http.MethodGet, base+"/explanations", nil))
	require.Len(t, e.Items, 1)

	w = h.do(t, http.MethodPost, base+"/practice/submit", api.SubmitPracticeRequest{})
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	p := decode[tutor.PracticeSet](t, h.do(t, http.MethodGet, base+"/practice", nil))
	require.Len(t, p.Groups, 1)

	r := decode[tutor.GradeReport](t, h.do(t, http.MethodPost, base+"/practice/submit", api.SubmitPracticeRequest{
		Answers: map[string]string{"2^5?": "2^5"},
	}))
	require.Equal(t, 1, r.Score)
	require.Equal(t, 1, r.Total)

	m := decode[api.MasteryResponse](t, h.do(t, http.MethodGet, "/v1/students/s1/mastery", nil))
	require.Len(t, m.Concepts, 1)
	require.Equal(t, "0.1", m.Concepts[0].MasteryScore.String())

	got := decode[tutor.Session](t, h.do(t, http.MethodGet, base, nil))
	require.Equal(t, &r, got.Grade)

	w = h.do(t, http.MethodGet, "/v1/tutor/sessions/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 5, decode[errorBody](t, w).Code)
}

func TestAPI_Chat(t *testing.T) {
	h := makeAPI(t,
		llm.MockReply{Text: `{"message":"Hello!","question":"What is 7*6?"}`},
		llm.MockReply{Text: `{"feedback":"Great.","next_question":"What is 8*7?","is_correct":true,"concept":"multiplication","difficulty":"advanced"}`},
	)

	o := decode[tutor.ChatOpening](t, h.do(t, http.MethodPost, "/v1/chat/start", map[string]string{"subject": "Math", "difficulty": "advanced"}))
	require.Equal(t, tutor.ChatOpening{Message: "Hello!", Question: "What is 7*6?"}, o)
	require.Contains(t, h.llm.Calls()[0].System, "Ask challenging, advanced questions.")

	turn := decode[tutor.ChatTurn](t, h.do(t, http.MethodPost, "/v1/chat/message", api.ChatMessageRequest{
		StudentID: "s2",
		History:   []tutor.ChatEntry{{Role: "assistant", Content: "What is 7*6?"}},
		Message:   "42",
	}))
	require.True(t, turn.IsCorrect)
	require.Equal(t, "advanced", turn.Difficulty)

	m := decode[api.MasteryResponse](t, h.do(t, http.MethodGet, "/v1/students/s2/mastery", nil))
	require.Len(t, m.Concepts, 1)
	require.Equal(t, "multiplication", m.Concepts[0].ConceptID)

	w := h.do(t, http.MethodPost, "/v1/chat/message", api.ChatMessageRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	turn = decode[tutor.ChatTurn](t, h.do(t, http.MethodPost, "/v1/chat/message", api.ChatMessageRequest{Message: "hi"}))
	require.NotEmpty(t, turn.Error, "model failures are reported in the body")
}

func TestAPI_Health(t *testing.T) {
	tests := map[string]struct {
		checks map[string]api.Checker
		code   int
		body   map[string]map[string]string
	}{
		"all healthy": {
			checks: map[string]api.Checker{
				"sql":   api.CheckFunc(func(context.Context) error { return nil }),
				"redis": api.CheckFunc(func(context.Context) error { return nil }),
			},
			code: http.StatusOK,
			body: map[string]map[string]string{"sql": {"status": "ok"}, "redis": {"status": "ok"}},
		},
		"redis down": {
			checks: map[string]api.Checker{
				"sql":   api.CheckFunc(func(context.Context) error { return nil }),
				"redis": api.CheckFunc(func(context.Context) error { return errors.New("refused") }),
			},
			code: http.StatusServiceUnavailable,
			body: map[string]map[string]string{"sql": {"status": "ok"}, "redis": {"status": "error"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := makeAPI(t)
			for k, v := range tt.checks {
				h.checks[k] = v
			}

			w := h.do(t, http.MethodGet, "/healthz", nil)
			require.Equal(t, tt.code, w.Code)
			require.Equal(t, tt.body, decode[map[string]map[string]string](t, w))
		})
	}
}
