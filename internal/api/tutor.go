package api

import (
	"github.com/gin-gonic/gin"

	"github.com/victornm/tutormate/internal/tutor"
)

type (
	CreateSessionRequest struct {
		StudentID string `json:"student_id"`
	}

	SubmitPracticeRequest struct {
		// Answers are keyed by question text.
		Answers map[string]string `json:"answers"`
	}

	ChatStartRequest struct {
		tutor.ChatSettings
	}

	ChatMessageRequest struct {
		tutor.ChatSettings
		StudentID string            `json:"student_id"`
		History   []tutor.ChatEntry `json:"history"`
		Message   string            `json:"message"`
	}
)

func (a *API) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}

	ss, err := a.ts.CreateSession(c.Request.Context(), req.StudentID)
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, ss)
}

func (a *API) getSession(c *gin.Context) {
	ss, err := a.ts.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, ss)
}

func (a *API) setQuiz(c *gin.Context) {
	var q tutor.Quiz
	if !bind(c, &q) {
		return
	}

	ss, err := a.ts.SetQuiz(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, ss)
}

func (a *API) setResponses(c *gin.Context) {
	var r tutor.Responses
	if !bind(c, &r) {
		return
	}

	ss, err := a.ts.SetResponses(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, ss.Normalized)
}

func (a *API) diagnose(c *gin.Context) {
	d, err := a.ts.Diagnose(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, d)
}

func (a *API) explanations(c *gin.Context) {
	e, err := a.ts.Explanations(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, e)
}

func (a *API) practice(c *gin.Context) {
	p, err := a.ts.Practice(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, p)
}

func (a *API) study(c *gin.Context) {
	p, err := a.ts.Study(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, p)
}

func (a *API) submitPractice(c *gin.Context) {
	var req SubmitPracticeRequest
	if !bind(c, &req) {
		return
	}

	r, err := a.ts.SubmitPractice(c.Request.Context(), c.Param("id"), req.Answers)
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, r)
}

func (a *API) chatStart(c *gin.Context) {
	var req ChatStartRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	respond(c, a.ts.ChatStart(c.Request.Context(), req.ChatSettings))
}

func (a *API) chatMessage(c *gin.Context) {
	var req ChatMessageRequest
	if !bind(c, &req) {
		return
	}

	t, err := a.ts.ChatMessage(c.Request.Context(), tutor.ChatMessageRequest{
		StudentID: req.StudentID,
		Settings:  req.ChatSettings,
		History:   req.History,
		Message:   req.Message,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, t)
}
