package api

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/mastery"
	"github.com/victornm/tutormate/internal/planner"
)

type (
	MasteryResponse struct {
		StudentID string          `json:"student_id"`
		Concepts  []ConceptStatus `json:"concepts"`
	}

	ConceptStatus struct {
		ConceptID     string      `json:"concept_id"`
		MasteryScore  json.Number `json:"mastery_score"`
		LastPracticed time.Time   `json:"last_practiced"`
	}

	MasteryChange struct {
		Timestamp  time.Time   `json:"timestamp"`
		ScoreDelta json.Number `json:"score_delta"`
		Mistake    *string     `json:"mistake"`
	}

	SummaryResponse struct {
		Status []ConceptStatus `json:"status"`
		Report string          `json:"report"`
		Error  string          `json:"error,omitempty"`
	}

	ApplyMasteryRequest struct {
		ConceptID string `json:"concept_id"`
		Correct   bool   `json:"correct"`
		Mistake   string `json:"mistake"`
	}

	ConceptMastery struct {
		ConceptStatus
		LastMistake *string         `json:"last_mistake"`
		History     []MasteryChange `json:"history"`
	}
)

func (a *API) getMastery(c *gin.Context) {
	id := c.Param("id")
	st, err := a.ms.Status(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, MasteryResponse{StudentID: id, Concepts: toConceptStatus(st)})
}

func (a *API) applyMastery(c *gin.Context) {
	var req ApplyMasteryRequest
	if !bind(c, &req) {
		return
	}

	m, err := a.ms.Apply(c.Request.Context(), mastery.ApplyRequest{
		StudentID: c.Param("id"),
		ConceptID: req.ConceptID,
		Correct:   req.Correct,
		Mistake:   req.Mistake,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	history := make([]MasteryChange, 0, len(m.History))
	for _, h := range m.History {
		history = append(history, MasteryChange{
			Timestamp:  h.Timestamp,
			ScoreDelta: number(h.Delta),
			Mistake:    h.Mistake,
		})
	}

	respond(c, ConceptMastery{
		ConceptStatus: ConceptStatus{
			ConceptID:     m.ConceptID,
			MasteryScore:  number(m.Score),
			LastPracticed: m.LastPracticed,
		},
		LastMistake: m.LastMistake,
		History:     history,
	})
}

func (a *API) nextSession(c *gin.Context) {
	st, err := a.ms.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, planner.Plan(st, a.now()))
}

func (a *API) summary(c *gin.Context) {
	s, err := a.ts.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	respond(c, SummaryResponse{
		Status: toConceptStatus(s.Status),
		Report: s.Report,
		Error:  s.Error,
	})
}

func toConceptStatus(st []domain.ConceptStatus) []ConceptStatus {
	out := make([]ConceptStatus, 0, len(st))
	for _, s := range st {
		out = append(out, ConceptStatus{
			ConceptID:     s.ConceptID,
			MasteryScore:  number(s.MasteryScore),
			LastPracticed: s.LastPracticed,
		})
	}
	return out
}
