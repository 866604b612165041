package tutor

import (
	"github.com/victornm/tutormate/internal/mastery"
	"github.com/victornm/tutormate/internal/mathcheck"
)

// Grade checks answers, keyed by question text, against a practice set.
// Unanswered questions count as wrong.
func Grade(set PracticeSet, answers map[string]string) GradeReport {
	r := GradeReport{Details: []GradeDetail{}}

	for _, g := range set.Groups {
		for _, q := range g.Questions {
			given := answers[q.Question]
			ok := given != "" && mathcheck.Equal(given, q.Answer)

			r.Total++
			if ok {
				r.Score++
			}
			r.Details = append(r.Details, GradeDetail{
				Question:      q.Question,
				StudentAnswer: given,
				CorrectAnswer: q.Answer,
				IsCorrect:     ok,
				Concept:       g.Concept,
			})
		}
	}

	return r
}

// Outcomes converts graded details into mastery updates.
func (r GradeReport) Outcomes() []mastery.Outcome {
	out := make([]mastery.Outcome, 0, len(r.Details))
	for _, d := range r.Details {
		if d.Concept == "" {
			continue
		}
		out = append(out, mastery.Outcome{
			ConceptID: d.Concept,
			Question:  d.Question,
			Correct:   d.IsCorrect,
		})
	}
	return out
}
