// Package planner suggests what a student should practice next.
package planner

import (
	"cmp"
	"slices"
	"time"

	"github.com/victornm/tutormate/internal/domain"
)

const (
	focusSize = 3
	nextGap   = 24 * time.Hour
)

type NextSession struct {
	Focus       []string  `json:"next_session_focus"`
	SuggestedAt time.Time `json:"suggested_time"`
}

// Plan picks the three weakest concepts, lowest mastery first, and suggests
// practicing them a day from now.
func Plan(status []domain.ConceptStatus, now time.Time) NextSession {
	sorted := slices.Clone(status)
	slices.SortStableFunc(sorted, func(a, b domain.ConceptStatus) int {
		if c := a.MasteryScore.Cmp(b.MasteryScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ConceptID, b.ConceptID)
	})

	focus := make([]string, 0, focusSize)
	for _, s := range sorted[:min(focusSize, len(sorted))] {
		focus = append(focus, s.ConceptID)
	}

	return NextSession{
		Focus:       focus,
		SuggestedAt: now.Add(nextGap),
	}
}
