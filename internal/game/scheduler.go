package game

import (
	"time"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/window"
)

// Round is the game active in one window.
type Round struct {
	Game      domain.GameDefinition
	WindowID  int64
	Remaining time.Duration
}

// Scheduler resolves wall-clock time to the active game. It holds no state
// beyond the catalog; the same window always yields the same game.
type Scheduler struct {
	catalog *Catalog
	window  time.Duration
}

func NewScheduler(c *Catalog, windowDuration time.Duration) *Scheduler {
	if windowDuration <= 0 {
		windowDuration = window.DefaultDuration
	}
	return &Scheduler{catalog: c, window: windowDuration}
}

// Current returns the round active at now.
func (s *Scheduler) Current(now time.Time) Round {
	w := window.Of(now, s.window)
	return Round{
		Game:      s.catalog.At(w.ID),
		WindowID:  w.ID,
		Remaining: w.Remaining,
	}
}

// At returns the game served in windowID.
func (s *Scheduler) At(windowID int64) domain.GameDefinition {
	return s.catalog.At(windowID)
}

// Validate grades an answer for the given window.
func (s *Scheduler) Validate(windowID int64, a Answer) Result {
	return Validate(s.catalog, windowID, a)
}

func (s *Scheduler) Catalog() *Catalog {
	return s.catalog
}

func (s *Scheduler) WindowDuration() time.Duration {
	return s.window
}
