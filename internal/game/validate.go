package game

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/victornm/tutormate/internal/domain"
)

const mcqAnswerDisplay = "All correct answers required."

var (
	hundred         = decimal.NewFromInt(100)
	silverThreshold = decimal.NewFromInt(66)
	bronzeThreshold = decimal.NewFromInt(33)
)

// Result is the outcome of grading one submission.
type Result struct {
	GameID        string
	Correct       bool
	Score         decimal.Decimal
	Reward        domain.Reward
	CorrectAnswer string
}

// Validate grades an answer for the game served in windowID. The game is
// re-derived from the window id; nothing is read from or written to storage.
func Validate(c *Catalog, windowID int64, a Answer) Result {
	return Grade(c.At(windowID), a)
}

// Grade grades an answer against a single definition.
func Grade(g domain.GameDefinition, a Answer) Result {
	r := Result{GameID: g.ID, Score: decimal.Zero}

	switch g.Kind {
	case domain.GameKindMCQSet:
		choices := a.choices()
		correct := 0
		for i, q := range g.Items {
			if c, ok := choices[strconv.Itoa(i)]; ok && c == q.Correct {
				correct++
			}
		}
		// Tiers use the exact ratio; the score is rounded for display only.
		exact := decimal.NewFromInt(int64(correct)).Mul(hundred).
			Div(decimal.NewFromInt(int64(len(g.Items))))
		r.Score = exact.Round(2)
		r.Correct = correct == len(g.Items)
		r.Reward = RewardFor(exact)
		r.CorrectAnswer = mcqAnswerDisplay

	case domain.GameKindLogicPuzzle, domain.GameKindSentenceBuilder:
		s, ok := a.text(false)
		r.Correct = ok && strings.TrimSpace(s) == g.Answer
		r.CorrectAnswer = g.Answer

	case domain.GameKindShapeCount:
		s, ok := a.text(true)
		r.Correct = ok && strings.TrimSpace(s) == g.Answer
		r.CorrectAnswer = g.Answer

	case domain.GameKindWordScramble:
		s, ok := a.text(false)
		r.Correct = ok && strings.EqualFold(strings.TrimSpace(s), g.Answer)
		r.CorrectAnswer = g.Answer
	}

	if g.Kind != domain.GameKindMCQSet {
		if r.Correct {
			r.Score = hundred
		}
		r.Reward = RewardFor(r.Score)
	}

	return r
}

// RewardFor maps a 0..100 score onto a reward tier. Thresholds are inclusive.
func RewardFor(score decimal.Decimal) domain.Reward {
	switch {
	case score.GreaterThanOrEqual(hundred):
		return domain.RewardGold
	case score.GreaterThanOrEqual(silverThreshold):
		return domain.RewardSilver
	case score.GreaterThanOrEqual(bronzeThreshold):
		return domain.RewardBronze
	default:
		return domain.RewardNone
	}
}
