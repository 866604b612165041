package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameKind enumerates the game formats in the rotation.
type GameKind string

const (
	GameKindMCQSet          GameKind = "MCQ_SET"
	GameKindLogicPuzzle     GameKind = "LOGIC_PUZZLE"
	GameKindShapeCount      GameKind = "SHAPE_COUNT"
	GameKindWordScramble    GameKind = "WORD_SCRAMBLE"
	GameKindSentenceBuilder GameKind = "SENTENCE_BUILDER"
)

// GameDefinition is a single entry of the game catalog. Definitions are
// built once at startup and never mutated.
type GameDefinition struct {
	ID       string        `json:"id"`
	Kind     GameKind      `json:"type"`
	Question string        `json:"question,omitempty"`
	Options  []string      `json:"options,omitempty"`
	Image    string        `json:"image,omitempty"`
	Input    string        `json:"input_type,omitempty"`
	Letters  string        `json:"scrambled,omitempty"`
	Words    []string      `json:"words,omitempty"`
	Items    []MCQQuestion `json:"questions,omitempty"`

	// Answer is the accepted answer for single-answer kinds. It is never
	// serialized to clients.
	Answer string `json:"-"`
}

// MCQQuestion is one sub-question of a multiple-choice set.
type MCQQuestion struct {
	Text    string   `json:"q"`
	Options []string `json:"options"`
	Correct string   `json:"-"`
}

// Reward is a coarse banding of a game score.
type Reward string

const (
	RewardNone   Reward = "None"
	RewardBronze Reward = "Bronze"
	RewardSilver Reward = "Silver"
	RewardGold   Reward = "Gold"
)

// Attempt is a scored game submission. At most one exists per (UserID, WindowID).
type Attempt struct {
	ID          int64
	UserID      int64
	WindowID    int64
	Score       decimal.Decimal
	CompletedAt time.Time
}

// ConceptMastery is the tracked proficiency of one student in one concept.
type ConceptMastery struct {
	StudentID     string
	ConceptID     string
	Score         decimal.Decimal
	LastPracticed time.Time
	LastMistake   *string
	History       []MasteryChange
}

// MasteryChange is one append-only history entry. Delta is the raw, unclamped change.
type MasteryChange struct {
	Timestamp time.Time       `json:"timestamp"`
	Delta     decimal.Decimal `json:"score_delta"`
	Mistake   *string         `json:"mistake"`
}

// ConceptStatus is the summary view of a ConceptMastery.
type ConceptStatus struct {
	ConceptID     string
	MasteryScore  decimal.Decimal
	LastPracticed time.Time
}

// Leaderboard represents the users and their accumulated game scores for one day.
// The list is sorted by score in descending order.
type Leaderboard struct {
	Day     string
	Entries []LeaderboardEntry
}

type LeaderboardEntry struct {
	UserID int64
	Score  float64
}
