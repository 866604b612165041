package domain

const (
	EventNameGameCompleted      = "game.completed"
	EventNameMasteryUpdated     = "mastery.updated"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

type EventGameCompleted struct {
	Attempt Attempt
	Reward  Reward
}

func (EventGameCompleted) Name() string { return EventNameGameCompleted }

type EventMasteryUpdated struct {
	Mastery ConceptMastery
	Correct bool
}

func (EventMasteryUpdated) Name() string { return EventNameMasteryUpdated }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
