package analytics

import "time"

// PlayerMatchStats summarizes one player's side of a finished match.
type PlayerMatchStats struct {
	PlayerName   string
	Rounds       int
	RoundsWon    int
	AvgReaction  float64
	BestReaction int64
	Spread       int64 // slowest minus fastest reaction
	Won          bool
}

type PlayerLifetimeStats struct {
	PlayerName    string    `json:"name"`
	PlayerColor   string    `json:"color"`
	MatchesPlayed int       `json:"matchesPlayed"`
	Wins          int       `json:"wins"`
	Ties          int       `json:"ties"`
	BestAverage   int64     `json:"bestAverage"`
	BestReaction  int64     `json:"bestReaction"`
	WinStreak     int       `json:"winStreak"`
	Badges        []Badge   `json:"badges"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
}

type LeaderboardEntry struct {
	PlayerName  string `json:"name"`
	PlayerColor string `json:"color"`
	Value       int64  `json:"value"`
	Rank        int    `json:"rank"`
}
