package match

import (
	"time"

	"reactionduel/internal/config"
	"reactionduel/internal/cues"
	"reactionduel/internal/duel"
)

// Config holds the pacing of a match.
type Config struct {
	TotalRounds     int
	CueDelay        cues.Window
	FirstRoundPause time.Duration // before the very first attempt
	TurnPause       time.Duration // after the first reaction of a round
	RoundPause      time.Duration // after a completed round
	PenaltyPause    time.Duration // after a premature click
	ReactionTimeout time.Duration // 0 waits forever for the active player
	PersistTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		TotalRounds:     duel.DefaultTotalRounds,
		CueDelay:        cues.DefaultWindow(),
		FirstRoundPause: 1000 * time.Millisecond,
		TurnPause:       1500 * time.Millisecond,
		RoundPause:      3000 * time.Millisecond,
		PenaltyPause:    2000 * time.Millisecond,
		PersistTimeout:  5 * time.Second,
	}
}

// FromAppConfig copies the match pacing out of the process configuration.
func FromAppConfig(c config.Config) Config {
	return Config{
		TotalRounds:     c.TotalRounds,
		CueDelay:        cues.Window{Min: c.CueDelayMin, Max: c.CueDelayMax},
		FirstRoundPause: c.FirstRoundPause,
		TurnPause:       c.TurnPause,
		RoundPause:      c.RoundPause,
		PenaltyPause:    c.PenaltyPause,
		ReactionTimeout: c.ReactionTimeout,
		PersistTimeout:  c.PersistTimeout,
	}
}
