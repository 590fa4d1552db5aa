package match

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reactionduel/internal/duel"
)

// FinishedMatch is handed to the Recorder once per match.
type FinishedMatch struct {
	MatchID    uuid.UUID
	Room       string
	Result     duel.MatchResult
	Players    []duel.PlayerView
	Log        []duel.RoundEntry
	StartedAt  time.Time
	FinishedAt time.Time
}

// ReactionRecord describes one credited turn.
type ReactionRecord struct {
	MatchID   uuid.UUID
	Room      string
	Entry     duel.RoundEntry
	CueDelay  time.Duration
	ShownAt   time.Time
	ClickedAt time.Time
	TimedOut  bool
}

// Recorder persists match output. MatchFinished runs on its own goroutine
// under a timeout; ReactionRecorded is called from the controller loop and
// must not block.
type Recorder interface {
	MatchFinished(ctx context.Context, m FinishedMatch) error
	ReactionRecorded(r ReactionRecord)
}
