// Package duel holds the two-player reaction duel state machine and its
// outcome rules.
//
// A Session has a single writer: every method mutates or reads unguarded
// state, and the owner (match.Controller) serializes all calls through one
// loop. Timers scheduled against a Session must carry the Epoch they were
// scheduled in and be dropped once it changes.
package duel

import (
	"fmt"
	"strings"
	"time"

	"reactionduel/internal/cues"
	"reactionduel/internal/players"
)

const DefaultTotalRounds = 5

type Session struct {
	totalRounds int
	roster      *players.Roster
	phase       Phase
	round       int
	active      int // slot index of the player whose turn it is
	log         []RoundEntry
	cue         cues.Cue
	epoch       uint64
}

func NewSession(totalRounds int) *Session {
	if totalRounds < 1 {
		totalRounds = DefaultTotalRounds
	}
	return &Session{
		totalRounds: totalRounds,
		roster:      players.NewRoster(),
		phase:       PhaseWaiting,
	}
}

// Attempt describes a freshly scheduled turn attempt.
type Attempt struct {
	Round       int
	TotalRounds int
	Active      *players.Player
	Delay       time.Duration
}

// Reaction is the result of a credited reaction. Next is set only while the
// round continues; Outcome only once it is complete.
type Reaction struct {
	Player        *players.Player
	Entry         RoundEntry
	RoundComplete bool
	Outcome       RoundOutcome
	Next          *players.Player
}

// Join seats a player in the next free slot.
func (s *Session) Join(id, name string) (*players.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrMalformedIntent)
	}
	if s.roster.Full() {
		return nil, ErrCapacity
	}
	if s.phase != PhaseWaiting {
		return nil, fmt.Errorf("%w: cannot join while %s", ErrIllegalState, s.phase)
	}
	for _, seated := range s.roster.GetList() {
		if strings.EqualFold(seated.Name, name) {
			return nil, fmt.Errorf("%w: name %q is taken", ErrIllegalState, name)
		}
	}

	p := s.roster.Add(id, name)
	if s.roster.Full() {
		s.phase = PhaseReady
	}
	return p, nil
}

// Leave removes a disconnected player. Outside waiting/ready it resets the
// whole session, since a match cannot continue with one player.
func (s *Session) Leave(id string) (removed, reset bool) {
	if s.roster.Get(id) == nil {
		return false, false
	}
	if s.phase == PhaseWaiting || s.phase == PhaseReady {
		s.roster.Remove(id)
		s.roster.Compact()
		s.phase = PhaseWaiting
		return true, false
	}
	s.Reset()
	return true, true
}

func (s *Session) StartMatch() error {
	if s.phase != PhaseReady || !s.roster.Full() {
		return fmt.Errorf("%w: cannot start while %s with %d players", ErrIllegalState, s.phase, s.roster.Count())
	}
	s.roster.ResetAll()
	s.round = 1
	s.active = 0
	s.log = nil
	s.cue = cues.Cue{}
	s.phase = PhasePlaying
	return nil
}

// BeginAttempt moves from the inter-attempt pause to round-pending with a
// hidden cue that will show after delay.
func (s *Session) BeginAttempt(delay time.Duration) (Attempt, error) {
	if s.phase != PhasePlaying {
		return Attempt{}, fmt.Errorf("%w: cannot begin attempt while %s", ErrIllegalState, s.phase)
	}
	s.cue = cues.Cue{Delay: delay}
	s.phase = PhaseRoundPending
	return Attempt{
		Round:       s.round,
		TotalRounds: s.totalRounds,
		Active:      s.roster.At(s.active),
		Delay:       delay,
	}, nil
}

func (s *Session) ShowCue(at time.Time) error {
	if s.phase != PhaseRoundPending {
		return fmt.Errorf("%w: cannot show cue while %s", ErrIllegalState, s.phase)
	}
	s.cue.Show(at)
	s.phase = PhaseCueVisible
	return nil
}

// RegisterReaction validates a click and, when it qualifies, credits the
// wall-clock delta since the cue was shown. A premature click ends the
// attempt without crediting anyone; the owner must reschedule it.
func (s *Session) RegisterReaction(playerID string, at time.Time) (Reaction, error) {
	if !s.phase.InMatch() {
		return Reaction{}, fmt.Errorf("%w: no turn in progress while %s", ErrIllegalState, s.phase)
	}
	if active := s.roster.At(s.active); active == nil || active.ID != playerID {
		return Reaction{}, ErrWrongTurn
	}

	switch s.phase {
	case PhaseRoundPending:
		s.cue = cues.Cue{}
		s.phase = PhasePlaying
		return Reaction{}, ErrPrematureClick
	case PhaseCueVisible:
		return s.credit(s.cue.ReactionTime(at)), nil
	}
	return Reaction{}, fmt.Errorf("%w: cue not scheduled", ErrIllegalState)
}

// ExpireReaction credits the active player with limit when the cue has been
// visible that long without a click.
func (s *Session) ExpireReaction(limit time.Duration) (Reaction, error) {
	if s.phase != PhaseCueVisible {
		return Reaction{}, fmt.Errorf("%w: no visible cue to expire", ErrIllegalState)
	}
	return s.credit(limit), nil
}

func (s *Session) credit(d time.Duration) Reaction {
	p := s.roster.At(s.active)
	p.Record(d)

	entry := RoundEntry{
		Round:        s.round,
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		PlayerNumber: p.Number,
		ReactionTime: d,
		ReactionMs:   d.Milliseconds(),
	}
	s.log = append(s.log, entry)
	s.cue = cues.Cue{}
	s.phase = PhasePlaying

	r := Reaction{Player: p, Entry: entry}
	if out, ok := RoundResult(s.log, s.round); ok {
		r.RoundComplete = true
		r.Outcome = out
		return r
	}
	s.active = (s.active + 1) % players.Slots
	r.Next = s.roster.At(s.active)
	return r
}

// AdvanceRound runs after a completed round. It either finishes the match,
// bumping the epoch, or moves to the next round whose starter alternates.
func (s *Session) AdvanceRound() (finished bool, err error) {
	if s.phase != PhasePlaying || len(entriesFor(s.log, s.round)) != 2 {
		return false, fmt.Errorf("%w: round %d is not complete", ErrIllegalState, s.round)
	}
	if s.round >= s.totalRounds {
		s.phase = PhaseFinished
		s.epoch++
		return true, nil
	}
	s.round++
	s.active = (s.round - 1) % players.Slots
	return false, nil
}

// Result settles a finished match.
func (s *Session) Result() (MatchResult, error) {
	if s.phase != PhaseFinished || !s.roster.Full() {
		return MatchResult{}, fmt.Errorf("%w: match is not finished", ErrIllegalState)
	}
	return SettleMatch(s.roster.At(0), s.roster.At(1)), nil
}

// Rematch keeps both seats after a finished match and makes it startable again.
func (s *Session) Rematch() error {
	if s.phase != PhaseFinished || !s.roster.Full() {
		return fmt.Errorf("%w: rematch needs a finished match with both players", ErrIllegalState)
	}
	s.roster.ResetAll()
	s.round = 0
	s.active = 0
	s.log = nil
	s.cue = cues.Cue{}
	s.phase = PhaseReady
	return nil
}

// Reset discards everything and returns to waiting. It is idempotent apart
// from the epoch, which always moves so in-flight timers go stale.
func (s *Session) Reset() {
	s.roster.Clear()
	s.phase = PhaseWaiting
	s.round = 0
	s.active = 0
	s.log = nil
	s.cue = cues.Cue{}
	s.epoch++
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Round() int { return s.round }

func (s *Session) TotalRounds() int { return s.totalRounds }

func (s *Session) Epoch() uint64 { return s.epoch }

func (s *Session) PlayerCount() int { return s.roster.Count() }

func (s *Session) HasPlayer(id string) bool { return s.roster.Get(id) != nil }

// ActivePlayer is nil unless a match is in progress.
func (s *Session) ActivePlayer() *players.Player {
	if !s.phase.InMatch() {
		return nil
	}
	return s.roster.At(s.active)
}

// Log returns a copy of the result log.
func (s *Session) Log() []RoundEntry {
	out := make([]RoundEntry, len(s.log))
	copy(out, s.log)
	return out
}
