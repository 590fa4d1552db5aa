package duel

import "fmt"

// Phase is the session's position in the round/turn state machine.
type Phase int

const (
	PhaseWaiting      Phase = iota // fewer than two players
	PhaseReady                     // two players, match not started
	PhasePlaying                   // match running, between attempts
	PhaseRoundPending              // attempt scheduled, cue hidden
	PhaseCueVisible                // cue shown, waiting for the active player
	PhaseFinished                  // all rounds complete
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseRoundPending:
		return "round_pending"
	case PhaseCueVisible:
		return "cue_visible"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// InMatch reports whether a match is underway and turns are being taken.
func (p Phase) InMatch() bool {
	switch p {
	case PhasePlaying, PhaseRoundPending, PhaseCueVisible:
		return true
	}
	return false
}

func (p *Phase) UnmarshalText(text []byte) error {
	for q := PhaseWaiting; q <= PhaseFinished; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
