package duel

import "errors"

var (
	ErrCapacity        = errors.New("game is full")
	ErrIllegalState    = errors.New("invalid game state")
	ErrWrongTurn       = errors.New("not your turn")
	ErrPrematureClick  = errors.New("too early, wait for the cue")
	ErrMalformedIntent = errors.New("invalid message format")
	ErrPersistence     = errors.New("result store failure")
)

// Code maps an error to its wire code. Unknown errors map to illegal_state.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrCapacity):
		return "capacity"
	case errors.Is(err, ErrWrongTurn):
		return "wrong_turn"
	case errors.Is(err, ErrPrematureClick):
		return "premature_click"
	case errors.Is(err, ErrMalformedIntent):
		return "malformed_intent"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	}
	return "illegal_state"
}
