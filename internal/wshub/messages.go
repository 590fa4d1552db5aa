package wshub

import "reactionduel/internal/duel"

// Outbound message types.
const (
	TypeJoined        = "joined"
	TypePlayerJoined  = "player_joined"
	TypeReadyToStart  = "ready_to_start"
	TypeGameStarted   = "game_started"
	TypeRoundStarting = "round_starting"
	TypeButtonAppear  = "button_appear"
	TypeWrongPlayer   = "wrong_player"
	TypeTooEarly      = "too_early"
	TypePlayerClicked = "player_clicked"
	TypeRoundResult   = "round_result"
	TypeGameOver      = "game_over"
	TypeGameReset     = "game_reset"
	TypeStateUpdate   = "state_update"
	TypePlayerLeft    = "player_left"
	TypeError         = "error"
)

// ServerMessage is the JSON structure sent to clients. Only the fields that
// belong to Type are set.
type ServerMessage struct {
	Type         string     `json:"type"`
	PlayerID     string     `json:"playerId,omitempty"`
	PlayerNumber int        `json:"playerNumber,omitempty"`
	Message      string     `json:"message,omitempty"`
	Code         string     `json:"code,omitempty"`
	State        *duel.View `json:"state,omitempty"`
	Round        int        `json:"round,omitempty"`
	TotalRounds  int        `json:"totalRounds,omitempty"`

	ActivePlayerID   string `json:"activePlayerId,omitempty"`
	ActivePlayerName string `json:"activePlayerName,omitempty"`

	ReactionTime    *int64            `json:"reactionTime,omitempty"`
	RoundComplete   bool              `json:"roundComplete,omitempty"`
	RoundWinner     string            `json:"roundWinner,omitempty"`
	RoundWinnerTime *int64            `json:"roundWinnerTime,omitempty"`
	RoundTie        bool              `json:"roundTie,omitempty"`
	RoundData       []duel.RoundEntry `json:"roundData,omitempty"`
	NextPlayerID    string            `json:"nextPlayerId,omitempty"`
	NextPlayerName  string            `json:"nextPlayerName,omitempty"`

	Winner    string              `json:"winner,omitempty"`
	Tie       bool                `json:"tie,omitempty"`
	WinnerAvg *int64              `json:"winnerAvg,omitempty"`
	Player1   *duel.PlayerSummary `json:"player1,omitempty"`
	Player2   *duel.PlayerSummary `json:"player2,omitempty"`
}

// Millis boxes a millisecond value so that 0 is still sent.
func Millis(ms int64) *int64 {
	return &ms
}

// ErrorMessage builds the reply for a rejected intent.
func ErrorMessage(err error) ServerMessage {
	return ServerMessage{Type: TypeError, Code: duel.Code(err), Message: err.Error()}
}
