package duel

import (
	"math"
	"time"

	"reactionduel/internal/players"
)

// TieMarker stands in for the winner's name when a match ends level.
const TieMarker = "Tie"

// RoundEntry is one credited reaction in the result log.
type RoundEntry struct {
	Round        int           `json:"round"`
	PlayerID     string        `json:"playerId"`
	PlayerName   string        `json:"playerName"`
	PlayerNumber int           `json:"playerNumber"`
	ReactionTime time.Duration `json:"-"`
	ReactionMs   int64         `json:"reactionTime"`
}

// RoundOutcome compares the two entries of a completed round. Winner is nil on a tie.
type RoundOutcome struct {
	Round   int
	Entries []RoundEntry
	Winner  *RoundEntry
	Tie     bool
}

// RoundResult settles round from the log. ok is false unless the log holds
// exactly two entries for that round.
func RoundResult(log []RoundEntry, round int) (out RoundOutcome, ok bool) {
	entries := entriesFor(log, round)
	if len(entries) != 2 {
		return RoundOutcome{}, false
	}

	out = RoundOutcome{Round: round, Entries: entries}
	switch a, b := entries[0], entries[1]; {
	case a.ReactionTime < b.ReactionTime:
		out.Winner = &out.Entries[0]
	case b.ReactionTime < a.ReactionTime:
		out.Winner = &out.Entries[1]
	default:
		out.Tie = true
	}
	return out, true
}

func entriesFor(log []RoundEntry, round int) []RoundEntry {
	var entries []RoundEntry
	for _, e := range log {
		if e.Round == round {
			entries = append(entries, e)
		}
	}
	return entries
}

// PlayerSummary is one side of a finished match. AvgTime is rounded for display.
type PlayerSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	AvgTime int64   `json:"avgTime"`
	Rounds  []int64 `json:"rounds"`
	avg     float64
}

// Average returns the unrounded mean reaction time in milliseconds.
func (s PlayerSummary) Average() float64 {
	return s.avg
}

// MatchResult is computed once when the final round completes.
type MatchResult struct {
	Winner    string        `json:"winner"`
	Tie       bool          `json:"tie"`
	WinnerAvg int64         `json:"winnerAvg"`
	Player1   PlayerSummary `json:"player1"`
	Player2   PlayerSummary `json:"player2"`
}

// SettleMatch compares unrounded per-player averages. Equal averages are an
// explicit tie, reported with TieMarker and the shared average.
func SettleMatch(p1, p2 *players.Player) MatchResult {
	s1, s2 := summarize(p1), summarize(p2)
	res := MatchResult{Player1: s1, Player2: s2}

	switch {
	case s1.avg < s2.avg:
		res.Winner = s1.Name
		res.WinnerAvg = s1.AvgTime
	case s2.avg < s1.avg:
		res.Winner = s2.Name
		res.WinnerAvg = s2.AvgTime
	default:
		res.Winner = TieMarker
		res.Tie = true
		res.WinnerAvg = s1.AvgTime
	}
	return res
}

func summarize(p *players.Player) PlayerSummary {
	avg := p.AverageMs()
	return PlayerSummary{
		ID:      p.ID,
		Name:    p.Name,
		AvgTime: int64(math.Round(avg)),
		Rounds:  p.RoundsMs(),
		avg:     avg,
	}
}
