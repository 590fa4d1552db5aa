package analytics

import (
	"reactionduel/internal/duel"
)

type BadgeID string

const (
	BadgeSpeedDemon  BadgeID = "speed_demon"
	BadgeLightning   BadgeID = "lightning"
	BadgeFlawless    BadgeID = "flawless"
	BadgeMetronome   BadgeID = "metronome"
	BadgeUnstoppable BadgeID = "unstoppable"
	BadgeVeteran     BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeSpeedDemon:  {ID: BadgeSpeedDemon, Name: "Speed Demon", Description: "Average reaction time under 300ms in a match", Icon: "⚡"},
	BadgeLightning:   {ID: BadgeLightning, Name: "Lightning", Description: "A single reaction under 200ms", Icon: "🌩️"},
	BadgeFlawless:    {ID: BadgeFlawless, Name: "Flawless", Description: "Won every round of a match", Icon: "✨"},
	BadgeMetronome:   {ID: BadgeMetronome, Name: "Metronome", Description: "All reactions in a match within 50ms of each other", Icon: "🎯"},
	BadgeUnstoppable: {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3-match win streak", Icon: "🔥"},
	BadgeVeteran:     {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ matches", Icon: "🏅"},
}

// MatchStats builds the per-player summary for playerID from a finished
// match's log and result.
func MatchStats(log []duel.RoundEntry, res duel.MatchResult, playerID string) PlayerMatchStats {
	stats := PlayerMatchStats{}
	summary := res.Player1
	if res.Player2.ID == playerID {
		summary = res.Player2
	}
	stats.PlayerName = summary.Name
	stats.Won = !res.Tie && res.Winner == summary.Name

	var sum, slowest int64
	for _, e := range log {
		if e.PlayerID != playerID {
			continue
		}
		stats.Rounds++
		sum += e.ReactionMs
		if stats.BestReaction == 0 || e.ReactionMs < stats.BestReaction {
			stats.BestReaction = e.ReactionMs
		}
		if e.ReactionMs > slowest {
			slowest = e.ReactionMs
		}
		if out, ok := duel.RoundResult(log, e.Round); ok && out.Winner != nil && out.Winner.PlayerID == playerID {
			stats.RoundsWon++
		}
	}
	if stats.Rounds > 0 {
		stats.AvgReaction = float64(sum) / float64(stats.Rounds)
		stats.Spread = slowest - stats.BestReaction
	}
	return stats
}

// EvaluateMatchBadges checks which badges a player earned in a single match.
func EvaluateMatchBadges(stats PlayerMatchStats) []Badge {
	var earned []Badge

	if stats.Rounds == 0 {
		return nil
	}

	// Speed Demon: avg reaction < 300ms
	if stats.AvgReaction > 0 && stats.AvgReaction < 300 {
		earned = append(earned, AllBadges[BadgeSpeedDemon])
	}

	// Lightning: any reaction < 200ms
	if stats.BestReaction > 0 && stats.BestReaction < 200 {
		earned = append(earned, AllBadges[BadgeLightning])
	}

	if stats.RoundsWon == stats.Rounds {
		earned = append(earned, AllBadges[BadgeFlawless])
	}

	// Metronome needs at least three reactions to mean anything
	if stats.Rounds >= 3 && stats.Spread <= 50 {
		earned = append(earned, AllBadges[BadgeMetronome])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	// Unstoppable: 3-match win streak
	if stats.WinStreak >= 3 {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	// Veteran: 10+ matches
	if stats.MatchesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}
