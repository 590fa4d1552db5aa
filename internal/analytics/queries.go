package analytics

import (
	"context"
	"fmt"

	"reactionduel/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetPlayerLifetimeStats(ctx context.Context, name string) (*PlayerLifetimeStats, error) {
	player, err := q.DB.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	stats := &PlayerLifetimeStats{
		PlayerName:  player.Name,
		PlayerColor: player.Color,
		LastSeenAt:  player.LastSeenAt,
	}

	err = q.DB.QueryRow(ctx, `
		SELECT
			COUNT(*) AS matches_played,
			COUNT(*) FILTER (WHERE NOT is_tie AND winner = $1) AS wins,
			COUNT(*) FILTER (WHERE is_tie) AS ties,
			COALESCE(MIN(CASE WHEN player1_name = $1 THEN player1_avg_ms ELSE player2_avg_ms END), 0) AS best_average
		FROM match_results
		WHERE player1_name = $1 OR player2_name = $1
	`, name).Scan(&stats.MatchesPlayed, &stats.Wins, &stats.Ties, &stats.BestAverage)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	err = q.DB.QueryRow(ctx, `
		SELECT COALESCE(MIN(reaction_ms), 0) FROM reaction_events WHERE player_name = $1 AND NOT timed_out
	`, name).Scan(&stats.BestReaction)
	if err != nil {
		return nil, fmt.Errorf("getting best reaction: %w", err)
	}

	// Most recent consecutive wins
	rows, err := q.DB.Query(ctx, `
		SELECT NOT is_tie AND winner = $1
		FROM match_results
		WHERE player1_name = $1 OR player2_name = $1
		ORDER BY created_at DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var won bool
		if err := rows.Scan(&won); err != nil {
			return nil, err
		}
		if !won {
			break
		}
		streak++
	}
	stats.WinStreak = streak

	stats.Badges = EvaluateLifetimeBadges(*stats)
	held, err := q.DB.GetPlayerBadges(ctx, name)
	if err != nil {
		return nil, err
	}
	stats.Badges = mergeBadges(stats.Badges, held)

	return stats, nil
}

func mergeBadges(earned []Badge, held []string) []Badge {
	seen := make(map[BadgeID]bool, len(earned))
	for _, b := range earned {
		seen[b.ID] = true
	}
	for _, id := range held {
		b, ok := AllBadges[BadgeID(id)]
		if !ok || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		earned = append(earned, b)
	}
	return earned
}

// GetLeaderboard ranks players by category: "wins" (most first), "average"
// (best match average, lowest first) or "reaction" (best single reaction).
func (q *Queries) GetLeaderboard(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	var query string
	switch category {
	case "wins":
		query = `
			SELECT p.name, p.color, COUNT(m.id) AS value
			FROM players p
			JOIN match_results m ON m.winner = p.name AND NOT m.is_tie
			GROUP BY p.name, p.color
			ORDER BY value DESC, p.name
			LIMIT $1`
	case "average":
		query = `
			SELECT p.name, p.color, MIN(s.avg_ms) AS value
			FROM players p
			JOIN (
				SELECT player1_name AS name, player1_avg_ms AS avg_ms FROM match_results
				UNION ALL
				SELECT player2_name, player2_avg_ms FROM match_results
			) s ON s.name = p.name
			GROUP BY p.name, p.color
			ORDER BY value ASC, p.name
			LIMIT $1`
	case "reaction":
		query = `
			SELECT p.name, p.color, MIN(r.reaction_ms) AS value
			FROM players p
			JOIN reaction_events r ON r.player_name = p.name AND NOT r.timed_out
			GROUP BY p.name, p.color
			ORDER BY value ASC, p.name
			LIMIT $1`
	default:
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.PlayerColor, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, nil
}
