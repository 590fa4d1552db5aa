package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AwardBadge is a no-op if the player already holds the badge. matchID is nil
// for badges earned across matches.
func (d *DB) AwardBadge(ctx context.Context, playerName, badgeID string, matchID *uuid.UUID) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO player_badges (player_name, badge_id, match_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_name, badge_id) DO NOTHING
	`, playerName, badgeID, matchID)
	if err != nil {
		return fmt.Errorf("awarding badge: %w", err)
	}
	return nil
}

func (d *DB) GetPlayerBadges(ctx context.Context, playerName string) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT badge_id FROM player_badges WHERE player_name = $1 ORDER BY awarded_at
	`, playerName)
	if err != nil {
		return nil, fmt.Errorf("getting badges: %w", err)
	}
	defer rows.Close()

	var badges []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		badges = append(badges, id)
	}
	return badges, nil
}
