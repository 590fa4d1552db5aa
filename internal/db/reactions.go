package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReactionEvent struct {
	MatchID    uuid.UUID
	RoomCode   string
	PlayerName string
	Round      int
	ReactionMs int64
	CueDelayMs int64
	ShownAt    time.Time
	ClickedAt  time.Time
	TimedOut   bool
}

const insertReaction = `
	INSERT INTO reaction_events (match_id, room_code, player_name, round, reaction_ms, cue_delay_ms, shown_at, clicked_at, timed_out)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (d *DB) RecordReaction(ctx context.Context, ev ReactionEvent) error {
	_, err := d.conn.ExecContext(ctx, insertReaction,
		ev.MatchID, ev.RoomCode, ev.PlayerName, ev.Round, ev.ReactionMs, ev.CueDelayMs, ev.ShownAt, ev.ClickedAt, ev.TimedOut)
	if err != nil {
		return fmt.Errorf("recording reaction: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordReactions(ctx context.Context, events []ReactionEvent) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertReaction)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, ev.MatchID, ev.RoomCode, ev.PlayerName, ev.Round, ev.ReactionMs, ev.CueDelayMs, ev.ShownAt, ev.ClickedAt, ev.TimedOut); err != nil {
			return fmt.Errorf("recording reaction in batch: %w", err)
		}
	}

	return tx.Commit()
}
