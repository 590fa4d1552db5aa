package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MatchRecord is one persisted match summary.
type MatchRecord struct {
	ID            uuid.UUID  `json:"id"`
	RoomCode      string     `json:"roomCode"`
	Player1Name   string     `json:"player1Name"`
	Player2Name   string     `json:"player2Name"`
	Player1AvgMs  int64      `json:"player1Time"`
	Player2AvgMs  int64      `json:"player2Time"`
	Player1Rounds []int64    `json:"player1Rounds"`
	Player2Rounds []int64    `json:"player2Rounds"`
	Winner        string     `json:"winner"`
	Tie           bool       `json:"tie"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (d *DB) SaveMatchResult(ctx context.Context, m MatchRecord) error {
	var started any
	if m.StartedAt != nil {
		started = *m.StartedAt
	}
	// pq writes a nil slice as NULL
	if m.Player1Rounds == nil {
		m.Player1Rounds = []int64{}
	}
	if m.Player2Rounds == nil {
		m.Player2Rounds = []int64{}
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO match_results (id, room_code, player1_name, player2_name, player1_avg_ms, player2_avg_ms,
			player1_rounds, player2_rounds, winner, is_tie, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, m.ID, m.RoomCode, m.Player1Name, m.Player2Name, m.Player1AvgMs, m.Player2AvgMs,
		pq.Array(m.Player1Rounds), pq.Array(m.Player2Rounds), m.Winner, m.Tie, started)
	if err != nil {
		return fmt.Errorf("saving match result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit matches, newest first.
func (d *DB) RecentResults(ctx context.Context, limit int) ([]MatchRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, room_code, player1_name, player2_name, player1_avg_ms, player2_avg_ms,
			player1_rounds, player2_rounds, winner, is_tie, started_at, created_at
		FROM match_results
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent results: %w", err)
	}
	defer rows.Close()

	records := []MatchRecord{}
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.RoomCode, &m.Player1Name, &m.Player2Name, &m.Player1AvgMs, &m.Player2AvgMs,
			pq.Array(&m.Player1Rounds), pq.Array(&m.Player2Rounds), &m.Winner, &m.Tie, &m.StartedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning match result: %w", err)
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match results: %w", err)
	}
	return records, nil
}
