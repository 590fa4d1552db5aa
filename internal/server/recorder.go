package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"reactionduel/internal/analytics"
	"reactionduel/internal/db"
	"reactionduel/internal/duel"
	"reactionduel/internal/match"
	"reactionduel/internal/metrics"
)

const (
	reactionBatchSize     = 50
	reactionFlushInterval = 500 * time.Millisecond
	reactionDrainTimeout  = 5 * time.Second
)

type resultStore interface {
	UpsertPlayer(ctx context.Context, name, color string) error
	SaveMatchResult(ctx context.Context, m db.MatchRecord) error
	AwardBadge(ctx context.Context, playerName, badgeID string, matchID *uuid.UUID) error
}

type matchPublisher interface {
	PublishMatch(ctx context.Context, m match.FinishedMatch) error
}

type reactionWriter interface {
	BatchRecordReactions(ctx context.Context, events []db.ReactionEvent) error
}

// resultRecorder is the match.Recorder for the process. Every backend is
// optional; with none configured it records nothing.
type resultRecorder struct {
	store     resultStore
	feed      matchPublisher
	reactions chan db.ReactionEvent
	metrics   *metrics.Metrics
}

func (r *resultRecorder) MatchFinished(ctx context.Context, m match.FinishedMatch) error {
	var errs []error
	if r.store != nil {
		if err := r.save(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	if r.feed != nil {
		if err := r.feed.PublishMatch(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *resultRecorder) save(ctx context.Context, m match.FinishedMatch) error {
	for _, p := range m.Players {
		if err := r.store.UpsertPlayer(ctx, p.Name, p.Color); err != nil {
			return err
		}
	}

	res := m.Result
	started := m.StartedAt
	err := r.store.SaveMatchResult(ctx, db.MatchRecord{
		ID:            m.MatchID,
		RoomCode:      m.Room,
		Player1Name:   res.Player1.Name,
		Player2Name:   res.Player2.Name,
		Player1AvgMs:  res.Player1.AvgTime,
		Player2AvgMs:  res.Player2.AvgTime,
		Player1Rounds: res.Player1.Rounds,
		Player2Rounds: res.Player2.Rounds,
		Winner:        res.Winner,
		Tie:           res.Tie,
		StartedAt:     &started,
	})
	if err != nil {
		return err
	}

	for _, p := range []duel.PlayerSummary{res.Player1, res.Player2} {
		stats := analytics.MatchStats(m.Log, res, p.ID)
		for _, b := range analytics.EvaluateMatchBadges(stats) {
			if err := r.store.AwardBadge(ctx, p.Name, string(b.ID), &m.MatchID); err != nil {
				return fmt.Errorf("badge %s for %s: %w", b.ID, p.Name, err)
			}
		}
	}
	return nil
}

// ReactionRecorded queues the reaction for the batch writer, dropping it if
// the buffer is full.
func (r *resultRecorder) ReactionRecorded(rr match.ReactionRecord) {
	if r.reactions == nil {
		return
	}
	ev := db.ReactionEvent{
		MatchID:    rr.MatchID,
		RoomCode:   rr.Room,
		PlayerName: rr.Entry.PlayerName,
		Round:      rr.Entry.Round,
		ReactionMs: rr.Entry.ReactionMs,
		CueDelayMs: rr.CueDelay.Milliseconds(),
		ShownAt:    rr.ShownAt,
		ClickedAt:  rr.ClickedAt,
		TimedOut:   rr.TimedOut,
	}
	select {
	case r.reactions <- ev:
	default:
		r.metrics.PersistFailed("reaction")
		log.Warn().
			Str("room", rr.Room).
			Str("match_id", rr.MatchID.String()).
			Msg("reaction buffer full, dropping event")
	}
}

// reactionBatchWriter writes buffered reactions in batches until ctx is
// cancelled, then flushes whatever is already queued.
func reactionBatchWriter(ctx context.Context, w reactionWriter, buffer <-chan db.ReactionEvent, m *metrics.Metrics) {
	ticker := time.NewTicker(reactionFlushInterval)
	defer ticker.Stop()

	batch := make([]db.ReactionEvent, 0, reactionBatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := w.BatchRecordReactions(ctx, batch); err != nil {
			m.PersistFailed("reactions")
			log.Error().Err(err).Int("count", len(batch)).Msg("batch record reactions")
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= reactionBatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
		drain:
			for {
				select {
				case ev := <-buffer:
					batch = append(batch, ev)
				default:
					break drain
				}
			}
			drainCtx, cancel := context.WithTimeout(context.Background(), reactionDrainTimeout)
			flush(drainCtx)
			cancel()
			return
		}
	}
}
