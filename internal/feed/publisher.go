package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"reactionduel/internal/duel"
	"reactionduel/internal/match"
)

const DefaultSubject = "duel.matches.finished"

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher announces finished matches on a NATS subject.
type Publisher struct {
	nc      conn
	subject string
}

func Connect(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	opts := []nats.Option{
		nats.Name("reactionduel"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

type matchEvent struct {
	MatchID    string             `json:"matchId"`
	Room       string             `json:"room"`
	Winner     string             `json:"winner"`
	Tie        bool               `json:"tie"`
	WinnerAvg  int64              `json:"winnerAvg"`
	Player1    duel.PlayerSummary `json:"player1"`
	Player2    duel.PlayerSummary `json:"player2"`
	Rounds     []duel.RoundEntry  `json:"rounds"`
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt"`
}

// PublishMatch sends m and waits for the server to acknowledge the flush or
// for ctx to end.
func (p *Publisher) PublishMatch(ctx context.Context, m match.FinishedMatch) error {
	data, err := json.Marshal(matchEvent{
		MatchID:    m.MatchID.String(),
		Room:       m.Room,
		Winner:     m.Result.Winner,
		Tie:        m.Result.Tie,
		WinnerAvg:  m.Result.WinnerAvg,
		Player1:    m.Result.Player1,
		Player2:    m.Result.Player2,
		Rounds:     m.Log,
		StartedAt:  m.StartedAt.UTC(),
		FinishedAt: m.FinishedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}

	err = p.nc.PublishMsg(&nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"Match-ID": []string{m.MatchID.String()},
			"Room":     []string{m.Room},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush NATS: %w", err)
	}

	log.Debug().
		Str("subject", p.subject).
		Str("match_id", m.MatchID.String()).
		Msg("published finished match")
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
