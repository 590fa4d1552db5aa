package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"reactionduel/internal/duel"
	"reactionduel/internal/match"
)

type fakeConn struct {
	msgs     []*nats.Msg
	err      error
	flushErr error
	closed   bool
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error { return f.flushErr }

func (f *fakeConn) Close() { f.closed = true }

func finished() match.FinishedMatch {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return match.FinishedMatch{
		MatchID: uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Room:    "MAIN",
		Result: duel.MatchResult{
			Winner:    "Ann",
			WinnerAvg: 260,
			Player1:   duel.PlayerSummary{ID: "p1", Name: "Ann", AvgTime: 260, Rounds: []int64{250, 270}},
			Player2:   duel.PlayerSummary{ID: "p2", Name: "Bo", AvgTime: 310, Rounds: []int64{300, 320}},
		},
		Log:        []duel.RoundEntry{{Round: 1, PlayerID: "p1", PlayerName: "Ann", PlayerNumber: 1, ReactionMs: 250}},
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
	}
}

func TestPublishMatch(t *testing.T) {
	fc := &fakeConn{}
	p := &Publisher{nc: fc, subject: DefaultSubject}

	if err := p.PublishMatch(context.Background(), finished()); err != nil {
		t.Fatalf("PublishMatch() error: %v", err)
	}
	if len(fc.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(fc.msgs))
	}
	msg := fc.msgs[0]
	if msg.Subject != DefaultSubject {
		t.Errorf("subject = %q, want %q", msg.Subject, DefaultSubject)
	}
	if msg.Header.Get("Match-ID") != "550e8400-e29b-41d4-a716-446655440000" || msg.Header.Get("Room") != "MAIN" {
		t.Errorf("headers = %v", msg.Header)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["winner"] != "Ann" || got["room"] != "MAIN" || got["tie"] != false {
		t.Errorf("payload = %v", got)
	}
	if rounds, ok := got["rounds"].([]any); !ok || len(rounds) != 1 {
		t.Errorf("rounds = %v", got["rounds"])
	}
}

func TestPublishMatchErrors(t *testing.T) {
	boom := errors.New("boom")

	p := &Publisher{nc: &fakeConn{err: boom}, subject: DefaultSubject}
	if err := p.PublishMatch(context.Background(), finished()); !errors.Is(err, boom) {
		t.Errorf("publish error = %v, want wrapped boom", err)
	}

	p = &Publisher{nc: &fakeConn{flushErr: boom}, subject: DefaultSubject}
	if err := p.PublishMatch(context.Background(), finished()); !errors.Is(err, boom) {
		t.Errorf("flush error = %v, want wrapped boom", err)
	}
}

func TestClose(t *testing.T) {
	fc := &fakeConn{}
	p := &Publisher{nc: fc}
	p.Close()
	if !fc.closed {
		t.Error("Close should close the connection")
	}
}
