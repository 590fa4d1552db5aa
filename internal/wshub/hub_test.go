package wshub

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"reactionduel/internal/duel"
)

func newTestClient(id string, buf int) *Client {
	return &Client{ConnID: id, Send: make(chan []byte, buf)}
}

func recv(t *testing.T, c *Client) ServerMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var got ServerMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("%s did not receive message", c.ConnID)
	}
	return ServerMessage{}
}

func TestRegisterAndBroadcast(t *testing.T) {
	h := NewHub()

	c1 := newTestClient("c1", 16)
	c2 := newTestClient("c2", 16)
	c3 := newTestClient("c3", 16)

	h.Register(c1)
	h.Register(c2)
	h.Register(c3)

	h.Broadcast(ServerMessage{Type: TypeRoundStarting, Round: 2, TotalRounds: 5, ActivePlayerName: "Bo"})

	for _, c := range []*Client{c1, c2, c3} {
		got := recv(t, c)
		if got.Type != TypeRoundStarting || got.Round != 2 || got.ActivePlayerName != "Bo" {
			t.Fatalf("%s got unexpected message: %+v", c.ConnID, got)
		}
	}
}

func TestSendRepliesToOneConnection(t *testing.T) {
	h := NewHub()

	c1 := newTestClient("c1", 16)
	c2 := newTestClient("c2", 16)
	h.Register(c1)
	h.Register(c2)

	h.Send("c1", ServerMessage{Type: TypeJoined, PlayerID: "p1", PlayerNumber: 1})

	got := recv(t, c1)
	if got.Type != TypeJoined || got.PlayerNumber != 1 {
		t.Fatalf("unexpected reply: %+v", got)
	}
	select {
	case <-c2.Send:
		t.Fatal("c2 should not receive a reply addressed to c1")
	default:
	}

	// Unknown connection is a no-op
	h.Send("ghost", ServerMessage{Type: TypeJoined})
}

func TestUnregisterClosesSend(t *testing.T) {
	h := NewHub()

	c1 := newTestClient("c1", 16)
	c2 := newTestClient("c2", 16)
	h.Register(c1)
	h.Register(c2)

	h.Unregister("c1")

	_, ok := <-c1.Send
	if ok {
		t.Fatal("c1.Send should be closed")
	}
	if h.Count() != 1 {
		t.Errorf("Count = %d, want 1", h.Count())
	}

	h.Broadcast(ServerMessage{Type: TypeGameReset})
	if got := recv(t, c2); got.Type != TypeGameReset {
		t.Errorf("c2 got %+v, want game_reset", got)
	}
}

func TestUnregisterNonexistent(t *testing.T) {
	h := NewHub()
	// Should not panic
	h.Unregister("nonexistent")
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub()

	// Channel with capacity 1
	c := newTestClient("c1", 1)
	h.Register(c)

	// Fill the channel
	c.Send <- []byte("filler")

	// This should not block; message dropped
	h.Broadcast(ServerMessage{Type: TypeButtonAppear})
	h.Send("c1", ServerMessage{Type: TypeStateUpdate})

	data := <-c.Send
	if string(data) != "filler" {
		t.Fatalf("expected filler, got: %s", data)
	}

	select {
	case <-c.Send:
		t.Fatal("should be empty after draining filler")
	default:
	}
}

func TestParseClientMessage(t *testing.T) {
	msg, ok := ParseClientMessage([]byte(`{"type":"join","name":"Ann"}`))
	if !ok || msg.Type != TypeJoin || msg.Name != "Ann" {
		t.Errorf("parse join = %+v, %v", msg, ok)
	}

	msg, ok = ParseClientMessage([]byte(`{"type":"click","playerId":"p1"}`))
	if !ok || msg.PlayerID != "p1" {
		t.Errorf("parse click = %+v, %v", msg, ok)
	}

	for _, raw := range []string{`not json`, `{}`, `{"name":"Ann"}`, `[1,2]`} {
		if _, ok := ParseClientMessage([]byte(raw)); ok {
			t.Errorf("ParseClientMessage(%s) should fail", raw)
		}
	}
}

func TestErrorMessageCarriesCode(t *testing.T) {
	msg := ErrorMessage(duel.ErrCapacity)
	if msg.Type != TypeError || msg.Code != "capacity" || msg.Message != "game is full" {
		t.Errorf("ErrorMessage = %+v", msg)
	}

	wrapped := ErrorMessage(errors.Join(duel.ErrWrongTurn))
	if wrapped.Code != "wrong_turn" {
		t.Errorf("wrapped code = %q, want wrong_turn", wrapped.Code)
	}
}

func TestServerMessageOmitsCueTiming(t *testing.T) {
	data, err := json.Marshal(ServerMessage{Type: TypeRoundStarting, Round: 1, TotalRounds: 5, ActivePlayerID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	for _, leak := range []string{"delay", "shownAt", "timestamp"} {
		if strings.Contains(string(data), leak) {
			t.Errorf("round_starting payload %s exposes %q", data, leak)
		}
	}
}

func TestServerMessageKeepsZeroMillis(t *testing.T) {
	data, err := json.Marshal(ServerMessage{
		Type:            TypeRoundResult,
		ReactionTime:    Millis(0),
		RoundWinnerTime: Millis(0),
		WinnerAvg:       Millis(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"reactionTime":0`, `"roundWinnerTime":0`, `"winnerAvg":0`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("payload %s is missing %s", data, field)
		}
	}

	data, err = json.Marshal(ServerMessage{Type: TypeRoundStarting})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "reactionTime") {
		t.Errorf("round_starting payload %s carries reactionTime", data)
	}
}
