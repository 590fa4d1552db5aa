package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"reactionduel/internal/duel"
	"reactionduel/internal/events"
)

func TestNewBroadcaster(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus)
	if b == nil {
		t.Fatal("NewBroadcaster() returned nil")
	}
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus)

	ch := b.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() returned nil")
	}

	if b.Count() != 1 {
		t.Errorf("clients count = %d, want 1", b.Count())
	}

	b.Unsubscribe(ch)

	if b.Count() != 0 {
		t.Errorf("clients count after unsubscribe = %d, want 0", b.Count())
	}
}

func TestBroadcaster_Broadcast(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus)

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()

	b.Broadcast("test-event", "hello")

	for i, ch := range []chan EventMessage{ch1, ch2} {
		select {
		case msg := <-ch:
			if msg.Event != "test-event" || msg.Msg != "hello" {
				t.Errorf("ch%d got %+v, want event=test-event, msg=hello", i+1, msg)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("ch%d timed out", i+1)
		}
	}

	b.Unsubscribe(ch1)
	b.Unsubscribe(ch2)
}

func TestBroadcaster_SkipsFullChannels(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus)

	ch := b.Subscribe()

	// Fill the channel buffer (capacity 10)
	for i := 0; i < 10; i++ {
		b.Broadcast("fill", "data")
	}

	// This should not block even though channel is full
	done := make(chan bool)
	go func() {
		b.Broadcast("overflow", "data")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Broadcast blocked on full channel")
	}

	b.Unsubscribe(ch)
}

func TestBroadcaster_PhaseChangeForwarding(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus)

	ch := b.Subscribe()

	bus.Publish(events.PhaseChangeEvent{Room: "MAIN", Phase: duel.PhaseRoundPending, Round: 3})

	select {
	case msg := <-ch:
		if msg.Event != "phaseChange" {
			t.Fatalf("event = %q, want phaseChange", msg.Event)
		}
		var got struct {
			Room  string `json:"room"`
			Phase string `json:"phase"`
			Round int    `json:"round"`
		}
		if err := json.Unmarshal([]byte(msg.Msg), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Room != "MAIN" || got.Phase != "round_pending" || got.Round != 3 {
			t.Errorf("got %+v", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for phase change broadcast")
	}

	b.Unsubscribe(ch)
}

func TestBroadcaster_BusCloseEndsSubscribers(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus)
	ch := b.Subscribe()

	bus.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received an event, want a closed channel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("subscriber channel still open after bus close")
	}
	if b.Count() != 0 {
		t.Errorf("clients count = %d, want 0", b.Count())
	}

	// Unsubscribe after the bus closed must not close ch twice.
	b.Unsubscribe(ch)

	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("Subscribe after bus close should return a closed channel")
	}
}
