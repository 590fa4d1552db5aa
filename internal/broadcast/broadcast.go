package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"reactionduel/internal/events"
)

// EventMessage is one server-sent event.
type EventMessage struct {
	Event string
	Msg   string
}

type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan EventMessage]bool
	closed  bool
}

func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[chan EventMessage]bool),
	}
	go func() {
		for ev := range bus.PhaseChanges {
			data, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("room", ev.Room).Msg("marshal phase change")
				continue
			}
			b.Broadcast("phaseChange", string(data))
		}
		b.closeAll()
	}()
	return b
}

// Subscribe returns a channel of events. Once the bus has closed, the
// channel comes back already closed.
func (b *Broadcaster) Subscribe() chan EventMessage {
	ch := make(chan EventMessage, 10)
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.Clients[ch] = true
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan EventMessage) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if _, ok := b.Clients[ch]; !ok {
		return
	}
	delete(b.Clients, ch)
	close(ch)
}

// closeAll ends every subscriber stream after the bus is gone.
func (b *Broadcaster) closeAll() {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		delete(b.Clients, ch)
		close(ch)
	}
	b.closed = true
}

// Count returns the number of live subscribers.
func (b *Broadcaster) Count() int {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	return len(b.Clients)
}

func (b *Broadcaster) Broadcast(event string, message string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- EventMessage{Event: event, Msg: message}:
		default:
			// skip clients with full data channels
		}
	}
}
