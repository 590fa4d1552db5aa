package events

import "reactionduel/internal/duel"

// PhaseChangeEvent is emitted by a room's controller whenever its session
// moves to a new phase.
type PhaseChangeEvent struct {
	Room  string     `json:"room"`
	Phase duel.Phase `json:"phase"`
	Round int        `json:"round"`
}

type Bus struct {
	PhaseChanges chan PhaseChangeEvent
}

func NewBus() *Bus {
	return &Bus{
		PhaseChanges: make(chan PhaseChangeEvent, 10),
	}
}

// Publish never blocks; events are dropped when nobody drains the bus.
func (b *Bus) Publish(ev PhaseChangeEvent) bool {
	select {
	case b.PhaseChanges <- ev:
		return true
	default:
		return false
	}
}

// Close ends the bus; any forwarding goroutine exits once it drains.
func (b *Bus) Close() {
	close(b.PhaseChanges)
}
