package rooms

import (
	"context"
	"time"

	"reactionduel/internal/broadcast"
	"reactionduel/internal/events"
	"reactionduel/internal/match"
	"reactionduel/internal/wshub"
)

// Room is one duel: a Controller that owns the session, the hub of its
// websocket connections, and the SSE fan-out of its phase changes.
type Room struct {
	Code        string
	Controller  *match.Controller
	Hub         *wshub.Hub
	Bus         *events.Bus
	Broadcaster *broadcast.Broadcaster
	CreatedAt   time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// close stops the controller and then the event bus it publishes to.
func (r *Room) close() {
	r.cancel()
	<-r.done
	r.Bus.Close()
}
