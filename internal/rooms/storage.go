package rooms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"reactionduel/internal/broadcast"
	"reactionduel/internal/events"
	"reactionduel/internal/match"
	"reactionduel/internal/wshub"
)

// DefaultCode names the room that exists from process start and is never swept.
const DefaultCode = "MAIN"

const sweepInterval = 5 * time.Minute

type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	ctx   context.Context
	cfg   match.Config
	opts  []match.Option
	ttl   time.Duration
	clock clockwork.Clock
}

// NewStore creates the registry and its default room. Controllers run until
// ctx is cancelled or the store is closed. opts apply to every room.
func NewStore(ctx context.Context, cfg match.Config, ttl time.Duration, clock clockwork.Clock, opts ...match.Option) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Store{
		rooms: make(map[string]*Room),
		ctx:   ctx,
		cfg:   cfg,
		opts:  opts,
		ttl:   ttl,
		clock: clock,
	}
	s.rooms[DefaultCode] = s.newRoom(DefaultCode)
	return s
}

func (s *Store) newRoom(code string) *Room {
	hub := wshub.NewHub()
	bus := events.NewBus()
	opts := append([]match.Option{
		match.WithClock(s.clock),
		match.WithLogger(log.With().Str("room", code).Logger()),
	}, s.opts...)
	opts = append(opts, match.WithEventBus(bus))

	ctx, cancel := context.WithCancel(s.ctx)
	room := &Room{
		Code:        code,
		Controller:  match.New(code, s.cfg, hub, opts...),
		Hub:         hub,
		Bus:         bus,
		Broadcaster: broadcast.NewBroadcaster(bus),
		CreatedAt:   s.clock.Now(),
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go func() {
		defer close(room.done)
		if err := room.Controller.Run(ctx); err != nil {
			log.Error().Err(err).Str("room", code).Msg("controller exited")
		}
	}()
	return room
}

func (s *Store) Create() (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := newCode(func(c string) bool {
		_, exists := s.rooms[c]
		return exists
	})
	if err != nil {
		return nil, fmt.Errorf("generating room code: %w", err)
	}
	room := s.newRoom(code)
	s.rooms[code] = room
	log.Info().Str("room", code).Msg("room created")
	return room, nil
}

// Get looks a room up by code, case-insensitively. An empty code means the default room.
func (s *Store) Get(code string) *Room {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

// Delete stops and removes a room. The default room cannot be deleted.
func (s *Store) Delete(code string) bool {
	if code == DefaultCode {
		return false
	}
	s.mu.Lock()
	room, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()

	if ok {
		room.close()
	}
	return ok
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// Sweep removes rooms older than the TTL that have no open connections and
// returns how many were removed.
func (s *Store) Sweep() int {
	now := s.clock.Now()
	var stale []*Room

	s.mu.Lock()
	for code, room := range s.rooms {
		if code == DefaultCode || room.Hub.Count() > 0 {
			continue
		}
		if now.Sub(room.CreatedAt) > s.ttl {
			stale = append(stale, room)
			delete(s.rooms, code)
		}
	}
	s.mu.Unlock()

	for _, room := range stale {
		room.close()
		log.Info().Str("room", room.Code).Msg("swept idle room")
	}
	return len(stale)
}

// RunSweeper sweeps periodically until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context) error {
	ticker := s.clock.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

// Close stops every room, the default one included.
func (s *Store) Close() {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for code, r := range s.rooms {
		rooms = append(rooms, r)
		delete(s.rooms, code)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		r.close()
	}
}
