// Package match drives a duel Session on a timeline. A Controller owns one
// Session and is its only writer: player intents, disconnects and timer
// firings are all funneled through a single inbox and applied by Run.
package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"reactionduel/internal/cues"
	"reactionduel/internal/duel"
	"reactionduel/internal/events"
	"reactionduel/internal/metrics"
	"reactionduel/internal/wshub"
)

// Notifier carries outbound messages to connections.
type Notifier interface {
	Send(connID string, msg wshub.ServerMessage)
	Broadcast(msg wshub.ServerMessage)
}

// Intent is one parsed inbound message from a connection. Kind is one of
// the wshub inbound Type constants.
type Intent struct {
	Kind     string
	ConnID   string
	Name     string
	PlayerID string
}

type step int

const (
	stepBeginAttempt step = iota
	stepShowCue
	stepReactionTimeout
	stepAdvanceRound
)

func (s step) String() string {
	switch s {
	case stepBeginAttempt:
		return "begin_attempt"
	case stepShowCue:
		return "show_cue"
	case stepReactionTimeout:
		return "reaction_timeout"
	case stepAdvanceRound:
		return "advance_round"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

type command interface{}

type disconnected struct {
	connID string
}

// timerFired is posted by a scheduled timer. It is applied only if both the
// session epoch and the controller's timer sequence still match.
type timerFired struct {
	epoch uint64
	seq   uint64
	step  step
}

type Option func(*Controller)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithDelayer(d cues.Delayer) Option {
	return func(c *Controller) { c.delayer = d }
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

func WithEventBus(b *events.Bus) Option {
	return func(c *Controller) { c.bus = b }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

type Controller struct {
	room     string
	cfg      Config
	session  *duel.Session
	notifier Notifier

	clock    clockwork.Clock
	delayer  cues.Delayer
	recorder Recorder
	bus      *events.Bus
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	inbox    chan command
	stopped  chan struct{}
	stopOnce sync.Once

	// Loop-owned state.
	bindings  map[string]string // connection id -> player id
	timer     clockwork.Timer
	seq       uint64
	lastPhase duel.Phase
	matchID   uuid.UUID
	startedAt time.Time
	cueDelay  time.Duration
	shownAt   time.Time

	view       atomic.Pointer[duel.View]
	persisting sync.WaitGroup
}

func New(room string, cfg Config, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		room:     room,
		cfg:      cfg,
		session:  duel.NewSession(cfg.TotalRounds),
		notifier: notifier,
		clock:    clockwork.NewRealClock(),
		logger:   log.With().Str("room", room).Logger(),
		inbox:    make(chan command, 64),
		stopped:  make(chan struct{}),
		bindings: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.delayer == nil {
		c.delayer = cues.NewPicker(cfg.CueDelay, nil)
	}
	c.lastPhase = c.session.Phase()
	c.publishView()
	return c
}

// Run applies commands until ctx is cancelled, then cancels the pending
// timer and waits for in-flight persistence to finish.
func (c *Controller) Run(ctx context.Context) error {
	defer c.persisting.Wait()
	defer c.stop()

	c.logger.Debug().Msg("controller started")
	for {
		select {
		case <-ctx.Done():
			c.cancelTimer()
			c.logger.Debug().Msg("controller stopped")
			return nil
		case cmd := <-c.inbox:
			c.dispatch(cmd)
		}
	}
}

func (c *Controller) stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

// Done is closed once Run has returned or is returning.
func (c *Controller) Done() <-chan struct{} {
	return c.stopped
}

// Submit queues an intent. It returns false once the controller has stopped.
func (c *Controller) Submit(in Intent) bool {
	return c.enqueue(in)
}

// Disconnect reports that a connection closed.
func (c *Controller) Disconnect(connID string) bool {
	return c.enqueue(disconnected{connID: connID})
}

func (c *Controller) enqueue(cmd command) bool {
	select {
	case <-c.stopped:
		return false
	default:
	}
	select {
	case c.inbox <- cmd:
		return true
	case <-c.stopped:
		return false
	}
}

// View returns the latest published snapshot. Safe from any goroutine.
func (c *Controller) View() duel.View {
	return *c.view.Load()
}

func (c *Controller) Room() string {
	return c.room
}

func (c *Controller) dispatch(cmd command) {
	switch cmd := cmd.(type) {
	case Intent:
		c.handleIntent(cmd)
	case disconnected:
		c.handleDisconnect(cmd.connID)
	case timerFired:
		c.handleTimer(cmd)
	default:
		c.logger.Error().Type("command", cmd).Msg("unknown command")
	}
	c.publishView()
}

func (c *Controller) handleIntent(in Intent) {
	switch in.Kind {
	case wshub.TypeJoin:
		c.join(in)
	case wshub.TypeStart:
		c.start(in)
	case wshub.TypeClick:
		c.click(in)
	case wshub.TypeReset:
		c.reset()
	case wshub.TypeGetState:
		c.reply(in.ConnID, wshub.ServerMessage{Type: wshub.TypeStateUpdate, State: c.stateView()})
	case wshub.TypeRematch:
		c.rematch(in)
	default:
		c.reject(in.ConnID, fmt.Errorf("%w: unknown type %q", duel.ErrMalformedIntent, in.Kind))
	}
}

func (c *Controller) join(in Intent) {
	if _, bound := c.bindings[in.ConnID]; bound {
		c.reject(in.ConnID, fmt.Errorf("%w: connection already joined", duel.ErrIllegalState))
		return
	}
	p, err := c.session.Join(uuid.NewString(), in.Name)
	if err != nil {
		c.reject(in.ConnID, err)
		return
	}
	c.bindings[in.ConnID] = p.ID
	c.logger.Info().Str("player_id", p.ID).Str("name", p.Name).Int("slot", p.Number).Msg("player joined")

	c.reply(in.ConnID, wshub.ServerMessage{
		Type:         wshub.TypeJoined,
		PlayerID:     p.ID,
		PlayerNumber: p.Number,
		Message:      fmt.Sprintf("%s joined as Player %d", p.Name, p.Number),
	})
	c.broadcast(wshub.ServerMessage{Type: wshub.TypePlayerJoined, State: c.stateView()})
	if c.session.Phase() == duel.PhaseReady {
		c.broadcast(wshub.ServerMessage{Type: wshub.TypeReadyToStart, Message: "Both players joined! Ready to start."})
	}
}

func (c *Controller) start(in Intent) {
	if err := c.session.StartMatch(); err != nil {
		c.reject(in.ConnID, err)
		return
	}
	c.matchID = uuid.New()
	c.startedAt = c.clock.Now()
	c.logger.Info().Str("match_id", c.matchID.String()).Int("rounds", c.session.TotalRounds()).Msg("match started")

	c.broadcast(wshub.ServerMessage{Type: wshub.TypeGameStarted, Message: "Game started!", State: c.stateView()})
	c.schedule(c.cfg.FirstRoundPause, stepBeginAttempt)
}

func (c *Controller) click(in Intent) {
	playerID, bound := c.bindings[in.ConnID]
	if !bound {
		c.reject(in.ConnID, fmt.Errorf("%w: join before clicking", duel.ErrIllegalState))
		return
	}
	now := c.clock.Now()
	r, err := c.session.RegisterReaction(playerID, now)
	switch {
	case err == nil:
		c.credited(r, now, false)
	case errors.Is(err, duel.ErrWrongTurn):
		c.metrics.Rejected(duel.Code(err))
		c.reply(in.ConnID, wshub.ServerMessage{Type: wshub.TypeWrongPlayer, Code: duel.Code(err), Message: "Not your turn!"})
	case errors.Is(err, duel.ErrPrematureClick):
		c.metrics.Rejected(duel.Code(err))
		c.logger.Debug().Str("player_id", playerID).Int("round", c.session.Round()).Msg("premature click")
		c.broadcast(wshub.ServerMessage{
			Type:     wshub.TypeTooEarly,
			PlayerID: playerID,
			Code:     duel.Code(err),
			Message:  "Too early! Wait for the button.",
		})
		c.schedule(c.cfg.PenaltyPause, stepBeginAttempt)
	default:
		c.reject(in.ConnID, err)
	}
}

func (c *Controller) credited(r duel.Reaction, at time.Time, timedOut bool) {
	c.cancelTimer()
	c.metrics.Reaction(r.Entry.ReactionTime)
	if c.recorder != nil {
		c.recorder.ReactionRecorded(ReactionRecord{
			MatchID:   c.matchID,
			Room:      c.room,
			Entry:     r.Entry,
			CueDelay:  c.cueDelay,
			ShownAt:   c.shownAt,
			ClickedAt: at,
			TimedOut:  timedOut,
		})
	}

	if !r.RoundComplete {
		c.broadcast(wshub.ServerMessage{
			Type:           wshub.TypePlayerClicked,
			PlayerID:       r.Player.ID,
			ReactionTime:   wshub.Millis(r.Entry.ReactionMs),
			NextPlayerID:   r.Next.ID,
			NextPlayerName: r.Next.Name,
		})
		c.schedule(c.cfg.TurnPause, stepBeginAttempt)
		return
	}

	msg := wshub.ServerMessage{
		Type:          wshub.TypeRoundResult,
		Round:         r.Outcome.Round,
		PlayerID:      r.Player.ID,
		ReactionTime:  wshub.Millis(r.Entry.ReactionMs),
		RoundComplete: true,
		RoundTie:      r.Outcome.Tie,
		RoundData:     r.Outcome.Entries,
		State:         c.stateView(),
	}
	if w := r.Outcome.Winner; w != nil {
		msg.RoundWinner = w.PlayerName
		msg.RoundWinnerTime = wshub.Millis(w.ReactionMs)
	}
	c.broadcast(msg)
	c.schedule(c.cfg.RoundPause, stepAdvanceRound)
}

func (c *Controller) reset() {
	c.cancelTimer()
	c.session.Reset()
	clear(c.bindings)
	c.logger.Info().Msg("session reset")
	c.broadcast(wshub.ServerMessage{Type: wshub.TypeGameReset, Message: "Game has been reset"})
}

func (c *Controller) rematch(in Intent) {
	if err := c.session.Rematch(); err != nil {
		c.reject(in.ConnID, err)
		return
	}
	c.broadcast(wshub.ServerMessage{Type: wshub.TypeReadyToStart, Message: "Rematch! Ready to start.", State: c.stateView()})
}

func (c *Controller) handleDisconnect(connID string) {
	playerID, bound := c.bindings[connID]
	if !bound {
		return
	}
	delete(c.bindings, connID)

	removed, reset := c.session.Leave(playerID)
	if !removed {
		return
	}
	if reset {
		c.cancelTimer()
		clear(c.bindings)
		c.logger.Info().Str("player_id", playerID).Msg("player left mid-match, session reset")
		c.broadcast(wshub.ServerMessage{
			Type:    wshub.TypePlayerLeft,
			Message: "A player left. Game has been reset.",
			State:   c.stateView(),
		})
		return
	}
	c.logger.Info().Str("player_id", playerID).Msg("player left")
	c.broadcast(wshub.ServerMessage{Type: wshub.TypePlayerLeft, PlayerID: playerID, State: c.stateView()})
}

func (c *Controller) handleTimer(t timerFired) {
	if t.epoch != c.session.Epoch() || t.seq != c.seq {
		c.logger.Debug().Stringer("step", t.step).Uint64("epoch", t.epoch).Uint64("seq", t.seq).Msg("dropping stale timer")
		return
	}
	c.timer = nil

	switch t.step {
	case stepBeginAttempt:
		c.beginAttempt()
	case stepShowCue:
		c.showCue()
	case stepReactionTimeout:
		c.expire()
	case stepAdvanceRound:
		c.advanceRound()
	}
}

func (c *Controller) beginAttempt() {
	delay := c.delayer.Next()
	a, err := c.session.BeginAttempt(delay)
	if err != nil {
		c.logger.Error().Err(err).Msg("begin attempt")
		return
	}
	c.cueDelay = delay
	c.broadcast(wshub.ServerMessage{
		Type:             wshub.TypeRoundStarting,
		Round:            a.Round,
		TotalRounds:      a.TotalRounds,
		ActivePlayerID:   a.Active.ID,
		ActivePlayerName: a.Active.Name,
	})
	c.schedule(delay, stepShowCue)
}

func (c *Controller) showCue() {
	now := c.clock.Now()
	if err := c.session.ShowCue(now); err != nil {
		c.logger.Error().Err(err).Msg("show cue")
		return
	}
	c.shownAt = now
	active := c.session.ActivePlayer()
	c.broadcast(wshub.ServerMessage{Type: wshub.TypeButtonAppear, ActivePlayerID: active.ID})
	if c.cfg.ReactionTimeout > 0 {
		c.schedule(c.cfg.ReactionTimeout, stepReactionTimeout)
	}
}

func (c *Controller) expire() {
	r, err := c.session.ExpireReaction(c.cfg.ReactionTimeout)
	if err != nil {
		c.logger.Error().Err(err).Msg("expire reaction")
		return
	}
	c.logger.Debug().Str("player_id", r.Player.ID).Msg("reaction timed out")
	c.credited(r, c.clock.Now(), true)
}

func (c *Controller) advanceRound() {
	finished, err := c.session.AdvanceRound()
	if err != nil {
		c.logger.Error().Err(err).Msg("advance round")
		return
	}
	if !finished {
		c.beginAttempt()
		return
	}

	res, err := c.session.Result()
	if err != nil {
		c.logger.Error().Err(err).Msg("settle match")
		return
	}
	c.metrics.MatchFinished()
	c.logger.Info().
		Str("match_id", c.matchID.String()).
		Str("winner", res.Winner).
		Int64("winner_avg_ms", res.WinnerAvg).
		Msg("match finished")

	c.broadcast(wshub.ServerMessage{
		Type:      wshub.TypeGameOver,
		Winner:    res.Winner,
		Tie:       res.Tie,
		WinnerAvg: wshub.Millis(res.WinnerAvg),
		Player1:   &res.Player1,
		Player2:   &res.Player2,
	})
	c.persist(FinishedMatch{
		MatchID:    c.matchID,
		Room:       c.room,
		Result:     res,
		Players:    c.session.View().Players,
		Log:        c.session.Log(),
		StartedAt:  c.startedAt,
		FinishedAt: c.clock.Now(),
	})
}

// persist hands the result to the recorder without blocking the loop.
func (c *Controller) persist(m FinishedMatch) {
	if c.recorder == nil {
		return
	}
	c.persisting.Add(1)
	go func() {
		defer c.persisting.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PersistTimeout)
		defer cancel()
		if err := c.recorder.MatchFinished(ctx, m); err != nil {
			c.metrics.PersistFailed("match_result")
			c.logger.Error().
				Err(fmt.Errorf("%w: %w", duel.ErrPersistence, err)).
				Str("match_id", m.MatchID.String()).
				Msg("failed to save match result")
		}
	}()
}

// schedule replaces the pending timer with one that posts s after d.
func (c *Controller) schedule(d time.Duration, s step) {
	c.cancelTimer()
	c.seq++
	fired := timerFired{epoch: c.session.Epoch(), seq: c.seq, step: s}
	c.timer = c.clock.AfterFunc(d, func() {
		select {
		case c.inbox <- fired:
		case <-c.stopped:
		}
	})
}

func (c *Controller) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) reject(connID string, err error) {
	c.metrics.Rejected(duel.Code(err))
	c.logger.Debug().Err(err).Str("conn_id", connID).Msg("intent rejected")
	c.reply(connID, wshub.ErrorMessage(err))
}

func (c *Controller) reply(connID string, msg wshub.ServerMessage) {
	c.notifier.Send(connID, msg)
}

func (c *Controller) broadcast(msg wshub.ServerMessage) {
	c.notifier.Broadcast(msg)
}

func (c *Controller) stateView() *duel.View {
	v := c.session.View()
	return &v
}

func (c *Controller) publishView() {
	v := c.session.View()
	c.view.Store(&v)
	if v.Phase == c.lastPhase {
		return
	}
	c.lastPhase = v.Phase
	if c.bus != nil && !c.bus.Publish(events.PhaseChangeEvent{Room: c.room, Phase: v.Phase, Round: v.CurrentRound}) {
		c.logger.Debug().Stringer("phase", v.Phase).Msg("phase event dropped")
	}
}
