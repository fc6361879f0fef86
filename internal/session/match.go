package session

import (
	"errors"
	"sync"
	"time"

	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/log"
	"go.uber.org/zap"
)

// ErrNotYourTurn is the session-level rejection for a seat acting out of turn.
const ErrNotYourTurn game.ErrorCode = "not_your_turn"

// ErrMatchNotFound is returned by the manager for unknown match ids.
var ErrMatchNotFound = errors.New("match not found")

// Update is published to subscribers after every accepted or rejected action.
type Update struct {
	MatchID string
	Seat    game.PlayerID
	Action  string
	Result  game.Result
	Events  []log.GameEvent
}

// Match owns one engine and serializes every call into it. Matches never
// share locks with each other.
type Match struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	engine  *game.Engine
	events  *log.ZapLogger
	lastSeq int
	subs    map[int]chan Update
	nextSub int
	closed  bool
	logger  *zap.Logger
}

// NewMatch initializes gs for turn one and wraps it. A nil logger is a no-op.
func NewMatch(id string, gs *game.GameState, logger *zap.Logger) *Match {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("match_id", id))
	events := log.NewZapLogger(logger.Named("events"))
	engine := game.NewEngine(gs, events)
	engine.Initialize()

	return &Match{
		ID:      id,
		Created: time.Now(),
		engine:  engine,
		events:  events,
		lastSeq: events.LastEvent().Seq,
		subs:    make(map[int]chan Update),
		logger:  logger,
	}
}

// Apply resolves one action on behalf of seat. Actions from the seat that is
// not active are rejected with ErrNotYourTurn and never reach the engine.
func (m *Match) Apply(seat game.PlayerID, a game.Action) Update {
	m.mu.Lock()
	defer m.mu.Unlock()

	a = game.NormalizeAction(a)
	kind := "unknown"
	if a != nil {
		kind = a.Kind().String()
	}
	upd := Update{MatchID: m.ID, Seat: seat, Action: kind}

	gs := m.engine.State
	switch {
	case !seat.Valid():
		upd.Result = game.Result{Phase: gs.Phase, Error: game.ErrBadPlayer, Winner: gs.Winner, WinReason: gs.WinReason}
	case seat != gs.ActivePlayer && !gs.Over:
		upd.Result = game.Result{Phase: gs.Phase, Error: ErrNotYourTurn}
	default:
		upd.Result = m.engine.Apply(a)
	}

	upd.Events = m.events.Since(m.lastSeq)
	if n := len(upd.Events); n > 0 {
		m.lastSeq = upd.Events[n-1].Seq
	}

	if upd.Result.OK() {
		m.logger.Debug("action applied",
			zap.String("seat", string(seat)),
			zap.String("action", kind),
			zap.Int("events", len(upd.Events)),
		)
	} else {
		m.logger.Debug("action rejected",
			zap.String("seat", string(seat)),
			zap.String("action", kind),
			zap.String("code", string(upd.Result.Error)),
		)
	}
	if upd.Result.Winner != "" && upd.Result.OK() {
		m.logger.Info("match finished",
			zap.String("winner", string(upd.Result.Winner)),
			zap.String("reason", string(upd.Result.WinReason)),
		)
	}

	m.publish(upd)
	return upd
}

// publish fans out to subscribers without blocking; a full buffer drops the
// update for that subscriber.
func (m *Match) publish(upd Update) {
	for id, ch := range m.subs {
		select {
		case ch <- upd:
		default:
			m.logger.Warn("subscriber lagging, update dropped", zap.Int("subscriber", id))
		}
	}
}

// Subscribe registers a buffered channel of updates. The returned cancel
// function closes the channel.
func (m *Match) Subscribe(buffer int) (<-chan Update, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Update, buffer)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(ch)
			}
		})
	}
}

// Close drops every subscriber. Further Subscribe calls get a closed channel.
func (m *Match) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.closed = true
}

// View runs fn with the state under the match lock. fn must not retain gs.
func (m *Match) View(fn func(gs *game.GameState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.engine.State)
}

// Events returns every event logged by the match so far.
func (m *Match) Events() []log.GameEvent {
	return m.events.Events()
}

// ActivePlayer returns the seat expected to act next.
func (m *Match) ActivePlayer() game.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.State.ActivePlayer
}

// Over reports whether the match has a winner.
func (m *Match) Over() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.State.Over
}
