package game

import (
	"math/rand"
	"time"

	"github.com/peterkuimelis/kingpin/internal/log"
)

// Engine resolves actions against one match. It is synchronous and not safe
// for concurrent use: callers serialize Apply per match.
type Engine struct {
	State  *GameState
	Logger log.EventLogger
	Events EventRegistry
	rng    *rand.Rand
}

// NewEngine wraps an existing state. A zero seed picks a time-based one.
func NewEngine(gs *GameState, logger log.EventLogger) *Engine {
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	seed := gs.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		State:  gs,
		Logger: logger,
		Events: DefaultEventRegistry(),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Initialize prepares a freshly loaded state for turn one.
func (e *Engine) Initialize() {
	gs := e.State
	gs.Phase = PhaseUpkeep
	gs.TurnNumber = 1
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	gs.Flags[FlagMicroBribeUsed] = false
	gs.Over = false
	gs.Winner = ""
	gs.WinReason = WinNone
	e.Logger.Log(log.NewTurnEvent(gs.TurnNumber, string(gs.ActivePlayer)))
}

// Apply resolves one action for the active player. Rejections leave the state
// untouched; accepted actions always end the turn or the match.
func (e *Engine) Apply(a Action) Result {
	a = NormalizeAction(a)
	if a == nil {
		return e.reject(ActionUnknown, ErrUnknownAction)
	}
	if e.State.Over {
		return e.reject(a.Kind(), ErrMatchOver)
	}
	if e.State.Flags == nil {
		e.State.Flags = make(map[string]bool)
	}

	var code ErrorCode
	switch act := a.(type) {
	case Attack:
		code = e.attack(act)
	case Defend:
		code = e.defend(act)
	case Influence:
		code = e.influence(act)
	case Discard:
		code = e.discard(act)
	case Draw:
		code = e.draw(act)
	default:
		code = ErrUnknownAction
	}
	if code != ErrNone {
		return e.reject(a.Kind(), code)
	}
	return e.finishResolution(a.Kind())
}

// NormalizeAction dereferences pointer forms of the action structs. A nil
// pointer yields nil.
func NormalizeAction(a Action) Action {
	switch act := a.(type) {
	case *Attack:
		if act != nil {
			return *act
		}
		return nil
	case *Defend:
		if act != nil {
			return *act
		}
		return nil
	case *Influence:
		if act != nil {
			return *act
		}
		return nil
	case *Discard:
		if act != nil {
			return *act
		}
		return nil
	case *Draw:
		if act != nil {
			return *act
		}
		return nil
	}
	return a
}

func (e *Engine) reject(kind ActionKind, code ErrorCode) Result {
	gs := e.State
	e.Logger.Log(log.NewRejectedEvent(gs.TurnNumber, gs.Phase.String(), string(gs.ActivePlayer), kind.String(), string(code)))
	return Result{Phase: gs.Phase, Error: code, Winner: gs.Winner, WinReason: gs.WinReason, kind: kind}
}

// setPhase moves to a new phase and logs the transition.
func (e *Engine) setPhase(p Phase) {
	gs := e.State
	if gs.Phase == p {
		return
	}
	gs.Phase = p
	e.Logger.Log(log.NewPhaseChangeEvent(gs.TurnNumber, p.String()))
}

func (e *Engine) log(ev log.GameEvent) {
	e.Logger.Log(ev)
}

// tp returns the turn number and phase name for event constructors.
func (e *Engine) tp() (int, string) {
	return e.State.TurnNumber, e.State.Phase.String()
}
