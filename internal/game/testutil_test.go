package game

import (
	"testing"

	"github.com/peterkuimelis/kingpin/internal/log"
)

// plainCard creates a non-boss card with no abilities.
func plainCard(id, faction string, hp, atk, d int) *Card {
	return &Card{ID: id, Name: id, Type: CardTypeCommon, Faction: faction, HP: hp, ATK: atk, D: d}
}

// bossCard creates a boss with the given authority trait.
func bossCard(id string, hp, authority int) *Card {
	c := &Card{ID: id, Name: id, Type: CardTypeBoss, Faction: FactionNeutral, HP: hp}
	if authority != 0 {
		c.Abl = TraitAbility(map[string]TraitValue{TraitAuthority: IntTrait(authority)})
	}
	return c
}

// eventCard creates an event card with the given id.
func eventCard(id string) *Card {
	return &Card{ID: id, Name: id, Type: CardTypeEvent, Faction: FactionNeutral, HP: 1}
}

// withOnEnter attaches on_enter traits to a card.
func withOnEnter(c *Card, traits map[string]TraitValue) *Card {
	if c.Abl.Traits == nil {
		c.Abl.Traits = make(map[string]TraitValue)
	}
	c.Abl.Traits[TraitOnEnter] = MapTrait(traits)
	return c
}

// newTestEngine creates an initialized engine over a fresh state with a
// fixed seed and an in-memory logger.
func newTestEngine(t *testing.T, cfg Config) (*Engine, *log.MemoryLogger) {
	t.Helper()
	gs := NewGameState(cfg)
	gs.Seed = 42
	logger := log.NewMemoryLogger()
	e := NewEngine(gs, logger)
	e.Initialize()
	return e, logger
}

// place puts a card face-up into a slot without triggering anything.
func place(gs *GameState, pid PlayerID, slot int, c *Card, muscles int) *Slot {
	p := gs.Player(pid)
	p.PlaceCard(c, slot, true)
	p.Slots[slot].Muscles = muscles
	return &p.Slots[slot]
}

func mustApply(t *testing.T, e *Engine, a Action) Result {
	t.Helper()
	res := e.Apply(a)
	if !res.OK() {
		t.Fatalf("Expected %s to succeed, got error %s", a, res.Error)
	}
	return res
}

func expectRejected(t *testing.T, e *Engine, a Action, code ErrorCode) {
	t.Helper()
	before := snapshot(e.State)
	res := e.Apply(a)
	if res.Error != code {
		t.Fatalf("Expected %s to be rejected with %s, got %q", a, code, res.Error)
	}
	if after := snapshot(e.State); after != before {
		t.Errorf("Rejected %s mutated the state:\nbefore %+v\nafter  %+v", a, before, after)
	}
}

// stateSummary captures the counters a rejected action must not touch.
type stateSummary struct {
	active         PlayerID
	phase          Phase
	turn           int
	deck, shelf    int
	discard        int
	money, otboy   [2]int
	muscles, hands [2]int
	cards          [2]int
	bribeUsed      bool
}

func snapshot(gs *GameState) stateSummary {
	s := stateSummary{
		active:    gs.ActivePlayer,
		phase:     gs.Phase,
		turn:      gs.TurnNumber,
		deck:      len(gs.Deck),
		shelf:     len(gs.Shelf),
		discard:   len(gs.Discard),
		bribeUsed: gs.Flags[FlagMicroBribeUsed],
	}
	for i, pid := range []PlayerID{P1, P2} {
		p := gs.Player(pid)
		s.money[i] = p.Tokens.ReserveMoney
		s.otboy[i] = p.Tokens.Otboy
		s.muscles[i] = p.TotalMuscles()
		s.hands[i] = len(p.Hand)
		s.cards[i] = len(p.ActiveCards())
	}
	return s
}

func tokens(p *PlayerState) int {
	return p.Tokens.ReserveMoney + p.Tokens.Otboy + p.TotalMuscles()
}
